package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/medge/codewords/internal/dependencies/clock"
	"github.com/medge/codewords/internal/dependencies/random"
	"github.com/medge/codewords/internal/events"
	"github.com/medge/codewords/internal/metrics"
	"github.com/medge/codewords/internal/services/auth"
	"github.com/medge/codewords/internal/services/board"
	"github.com/medge/codewords/internal/services/bot"
	"github.com/medge/codewords/internal/services/game"
	"github.com/medge/codewords/internal/services/lobby"
	"github.com/medge/codewords/internal/services/presence"
	"github.com/medge/codewords/internal/services/wordlist"
	"github.com/medge/codewords/internal/sse"
	"github.com/medge/codewords/internal/storage"
	"github.com/medge/codewords/internal/storage/memory"
	"github.com/medge/codewords/internal/storage/postgres"
	redisstorage "github.com/medge/codewords/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock     clock.Clock
	Random    random.Random
	Publisher events.Publisher
	Metrics   *metrics.Metrics

	// Services
	WordlistService *wordlist.Service
	BoardService    *board.Service
	GameController  *game.Controller
	LobbyController *lobby.Controller
	BotService      *bot.Service
	AuthService     *auth.Service
	PresenceService *presence.Service
	PresenceMonitor *presence.Monitor
	HubManager      *sse.HubManager
	Broadcaster     *sse.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresURL is the Postgres connection string (required if StorageType is "postgres")
	PostgresURL string
	// NATSConfig enables event publishing to NATS (optional)
	// If nil, events are discarded
	NATSConfig *events.NATSConfig
	// AuthConfig holds configuration for the auth service (optional)
	AuthConfig auth.Config
	// PresenceConfig holds disconnection thresholds (optional)
	PresenceConfig presence.Config
	// SweepInterval is how often the presence monitor runs (optional)
	SweepInterval time.Duration
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypePostgres:
		if cfg.PostgresURL == "" {
			return nil, errors.New("PostgresURL required when StorageType is postgres")
		}
		pgStore, err := postgres.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	// Create event publisher
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATSConfig != nil {
		natsPublisher, err := events.NewNATSPublisher(*cfg.NATSConfig, logger)
		if err != nil {
			return nil, err
		}
		publisher = natsPublisher
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()
	m := metrics.New()

	return newWithDependencies(store, clk, rnd, publisher, m, cfg.AuthConfig, cfg.PresenceConfig, cfg.SweepInterval, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	publisher events.Publisher,
	m *metrics.Metrics,
	authCfg auth.Config,
	presenceCfg presence.Config,
	sweepInterval time.Duration,
	logger *slog.Logger,
) *App {
	// Create services
	wordlistService := wordlist.New(store)
	boardService := board.New(store, wordlistService, rnd)
	gameController := game.NewController(store, boardService, clk, rnd, logger)
	lobbyController := lobby.NewController(store, gameController, clk, rnd)
	authService := auth.New(store, clk, authCfg)
	hubManager := sse.NewHubManager(logger, m.SSEClients)
	broadcaster := sse.NewBroadcaster(hubManager, logger)

	strategies := map[string]bot.Strategy{
		bot.StrategyRandom: bot.NewRandomStrategy(rnd),
	}
	botService := bot.NewService(store, lobbyController, gameController, wordlistService, strategies, clk, rnd, logger)

	presenceService := presence.NewService(store, gameController, botService, broadcaster, publisher, m, presenceCfg, clk, logger)
	presenceMonitor := presence.NewMonitor(store, presenceService, gameController, lobbyController, botService, broadcaster, m, sweepInterval, clk, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Publisher:       publisher,
		Metrics:         m,
		WordlistService: wordlistService,
		BoardService:    boardService,
		GameController:  gameController,
		LobbyController: lobbyController,
		BotService:      botService,
		AuthService:     authService,
		PresenceService: presenceService,
		PresenceMonitor: presenceMonitor,
		HubManager:      hubManager,
		Broadcaster:     broadcaster,
	}
}
