package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/medge/codewords/internal/api"
	"github.com/medge/codewords/internal/events"
	"github.com/medge/codewords/internal/factory"
	"github.com/medge/codewords/internal/model"
	redisstorage "github.com/medge/codewords/internal/storage/redis"
)

func main() {
	// Load .env if present; real environment wins
	_ = godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		PostgresURL: os.Getenv("DATABASE_URL"),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Configure NATS event publishing if a URL is set
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		natsCfg := events.DefaultNATSConfig()
		natsCfg.URL = natsURL
		cfg.NATSConfig = &natsCfg
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create application factory
	app, err := factory.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Publisher.Close(); err != nil {
			logger.Warn("failed to close event publisher", slog.String("error", err.Error()))
		}
	}()

	// Load word pools
	loadWordlist(ctx, app, model.ModeEnglish, envOr("WORDS_EN", "data/words_en.txt"), logger)
	loadWordlist(ctx, app, model.ModeRussian, envOr("WORDS_RU", "data/words_ru.txt"), logger)

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		LobbyController: app.LobbyController,
		GameController:  app.GameController,
		PresenceService: app.PresenceService,
		BotService:      app.BotService,
		Publisher:       app.Publisher,
		Metrics:         app.Metrics,
		HubManager:      app.HubManager,
		Clock:           app.Clock,
		JoinBaseURL:     envOr("JOIN_BASE_URL", "http://localhost:8080"),
		AllowedOrigins:  strings.Split(envOr("ALLOWED_ORIGINS", "*"), ","),
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			serverConfig.Port = p
		}
	}
	server := api.NewServer(router, serverConfig, logger)

	// Run the presence monitor until shutdown
	go app.PresenceMonitor.Run(ctx)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// loadWordlist loads a mode's pool from file, falling back to whatever the
// storage backend has seeded
func loadWordlist(ctx context.Context, app *factory.App, mode model.Mode, path string, logger *slog.Logger) {
	if err := app.WordlistService.LoadFromFile(ctx, mode, path); err == nil {
		logger.Info("loaded wordlist",
			slog.String("mode", string(mode)),
			slog.String("path", path),
			slog.Int("words", app.WordlistService.WordCount(mode)),
		)
		return
	}

	if err := app.WordlistService.LoadFromStorage(ctx, mode); err != nil {
		logger.Warn("no wordlist available",
			slog.String("mode", string(mode)),
			slog.String("error", err.Error()),
		)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
