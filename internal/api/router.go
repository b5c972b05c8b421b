package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/medge/codewords/internal/api/handler"
	apimw "github.com/medge/codewords/internal/api/middleware"
	"github.com/medge/codewords/internal/dependencies/clock"
	"github.com/medge/codewords/internal/events"
	"github.com/medge/codewords/internal/metrics"
	httpmw "github.com/medge/codewords/internal/middleware"
	"github.com/medge/codewords/internal/services/auth"
	"github.com/medge/codewords/internal/services/bot"
	"github.com/medge/codewords/internal/services/game"
	"github.com/medge/codewords/internal/services/lobby"
	"github.com/medge/codewords/internal/services/presence"
	"github.com/medge/codewords/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	LobbyController *lobby.Controller
	GameController  *game.Controller
	PresenceService *presence.Service
	BotService      *bot.Service
	Publisher       events.Publisher
	Metrics         *metrics.Metrics
	HubManager      *sse.HubManager
	Clock           clock.Clock
	JoinBaseURL     string
	AllowedOrigins  []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	var broadcaster *sse.Broadcaster
	if cfg.HubManager != nil {
		broadcaster = sse.NewBroadcaster(cfg.HubManager, cfg.Logger)
	}

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyController, cfg.BotService, cfg.HubManager, cfg.JoinBaseURL, cfg.Logger)
	gameHandler := handler.NewGameHandler(
		cfg.LobbyController,
		cfg.GameController,
		cfg.PresenceService,
		cfg.BotService,
		broadcaster,
		cfg.Publisher,
		cfg.Metrics,
		cfg.Clock,
		cfg.Logger,
	)

	// Create middleware
	authMiddleware := apimw.Auth(cfg.AuthService)
	loggingMiddleware := httpmw.Logging(cfg.Logger)
	recoveryMiddleware := apimw.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(httpmw.RequestID)
	api.Use(loggingMiddleware)
	if cfg.Metrics != nil {
		api.Use(routeMetrics(cfg.Metrics))
	}

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)

	// Lobby routes (all require auth)
	lobbies := api.PathPrefix("/lobbies").Subrouter()
	lobbies.Use(authMiddleware)
	lobbies.HandleFunc("", lobbyHandler.Create).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}", lobbyHandler.Get).Methods(http.MethodGet)
	lobbies.HandleFunc("/{code}/join", lobbyHandler.Join).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/leave", lobbyHandler.Leave).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/config", lobbyHandler.UpdateConfig).Methods(http.MethodPatch)
	lobbies.HandleFunc("/{code}/seat", lobbyHandler.SetTeamRole).Methods(http.MethodPut)
	lobbies.HandleFunc("/{code}/members/{player_id}", lobbyHandler.Kick).Methods(http.MethodDelete)
	lobbies.HandleFunc("/{code}/transfer-host", lobbyHandler.TransferHost).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/bots", lobbyHandler.AddBot).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/bots/{player_id}", lobbyHandler.RemoveBot).Methods(http.MethodDelete)
	lobbies.HandleFunc("/{code}/qr", lobbyHandler.JoinQR).Methods(http.MethodGet)
	lobbies.HandleFunc("/{code}/stream", lobbyHandler.Stream).Methods(http.MethodGet)

	// Game routes (all require auth)
	lobbies.HandleFunc("/{code}/game", gameHandler.Start).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/game", gameHandler.Get).Methods(http.MethodGet)
	lobbies.HandleFunc("/{code}/game", gameHandler.Abandon).Methods(http.MethodDelete)
	lobbies.HandleFunc("/{code}/game/clue", gameHandler.Clue).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/game/guess", gameHandler.Guess).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/game/end-turn", gameHandler.EndTurn).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/game/events", gameHandler.Events).Methods(http.MethodGet)
	lobbies.HandleFunc("/{code}/game/heartbeat", gameHandler.Heartbeat).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/game/presence", gameHandler.Presence).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Metrics scrape endpoint, outside the instrumented subtree
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}

// routeMetrics labels requests with the matched route pattern rather than
// the raw path, keeping label cardinality bounded
func routeMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tmpl, err := cur.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			m.Middleware(route, next).ServeHTTP(w, r)
		})
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
