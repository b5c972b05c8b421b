package presence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/medge/codewords/internal/dependencies/clock"
	"github.com/medge/codewords/internal/metrics"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/bot"
	"github.com/medge/codewords/internal/services/game"
	"github.com/medge/codewords/internal/services/lobby"
	"github.com/medge/codewords/internal/sse"
	"github.com/medge/codewords/internal/storage"
)

// DefaultSweepInterval is how often the monitor walks active games
const DefaultSweepInterval = 5 * time.Second

// Monitor periodically sweeps active games: it substitutes bots for silent
// players, expires overdue turns, and lets stand-in bots take their moves
type Monitor struct {
	storage         storage.Storage
	presenceService *Service
	gameController  *game.Controller
	lobbyController *lobby.Controller
	botService      *bot.Service
	broadcaster     *sse.Broadcaster // optional
	metrics         *metrics.Metrics // optional
	interval        time.Duration
	clock           clock.Clock
	logger          *slog.Logger
}

// NewMonitor creates a new presence Monitor. broadcaster and metrics may
// be nil
func NewMonitor(
	store storage.Storage,
	presenceService *Service,
	gameController *game.Controller,
	lobbyController *lobby.Controller,
	botService *bot.Service,
	broadcaster *sse.Broadcaster,
	m *metrics.Metrics,
	interval time.Duration,
	clk clock.Clock,
	logger *slog.Logger,
) *Monitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Monitor{
		storage:         store,
		presenceService: presenceService,
		gameController:  gameController,
		lobbyController: lobbyController,
		botService:      botService,
		broadcaster:     broadcaster,
		metrics:         m,
		interval:        interval,
		clock:           clk,
		logger:          logger.With(slog.String("component", "presence-monitor")),
	}
}

// Run sweeps on a fixed interval until the context is cancelled
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("presence monitor started",
		slog.Duration("interval", m.interval),
	)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("presence monitor stopped")
			return
		case <-ticker.C:
			m.SweepAll(ctx)
		}
	}
}

// SweepAll runs one pass over every active game. Failures on one game are
// logged and do not stop the pass
func (m *Monitor) SweepAll(ctx context.Context) {
	gameIDs, err := m.storage.ListActiveGames(ctx)
	if err != nil {
		m.logger.Error("failed to list active games",
			slog.String("error", err.Error()),
		)
		return
	}

	for _, gameID := range gameIDs {
		if err := m.sweepGame(ctx, gameID); err != nil {
			m.logger.Error("game sweep failed",
				slog.String("game_id", string(gameID)),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (m *Monitor) sweepGame(ctx context.Context, gameID model.GameID) error {
	if err := m.presenceService.Sweep(ctx, gameID); err != nil {
		return err
	}

	g, err := m.gameController.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Ended {
		return m.finalizeGame(ctx, g)
	}

	if err := m.expireTurn(ctx, g); err != nil {
		return err
	}

	// Substituted bots may now be on the hook to act
	if _, err := m.botService.ProcessBotActions(ctx, gameID); err != nil {
		return err
	}

	g, err = m.gameController.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Ended {
		return m.finalizeGame(ctx, g)
	}
	return nil
}

// expireTurn force-passes a turn that has outlived the lobby's turn timer
func (m *Monitor) expireTurn(ctx context.Context, g *model.Game) error {
	lob, err := m.lobbyController.GetLobby(ctx, g.LobbyCode)
	if err != nil {
		return err
	}

	timeout := lob.Config.TurnTimeout
	if timeout <= 0 {
		return nil
	}
	if m.clock.Now().Sub(g.TurnStartedAt) <= timeout {
		return nil
	}

	updated, err := m.gameController.EndTurn(ctx, g.ID, game.SystemActor, g.TurnSeq)
	if errors.Is(err, model.ErrTurnLockHeld) {
		// A player-driven pass is in flight; next sweep will recheck
		return nil
	}
	if err != nil {
		return err
	}
	if updated.TurnSeq == g.TurnSeq {
		return nil // Someone else advanced it first
	}

	if m.metrics != nil {
		m.metrics.TurnsExpired.Inc()
	}
	if m.broadcaster != nil {
		m.broadcaster.BroadcastTurnEnded(g.LobbyCode, updated)
	}

	m.logger.Info("turn expired",
		slog.String("game_id", string(g.ID)),
		slog.Int("turn_seq", g.TurnSeq),
	)
	return nil
}

// finalizeGame records a finished game in its lobby and drops presence state
func (m *Monitor) finalizeGame(ctx context.Context, g *model.Game) error {
	lob, err := m.lobbyController.GetLobby(ctx, g.LobbyCode)
	if err != nil {
		return err
	}

	if lob.CurrentGame != nil && *lob.CurrentGame == g.ID {
		if err := m.lobbyController.CompleteGame(ctx, g.LobbyCode); err != nil {
			return err
		}
		if m.metrics != nil {
			m.metrics.GamesFinished.WithLabelValues(string(g.Winner)).Inc()
		}
		if m.broadcaster != nil {
			m.broadcaster.BroadcastGameFinished(g.LobbyCode, g)
		}
	}

	return m.storage.DeletePresenceForGame(ctx, g.ID)
}
