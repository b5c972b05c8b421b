package presence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/medge/codewords/internal/dependencies/clock"
	"github.com/medge/codewords/internal/events"
	"github.com/medge/codewords/internal/metrics"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/bot"
	"github.com/medge/codewords/internal/services/game"
	"github.com/medge/codewords/internal/sse"
	"github.com/medge/codewords/internal/storage"
)

const (
	// substitutionLockTTL is the lease on per-player substitution arbitration.
	// Covers the bot creation and participant swap of one substitution
	substitutionLockTTL = 10 * time.Second

	// sweeperOwner marks lock acquisitions made by the background sweep
	sweeperOwner = model.PlayerID("sweeper")
)

// Config holds presence timing thresholds
type Config struct {
	// ActiveTimeout is how long a player whose team holds the turn may go
	// without a heartbeat before substitution
	ActiveTimeout time.Duration
	// IdleTimeout is the same allowance while the opposing team holds the turn
	IdleTimeout time.Duration
}

// DefaultConfig returns default presence thresholds
func DefaultConfig() Config {
	return Config{
		ActiveTimeout: 30 * time.Second,
		IdleTimeout:   120 * time.Second,
	}
}

// Service tracks player liveness per game and swaps bots in and out for
// disconnected players
type Service struct {
	storage        storage.Storage
	gameController *game.Controller
	botService     *bot.Service
	broadcaster    *sse.Broadcaster // optional
	publisher      events.Publisher // optional
	metrics        *metrics.Metrics // optional
	config         Config
	clock          clock.Clock
	logger         *slog.Logger
}

// NewService creates a new presence Service. broadcaster, publisher and
// metrics may be nil
func NewService(
	store storage.Storage,
	gameController *game.Controller,
	botService *bot.Service,
	broadcaster *sse.Broadcaster,
	publisher events.Publisher,
	m *metrics.Metrics,
	config Config,
	clk clock.Clock,
	logger *slog.Logger,
) *Service {
	if config.ActiveTimeout == 0 {
		config.ActiveTimeout = DefaultConfig().ActiveTimeout
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = DefaultConfig().IdleTimeout
	}
	return &Service{
		storage:        store,
		gameController: gameController,
		botService:     botService,
		broadcaster:    broadcaster,
		publisher:      publisher,
		metrics:        m,
		config:         config,
		clock:          clk,
		logger:         logger.With(slog.String("component", "presence-service")),
	}
}

// Heartbeat records a liveness signal from a player. A heartbeat from a
// player who was substituted out brings them back into the game
func (s *Service) Heartbeat(ctx context.Context, gameID model.GameID, playerID model.PlayerID) error {
	g, err := s.gameController.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Ended {
		return model.ErrGameFinished
	}

	// Returning player: reverse the substitution before updating presence
	if _, err := s.storage.GetSubstitution(ctx, gameID, playerID); err == nil {
		if err := s.Resume(ctx, gameID, playerID); err != nil {
			return err
		}
	} else if !errors.Is(err, model.ErrSubstitutionNotFound) {
		return err
	}

	now := s.clock.Now()
	record, err := s.storage.GetPresence(ctx, gameID, playerID)
	if errors.Is(err, model.ErrPresenceNotFound) {
		if g.Participant(playerID) == nil {
			return model.ErrNotParticipant
		}
		record = &model.PresenceRecord{
			GameID:       gameID,
			PlayerID:     playerID,
			LastActivity: now,
		}
	} else if err != nil {
		return err
	}

	record.LastHeartbeat = now
	record.Status = model.StatusConnected
	return s.storage.SavePresence(ctx, record)
}

// Touch records game activity (a clue, a guess, a pass) as implicit liveness
func (s *Service) Touch(ctx context.Context, gameID model.GameID, playerID model.PlayerID) error {
	record, err := s.storage.GetPresence(ctx, gameID, playerID)
	if errors.Is(err, model.ErrPresenceNotFound) {
		return s.Heartbeat(ctx, gameID, playerID)
	}
	if err != nil {
		return err
	}

	now := s.clock.Now()
	record.LastHeartbeat = now
	record.LastActivity = now
	record.Status = model.StatusConnected
	return s.storage.SavePresence(ctx, record)
}

// GetPresenceForGame returns all presence records for a game
func (s *Service) GetPresenceForGame(ctx context.Context, gameID model.GameID) ([]*model.PresenceRecord, error) {
	return s.storage.GetPresenceForGame(ctx, gameID)
}

// Sweep examines every participant of a game and substitutes bots for
// players who have gone quiet. The allowance is short while the player's
// own team holds the turn and long otherwise, so a distracted spectator-ish
// turn doesn't cost anyone their seat
func (s *Service) Sweep(ctx context.Context, gameID model.GameID) error {
	g, err := s.gameController.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Ended {
		return s.storage.DeletePresenceForGame(ctx, gameID)
	}

	now := s.clock.Now()
	for i := range g.Participants {
		p := &g.Participants[i]
		if p.IsBot {
			continue
		}

		record, err := s.storage.GetPresence(ctx, gameID, p.PlayerID)
		if errors.Is(err, model.ErrPresenceNotFound) {
			// Never heartbeated; seed a record so the clock starts now
			record = &model.PresenceRecord{
				GameID:        gameID,
				PlayerID:      p.PlayerID,
				LastHeartbeat: now,
				LastActivity:  now,
				Status:        model.StatusConnected,
			}
			if err := s.storage.SavePresence(ctx, record); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		isCurrentTurn := p.Team == g.CurrentTeam
		if record.IsCurrentTurn != isCurrentTurn {
			record.IsCurrentTurn = isCurrentTurn
			if err := s.storage.SavePresence(ctx, record); err != nil {
				return err
			}
		}

		threshold := s.config.IdleTimeout
		if isCurrentTurn {
			threshold = s.config.ActiveTimeout
		}

		if now.Sub(record.LastHeartbeat) <= threshold {
			continue
		}

		// Past the allowance: note the timeout first. The record only goes
		// disconnected once a stand-in has actually taken the seat
		if record.Status == model.StatusConnected {
			record.Status = model.StatusTimeout
			if err := s.storage.SavePresence(ctx, record); err != nil {
				return err
			}
		}

		if err := s.substitute(ctx, g, p, record); err != nil {
			s.logger.Error("substitution failed",
				slog.String("game_id", string(gameID)),
				slog.String("player_id", string(p.PlayerID)),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// substitute swaps a bot in for a timed-out player. Serialized per player
// through a leased lock so concurrent sweeps produce at most one stand-in
func (s *Service) substitute(ctx context.Context, g *model.Game, p *model.Participant, record *model.PresenceRecord) error {
	token, acquired, err := s.storage.AcquireSubstitutionLock(ctx, g.ID, p.PlayerID, sweeperOwner, substitutionLockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return nil // Another sweep is already handling this player
	}
	defer func() {
		if err := s.storage.ReleaseSubstitutionLock(ctx, g.ID, p.PlayerID, token); err != nil {
			s.logger.Warn("failed to release substitution lock",
				slog.String("game_id", string(g.ID)),
				slog.String("player_id", string(p.PlayerID)),
				slog.String("error", err.Error()),
			)
		}
	}()

	// Already substituted by an earlier sweep
	if _, err := s.storage.GetSubstitution(ctx, g.ID, p.PlayerID); err == nil {
		return nil
	} else if !errors.Is(err, model.ErrSubstitutionNotFound) {
		return err
	}

	botName := fmt.Sprintf("%s (bot)", p.DisplayName)
	botPlayer, err := s.botService.CreateBotPlayer(ctx, botName, bot.StrategyRandom)
	if err != nil {
		return err
	}

	sub := &model.Substitution{
		GameID:      g.ID,
		OriginalID:  p.PlayerID,
		BotID:       botPlayer.ID,
		DisplayName: p.DisplayName,
		Team:        p.Team,
		Role:        p.Role,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.storage.SaveSubstitution(ctx, sub); err != nil {
		return err
	}

	if err := s.gameController.ReplaceParticipant(ctx, g.ID, p.PlayerID, botPlayer.ID, botName, true); err != nil {
		return err
	}

	record.Status = model.StatusDisconnected
	if err := s.storage.SavePresence(ctx, record); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.Substitutions.Inc()
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSubstitution(g.LobbyCode, sub)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.Event{
			Type:      events.EventPlayerSubstituted,
			GameID:    g.ID,
			LobbyCode: g.LobbyCode,
			PlayerID:  p.PlayerID,
			Team:      p.Team,
			TurnSeq:   g.TurnSeq,
			Timestamp: s.clock.Now(),
		}); err != nil {
			s.logger.Warn("failed to publish substitution event",
				slog.String("game_id", string(g.ID)),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("player substituted",
		slog.String("game_id", string(g.ID)),
		slog.String("player_id", string(p.PlayerID)),
		slog.String("bot_id", string(botPlayer.ID)),
		slog.String("team", string(p.Team)),
		slog.String("role", string(p.Role)),
	)

	return nil
}

// Resume reverses a substitution when the original player returns. The same
// per-player lock serializes this against a concurrent sweep
func (s *Service) Resume(ctx context.Context, gameID model.GameID, playerID model.PlayerID) error {
	token, acquired, err := s.storage.AcquireSubstitutionLock(ctx, gameID, playerID, playerID, substitutionLockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		return model.ErrTurnLockHeld
	}
	defer func() {
		if err := s.storage.ReleaseSubstitutionLock(ctx, gameID, playerID, token); err != nil {
			s.logger.Warn("failed to release substitution lock",
				slog.String("game_id", string(gameID)),
				slog.String("player_id", string(playerID)),
				slog.String("error", err.Error()),
			)
		}
	}()

	sub, err := s.storage.GetSubstitution(ctx, gameID, playerID)
	if errors.Is(err, model.ErrSubstitutionNotFound) {
		return nil // Already resumed
	}
	if err != nil {
		return err
	}

	if err := s.gameController.ReplaceParticipant(ctx, gameID, sub.BotID, sub.OriginalID, sub.DisplayName, false); err != nil {
		return err
	}
	if err := s.storage.DeleteSubstitution(ctx, gameID, playerID); err != nil {
		return err
	}
	if err := s.storage.DeletePlayer(ctx, sub.BotID); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.Resumptions.Inc()
	}
	if s.broadcaster != nil || s.publisher != nil {
		g, err := s.gameController.GetGame(ctx, gameID)
		if err == nil {
			if s.broadcaster != nil {
				s.broadcaster.BroadcastResumption(g.LobbyCode, gameID, playerID)
			}
			if s.publisher != nil {
				if err := s.publisher.Publish(ctx, events.Event{
					Type:      events.EventPlayerResumed,
					GameID:    gameID,
					LobbyCode: g.LobbyCode,
					PlayerID:  playerID,
					TurnSeq:   g.TurnSeq,
					Timestamp: s.clock.Now(),
				}); err != nil {
					s.logger.Warn("failed to publish resume event",
						slog.String("game_id", string(gameID)),
						slog.String("error", err.Error()),
					)
				}
			}
		}
	}

	s.logger.Info("player resumed",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(playerID)),
		slog.String("bot_id", string(sub.BotID)),
	)

	return nil
}

// Interface for dependency injection
type ServiceInterface interface {
	Heartbeat(ctx context.Context, gameID model.GameID, playerID model.PlayerID) error
	Touch(ctx context.Context, gameID model.GameID, playerID model.PlayerID) error
	GetPresenceForGame(ctx context.Context, gameID model.GameID) ([]*model.PresenceRecord, error)
	Sweep(ctx context.Context, gameID model.GameID) error
	Resume(ctx context.Context, gameID model.GameID, playerID model.PlayerID) error
}

var _ ServiceInterface = (*Service)(nil)
