package game

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/medge/codewords/internal/dependencies/clock"
	"github.com/medge/codewords/internal/dependencies/random"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/board"
	"github.com/medge/codewords/internal/services/wordlist"
	"github.com/medge/codewords/internal/storage"
)

const (
	// MinClueCount and MaxClueCount bound the number a caller may attach to a clue
	MinClueCount = 1
	MaxClueCount = 8

	// turnLockTTL is the lease on the turn advancement lock. If the holder
	// crashes mid-advance the lease expires and another actor can retry
	turnLockTTL = 5 * time.Second

	// SystemActor identifies turn advancement driven by the server itself
	// (turn timers, presence sweeps) rather than by a player
	SystemActor = model.PlayerID("")
)

// Controller manages game state machine and turn flow
type Controller struct {
	storage      storage.Storage
	boardService *board.Service
	clock        clock.Clock
	random       random.Random
	logger       *slog.Logger
}

// NewController creates a new GameController
func NewController(
	storage storage.Storage,
	boardService *board.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:      storage,
		boardService: boardService,
		clock:        clock,
		random:       random,
		logger:       logger,
	}
}

// CreateGame initializes a new game from lobby membership. The starting team
// is chosen at random and receives the larger card allocation
func (c *Controller) CreateGame(ctx context.Context, lobbyCode model.LobbyCode, mode model.Mode, members []model.LobbyMember) (*model.Game, error) {
	now := c.clock.Now()
	gameID := model.GameID(c.random.String(12, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"))

	startingTeam := model.TeamRed
	if c.random.Intn(2) == 1 {
		startingTeam = model.TeamBlue
	}

	participants := make([]model.Participant, 0, len(members))
	for _, m := range members {
		if m.Role == model.RoleSpectator {
			continue
		}
		participants = append(participants, model.Participant{
			PlayerID:    m.Player.ID,
			DisplayName: m.Player.DisplayName,
			Team:        m.Team,
			Role:        m.Role,
			IsBot:       m.Player.IsBot,
		})
	}

	game := &model.Game{
		ID:            gameID,
		LobbyCode:     lobbyCode,
		Mode:          mode,
		Participants:  participants,
		Phase:         model.PhaseAwaitingClue,
		CurrentTeam:   startingTeam,
		StartingTeam:  startingTeam,
		TurnSeq:       0,
		TurnStartedAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := c.boardService.Deal(ctx, gameID, mode, startingTeam); err != nil {
		return nil, err
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(gameID)),
		slog.String("lobby_code", string(lobbyCode)),
		slog.String("starting_team", string(startingTeam)),
		slog.Int("participant_count", len(participants)),
	)

	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// VisibleBoard returns the board as the given player is allowed to see it.
// Callers and anyone viewing a finished game see card allegiances; everyone
// else sees allegiances only on revealed cards
func (c *Controller) VisibleBoard(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.Board, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	b, err := c.boardService.GetBoard(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.Ended {
		return b, nil
	}
	if p := game.Participant(playerID); p != nil && p.Role == model.RoleCaller {
		return b, nil
	}

	filtered := &model.Board{
		GameID:    b.GameID,
		Cards:     make([]model.Card, len(b.Cards)),
		Allocated: b.Allocated,
	}
	for i, card := range b.Cards {
		filtered.Cards[i] = card
		if !card.Revealed {
			filtered.Cards[i].Kind = ""
		}
	}
	return filtered, nil
}

// lockTurn takes the per-game lease that serializes every write to the game
// document: clue writes, guess acceptance, turn transitions and participant
// swaps all run under it, so no two actors ever work from diverging copies.
// The returned release func must be deferred
func (c *Controller) lockTurn(ctx context.Context, gameID model.GameID, owner model.PlayerID) (func(), error) {
	if owner == SystemActor {
		owner = "system"
	}
	token, acquired, err := c.storage.AcquireTurnLock(ctx, gameID, owner, turnLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, model.ErrTurnLockHeld
	}
	return func() {
		if err := c.storage.ReleaseTurnLock(ctx, gameID, token); err != nil {
			c.logger.Warn("failed to release turn lock",
				slog.String("game_id", string(gameID)),
				slog.String("error", err.Error()),
			)
		}
	}, nil
}

// SubmitClue handles the current team's caller giving the clue for this turn
func (c *Controller) SubmitClue(ctx context.Context, gameID model.GameID, playerID model.PlayerID, word string, count int) (*model.Game, error) {
	unlock, err := c.lockTurn(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.Ended {
		return nil, model.ErrGameFinished
	}
	if game.Phase == model.PhaseGuessing {
		return nil, model.ErrClueExists
	}

	p := game.Participant(playerID)
	if p == nil {
		return nil, model.ErrNotParticipant
	}
	if p.Team != game.CurrentTeam || p.Role != model.RoleCaller {
		return nil, model.ErrNotYourTurn
	}

	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, model.ErrClueEmpty
	}
	if len(strings.Fields(word)) > 1 {
		return nil, model.ErrClueMultiWord
	}
	if !wordlist.ValidCharset(game.Mode, word) {
		return nil, model.ErrClueCharset
	}
	if count < MinClueCount || count > MaxClueCount {
		return nil, model.ErrClueCount
	}

	// The clue may not match or textually contain any board word, in
	// either direction
	b, err := c.boardService.GetBoard(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if b.WordOverlaps(word) {
		return nil, model.ErrClueBoardOverlap
	}

	now := c.clock.Now()
	game.ActiveClue = &model.Clue{
		Word:     word,
		Count:    count,
		Team:     game.CurrentTeam,
		CallerID: playerID,
		TurnSeq:  game.TurnSeq,
		GivenAt:  now,
	}
	game.Phase = model.PhaseGuessing
	game.GuessesMade = 0
	game.UpdatedAt = now

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("clue submitted",
		slog.String("game_id", string(gameID)),
		slog.String("team", string(game.CurrentTeam)),
		slog.String("word", word),
		slog.Int("count", count),
		slog.Int("turn_seq", game.TurnSeq),
	)

	return game, nil
}

// Guess handles a guesser revealing a card. The outcome determines whether
// the team keeps guessing, the turn passes, or the game ends
func (c *Controller) Guess(ctx context.Context, gameID model.GameID, playerID model.PlayerID, cardID model.CardID) (*model.GuessEvent, *model.Game, error) {
	unlock, err := c.lockTurn(ctx, gameID, playerID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}

	if game.Ended {
		return nil, nil, model.ErrGameFinished
	}
	if game.Phase != model.PhaseGuessing {
		return nil, nil, model.ErrClueNotGiven
	}

	p := game.Participant(playerID)
	if p == nil {
		return nil, nil, model.ErrNotParticipant
	}
	if p.Team != game.CurrentTeam {
		return nil, nil, model.ErrNotYourTurn
	}
	if p.Role == model.RoleCaller {
		return nil, nil, model.ErrCallerCannotGuess
	}
	if game.GuessesRemaining() <= 0 {
		return nil, nil, model.ErrGuessesExhausted
	}

	b, err := c.boardService.GetBoard(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}

	kind, err := c.boardService.Reveal(ctx, b, cardID, playerID, game.TurnSeq)
	if err != nil {
		return nil, nil, err
	}

	now := c.clock.Now()
	outcome := model.OutcomeForCard(kind, game.CurrentTeam)
	event := &model.GuessEvent{
		GameID:    gameID,
		PlayerID:  playerID,
		Team:      game.CurrentTeam,
		Word:      b.Card(cardID).Word,
		CardID:    cardID,
		Outcome:   outcome,
		TurnSeq:   game.TurnSeq,
		Timestamp: now,
	}
	if err := c.storage.AppendGuessEvent(ctx, event); err != nil {
		return nil, nil, err
	}

	game.GuessesMade++
	game.UpdatedAt = now

	switch outcome {
	case model.OutcomeAssassin:
		c.finishGame(game, game.CurrentTeam.Opponent(), now)
	case model.OutcomeCorrect:
		if b.TeamComplete(game.CurrentTeam) {
			c.finishGame(game, game.CurrentTeam, now)
		} else if game.GuessesRemaining() <= 0 {
			c.advanceTurn(game, now)
		}
	case model.OutcomeOpponent:
		if b.TeamComplete(game.CurrentTeam.Opponent()) {
			c.finishGame(game, game.CurrentTeam.Opponent(), now)
		} else {
			c.advanceTurn(game, now)
		}
	case model.OutcomeNeutral:
		c.advanceTurn(game, now)
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, nil, err
	}

	c.logger.Info("guess made",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(playerID)),
		slog.String("word", event.Word),
		slog.String("outcome", string(outcome)),
		slog.Int("turn_seq", event.TurnSeq),
	)

	return event, game, nil
}

// EndTurn passes the turn to the opposing team. The expectedSeq is the turn
// the actor believes it is ending; if the game has already moved past it the
// call is a no-op, so concurrent or repeated invocations advance the turn at
// most once. Advancement is serialized through a leased lock so timer-driven
// and player-driven passes never interleave
func (c *Controller) EndTurn(ctx context.Context, gameID model.GameID, actor model.PlayerID, expectedSeq int) (*model.Game, error) {
	unlock, err := c.lockTurn(ctx, gameID, actor)
	if err != nil {
		return nil, err
	}
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.Ended {
		return nil, model.ErrGameFinished
	}
	if game.TurnSeq != expectedSeq {
		// Someone already ended this turn
		return game, nil
	}

	actorLabel := string(actor)
	if actor == SystemActor {
		actorLabel = "system"
	} else {
		p := game.Participant(actor)
		if p == nil {
			return nil, model.ErrNotParticipant
		}
		if p.Team != game.CurrentTeam {
			return nil, model.ErrNotYourTurn
		}
	}

	now := c.clock.Now()
	c.advanceTurn(game, now)

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("turn ended",
		slog.String("game_id", string(gameID)),
		slog.String("actor", actorLabel),
		slog.Int("ended_seq", expectedSeq),
		slog.String("current_team", string(game.CurrentTeam)),
	)

	return game, nil
}

// advanceTurn flips possession and resets per-turn state. TurnSeq moves
// forward exactly once per call
func (c *Controller) advanceTurn(game *model.Game, now time.Time) {
	game.TurnSeq++
	game.CurrentTeam = game.CurrentTeam.Opponent()
	game.Phase = model.PhaseAwaitingClue
	game.ActiveClue = nil
	game.GuessesMade = 0
	game.TurnStartedAt = now
	game.UpdatedAt = now
}

func (c *Controller) finishGame(game *model.Game, winner model.Team, now time.Time) {
	game.Phase = model.PhaseFinished
	game.Winner = winner
	game.Ended = true
	game.ActiveClue = nil
	game.UpdatedAt = now

	c.logger.Info("game finished",
		slog.String("game_id", string(game.ID)),
		slog.String("winner", string(winner)),
		slog.Int("turns_played", game.TurnSeq+1),
	)
}

// AbandonGame ends a game prematurely with no winner
func (c *Controller) AbandonGame(ctx context.Context, gameID model.GameID) error {
	unlock, err := c.lockTurn(ctx, gameID, SystemActor)
	if err != nil {
		return err
	}
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	if game.Ended {
		return nil // Already finished
	}

	game.Phase = model.PhaseFinished
	game.Winner = model.TeamNone
	game.Ended = true
	game.ActiveClue = nil
	game.UpdatedAt = c.clock.Now()

	c.logger.Info("game abandoned",
		slog.String("game_id", string(gameID)),
		slog.String("lobby_code", string(game.LobbyCode)),
	)

	return c.storage.SaveGame(ctx, game)
}

// ReplaceParticipant swaps one participant for another in-place, preserving
// team and role. Used when a bot stands in for a disconnected player and
// again when the player returns
func (c *Controller) ReplaceParticipant(ctx context.Context, gameID model.GameID, oldID, newID model.PlayerID, displayName string, isBot bool) error {
	unlock, err := c.lockTurn(ctx, gameID, newID)
	if err != nil {
		return err
	}
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	if game.Ended {
		return model.ErrGameFinished
	}

	found := false
	for i := range game.Participants {
		if game.Participants[i].PlayerID == oldID {
			game.Participants[i].PlayerID = newID
			game.Participants[i].DisplayName = displayName
			game.Participants[i].IsBot = isBot
			found = true
			break
		}
	}
	if !found {
		return model.ErrNotParticipant
	}

	// An active clue given by the departed caller stays valid; only the
	// attribution moves
	if game.ActiveClue != nil && game.ActiveClue.CallerID == oldID {
		game.ActiveClue.CallerID = newID
	}

	game.UpdatedAt = c.clock.Now()
	return c.storage.SaveGame(ctx, game)
}

// GetGuessEvents returns the ordered guess log for a game
func (c *Controller) GetGuessEvents(ctx context.Context, gameID model.GameID) ([]model.GuessEvent, error) {
	return c.storage.GetGuessEvents(ctx, gameID)
}

// CreateGameSummary creates a summary record for a completed game
func (c *Controller) CreateGameSummary(ctx context.Context, gameID model.GameID) (*model.GameSummary, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if !game.Ended {
		return nil, model.ErrGameInProgress
	}

	return &model.GameSummary{
		ID:          gameID,
		Winner:      game.Winner,
		TurnsPlayed: game.TurnSeq + 1,
		CompletedAt: game.UpdatedAt,
	}, nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateGame(ctx context.Context, lobbyCode model.LobbyCode, mode model.Mode, members []model.LobbyMember) (*model.Game, error)
	GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	VisibleBoard(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.Board, error)
	SubmitClue(ctx context.Context, gameID model.GameID, playerID model.PlayerID, word string, count int) (*model.Game, error)
	Guess(ctx context.Context, gameID model.GameID, playerID model.PlayerID, cardID model.CardID) (*model.GuessEvent, *model.Game, error)
	EndTurn(ctx context.Context, gameID model.GameID, actor model.PlayerID, expectedSeq int) (*model.Game, error)
	AbandonGame(ctx context.Context, gameID model.GameID) error
	ReplaceParticipant(ctx context.Context, gameID model.GameID, oldID, newID model.PlayerID, displayName string, isBot bool) error
	GetGuessEvents(ctx context.Context, gameID model.GameID) ([]model.GuessEvent, error)
	CreateGameSummary(ctx context.Context, gameID model.GameID) (*model.GameSummary, error)
}

var _ ControllerInterface = (*Controller)(nil)
