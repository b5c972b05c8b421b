package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/medge/codewords/internal/dependencies/clock"
	"github.com/medge/codewords/internal/dependencies/random"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/game"
	"github.com/medge/codewords/internal/services/lobby"
	"github.com/medge/codewords/internal/services/wordlist"
	"github.com/medge/codewords/internal/storage"
)

const (
	// PlayerIDAlphabet is the character set for generating bot player IDs
	PlayerIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	// PlayerIDLength is the length of generated bot player IDs
	PlayerIDLength = 16
	// MaxBotIterations bounds the ProcessBotActions loop
	MaxBotIterations = 1000
	// clueCandidatePool is how many wordlist words a bot caller considers
	clueCandidatePool = 50
)

// BotActionType identifies the kind of action a bot took
type BotActionType string

const (
	ActionClue         BotActionType = "clue"
	ActionGuess        BotActionType = "guess"
	ActionEndTurn      BotActionType = "end_turn"
	ActionGameComplete BotActionType = "game_complete"
)

// BotAction records a single action taken during ProcessBotActions
type BotAction struct {
	Type     BotActionType
	PlayerID model.PlayerID
	Word     string
	Count    int
	CardID   model.CardID
	Outcome  model.GuessOutcome
}

// Service manages bot players: seating them in lobbies and driving their
// turns whenever no connected human is expected to act
type Service struct {
	storage         storage.Storage
	lobbyController *lobby.Controller
	gameController  *game.Controller
	wordlistService *wordlist.Service
	strategies      map[string]Strategy
	clock           clock.Clock
	random          random.Random
	logger          *slog.Logger
}

func NewService(
	store storage.Storage,
	lobbyController *lobby.Controller,
	gameController *game.Controller,
	wordlistService *wordlist.Service,
	strategies map[string]Strategy,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:         store,
		lobbyController: lobbyController,
		gameController:  gameController,
		wordlistService: wordlistService,
		strategies:      strategies,
		clock:           clk,
		random:          rnd,
		logger:          logger.With(slog.String("component", "bot-service")),
	}
}

// CreateBotPlayer creates and persists a bot player record
func (s *Service) CreateBotPlayer(ctx context.Context, displayName string, strategy string) (*model.Player, error) {
	player := &model.Player{
		ID:          model.PlayerID("bot-" + s.random.String(PlayerIDLength, PlayerIDAlphabet)),
		DisplayName: displayName,
		IsGuest:     true,
		IsBot:       true,
		BotStrategy: strategy,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// hostEditable checks that the requester hosts the lobby and that no game
// is running, the precondition for adding or removing bots
func hostEditable(lob *model.Lobby, requestingPlayerID model.PlayerID) error {
	host := lob.GetHost()
	if host == nil || host.Player.ID != requestingPlayerID {
		return model.ErrNotHost
	}
	if lob.State == model.LobbyStateInGame {
		return model.ErrGameInProgress
	}
	return nil
}

// AddBotToLobby creates a bot player and seats it on the given team.
// Only the lobby host can add bots, and only while in waiting state
func (s *Service) AddBotToLobby(ctx context.Context, code model.LobbyCode, requestingPlayerID model.PlayerID, team model.Team, role model.Role, strategy string) (*model.Player, error) {
	if _, ok := s.strategies[strategy]; !ok {
		return nil, fmt.Errorf("unknown bot strategy: %s", strategy)
	}

	lob, err := s.lobbyController.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := hostEditable(lob, requestingPlayerID); err != nil {
		return nil, err
	}

	// Name bots sequentially within the lobby
	botCount := 0
	for _, m := range lob.Members {
		if m.Player.IsBot {
			botCount++
		}
	}

	bot, err := s.CreateBotPlayer(ctx, fmt.Sprintf("Bot %d", botCount+1), strategy)
	if err != nil {
		return nil, err
	}

	if err := s.lobbyController.JoinLobby(ctx, code, *bot); err != nil {
		return nil, err
	}
	if err := s.lobbyController.SetTeamRole(ctx, code, bot.ID, team, role); err != nil {
		return nil, err
	}

	s.logger.Info("bot added to lobby",
		slog.String("lobby_code", string(code)),
		slog.String("bot_id", string(bot.ID)),
		slog.String("team", string(team)),
		slog.String("role", string(role)),
	)

	return bot, nil
}

// RemoveBotFromLobby removes a bot player from the lobby.
// Only the lobby host can remove bots, and only while in waiting state
func (s *Service) RemoveBotFromLobby(ctx context.Context, code model.LobbyCode, requestingPlayerID model.PlayerID, botPlayerID model.PlayerID) error {
	lob, err := s.lobbyController.GetLobby(ctx, code)
	if err != nil {
		return err
	}
	if err := hostEditable(lob, requestingPlayerID); err != nil {
		return err
	}

	member := lob.GetMember(botPlayerID)
	if member == nil {
		return model.ErrNotInLobby
	}
	if !member.Player.IsBot {
		return model.ErrNotBot
	}

	return s.lobbyController.LeaveLobby(ctx, code, botPlayerID)
}

// ProcessBotActions executes bot actions in a cascading loop until a human
// is next to act or the game ends. It returns all actions taken so handlers
// can broadcast updates
func (s *Service) ProcessBotActions(ctx context.Context, gameID model.GameID) ([]BotAction, error) {
	var actions []BotAction

	for i := 0; i < MaxBotIterations; i++ {
		g, err := s.gameController.GetGame(ctx, gameID)
		if err != nil {
			return actions, err
		}

		if g.Ended {
			if len(actions) > 0 {
				actions = append(actions, BotAction{Type: ActionGameComplete})
			}
			break
		}

		if g.Phase == model.PhaseAwaitingClue {
			caller := g.TeamCaller(g.CurrentTeam)
			if caller == nil || !caller.IsBot {
				break // Human's clue to give
			}

			action, err := s.giveClue(ctx, g, caller)
			if err != nil {
				return actions, err
			}
			actions = append(actions, action)
			continue
		}

		if g.Phase == model.PhaseGuessing {
			guesser := s.actingBotGuesser(g)
			if guesser == nil {
				break // A human guesser drives this turn
			}

			player, err := s.storage.GetPlayer(ctx, guesser.PlayerID)
			if err != nil {
				return actions, err
			}
			strategy := s.strategyForPlayer(player)

			if !strategy.ContinueGuessing(g) {
				if _, err := s.gameController.EndTurn(ctx, gameID, guesser.PlayerID, g.TurnSeq); err != nil {
					return actions, err
				}
				actions = append(actions, BotAction{
					Type:     ActionEndTurn,
					PlayerID: guesser.PlayerID,
				})
				continue
			}

			board, err := s.gameController.VisibleBoard(ctx, gameID, guesser.PlayerID)
			if err != nil {
				return actions, err
			}

			cardID := strategy.ChooseCard(g, board)
			event, _, err := s.gameController.Guess(ctx, gameID, guesser.PlayerID, cardID)
			if err != nil {
				return actions, err
			}

			actions = append(actions, BotAction{
				Type:     ActionGuess,
				PlayerID: guesser.PlayerID,
				Word:     event.Word,
				CardID:   cardID,
				Outcome:  event.Outcome,
			})
			continue
		}

		break // Finished or unknown phase
	}

	return actions, nil
}

// giveClue has a bot caller pick and submit this turn's clue
func (s *Service) giveClue(ctx context.Context, g *model.Game, caller *model.Participant) (BotAction, error) {
	player, err := s.storage.GetPlayer(ctx, caller.PlayerID)
	if err != nil {
		return BotAction{}, err
	}
	strategy := s.strategyForPlayer(player)

	board, err := s.gameController.VisibleBoard(ctx, g.ID, caller.PlayerID)
	if err != nil {
		return BotAction{}, err
	}

	candidates, err := s.wordlistService.Deal(g.Mode, clueCandidatePool, s.random)
	if err != nil && !errors.Is(err, model.ErrWordlistInsufficient) {
		return BotAction{}, err
	}

	word, count := strategy.ChooseClue(g, board, candidates)
	if word == "" {
		// A small or fully board-overlapping wordlist leaves no usable
		// candidate. Fall back to a synthetic clue so the turn cannot
		// stall on a bot caller
		word, count = fallbackClue(g.Mode, board), 1
	}
	if word == "" {
		return BotAction{}, model.ErrWordlistInsufficient
	}

	if _, err := s.gameController.SubmitClue(ctx, g.ID, caller.PlayerID, word, count); err != nil {
		return BotAction{}, err
	}

	return BotAction{
		Type:     ActionClue,
		PlayerID: caller.PlayerID,
		Word:     word,
		Count:    count,
	}, nil
}

// fallbackClue builds a legal stand-in clue: a run of one letter longer than
// every board word, which can neither contain nor be contained in any of them
func fallbackClue(mode model.Mode, b *model.Board) string {
	longest := 0
	for _, c := range b.Cards {
		if len(c.Word) > longest {
			longest = len(c.Word)
		}
	}

	letters := []string{"z", "q", "x"}
	if mode == model.ModeRussian {
		letters = []string{"я", "ф", "ю"}
	}
	for _, letter := range letters {
		word := strings.Repeat(letter, longest/len(letter)+1)
		if !b.WordOverlaps(word) {
			return word
		}
	}
	return ""
}

// actingBotGuesser returns the bot guesser who should act, or nil if any
// human guesser on the current team is expected to drive the turn
func (s *Service) actingBotGuesser(g *model.Game) *model.Participant {
	var bot *model.Participant
	for i := range g.Participants {
		p := &g.Participants[i]
		if p.Team != g.CurrentTeam || p.Role != model.RoleGuesser {
			continue
		}
		if !p.IsBot {
			return nil
		}
		if bot == nil {
			bot = p
		}
	}
	return bot
}

// strategyForPlayer returns the strategy a bot player was created with,
// or any registered strategy if that name no longer exists
func (s *Service) strategyForPlayer(player *model.Player) Strategy {
	if st, ok := s.strategies[player.BotStrategy]; ok {
		return st
	}
	for _, st := range s.strategies {
		return st
	}
	return nil
}
