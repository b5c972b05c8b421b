package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/medge/codewords/internal/dependencies/mocks"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/board"
	"github.com/medge/codewords/internal/services/game"
	"github.com/medge/codewords/internal/services/lobby"
	"github.com/medge/codewords/internal/services/wordlist"
	"github.com/medge/codewords/internal/storage/memory"
	"github.com/medge/codewords/internal/testutil"
)

// testWords pins the deal: with zeroed shuffles cards 0-8 are the starting
// team's, 9-16 the second team's, 17-23 neutral, 24 the assassin. The spares
// past the board feed bot clue candidates
var testWords = []string{
	"ant", "bear", "cat", "dog", "eel", "fox", "goat", "hawk", "ibis",
	"jay", "koala", "lion", "mole", "newt", "owl", "pig", "quail",
	"rat", "seal", "toad", "urchin", "vole", "wasp", "yak", "zebra",
	"apple", "brick", "cloud", "delta", "ember", "flint", "grape", "house",
	"ivory", "japan", "knife", "lemon", "mango", "night", "ocean", "piano",
	"queen", "river", "stone", "tiger", "union", "vivid", "wheat", "xenon",
	"youth", "zesty",
}

type ServiceSuite struct {
	suite.Suite
	storage         *memory.Storage
	clock           *mocks.MockClock
	random          *mocks.MockRandom
	wordlistSvc     *wordlist.Service
	gameController  *game.Controller
	lobbyController *lobby.Controller
	service         *Service
	ctx             context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.storage = memory.NewWithClock(s.clock)
	s.ctx = context.Background()

	logger := testutil.NopLogger()
	s.wordlistSvc = wordlist.New(s.storage)
	s.Require().NoError(s.wordlistSvc.LoadWords(model.ModeEnglish, testWords))
	boardService := board.New(s.storage, s.wordlistSvc, s.random)
	s.gameController = game.NewController(s.storage, boardService, s.clock, s.random, logger)
	s.lobbyController = lobby.NewController(s.storage, s.gameController, s.clock, s.random)
	strategies := map[string]Strategy{StrategyRandom: NewRandomStrategy(s.random)}
	s.service = NewService(s.storage, s.lobbyController, s.gameController, s.wordlistSvc, strategies, s.clock, s.random, logger)
}

func (s *ServiceSuite) createLobby() *model.Lobby {
	s.random.QueueString("LOBBY1")
	lob, err := s.lobbyController.CreateLobby(s.ctx, model.Player{ID: "alice", DisplayName: "Alice"})
	s.Require().NoError(err)
	return lob
}

func (s *ServiceSuite) addBot(code model.LobbyCode, team model.Team, role model.Role, botID string) *model.Player {
	s.random.QueueString(botID)
	b, err := s.service.AddBotToLobby(s.ctx, code, "alice", team, role, StrategyRandom)
	s.Require().NoError(err)
	return b
}

func (s *ServiceSuite) startGame(code model.LobbyCode) *model.Game {
	s.random.QueueString("GAME00000001")
	g, err := s.lobbyController.StartGame(s.ctx, code, "alice")
	s.Require().NoError(err)
	s.Require().Equal(model.TeamRed, g.CurrentTeam)
	return g
}

// CreateBotPlayer and lobby management tests

func (s *ServiceSuite) TestCreateBotPlayer() {
	s.random.QueueString("abc123abc123abc1")

	player, err := s.service.CreateBotPlayer(s.ctx, "Bot 1", StrategyRandom)
	s.Require().NoError(err)

	s.Equal(model.PlayerID("bot-abc123abc123abc1"), player.ID)
	s.Equal("Bot 1", player.DisplayName)
	s.True(player.IsBot)
	s.True(player.IsGuest)
	s.Equal(StrategyRandom, player.BotStrategy)

	saved, err := s.storage.GetPlayer(s.ctx, player.ID)
	s.Require().NoError(err)
	s.True(saved.IsBot)
}

func (s *ServiceSuite) TestAddBotToLobbyNamesSequentially() {
	lob := s.createLobby()

	first := s.addBot(lob.Code, model.TeamRed, model.RoleCaller, "bot000000000001")
	second := s.addBot(lob.Code, model.TeamBlue, model.RoleGuesser, "bot000000000002")

	s.Equal("Bot 1", first.DisplayName)
	s.Equal("Bot 2", second.DisplayName)

	updated, err := s.lobbyController.GetLobby(s.ctx, lob.Code)
	s.Require().NoError(err)
	member := updated.GetMember(first.ID)
	s.Require().NotNil(member)
	s.Equal(model.TeamRed, member.Team)
	s.Equal(model.RoleCaller, member.Role)
}

func (s *ServiceSuite) TestAddBotToLobbyRequiresHost() {
	lob := s.createLobby()
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, lob.Code, model.Player{ID: "bob"}))

	_, err := s.service.AddBotToLobby(s.ctx, lob.Code, "bob", model.TeamRed, model.RoleGuesser, StrategyRandom)
	s.ErrorIs(err, model.ErrNotHost)
}

func (s *ServiceSuite) TestAddBotToLobbyRejectsUnknownStrategy() {
	lob := s.createLobby()

	_, err := s.service.AddBotToLobby(s.ctx, lob.Code, "alice", model.TeamRed, model.RoleGuesser, "minimax")
	s.Error(err)
}

func (s *ServiceSuite) TestAddBotToLobbyRejectedDuringGame() {
	lob := s.createLobby()
	s.seatHumans(lob.Code)
	s.startGame(lob.Code)

	_, err := s.service.AddBotToLobby(s.ctx, lob.Code, "alice", model.TeamRed, model.RoleGuesser, StrategyRandom)
	s.ErrorIs(err, model.ErrGameInProgress)
}

func (s *ServiceSuite) TestRemoveBotFromLobby() {
	lob := s.createLobby()
	b := s.addBot(lob.Code, model.TeamRed, model.RoleGuesser, "bot000000000001")

	s.Require().NoError(s.service.RemoveBotFromLobby(s.ctx, lob.Code, "alice", b.ID))

	updated, err := s.lobbyController.GetLobby(s.ctx, lob.Code)
	s.Require().NoError(err)
	s.Nil(updated.GetMember(b.ID))
}

func (s *ServiceSuite) TestRemoveBotFromLobbyRejectsHuman() {
	lob := s.createLobby()
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, lob.Code, model.Player{ID: "bob"}))

	err := s.service.RemoveBotFromLobby(s.ctx, lob.Code, "alice", "bob")
	s.ErrorIs(err, model.ErrNotBot)
}

// ProcessBotActions tests

// seatHumans seats alice and bob on red, carol and dave on blue
func (s *ServiceSuite) seatHumans(code model.LobbyCode) {
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, code, model.Player{ID: "bob", DisplayName: "Bob"}))
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, code, model.Player{ID: "carol", DisplayName: "Carol"}))
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, code, model.Player{ID: "dave", DisplayName: "Dave"}))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, code, "alice", model.TeamRed, model.RoleCaller))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, code, "bob", model.TeamRed, model.RoleGuesser))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, code, "carol", model.TeamBlue, model.RoleCaller))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, code, "dave", model.TeamBlue, model.RoleGuesser))
}

func (s *ServiceSuite) TestProcessBotActionsStopsForHumanCaller() {
	lob := s.createLobby()
	s.seatHumans(lob.Code)
	g := s.startGame(lob.Code)

	actions, err := s.service.ProcessBotActions(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Empty(actions)
}

func (s *ServiceSuite) TestProcessBotActionsBotCallerGivesClue() {
	lob := s.createLobby()
	caller := s.addBot(lob.Code, model.TeamRed, model.RoleCaller, "redcaller0000001")
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, lob.Code, model.Player{ID: "bob", DisplayName: "Bob"}))
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, lob.Code, model.Player{ID: "carol", DisplayName: "Carol"}))
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, lob.Code, model.Player{ID: "dave", DisplayName: "Dave"}))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, lob.Code, "bob", model.TeamRed, model.RoleGuesser))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, lob.Code, "carol", model.TeamBlue, model.RoleCaller))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, lob.Code, "dave", model.TeamBlue, model.RoleGuesser))
	g := s.startGame(lob.Code)

	actions, err := s.service.ProcessBotActions(s.ctx, g.ID)
	s.Require().NoError(err)

	// The zeroed candidate deal makes the first off-board word the clue;
	// a human guesser then drives the turn
	s.Require().Len(actions, 1)
	s.Equal(ActionClue, actions[0].Type)
	s.Equal(caller.ID, actions[0].PlayerID)
	s.Equal("apple", actions[0].Word)
	s.Equal(1, actions[0].Count)

	current, err := s.gameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseGuessing, current.Phase)
}

func (s *ServiceSuite) TestProcessBotActionsFallsBackWhenWordlistExhausted() {
	lob := s.createLobby()
	caller := s.addBot(lob.Code, model.TeamRed, model.RoleCaller, "redcaller0000001")
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, lob.Code, model.Player{ID: "bob", DisplayName: "Bob"}))
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, lob.Code, model.Player{ID: "carol", DisplayName: "Carol"}))
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, lob.Code, model.Player{ID: "dave", DisplayName: "Dave"}))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, lob.Code, "bob", model.TeamRed, model.RoleGuesser))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, lob.Code, "carol", model.TeamBlue, model.RoleCaller))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, lob.Code, "dave", model.TeamBlue, model.RoleGuesser))

	// A wordlist with exactly the board words leaves no candidate a clue can
	// use, so the bot caller falls back to a synthetic word
	s.Require().NoError(s.wordlistSvc.LoadWords(model.ModeEnglish, testWords[:25]))
	g := s.startGame(lob.Code)

	actions, err := s.service.ProcessBotActions(s.ctx, g.ID)
	s.Require().NoError(err)

	s.Require().Len(actions, 1)
	s.Equal(ActionClue, actions[0].Type)
	s.Equal(caller.ID, actions[0].PlayerID)
	s.Equal("zzzzzzz", actions[0].Word) // one letter longer than "urchin"
	s.Equal(1, actions[0].Count)

	current, err := s.gameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseGuessing, current.Phase)
}

func (s *ServiceSuite) TestProcessBotActionsBotGuesserPlaysOutClue() {
	lob := s.createLobby()
	guesser := s.addBot(lob.Code, model.TeamRed, model.RoleGuesser, "redguess00000001")
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, lob.Code, model.Player{ID: "carol", DisplayName: "Carol"}))
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, lob.Code, model.Player{ID: "dave", DisplayName: "Dave"}))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, lob.Code, "alice", model.TeamRed, model.RoleCaller))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, lob.Code, "carol", model.TeamBlue, model.RoleCaller))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, lob.Code, "dave", model.TeamBlue, model.RoleGuesser))
	g := s.startGame(lob.Code)

	_, err := s.gameController.SubmitClue(s.ctx, g.ID, "alice", "apple", 2)
	s.Require().NoError(err)

	// Zeroed card picks reveal the board in order: two red cards, then the
	// exhausted clue hands the turn to blue
	actions, err := s.service.ProcessBotActions(s.ctx, g.ID)
	s.Require().NoError(err)

	s.Require().Len(actions, 2)
	s.Equal(ActionGuess, actions[0].Type)
	s.Equal(guesser.ID, actions[0].PlayerID)
	s.Equal("ant", actions[0].Word)
	s.Equal(model.OutcomeCorrect, actions[0].Outcome)
	s.Equal("bear", actions[1].Word)
	s.Equal(model.OutcomeCorrect, actions[1].Outcome)

	current, err := s.gameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(model.TeamBlue, current.CurrentTeam)
	s.Equal(1, current.TurnSeq)
	s.Equal(model.PhaseAwaitingClue, current.Phase)
}

func (s *ServiceSuite) TestProcessBotActionsDefersToHumanGuesser() {
	lob := s.createLobby()
	s.addBot(lob.Code, model.TeamRed, model.RoleGuesser, "redguess00000001")
	s.seatHumans(lob.Code)
	g := s.startGame(lob.Code)

	_, err := s.gameController.SubmitClue(s.ctx, g.ID, "alice", "apple", 2)
	s.Require().NoError(err)

	// Bob is a human red guesser, so the bot teammate stays quiet
	actions, err := s.service.ProcessBotActions(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Empty(actions)
}

func (s *ServiceSuite) TestProcessBotActionsPlaysFullBotGame() {
	lob := s.createLobby()
	s.addBot(lob.Code, model.TeamRed, model.RoleCaller, "redcaller0000001")
	s.addBot(lob.Code, model.TeamRed, model.RoleGuesser, "redguess00000001")
	s.addBot(lob.Code, model.TeamBlue, model.RoleCaller, "bluecaller000001")
	s.addBot(lob.Code, model.TeamBlue, model.RoleGuesser, "blueguess0000001")
	g := s.startGame(lob.Code)

	actions, err := s.service.ProcessBotActions(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Require().NotEmpty(actions)
	s.Equal(ActionGameComplete, actions[len(actions)-1].Type)

	current, err := s.gameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.True(current.Ended)
	s.NotEqual(model.TeamNone, current.Winner)
}
