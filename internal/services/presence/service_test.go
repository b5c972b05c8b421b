package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/medge/codewords/internal/dependencies/mocks"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/board"
	"github.com/medge/codewords/internal/services/bot"
	"github.com/medge/codewords/internal/services/game"
	"github.com/medge/codewords/internal/services/lobby"
	"github.com/medge/codewords/internal/services/wordlist"
	"github.com/medge/codewords/internal/storage/memory"
	"github.com/medge/codewords/internal/testutil"
)

var testWords = []string{
	"ant", "bear", "cat", "dog", "eel", "fox", "goat", "hawk", "ibis",
	"jay", "koala", "lion", "mole", "newt", "owl", "pig", "quail",
	"rat", "seal", "toad", "urchin", "vole", "wasp", "yak", "zebra",
}

type ServiceSuite struct {
	suite.Suite
	storage         *memory.Storage
	clock           *mocks.MockClock
	random          *mocks.MockRandom
	gameController  *game.Controller
	lobbyController *lobby.Controller
	botService      *bot.Service
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
	wordlistSvc := wordlist.New(s.storage)
	s.Require().NoError(wordlistSvc.LoadWords(model.ModeEnglish, testWords))
	boardService := board.New(s.storage, wordlistSvc, s.random)
	s.gameController = game.NewController(s.storage, boardService, s.clock, s.random, logger)
	s.lobbyController = lobby.NewController(s.storage, s.gameController, s.clock, s.random)
	strategies := map[string]bot.Strategy{bot.StrategyRandom: bot.NewRandomStrategy(s.random)}
	s.botService = bot.NewService(s.storage, s.lobbyController, s.gameController, wordlistSvc, strategies, s.clock, s.random, logger)
	s.service = NewService(s.storage, s.gameController, s.botService, nil, nil, nil, DefaultConfig(), s.clock, logger)
}

// startGame creates a lobby with four seated humans and starts a game.
// Red holds the opening turn
func (s *ServiceSuite) startGame() *model.Game {
	s.random.QueueString("LOBBY1")
	lob, err := s.lobbyController.CreateLobby(s.ctx, model.Player{ID: "alice", DisplayName: "Alice"})
	s.Require().NoError(err)

	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, lob.Code, model.Player{ID: "bob", DisplayName: "Bob"}))
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, lob.Code, model.Player{ID: "carol", DisplayName: "Carol"}))
	s.Require().NoError(s.lobbyController.JoinLobby(s.ctx, lob.Code, model.Player{ID: "dave", DisplayName: "Dave"}))

	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, lob.Code, "alice", model.TeamRed, model.RoleCaller))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, lob.Code, "bob", model.TeamRed, model.RoleGuesser))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, lob.Code, "carol", model.TeamBlue, model.RoleCaller))
	s.Require().NoError(s.lobbyController.SetTeamRole(s.ctx, lob.Code, "dave", model.TeamBlue, model.RoleGuesser))

	s.random.QueueString("GAME00000001")
	g, err := s.lobbyController.StartGame(s.ctx, lob.Code, "alice")
	s.Require().NoError(err)
	s.Require().Equal(model.TeamRed, g.CurrentTeam)
	return g
}

func (s *ServiceSuite) presenceFor(gameID model.GameID, playerID model.PlayerID) *model.PresenceRecord {
	record, err := s.storage.GetPresence(s.ctx, gameID, playerID)
	s.Require().NoError(err)
	return record
}

// Heartbeat and Touch tests

func (s *ServiceSuite) TestHeartbeatCreatesRecord() {
	g := s.startGame()

	s.Require().NoError(s.service.Heartbeat(s.ctx, g.ID, "alice"))

	record := s.presenceFor(g.ID, "alice")
	s.Equal(model.StatusConnected, record.Status)
	s.Equal(s.clock.Now(), record.LastHeartbeat)
}

func (s *ServiceSuite) TestHeartbeatRejectsNonParticipant() {
	g := s.startGame()

	err := s.service.Heartbeat(s.ctx, g.ID, "mallory")
	s.ErrorIs(err, model.ErrNotParticipant)
}

func (s *ServiceSuite) TestHeartbeatRejectsFinishedGame() {
	g := s.startGame()
	s.Require().NoError(s.gameController.AbandonGame(s.ctx, g.ID))

	err := s.service.Heartbeat(s.ctx, g.ID, "alice")
	s.ErrorIs(err, model.ErrGameFinished)
}

func (s *ServiceSuite) TestTouchUpdatesActivity() {
	g := s.startGame()
	s.Require().NoError(s.service.Heartbeat(s.ctx, g.ID, "alice"))
	first := s.clock.Now()

	s.clock.Advance(10 * time.Second)
	s.Require().NoError(s.service.Touch(s.ctx, g.ID, "alice"))

	record := s.presenceFor(g.ID, "alice")
	s.Equal(first.Add(10*time.Second), record.LastHeartbeat)
	s.Equal(first.Add(10*time.Second), record.LastActivity)
}

// Sweep tests

func (s *ServiceSuite) heartbeatAll(gameID model.GameID) {
	for _, id := range []model.PlayerID{"alice", "bob", "carol", "dave"} {
		s.Require().NoError(s.service.Heartbeat(s.ctx, gameID, id))
	}
}

func (s *ServiceSuite) TestSweepSeedsRecordsForSilentPlayers() {
	g := s.startGame()

	s.Require().NoError(s.service.Sweep(s.ctx, g.ID))

	records, err := s.service.GetPresenceForGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Len(records, 4)
	for _, record := range records {
		s.Equal(model.StatusConnected, record.Status)
	}

	// No one has been quiet long enough to lose a seat
	current, err := s.gameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	for _, p := range current.Participants {
		s.False(p.IsBot)
	}
}

func (s *ServiceSuite) TestSweepSubstitutesQuietCurrentTeamPlayers() {
	g := s.startGame()
	s.heartbeatAll(g.ID)
	s.random.QueueString("BOTALICE0001", "BOTBOB000001")

	s.clock.Advance(31 * time.Second)
	s.Require().NoError(s.service.Sweep(s.ctx, g.ID))

	current, err := s.gameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)

	// Red holds the turn: both red players are past the active allowance
	alice := current.Participant("bot-BOTALICE0001")
	s.Require().NotNil(alice)
	s.True(alice.IsBot)
	s.Equal("Alice (bot)", alice.DisplayName)
	s.Equal(model.TeamRed, alice.Team)
	s.Equal(model.RoleCaller, alice.Role)

	bob := current.Participant("bot-BOTBOB000001")
	s.Require().NotNil(bob)
	s.True(bob.IsBot)

	// Blue players are inside the idle allowance and keep their seats
	s.NotNil(current.Participant("carol"))
	s.NotNil(current.Participant("dave"))

	record := s.presenceFor(g.ID, "alice")
	s.Equal(model.StatusDisconnected, record.Status)
}

func (s *ServiceSuite) TestSweepMarksTimeoutWhileSubstitutionContested() {
	g := s.startGame()
	s.heartbeatAll(g.ID)

	// Another sweeper holds alice's substitution lease, so this sweep can
	// only note the timeout; the seat swap belongs to the lease holder
	_, acquired, err := s.storage.AcquireSubstitutionLock(s.ctx, g.ID, "alice", "other-sweeper", time.Minute)
	s.Require().NoError(err)
	s.Require().True(acquired)

	s.random.QueueString("BOTBOB000001")
	s.clock.Advance(31 * time.Second)
	s.Require().NoError(s.service.Sweep(s.ctx, g.ID))

	s.Equal(model.StatusTimeout, s.presenceFor(g.ID, "alice").Status)
	s.Equal(model.StatusDisconnected, s.presenceFor(g.ID, "bob").Status)

	current, err := s.gameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.NotNil(current.Participant("alice"))
	s.Nil(current.Participant("bob"))
}

func (s *ServiceSuite) TestSweepSubstitutesEveryoneAfterIdleTimeout() {
	g := s.startGame()
	s.heartbeatAll(g.ID)
	s.random.QueueString("BOT000000001", "BOT000000002", "BOT000000003", "BOT000000004")

	s.clock.Advance(121 * time.Second)
	s.Require().NoError(s.service.Sweep(s.ctx, g.ID))

	current, err := s.gameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	for _, p := range current.Participants {
		s.True(p.IsBot)
	}
}

func (s *ServiceSuite) TestSweepIsIdempotent() {
	g := s.startGame()
	s.heartbeatAll(g.ID)
	s.random.QueueString("BOTALICE0001", "BOTBOB000001")

	s.clock.Advance(31 * time.Second)
	s.Require().NoError(s.service.Sweep(s.ctx, g.ID))
	s.Require().NoError(s.service.Sweep(s.ctx, g.ID))

	current, err := s.gameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Len(current.Participants, 4)

	botCount := 0
	for _, p := range current.Participants {
		if p.IsBot {
			botCount++
		}
	}
	s.Equal(2, botCount)
}

func (s *ServiceSuite) TestSweepCleansUpFinishedGame() {
	g := s.startGame()
	s.heartbeatAll(g.ID)
	s.Require().NoError(s.gameController.AbandonGame(s.ctx, g.ID))

	s.Require().NoError(s.service.Sweep(s.ctx, g.ID))

	records, err := s.service.GetPresenceForGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Empty(records)
}

// Resume tests

func (s *ServiceSuite) substituteAlice(g *model.Game) model.PlayerID {
	s.heartbeatAll(g.ID)
	s.random.QueueString("BOTALICE0001", "BOTBOB000001")
	s.clock.Advance(31 * time.Second)
	s.Require().NoError(s.service.Sweep(s.ctx, g.ID))
	return model.PlayerID("bot-BOTALICE0001")
}

func (s *ServiceSuite) TestHeartbeatResumesSubstitutedPlayer() {
	g := s.startGame()
	botID := s.substituteAlice(g)

	s.Require().NoError(s.service.Heartbeat(s.ctx, g.ID, "alice"))

	current, err := s.gameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	alice := current.Participant("alice")
	s.Require().NotNil(alice)
	s.False(alice.IsBot)
	s.Equal("Alice", alice.DisplayName)
	s.Equal(model.TeamRed, alice.Team)
	s.Equal(model.RoleCaller, alice.Role)
	s.Nil(current.Participant(botID))

	// The stand-in bot and the substitution record are both gone
	_, err = s.storage.GetPlayer(s.ctx, botID)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.storage.GetSubstitution(s.ctx, g.ID, "alice")
	s.ErrorIs(err, model.ErrSubstitutionNotFound)

	record := s.presenceFor(g.ID, "alice")
	s.Equal(model.StatusConnected, record.Status)
}

func (s *ServiceSuite) TestResumeReattributesActiveClue() {
	g := s.startGame()
	// Alice gives a clue, then times out; the bot inherits the clue and
	// handing it back on resume keeps the attribution straight
	_, err := s.gameController.SubmitClue(s.ctx, g.ID, "alice", "insect", 2)
	s.Require().NoError(err)

	botID := s.substituteAlice(g)
	mid, err := s.gameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Require().NotNil(mid.ActiveClue)
	s.Equal(botID, mid.ActiveClue.CallerID)

	s.Require().NoError(s.service.Resume(s.ctx, g.ID, "alice"))

	current, err := s.gameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Require().NotNil(current.ActiveClue)
	s.Equal(model.PlayerID("alice"), current.ActiveClue.CallerID)
}

func (s *ServiceSuite) TestResumeIsNoopWithoutSubstitution() {
	g := s.startGame()

	s.NoError(s.service.Resume(s.ctx, g.ID, "alice"))
}
