package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/medge/codewords/internal/dependencies/mocks"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/board"
	"github.com/medge/codewords/internal/services/wordlist"
	"github.com/medge/codewords/internal/storage/memory"
	"github.com/medge/codewords/internal/testutil"
)

// testWords is loaded in a known order. With the mock random queued for an
// identity shuffle, cards 0-8 belong to the starting team, 9-16 to the
// second team, 17-23 are neutral and 24 is the assassin
var testWords = []string{
	"ant", "bear", "cat", "dog", "eel", "fox", "goat", "hawk", "ibis",
	"jay", "koala", "lion", "mole", "newt", "owl", "pig", "quail",
	"rat", "seal", "toad", "urchin", "vole", "wasp", "yak",
	"zebra",
	"apple", "brick", "cloud", "delta", "ember",
}

type ControllerSuite struct {
	suite.Suite
	storage      *memory.Storage
	wordlistSvc  *wordlist.Service
	boardService *board.Service
	clock        *mocks.MockClock
	random       *mocks.MockRandom
	controller   *Controller
	ctx          context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.wordlistSvc = wordlist.New(s.storage)
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.boardService = board.New(s.storage, s.wordlistSvc, s.random)
	s.controller = NewController(s.storage, s.boardService, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()

	s.Require().NoError(s.wordlistSvc.LoadWords(model.ModeEnglish, testWords))
}

func (s *ControllerSuite) members() []model.LobbyMember {
	return []model.LobbyMember{
		{Player: model.Player{ID: "alice", DisplayName: "Alice"}, Team: model.TeamRed, Role: model.RoleCaller, IsHost: true},
		{Player: model.Player{ID: "bob", DisplayName: "Bob"}, Team: model.TeamRed, Role: model.RoleGuesser},
		{Player: model.Player{ID: "carol", DisplayName: "Carol"}, Team: model.TeamBlue, Role: model.RoleCaller},
		{Player: model.Player{ID: "dave", DisplayName: "Dave"}, Team: model.TeamBlue, Role: model.RoleGuesser},
		{Player: model.Player{ID: "eve", DisplayName: "Eve"}, Role: model.RoleSpectator},
	}
}

// queueDeal primes the mock random so a created game gets a deterministic
// ID, the requested starting team, the test words in order and an identity
// kind shuffle
func (s *ControllerSuite) queueDeal(startingTeam model.Team) {
	s.random.QueueString("GAME00000001")
	if startingTeam == model.TeamBlue {
		s.random.QueueIntn(1)
	} else {
		s.random.QueueIntn(0)
	}
	for i := 0; i < model.BoardSize; i++ {
		s.random.QueueIntn(0)
	}
	for i := model.BoardSize - 1; i > 0; i-- {
		s.random.QueueIntn(i)
	}
}

func (s *ControllerSuite) createGame() *model.Game {
	s.queueDeal(model.TeamRed)
	game, err := s.controller.CreateGame(s.ctx, "LOBBY1", model.ModeEnglish, s.members())
	s.Require().NoError(err)
	return game
}

// CreateGame tests

func (s *ControllerSuite) TestCreateGameSucceeds() {
	game := s.createGame()

	s.Equal(model.GameID("GAME00000001"), game.ID)
	s.Equal(model.LobbyCode("LOBBY1"), game.LobbyCode)
	s.Equal(model.PhaseAwaitingClue, game.Phase)
	s.Equal(model.TeamRed, game.CurrentTeam)
	s.Equal(model.TeamRed, game.StartingTeam)
	s.Equal(0, game.TurnSeq)
	s.False(game.Ended)
}

func (s *ControllerSuite) TestCreateGameExcludesSpectators() {
	game := s.createGame()

	s.Len(game.Participants, 4)
	s.Nil(game.Participant("eve"))
}

func (s *ControllerSuite) TestCreateGameStartingTeamCanBeBlue() {
	s.queueDeal(model.TeamBlue)
	game, err := s.controller.CreateGame(s.ctx, "LOBBY1", model.ModeEnglish, s.members())
	s.Require().NoError(err)

	s.Equal(model.TeamBlue, game.StartingTeam)
	s.Equal(model.TeamBlue, game.CurrentTeam)
}

func (s *ControllerSuite) TestCreateGameAllocatesBoard() {
	game := s.createGame()

	b, err := s.boardService.GetBoard(s.ctx, game.ID)
	s.Require().NoError(err)

	s.Len(b.Cards, model.BoardSize)
	s.Equal(model.StartingTeamCards, b.Allocated[model.TeamRed])
	s.Equal(model.SecondTeamCards, b.Allocated[model.TeamBlue])

	kinds := map[model.CardKind]int{}
	for _, c := range b.Cards {
		kinds[c.Kind]++
	}
	s.Equal(model.StartingTeamCards, kinds[model.CardRed])
	s.Equal(model.SecondTeamCards, kinds[model.CardBlue])
	s.Equal(model.NeutralCards, kinds[model.CardNeutral])
	s.Equal(model.AssassinCards, kinds[model.CardAssassin])
}

func (s *ControllerSuite) TestCreateGameIsPersisted() {
	game := s.createGame()

	retrieved, err := s.controller.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(game.ID, retrieved.ID)
}

// VisibleBoard tests

func (s *ControllerSuite) TestVisibleBoardHidesKindsFromGuessers() {
	game := s.createGame()

	b, err := s.controller.VisibleBoard(s.ctx, game.ID, "bob")
	s.Require().NoError(err)

	for _, c := range b.Cards {
		s.Equal(model.CardKind(""), c.Kind)
	}
}

func (s *ControllerSuite) TestVisibleBoardShowsKindsToCallers() {
	game := s.createGame()

	b, err := s.controller.VisibleBoard(s.ctx, game.ID, "alice")
	s.Require().NoError(err)

	for _, c := range b.Cards {
		s.NotEqual(model.CardKind(""), c.Kind)
	}
}

func (s *ControllerSuite) TestVisibleBoardShowsRevealedKinds() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 2)

	_, _, err := s.controller.Guess(s.ctx, game.ID, "bob", 0)
	s.Require().NoError(err)

	b, err := s.controller.VisibleBoard(s.ctx, game.ID, "bob")
	s.Require().NoError(err)

	s.Equal(model.CardRed, b.Cards[0].Kind)
	s.Equal(model.CardKind(""), b.Cards[1].Kind)
}

func (s *ControllerSuite) TestVisibleBoardShowsEverythingWhenFinished() {
	game := s.createGame()
	s.Require().NoError(s.controller.AbandonGame(s.ctx, game.ID))

	b, err := s.controller.VisibleBoard(s.ctx, game.ID, "bob")
	s.Require().NoError(err)

	for _, c := range b.Cards {
		s.NotEqual(model.CardKind(""), c.Kind)
	}
}

// SubmitClue tests

func (s *ControllerSuite) submitClue(gameID model.GameID, playerID model.PlayerID, word string, count int) *model.Game {
	game, err := s.controller.SubmitClue(s.ctx, gameID, playerID, word, count)
	s.Require().NoError(err)
	return game
}

func (s *ControllerSuite) TestSubmitClueSucceeds() {
	game := s.createGame()

	updated := s.submitClue(game.ID, "alice", "apple", 3)

	s.Equal(model.PhaseGuessing, updated.Phase)
	s.Require().NotNil(updated.ActiveClue)
	s.Equal("apple", updated.ActiveClue.Word)
	s.Equal(3, updated.ActiveClue.Count)
	s.Equal(model.TeamRed, updated.ActiveClue.Team)
	s.Equal(model.PlayerID("alice"), updated.ActiveClue.CallerID)
	s.Equal(0, updated.ActiveClue.TurnSeq)
	s.Equal(0, updated.GuessesMade)
}

func (s *ControllerSuite) TestSubmitClueNormalizesWord() {
	game := s.createGame()

	updated := s.submitClue(game.ID, "alice", "  APPLE  ", 1)

	s.Equal("apple", updated.ActiveClue.Word)
}

func (s *ControllerSuite) TestSubmitClueRejectsSecondClue() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 2)

	_, err := s.controller.SubmitClue(s.ctx, game.ID, "alice", "brick", 1)
	s.ErrorIs(err, model.ErrClueExists)
}

func (s *ControllerSuite) TestSubmitClueRejectsNonParticipant() {
	game := s.createGame()

	_, err := s.controller.SubmitClue(s.ctx, game.ID, "mallory", "apple", 1)
	s.ErrorIs(err, model.ErrNotParticipant)
}

func (s *ControllerSuite) TestSubmitClueRejectsOpposingCaller() {
	game := s.createGame()

	_, err := s.controller.SubmitClue(s.ctx, game.ID, "carol", "apple", 1)
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *ControllerSuite) TestSubmitClueRejectsGuesser() {
	game := s.createGame()

	_, err := s.controller.SubmitClue(s.ctx, game.ID, "bob", "apple", 1)
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *ControllerSuite) TestSubmitClueRejectsEmptyWord() {
	game := s.createGame()

	_, err := s.controller.SubmitClue(s.ctx, game.ID, "alice", "   ", 1)
	s.ErrorIs(err, model.ErrClueEmpty)
}

func (s *ControllerSuite) TestSubmitClueRejectsMultipleWords() {
	game := s.createGame()

	_, err := s.controller.SubmitClue(s.ctx, game.ID, "alice", "two words", 1)
	s.ErrorIs(err, model.ErrClueMultiWord)
}

func (s *ControllerSuite) TestSubmitClueRejectsWrongCharset() {
	game := s.createGame()

	_, err := s.controller.SubmitClue(s.ctx, game.ID, "alice", "word123", 1)
	s.ErrorIs(err, model.ErrClueCharset)
}

func (s *ControllerSuite) TestSubmitClueRejectsCountOutOfBounds() {
	game := s.createGame()

	_, err := s.controller.SubmitClue(s.ctx, game.ID, "alice", "apple", 0)
	s.ErrorIs(err, model.ErrClueCount)

	_, err = s.controller.SubmitClue(s.ctx, game.ID, "alice", "apple", MaxClueCount+1)
	s.ErrorIs(err, model.ErrClueCount)
}

func (s *ControllerSuite) TestSubmitClueRejectsHiddenBoardWord() {
	game := s.createGame()

	_, err := s.controller.SubmitClue(s.ctx, game.ID, "alice", "zebra", 1)
	s.ErrorIs(err, model.ErrClueBoardOverlap)
}

func (s *ControllerSuite) TestSubmitClueRejectsBoardWordContainment() {
	game := s.createGame()

	// "zebras" contains the board word "zebra"
	_, err := s.controller.SubmitClue(s.ctx, game.ID, "alice", "zebras", 1)
	s.ErrorIs(err, model.ErrClueBoardOverlap)

	// "owls" is a superstring of "owl", "ra" a substring of "rat"
	_, err = s.controller.SubmitClue(s.ctx, game.ID, "alice", "owls", 1)
	s.ErrorIs(err, model.ErrClueBoardOverlap)
	_, err = s.controller.SubmitClue(s.ctx, game.ID, "alice", "ra", 1)
	s.ErrorIs(err, model.ErrClueBoardOverlap)
}

func (s *ControllerSuite) TestSubmitClueRejectsRevealedBoardWord() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 2)

	// Revealing "ant" does not free the word for later clues
	_, updated, err := s.controller.Guess(s.ctx, game.ID, "bob", 0)
	s.Require().NoError(err)
	s.Require().Equal(model.PhaseGuessing, updated.Phase)

	_, err = s.controller.EndTurn(s.ctx, game.ID, "bob", 0)
	s.Require().NoError(err)
	updated, err = s.controller.EndTurn(s.ctx, game.ID, "dave", 1)
	s.Require().NoError(err)
	s.Require().Equal(model.TeamRed, updated.CurrentTeam)

	_, err = s.controller.SubmitClue(s.ctx, game.ID, "alice", "ant", 1)
	s.ErrorIs(err, model.ErrClueBoardOverlap)
}

func (s *ControllerSuite) TestSubmitClueRejectsFinishedGame() {
	game := s.createGame()
	s.Require().NoError(s.controller.AbandonGame(s.ctx, game.ID))

	_, err := s.controller.SubmitClue(s.ctx, game.ID, "alice", "apple", 1)
	s.ErrorIs(err, model.ErrGameFinished)
}

// Guess tests

func (s *ControllerSuite) TestGuessCorrectKeepsTurn() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 2)

	event, updated, err := s.controller.Guess(s.ctx, game.ID, "bob", 0)
	s.Require().NoError(err)

	s.Equal(model.OutcomeCorrect, event.Outcome)
	s.Equal("ant", event.Word)
	s.Equal(model.PhaseGuessing, updated.Phase)
	s.Equal(model.TeamRed, updated.CurrentTeam)
	s.Equal(0, updated.TurnSeq)
	s.Equal(1, updated.GuessesMade)
}

func (s *ControllerSuite) TestGuessCapIsExactlyClueCount() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 1)

	// Using up the declared count passes the turn even on a correct guess:
	// there is no bonus guess
	event, updated, err := s.controller.Guess(s.ctx, game.ID, "bob", 0)
	s.Require().NoError(err)

	s.Equal(model.OutcomeCorrect, event.Outcome)
	s.Equal(model.PhaseAwaitingClue, updated.Phase)
	s.Equal(model.TeamBlue, updated.CurrentTeam)
	s.Equal(1, updated.TurnSeq)

	_, _, err = s.controller.Guess(s.ctx, game.ID, "bob", 1)
	s.ErrorIs(err, model.ErrClueNotGiven)
}

func (s *ControllerSuite) TestGuessNeutralEndsTurn() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 3)

	event, updated, err := s.controller.Guess(s.ctx, game.ID, "bob", 17)
	s.Require().NoError(err)

	s.Equal(model.OutcomeNeutral, event.Outcome)
	s.Equal(model.PhaseAwaitingClue, updated.Phase)
	s.Equal(model.TeamBlue, updated.CurrentTeam)
	s.Equal(1, updated.TurnSeq)
	s.Nil(updated.ActiveClue)
}

func (s *ControllerSuite) TestGuessOpponentCardEndsTurn() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 3)

	event, updated, err := s.controller.Guess(s.ctx, game.ID, "bob", 9)
	s.Require().NoError(err)

	s.Equal(model.OutcomeOpponent, event.Outcome)
	s.Equal(model.TeamBlue, updated.CurrentTeam)
	s.Equal(1, updated.TurnSeq)
	s.False(updated.Ended)
}

func (s *ControllerSuite) TestGuessAssassinLosesImmediately() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 2)

	event, updated, err := s.controller.Guess(s.ctx, game.ID, "bob", 24)
	s.Require().NoError(err)

	s.Equal(model.OutcomeAssassin, event.Outcome)
	s.True(updated.Ended)
	s.Equal(model.PhaseFinished, updated.Phase)
	s.Equal(model.TeamBlue, updated.Winner)
}

func (s *ControllerSuite) TestGuessLastTeamCardWins() {
	game := s.createGame()

	// Eight of red's nine cards already down; one guess finishes the set
	b, err := s.boardService.GetBoard(s.ctx, game.ID)
	s.Require().NoError(err)
	for i := 0; i < 8; i++ {
		b.Cards[i].Revealed = true
	}
	s.Require().NoError(s.storage.SaveBoard(s.ctx, b))

	s.submitClue(game.ID, "alice", "apple", 1)

	event, updated, err := s.controller.Guess(s.ctx, game.ID, "bob", 8)
	s.Require().NoError(err)

	s.Equal(model.OutcomeCorrect, event.Outcome)
	s.True(updated.Ended)
	s.Equal(model.TeamRed, updated.Winner)
}

func (s *ControllerSuite) TestGuessRevealingOpponentsLastCardLosesGame() {
	game := s.createGame()

	// Blue has one card left; red revealing it hands blue the win
	b, err := s.boardService.GetBoard(s.ctx, game.ID)
	s.Require().NoError(err)
	for i := 9; i < 16; i++ {
		b.Cards[i].Revealed = true
	}
	s.Require().NoError(s.storage.SaveBoard(s.ctx, b))

	s.submitClue(game.ID, "alice", "apple", 2)

	event, updated, err := s.controller.Guess(s.ctx, game.ID, "bob", 16)
	s.Require().NoError(err)

	s.Equal(model.OutcomeOpponent, event.Outcome)
	s.True(updated.Ended)
	s.Equal(model.TeamBlue, updated.Winner)
}

func (s *ControllerSuite) TestGuessRequiresActiveClue() {
	game := s.createGame()

	_, _, err := s.controller.Guess(s.ctx, game.ID, "bob", 0)
	s.ErrorIs(err, model.ErrClueNotGiven)
}

func (s *ControllerSuite) TestGuessRejectsCaller() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 2)

	_, _, err := s.controller.Guess(s.ctx, game.ID, "alice", 0)
	s.ErrorIs(err, model.ErrCallerCannotGuess)
}

func (s *ControllerSuite) TestGuessRejectsOpposingGuesser() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 2)

	_, _, err := s.controller.Guess(s.ctx, game.ID, "dave", 0)
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *ControllerSuite) TestGuessRejectsRevealedCard() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 3)

	_, _, err := s.controller.Guess(s.ctx, game.ID, "bob", 0)
	s.Require().NoError(err)

	_, _, err = s.controller.Guess(s.ctx, game.ID, "bob", 0)
	s.ErrorIs(err, model.ErrCardRevealed)
}

func (s *ControllerSuite) TestGuessRejectsUnknownCard() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 2)

	_, _, err := s.controller.Guess(s.ctx, game.ID, "bob", 99)
	s.ErrorIs(err, model.ErrCardNotFound)
}

func (s *ControllerSuite) TestGuessEventsAreLogged() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 3)

	_, _, err := s.controller.Guess(s.ctx, game.ID, "bob", 0)
	s.Require().NoError(err)
	_, _, err = s.controller.Guess(s.ctx, game.ID, "bob", 17)
	s.Require().NoError(err)

	events, err := s.controller.GetGuessEvents(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal("ant", events[0].Word)
	s.Equal(model.OutcomeCorrect, events[0].Outcome)
	s.Equal("rat", events[1].Word)
	s.Equal(model.OutcomeNeutral, events[1].Outcome)
}

// EndTurn tests

func (s *ControllerSuite) TestEndTurnAdvances() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 3)

	updated, err := s.controller.EndTurn(s.ctx, game.ID, "bob", 0)
	s.Require().NoError(err)

	s.Equal(1, updated.TurnSeq)
	s.Equal(model.TeamBlue, updated.CurrentTeam)
	s.Equal(model.PhaseAwaitingClue, updated.Phase)
	s.Nil(updated.ActiveClue)
	s.Equal(0, updated.GuessesMade)
}

func (s *ControllerSuite) TestEndTurnIsIdempotent() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 3)

	_, err := s.controller.EndTurn(s.ctx, game.ID, "bob", 0)
	s.Require().NoError(err)

	// The stale repeat observes the already-advanced game and does nothing
	updated, err := s.controller.EndTurn(s.ctx, game.ID, "bob", 0)
	s.Require().NoError(err)
	s.Equal(1, updated.TurnSeq)
	s.Equal(model.TeamBlue, updated.CurrentTeam)
}

func (s *ControllerSuite) TestEndTurnBySystemActor() {
	game := s.createGame()

	updated, err := s.controller.EndTurn(s.ctx, game.ID, SystemActor, 0)
	s.Require().NoError(err)

	s.Equal(1, updated.TurnSeq)
	s.Equal(model.TeamBlue, updated.CurrentTeam)
}

func (s *ControllerSuite) TestEndTurnRejectsOpposingTeam() {
	game := s.createGame()

	_, err := s.controller.EndTurn(s.ctx, game.ID, "dave", 0)
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *ControllerSuite) TestEndTurnRejectsNonParticipant() {
	game := s.createGame()

	_, err := s.controller.EndTurn(s.ctx, game.ID, "mallory", 0)
	s.ErrorIs(err, model.ErrNotParticipant)
}

func (s *ControllerSuite) TestEndTurnRejectsFinishedGame() {
	game := s.createGame()
	s.Require().NoError(s.controller.AbandonGame(s.ctx, game.ID))

	_, err := s.controller.EndTurn(s.ctx, game.ID, "bob", 0)
	s.ErrorIs(err, model.ErrGameFinished)
}

func (s *ControllerSuite) TestEndTurnFailsWhileLockHeld() {
	game := s.createGame()

	_, acquired, err := s.storage.AcquireTurnLock(s.ctx, game.ID, "other", 5*time.Second)
	s.Require().NoError(err)
	s.Require().True(acquired)

	_, err = s.controller.EndTurn(s.ctx, game.ID, "bob", 0)
	s.ErrorIs(err, model.ErrTurnLockHeld)
}

// ReplaceParticipant tests

func (s *ControllerSuite) TestReplaceParticipantSwapsSeat() {
	game := s.createGame()

	err := s.controller.ReplaceParticipant(s.ctx, game.ID, "bob", "bot-1", "Bob (bot)", true)
	s.Require().NoError(err)

	updated, err := s.controller.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)

	s.Nil(updated.Participant("bob"))
	p := updated.Participant("bot-1")
	s.Require().NotNil(p)
	s.Equal(model.TeamRed, p.Team)
	s.Equal(model.RoleGuesser, p.Role)
	s.True(p.IsBot)
}

func (s *ControllerSuite) TestReplaceParticipantMovesClueAttribution() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 2)

	err := s.controller.ReplaceParticipant(s.ctx, game.ID, "alice", "bot-2", "Alice (bot)", true)
	s.Require().NoError(err)

	updated, err := s.controller.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)

	s.Require().NotNil(updated.ActiveClue)
	s.Equal(model.PlayerID("bot-2"), updated.ActiveClue.CallerID)
}

func (s *ControllerSuite) TestReplaceParticipantRejectsUnknownPlayer() {
	game := s.createGame()

	err := s.controller.ReplaceParticipant(s.ctx, game.ID, "mallory", "bot-1", "Bot", true)
	s.ErrorIs(err, model.ErrNotParticipant)
}

// AbandonGame and summary tests

func (s *ControllerSuite) TestAbandonGameEndsWithoutWinner() {
	game := s.createGame()

	s.Require().NoError(s.controller.AbandonGame(s.ctx, game.ID))

	updated, err := s.controller.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.True(updated.Ended)
	s.Equal(model.TeamNone, updated.Winner)

	// Abandoning again is a no-op
	s.NoError(s.controller.AbandonGame(s.ctx, game.ID))
}

func (s *ControllerSuite) TestCreateGameSummaryRequiresFinishedGame() {
	game := s.createGame()

	_, err := s.controller.CreateGameSummary(s.ctx, game.ID)
	s.ErrorIs(err, model.ErrGameInProgress)
}

func (s *ControllerSuite) TestCreateGameSummary() {
	game := s.createGame()
	s.submitClue(game.ID, "alice", "apple", 2)

	_, _, err := s.controller.Guess(s.ctx, game.ID, "bob", 24)
	s.Require().NoError(err)

	summary, err := s.controller.CreateGameSummary(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(game.ID, summary.ID)
	s.Equal(model.TeamBlue, summary.Winner)
	s.Equal(1, summary.TurnsPlayed)
}
