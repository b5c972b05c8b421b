package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Lobby errors
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrAlreadyInLobby   = errors.New("player is already in lobby")
	ErrNotInLobby       = errors.New("player is not in lobby")
	ErrNotHost          = errors.New("player is not the host")
	ErrGameInProgress   = errors.New("game is in progress")
	ErrNoGameInProgress = errors.New("no game in progress")
	ErrSeatTaken        = errors.New("seat is already taken")
	ErrTeamsIncomplete  = errors.New("each team needs a caller and at least one guesser")

	// Game errors
	ErrGameNotFound      = errors.New("game not found")
	ErrGameFinished      = errors.New("game is finished")
	ErrNotYourTurn       = errors.New("not this team's turn")
	ErrNotParticipant    = errors.New("player is not a participant in this game")
	ErrCallerCannotGuess = errors.New("the caller cannot guess")
	ErrTurnLockHeld      = errors.New("another turn transition is in progress")

	// Clue errors
	ErrClueExists       = errors.New("a clue was already given this turn")
	ErrClueNotGiven     = errors.New("no clue has been given this turn")
	ErrClueEmpty        = errors.New("clue word is empty")
	ErrClueMultiWord    = errors.New("clue word must be a single word")
	ErrClueCharset      = errors.New("clue word contains characters outside the game language")
	ErrClueBoardOverlap = errors.New("clue word overlaps a board word")
	ErrClueCount        = errors.New("clue count must be between 1 and 8")

	// Guess errors
	ErrGuessesExhausted = errors.New("no guesses remaining for this clue")
	ErrCardNotFound     = errors.New("card not found")
	ErrCardRevealed     = errors.New("card is already revealed")

	// Board errors
	ErrBoardNotFound = errors.New("board not found")

	// Bot errors
	ErrNotBot = errors.New("player is not a bot")

	// Presence errors
	ErrPresenceNotFound     = errors.New("presence record not found")
	ErrSubstitutionNotFound = errors.New("substitution record not found")

	// Wordlist errors
	ErrWordlistNotLoaded    = errors.New("wordlist not loaded")
	ErrWordlistInsufficient = errors.New("wordlist has too few words to deal a board")
)
