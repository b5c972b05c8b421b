package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotHost            = "NOT_HOST"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeNotParticipant     = "NOT_PARTICIPANT"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeLobbyNotFound      = "LOBBY_NOT_FOUND"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeAlreadyInLobby     = "ALREADY_IN_LOBBY"
	CodeNotInLobby         = "NOT_IN_LOBBY"
	CodeGameInProgress     = "GAME_IN_PROGRESS"
	CodeNoGameInProgress   = "NO_GAME_IN_PROGRESS"
	CodeGameFinished       = "GAME_FINISHED"
	CodeSeatTaken          = "SEAT_TAKEN"
	CodeTeamsIncomplete    = "TEAMS_INCOMPLETE"
	CodeInvalidClue        = "INVALID_CLUE"
	CodeClueExists         = "CLUE_EXISTS"
	CodeClueNotGiven       = "CLUE_NOT_GIVEN"
	CodeCallerCannotGuess  = "CALLER_CANNOT_GUESS"
	CodeGuessesExhausted   = "GUESSES_EXHAUSTED"
	CodeCardNotFound       = "CARD_NOT_FOUND"
	CodeCardRevealed       = "CARD_REVEALED"
	CodeTurnConflict       = "TURN_CONFLICT"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrLobbyNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeLobbyNotFound, "Lobby not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrBoardNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Board not found"}}
	case errors.Is(err, model.ErrAlreadyInLobby):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInLobby, "Already in this lobby"}}
	case errors.Is(err, model.ErrNotInLobby):
		return &httpError{http.StatusNotFound, APIError{CodeNotInLobby, "Not in this lobby"}}
	case errors.Is(err, model.ErrNotHost):
		return &httpError{http.StatusForbidden, APIError{CodeNotHost, "Only the host can perform this action"}}
	case errors.Is(err, model.ErrGameInProgress):
		return &httpError{http.StatusConflict, APIError{CodeGameInProgress, "Game is in progress"}}
	case errors.Is(err, model.ErrNoGameInProgress):
		return &httpError{http.StatusNotFound, APIError{CodeNoGameInProgress, "No game in progress"}}
	case errors.Is(err, model.ErrGameFinished):
		return &httpError{http.StatusConflict, APIError{CodeGameFinished, "Game is finished"}}
	case errors.Is(err, model.ErrSeatTaken):
		return &httpError{http.StatusConflict, APIError{CodeSeatTaken, "That seat is already taken"}}
	case errors.Is(err, model.ErrTeamsIncomplete):
		return &httpError{http.StatusConflict, APIError{CodeTeamsIncomplete, "Each team needs a caller and at least one guesser"}}
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your team's turn"}}
	case errors.Is(err, model.ErrNotParticipant):
		return &httpError{http.StatusForbidden, APIError{CodeNotParticipant, "Not a participant in this game"}}
	case errors.Is(err, model.ErrNotBot):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Player is not a bot"}}
	case errors.Is(err, model.ErrCallerCannotGuess):
		return &httpError{http.StatusForbidden, APIError{CodeCallerCannotGuess, "The caller cannot guess"}}
	case errors.Is(err, model.ErrClueExists):
		return &httpError{http.StatusConflict, APIError{CodeClueExists, "A clue was already given this turn"}}
	case errors.Is(err, model.ErrClueNotGiven):
		return &httpError{http.StatusConflict, APIError{CodeClueNotGiven, "No clue has been given this turn"}}
	case errors.Is(err, model.ErrClueEmpty),
		errors.Is(err, model.ErrClueMultiWord),
		errors.Is(err, model.ErrClueCharset),
		errors.Is(err, model.ErrClueBoardOverlap),
		errors.Is(err, model.ErrClueCount):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidClue, err.Error()}}
	case errors.Is(err, model.ErrGuessesExhausted):
		return &httpError{http.StatusForbidden, APIError{CodeGuessesExhausted, "No guesses remaining for this clue"}}
	case errors.Is(err, model.ErrCardNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeCardNotFound, "Card not found"}}
	case errors.Is(err, model.ErrCardRevealed):
		return &httpError{http.StatusConflict, APIError{CodeCardRevealed, "Card is already revealed"}}
	case errors.Is(err, model.ErrTurnLockHeld):
		return &httpError{http.StatusConflict, APIError{CodeTurnConflict, "Another turn transition is in progress"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, auth.ErrDisplayNameInvalid),
		errors.Is(err, auth.ErrUsernameInvalid),
		errors.Is(err, auth.ErrPasswordTooShort):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
