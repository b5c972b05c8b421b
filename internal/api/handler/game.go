package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/medge/codewords/internal/api/middleware"
	"github.com/medge/codewords/internal/api/request"
	"github.com/medge/codewords/internal/api/response"
	"github.com/medge/codewords/internal/dependencies/clock"
	"github.com/medge/codewords/internal/events"
	"github.com/medge/codewords/internal/metrics"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/bot"
	"github.com/medge/codewords/internal/services/game"
	"github.com/medge/codewords/internal/services/lobby"
	"github.com/medge/codewords/internal/services/presence"
	"github.com/medge/codewords/internal/sse"
)

// GameHandler handles in-game endpoints
type GameHandler struct {
	lobbyController *lobby.Controller
	gameController  *game.Controller
	presenceService *presence.Service
	botService      *bot.Service
	broadcaster     *sse.Broadcaster
	publisher       events.Publisher
	metrics         *metrics.Metrics
	clock           clock.Clock
	logger          *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(
	lobbyController *lobby.Controller,
	gameController *game.Controller,
	presenceService *presence.Service,
	botService *bot.Service,
	broadcaster *sse.Broadcaster,
	publisher events.Publisher,
	m *metrics.Metrics,
	clk clock.Clock,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		lobbyController: lobbyController,
		gameController:  gameController,
		presenceService: presenceService,
		botService:      botService,
		broadcaster:     broadcaster,
		publisher:       publisher,
		metrics:         m,
		clock:           clk,
		logger:          logger.With(slog.String("component", "game-handler")),
	}
}

// currentGame resolves the lobby's active game
func (h *GameHandler) currentGame(r *http.Request, code model.LobbyCode) (*model.Game, error) {
	lob, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		return nil, err
	}
	if lob.CurrentGame == nil {
		return nil, model.ErrNoGameInProgress
	}
	return h.gameController.GetGame(r.Context(), *lob.CurrentGame)
}

func (h *GameHandler) publish(r *http.Request, event events.Event) {
	if h.publisher == nil {
		return
	}
	event.Timestamp = h.clock.Now()
	if err := h.publisher.Publish(r.Context(), event); err != nil {
		h.logger.Warn("failed to publish event",
			slog.String("type", string(event.Type)),
			slog.String("game_id", string(event.GameID)),
			slog.String("error", err.Error()),
		)
	}
}

// finalizeIfEnded records a finished game in its lobby and announces the
// result. Safe to call when the game is still running
func (h *GameHandler) finalizeIfEnded(r *http.Request, code model.LobbyCode, g *model.Game) {
	if !g.Ended {
		return
	}
	if err := h.lobbyController.CompleteGame(r.Context(), code); err != nil {
		h.logger.Error("failed to complete game",
			slog.String("game_id", string(g.ID)),
			slog.String("error", err.Error()),
		)
	}
	if h.metrics != nil {
		h.metrics.GamesFinished.WithLabelValues(string(g.Winner)).Inc()
	}
	if h.broadcaster != nil {
		h.broadcaster.BroadcastGameFinished(code, g)
	}
	h.publish(r, events.Event{
		Type:      events.EventGameFinished,
		GameID:    g.ID,
		LobbyCode: code,
		Team:      g.Winner,
		TurnSeq:   g.TurnSeq,
	})
}

// runBots lets bot seats act, broadcasting each action, then finalizes the
// game if the bots finished it
func (h *GameHandler) runBots(r *http.Request, code model.LobbyCode, gameID model.GameID) {
	actions, err := h.botService.ProcessBotActions(r.Context(), gameID)
	if err != nil {
		h.logger.Error("bot processing failed",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
	}
	if len(actions) == 0 {
		return
	}

	g, err := h.gameController.GetGame(r.Context(), gameID)
	if err != nil {
		return
	}

	if h.broadcaster != nil {
		for _, a := range actions {
			switch a.Type {
			case bot.ActionClue:
				h.broadcaster.BroadcastClueGiven(code, g)
			case bot.ActionGuess:
				h.broadcaster.BroadcastGuessMade(code, &model.GuessEvent{
					GameID:   gameID,
					PlayerID: a.PlayerID,
					Word:     a.Word,
					CardID:   a.CardID,
					Outcome:  a.Outcome,
				})
			case bot.ActionEndTurn:
				h.broadcaster.BroadcastTurnEnded(code, g)
			}
		}
	}

	h.finalizeIfEnded(r, code, g)
}

// Start handles POST /api/v1/lobbies/{code}/game
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	g, err := h.lobbyController.StartGame(r.Context(), code, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.GamesStarted.Inc()
	}
	if h.broadcaster != nil {
		h.broadcaster.BroadcastGameStarted(code, g)
	}
	h.publish(r, events.Event{
		Type:      events.EventGameStarted,
		GameID:    g.ID,
		LobbyCode: code,
		Team:      g.StartingTeam,
		TurnSeq:   g.TurnSeq,
	})

	// A bot caller may owe the opening clue
	h.runBots(r, code, g.ID)

	board, err := h.gameController.VisibleBoard(r.Context(), g.ID, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.GameStateFromModel(g, board))
}

// Get handles GET /api/v1/lobbies/{code}/game
// The board is filtered to what the requesting player may see
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	g, err := h.currentGame(r, code)
	if err != nil {
		WriteError(w, err)
		return
	}

	board, err := h.gameController.VisibleBoard(r.Context(), g.ID, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(g, board))
}

// Abandon handles DELETE /api/v1/lobbies/{code}/game
func (h *GameHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	if err := h.lobbyController.AbandonGame(r.Context(), code, player.ID); err != nil {
		WriteError(w, err)
		return
	}

	if lob, err := h.lobbyController.GetLobby(r.Context(), code); err == nil && h.broadcaster != nil {
		h.broadcaster.BroadcastLobbyUpdate(lob)
	}

	response.NoContent(w)
}

// Clue handles POST /api/v1/lobbies/{code}/game/clue
func (h *GameHandler) Clue(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.ClueRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.currentGame(r, code)
	if err != nil {
		WriteError(w, err)
		return
	}

	g, err = h.gameController.SubmitClue(r.Context(), g.ID, player.ID, req.Word, req.Count)
	if err != nil {
		WriteError(w, err)
		return
	}

	_ = h.presenceService.Touch(r.Context(), g.ID, player.ID)

	if h.broadcaster != nil {
		h.broadcaster.BroadcastClueGiven(code, g)
	}
	h.publish(r, events.Event{
		Type:      events.EventClueGiven,
		GameID:    g.ID,
		LobbyCode: code,
		PlayerID:  player.ID,
		Team:      g.CurrentTeam,
		TurnSeq:   g.TurnSeq,
		Payload:   map[string]any{"word": g.ActiveClue.Word, "count": g.ActiveClue.Count},
	})

	// Bot guessers may act on the clue immediately
	h.runBots(r, code, g.ID)

	response.JSON(w, http.StatusOK, response.GameStateFromModel(g, nil))
}

// Guess handles POST /api/v1/lobbies/{code}/game/guess
func (h *GameHandler) Guess(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.GuessRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.currentGame(r, code)
	if err != nil {
		WriteError(w, err)
		return
	}
	turnBefore := g.TurnSeq

	event, g, err := h.gameController.Guess(r.Context(), g.ID, player.ID, model.CardID(req.CardID))
	if err != nil {
		WriteError(w, err)
		return
	}

	_ = h.presenceService.Touch(r.Context(), g.ID, player.ID)

	if h.metrics != nil {
		h.metrics.GuessOutcomes.WithLabelValues(string(event.Outcome)).Inc()
	}
	if h.broadcaster != nil {
		h.broadcaster.BroadcastGuessMade(code, event)
		if !g.Ended && g.TurnSeq != turnBefore {
			h.broadcaster.BroadcastTurnEnded(code, g)
		}
	}
	h.publish(r, events.Event{
		Type:      events.EventGuessMade,
		GameID:    g.ID,
		LobbyCode: code,
		PlayerID:  player.ID,
		Team:      event.Team,
		TurnSeq:   event.TurnSeq,
		Payload:   map[string]any{"word": event.Word, "outcome": event.Outcome},
	})

	h.finalizeIfEnded(r, code, g)
	if !g.Ended {
		h.runBots(r, code, g.ID)
	}

	board, boardErr := h.gameController.VisibleBoard(r.Context(), g.ID, player.ID)
	if boardErr != nil {
		board = nil
	}
	response.JSON(w, http.StatusOK, response.GuessResponse{
		Event: response.GuessEventFromModel(*event),
		Game:  response.GameStateFromModel(g, board),
	})
}

// EndTurn handles POST /api/v1/lobbies/{code}/game/end-turn
// The request carries the turn the caller believes it is ending, so a
// delayed or duplicated request cannot skip an extra turn
func (h *GameHandler) EndTurn(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.EndTurnRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.currentGame(r, code)
	if err != nil {
		WriteError(w, err)
		return
	}

	g, err = h.gameController.EndTurn(r.Context(), g.ID, player.ID, req.TurnSeq)
	if err != nil {
		WriteError(w, err)
		return
	}

	_ = h.presenceService.Touch(r.Context(), g.ID, player.ID)

	if h.broadcaster != nil {
		h.broadcaster.BroadcastTurnEnded(code, g)
	}
	h.publish(r, events.Event{
		Type:      events.EventTurnEnded,
		GameID:    g.ID,
		LobbyCode: code,
		PlayerID:  player.ID,
		Team:      g.CurrentTeam,
		TurnSeq:   g.TurnSeq,
	})

	h.runBots(r, code, g.ID)

	response.JSON(w, http.StatusOK, response.GameStateFromModel(g, nil))
}

// Events handles GET /api/v1/lobbies/{code}/game/events
// Returns the ordered guess log
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	code := model.LobbyCode(mux.Vars(r)["code"])

	g, err := h.currentGame(r, code)
	if err != nil {
		WriteError(w, err)
		return
	}

	eventsList, err := h.gameController.GetGuessEvents(r.Context(), g.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := make([]response.GuessEvent, len(eventsList))
	for i, e := range eventsList {
		resp[i] = response.GuessEventFromModel(e)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Heartbeat handles POST /api/v1/lobbies/{code}/game/heartbeat
// A heartbeat from a substituted player reverses the substitution
func (h *GameHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	g, err := h.currentGame(r, code)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.presenceService.Heartbeat(r.Context(), g.ID, player.ID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Presence handles GET /api/v1/lobbies/{code}/game/presence
func (h *GameHandler) Presence(w http.ResponseWriter, r *http.Request) {
	code := model.LobbyCode(mux.Vars(r)["code"])

	g, err := h.currentGame(r, code)
	if err != nil {
		WriteError(w, err)
		return
	}

	records, err := h.presenceService.GetPresenceForGame(r.Context(), g.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := make([]response.Presence, len(records))
	for i, rec := range records {
		resp[i] = response.PresenceFromModel(rec)
	}
	response.JSON(w, http.StatusOK, resp)
}
