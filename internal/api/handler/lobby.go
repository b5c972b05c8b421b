package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/medge/codewords/internal/api/middleware"
	"github.com/medge/codewords/internal/api/request"
	"github.com/medge/codewords/internal/api/response"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/bot"
	"github.com/medge/codewords/internal/services/lobby"
	"github.com/medge/codewords/internal/sse"
)

// LobbyHandler handles lobby-related endpoints
type LobbyHandler struct {
	lobbyController *lobby.Controller
	botService      *bot.Service
	hubManager      *sse.HubManager
	broadcaster     *sse.Broadcaster
	joinBaseURL     string
}

// NewLobbyHandler creates a new lobby handler. joinBaseURL is the public URL
// prefix encoded into join QR codes
func NewLobbyHandler(lobbyController *lobby.Controller, botService *bot.Service, hubManager *sse.HubManager, joinBaseURL string, logger *slog.Logger) *LobbyHandler {
	var broadcaster *sse.Broadcaster
	if hubManager != nil {
		broadcaster = sse.NewBroadcaster(hubManager, logger)
	}
	return &LobbyHandler{
		lobbyController: lobbyController,
		botService:      botService,
		hubManager:      hubManager,
		broadcaster:     broadcaster,
		joinBaseURL:     joinBaseURL,
	}
}

// broadcastLobby pushes the current lobby snapshot to stream clients
func (h *LobbyHandler) broadcastLobby(lob *model.Lobby) {
	if h.broadcaster != nil {
		h.broadcaster.BroadcastLobbyUpdate(lob)
	}
}

// Create handles POST /api/v1/lobbies
func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body for default config
		req = request.UpdateConfigRequest{}
	}

	lob, err := h.lobbyController.CreateLobby(r.Context(), *player)
	if err != nil {
		WriteError(w, err)
		return
	}

	if req.Mode != "" || req.TurnTimeoutSeconds > 0 {
		config := lob.Config
		if req.Mode != "" {
			config.Mode = model.Mode(req.Mode)
		}
		if req.TurnTimeoutSeconds > 0 {
			config.TurnTimeout = time.Duration(req.TurnTimeoutSeconds) * time.Second
		}
		if err := h.lobbyController.UpdateConfig(r.Context(), lob.Code, player.ID, config); err != nil {
			WriteError(w, err)
			return
		}
		lob.Config = config
	}

	response.JSON(w, http.StatusCreated, response.LobbyFromModel(lob))
}

// Get handles GET /api/v1/lobbies/{code}
func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.LobbyCode(mux.Vars(r)["code"])

	lob, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LobbyFromModel(lob))
}

// Join handles POST /api/v1/lobbies/{code}/join
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	if err := h.lobbyController.JoinLobby(r.Context(), code, *player); err != nil {
		WriteError(w, err)
		return
	}

	lob, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcastLobby(lob)
	response.JSON(w, http.StatusOK, response.LobbyFromModel(lob))
}

// Leave handles POST /api/v1/lobbies/{code}/leave
func (h *LobbyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	if err := h.lobbyController.LeaveLobby(r.Context(), code, player.ID); err != nil {
		WriteError(w, err)
		return
	}

	// Lobby may have been deleted if this was the last member
	if lob, err := h.lobbyController.GetLobby(r.Context(), code); err == nil {
		h.broadcastLobby(lob)
	}

	response.NoContent(w)
}

// SetTeamRole handles PUT /api/v1/lobbies/{code}/seat
func (h *LobbyHandler) SetTeamRole(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.SetTeamRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	team := model.Team(req.Team)
	role := model.Role(req.Role)
	if team != model.TeamRed && team != model.TeamBlue && team != model.TeamNone {
		WriteError(w, NewInvalidRequestError("team must be red, blue or empty"))
		return
	}
	if role != model.RoleCaller && role != model.RoleGuesser && role != model.RoleSpectator {
		WriteError(w, NewInvalidRequestError("role must be caller, guesser or spectator"))
		return
	}

	if err := h.lobbyController.SetTeamRole(r.Context(), code, player.ID, team, role); err != nil {
		WriteError(w, err)
		return
	}

	lob, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcastLobby(lob)
	response.JSON(w, http.StatusOK, response.LobbyFromModel(lob))
}

// Kick handles DELETE /api/v1/lobbies/{code}/members/{player_id}
func (h *LobbyHandler) Kick(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	vars := mux.Vars(r)
	code := model.LobbyCode(vars["code"])
	targetID := model.PlayerID(vars["player_id"])

	if err := h.lobbyController.KickMember(r.Context(), code, player.ID, targetID); err != nil {
		WriteError(w, err)
		return
	}

	if lob, err := h.lobbyController.GetLobby(r.Context(), code); err == nil {
		h.broadcastLobby(lob)
	}

	response.NoContent(w)
}

// TransferHost handles POST /api/v1/lobbies/{code}/transfer-host
func (h *LobbyHandler) TransferHost(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.TransferHostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.NewHostID == "" {
		WriteError(w, NewInvalidRequestError("new_host_id is required"))
		return
	}

	if err := h.lobbyController.TransferHost(r.Context(), code, player.ID, model.PlayerID(req.NewHostID)); err != nil {
		WriteError(w, err)
		return
	}

	lob, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcastLobby(lob)
	response.JSON(w, http.StatusOK, response.LobbyFromModel(lob))
}

// UpdateConfig handles PATCH /api/v1/lobbies/{code}/config
func (h *LobbyHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.UpdateConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	mode := model.Mode(req.Mode)
	if mode != model.ModeEnglish && mode != model.ModeRussian {
		WriteError(w, NewInvalidRequestError("mode must be english or russian"))
		return
	}

	config := model.LobbyConfig{
		Mode:        mode,
		TurnTimeout: time.Duration(req.TurnTimeoutSeconds) * time.Second,
	}
	if err := h.lobbyController.UpdateConfig(r.Context(), code, player.ID, config); err != nil {
		WriteError(w, err)
		return
	}

	lob, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.broadcastLobby(lob)
	response.JSON(w, http.StatusOK, response.LobbyFromModel(lob))
}

// AddBot handles POST /api/v1/lobbies/{code}/bots
func (h *LobbyHandler) AddBot(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	var req request.AddBotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Strategy == "" {
		req.Strategy = bot.StrategyRandom
	}

	team := model.Team(req.Team)
	role := model.Role(req.Role)
	if team != model.TeamRed && team != model.TeamBlue {
		WriteError(w, NewInvalidRequestError("team must be red or blue"))
		return
	}
	if role != model.RoleCaller && role != model.RoleGuesser {
		WriteError(w, NewInvalidRequestError("role must be caller or guesser"))
		return
	}

	botPlayer, err := h.botService.AddBotToLobby(r.Context(), code, player.ID, team, role, req.Strategy)
	if err != nil {
		WriteError(w, err)
		return
	}

	if lob, err := h.lobbyController.GetLobby(r.Context(), code); err == nil {
		h.broadcastLobby(lob)
	}

	response.JSON(w, http.StatusCreated, response.PlayerFromModel(botPlayer))
}

// RemoveBot handles DELETE /api/v1/lobbies/{code}/bots/{player_id}
func (h *LobbyHandler) RemoveBot(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	vars := mux.Vars(r)
	code := model.LobbyCode(vars["code"])
	botID := model.PlayerID(vars["player_id"])

	if err := h.botService.RemoveBotFromLobby(r.Context(), code, player.ID, botID); err != nil {
		WriteError(w, err)
		return
	}

	if lob, err := h.lobbyController.GetLobby(r.Context(), code); err == nil {
		h.broadcastLobby(lob)
	}

	response.NoContent(w)
}

// JoinQR handles GET /api/v1/lobbies/{code}/qr
// Returns a PNG QR code encoding the lobby's join URL
func (h *LobbyHandler) JoinQR(w http.ResponseWriter, r *http.Request) {
	code := model.LobbyCode(mux.Vars(r)["code"])

	// Validate the lobby exists before minting a code for it
	if _, err := h.lobbyController.GetLobby(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}

	joinURL := fmt.Sprintf("%s/join/%s", h.joinBaseURL, code)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		WriteError(w, NewInternalError())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// Stream handles GET /api/v1/lobbies/{code}/stream
// Serves the lobby's server-sent event stream
func (h *LobbyHandler) Stream(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := model.LobbyCode(mux.Vars(r)["code"])

	lob, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	if lob.GetMember(player.ID) == nil {
		WriteError(w, model.ErrNotInLobby)
		return
	}

	hub := h.hubManager.GetOrCreateHub(code)
	sse.ServeSSE(w, r, hub, player.ID)
}
