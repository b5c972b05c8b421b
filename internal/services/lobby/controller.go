package lobby

import (
	"context"

	"github.com/medge/codewords/internal/dependencies/clock"
	"github.com/medge/codewords/internal/dependencies/random"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/game"
	"github.com/medge/codewords/internal/storage"
)

const (
	// LobbyCodeLength is the length of generated join codes
	LobbyCodeLength = 6
	// LobbyCodeAlphabet leaves out characters easily misread from a screen
	LobbyCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Controller owns the lobby lifecycle: membership, seats, and the
// transitions into and out of a running game
type Controller struct {
	storage        storage.Storage
	gameController *game.Controller
	clock          clock.Clock
	random         random.Random
}

// NewController creates a new lobby controller
func NewController(
	storage storage.Storage,
	gameController *game.Controller,
	clock clock.Clock,
	random random.Random,
) *Controller {
	return &Controller{
		storage:        storage,
		gameController: gameController,
		clock:          clock,
		random:         random,
	}
}

// save stamps the lobby and persists it
func (c *Controller) save(ctx context.Context, lobby *model.Lobby) error {
	lobby.UpdatedAt = c.clock.Now()
	return c.storage.SaveLobby(ctx, lobby)
}

// requireHost returns ErrNotHost unless playerID is the lobby's host
func requireHost(lobby *model.Lobby, playerID model.PlayerID) error {
	host := lobby.GetHost()
	if host == nil || host.Player.ID != playerID {
		return model.ErrNotHost
	}
	return nil
}

// newCode draws join codes until one is free
func (c *Controller) newCode(ctx context.Context) (model.LobbyCode, error) {
	for {
		code := model.LobbyCode(c.random.String(LobbyCodeLength, LobbyCodeAlphabet))
		exists, err := c.storage.LobbyExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

// CreateLobby creates a lobby with the given player as its host. The host
// starts as a spectator like everyone else
func (c *Controller) CreateLobby(ctx context.Context, host model.Player) (*model.Lobby, error) {
	code, err := c.newCode(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	lobby := &model.Lobby{
		Code:   code,
		State:  model.LobbyStateWaiting,
		Config: model.DefaultLobbyConfig(),
		Members: []model.LobbyMember{{
			Player:   host,
			Team:     model.TeamNone,
			Role:     model.RoleSpectator,
			IsHost:   true,
			JoinedAt: now,
		}},
		GameHistory: []model.GameSummary{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return nil, err
	}
	return lobby, nil
}

// GetLobby retrieves a lobby by code
func (c *Controller) GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error) {
	return c.storage.GetLobby(ctx, code)
}

// JoinLobby adds a player to a lobby. New arrivals start as spectators and
// pick a seat with SetTeamRole
func (c *Controller) JoinLobby(ctx context.Context, code model.LobbyCode, player model.Player) error {
	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}
	if lobby.GetMember(player.ID) != nil {
		return model.ErrAlreadyInLobby
	}

	lobby.Members = append(lobby.Members, model.LobbyMember{
		Player:   player,
		Team:     model.TeamNone,
		Role:     model.RoleSpectator,
		JoinedAt: c.clock.Now(),
	})
	return c.save(ctx, lobby)
}

// LeaveLobby removes a player. An emptied lobby is deleted outright; a
// departing host hands the lobby to the longest-standing member
func (c *Controller) LeaveLobby(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) error {
	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}

	member := lobby.GetMember(playerID)
	if member == nil {
		return model.ErrNotInLobby
	}
	wasHost := member.IsHost

	kept := lobby.Members[:0]
	for _, m := range lobby.Members {
		if m.Player.ID != playerID {
			kept = append(kept, m)
		}
	}
	lobby.Members = kept

	if len(lobby.Members) == 0 {
		if lobby.CurrentGame != nil {
			_ = c.gameController.AbandonGame(ctx, *lobby.CurrentGame)
		}
		return c.storage.DeleteLobby(ctx, code)
	}

	if wasHost {
		lobby.Members[0].IsHost = true
	}
	return c.save(ctx, lobby)
}

// SetTeamRole assigns a member a team seat, or returns them to spectating.
// Each team has exactly one caller; claiming an occupied caller seat fails
func (c *Controller) SetTeamRole(ctx context.Context, code model.LobbyCode, playerID model.PlayerID, team model.Team, role model.Role) error {
	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}

	// Seats are fixed once a game starts
	if lobby.State == model.LobbyStateInGame {
		return model.ErrGameInProgress
	}

	member := lobby.GetMember(playerID)
	if member == nil {
		return model.ErrNotInLobby
	}

	switch {
	case role == model.RoleSpectator || team == model.TeamNone:
		member.Team = model.TeamNone
		member.Role = model.RoleSpectator
	default:
		if role == model.RoleCaller {
			if taken := lobby.Caller(team); taken != nil && taken.Player.ID != playerID {
				return model.ErrSeatTaken
			}
		}
		member.Team = team
		member.Role = role
	}

	return c.save(ctx, lobby)
}

// KickMember removes another member from the lobby. Host only
func (c *Controller) KickMember(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, targetID model.PlayerID) error {
	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}
	if err := requireHost(lobby, requestingPlayer); err != nil {
		return err
	}
	if lobby.GetMember(targetID) == nil {
		return model.ErrNotInLobby
	}

	return c.LeaveLobby(ctx, code, targetID)
}

// TransferHost makes another member the host
func (c *Controller) TransferHost(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, newHostID model.PlayerID) error {
	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}
	if err := requireHost(lobby, requestingPlayer); err != nil {
		return err
	}

	newHost := lobby.GetMember(newHostID)
	if newHost == nil {
		return model.ErrNotInLobby
	}

	lobby.GetHost().IsHost = false
	newHost.IsHost = true
	return c.save(ctx, lobby)
}

// StartGame begins a new game with the current seating. Both teams need a
// caller and at least one guesser
func (c *Controller) StartGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID) (*model.Game, error) {
	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := requireHost(lobby, requestingPlayer); err != nil {
		return nil, err
	}
	if lobby.State == model.LobbyStateInGame {
		return nil, model.ErrGameInProgress
	}
	for _, team := range []model.Team{model.TeamRed, model.TeamBlue} {
		if lobby.Caller(team) == nil || len(lobby.Guessers(team)) == 0 {
			return nil, model.ErrTeamsIncomplete
		}
	}

	g, err := c.gameController.CreateGame(ctx, code, lobby.Config.Mode, lobby.Members)
	if err != nil {
		return nil, err
	}

	lobby.State = model.LobbyStateInGame
	lobby.CurrentGame = &g.ID
	if err := c.save(ctx, lobby); err != nil {
		return nil, err
	}
	return g, nil
}

// AbandonGame ends the current game without a winner. Host only
func (c *Controller) AbandonGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID) error {
	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}
	if err := requireHost(lobby, requestingPlayer); err != nil {
		return err
	}
	if lobby.State != model.LobbyStateInGame || lobby.CurrentGame == nil {
		return model.ErrNoGameInProgress
	}

	if err := c.gameController.AbandonGame(ctx, *lobby.CurrentGame); err != nil {
		return err
	}

	lobby.State = model.LobbyStateWaiting
	lobby.CurrentGame = nil
	return c.save(ctx, lobby)
}

// CompleteGame records a finished game in lobby history and reopens seating
func (c *Controller) CompleteGame(ctx context.Context, code model.LobbyCode) error {
	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}
	if lobby.CurrentGame == nil {
		return model.ErrNoGameInProgress
	}

	summary, err := c.gameController.CreateGameSummary(ctx, *lobby.CurrentGame)
	if err != nil {
		return err
	}

	lobby.GameHistory = append(lobby.GameHistory, *summary)
	lobby.State = model.LobbyStateWaiting
	lobby.CurrentGame = nil
	return c.save(ctx, lobby)
}

// UpdateConfig replaces the lobby configuration. Host only, and never
// while a game is running
func (c *Controller) UpdateConfig(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, config model.LobbyConfig) error {
	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}
	if err := requireHost(lobby, requestingPlayer); err != nil {
		return err
	}
	if lobby.State == model.LobbyStateInGame {
		return model.ErrGameInProgress
	}

	lobby.Config = config
	return c.save(ctx, lobby)
}

// ControllerInterface is what the API and presence layers depend on
type ControllerInterface interface {
	CreateLobby(ctx context.Context, host model.Player) (*model.Lobby, error)
	GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error)
	JoinLobby(ctx context.Context, code model.LobbyCode, player model.Player) error
	LeaveLobby(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) error
	SetTeamRole(ctx context.Context, code model.LobbyCode, playerID model.PlayerID, team model.Team, role model.Role) error
	KickMember(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, targetID model.PlayerID) error
	TransferHost(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, newHostID model.PlayerID) error
	StartGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID) (*model.Game, error)
	AbandonGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID) error
	CompleteGame(ctx context.Context, code model.LobbyCode) error
	UpdateConfig(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, config model.LobbyConfig) error
}

var _ ControllerInterface = (*Controller)(nil)
