package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/medge/codewords/internal/model"
)

// Broadcaster pushes JSON-encoded game updates to lobby event streams.
// Payloads carry only public state; clients fetch the full (visibility
// filtered) game view themselves
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

func (b *Broadcaster) send(lobbyCode model.LobbyCode, eventName string, payload any) {
	hub := b.hubManager.GetHub(lobbyCode)
	if hub == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("sse failed to encode payload",
			slog.String("lobby", string(lobbyCode)),
			slog.String("event", eventName),
			slog.Any("error", err))
		return
	}

	hub.BroadcastEvent(eventName, string(data))
}

// BroadcastLobbyUpdate signals that lobby membership or seating changed
func (b *Broadcaster) BroadcastLobbyUpdate(lobby *model.Lobby) {
	type member struct {
		PlayerID    model.PlayerID `json:"player_id"`
		DisplayName string         `json:"display_name"`
		Team        model.Team     `json:"team"`
		Role        model.Role     `json:"role"`
		IsHost      bool           `json:"is_host"`
		IsBot       bool           `json:"is_bot"`
	}

	members := make([]member, 0, len(lobby.Members))
	for _, m := range lobby.Members {
		members = append(members, member{
			PlayerID:    m.Player.ID,
			DisplayName: m.Player.DisplayName,
			Team:        m.Team,
			Role:        m.Role,
			IsHost:      m.IsHost,
			IsBot:       m.Player.IsBot,
		})
	}

	b.send(lobby.Code, "lobby-update", map[string]any{
		"state":   lobby.State,
		"members": members,
	})
}

// BroadcastGameStarted signals that a game has begun
func (b *Broadcaster) BroadcastGameStarted(lobbyCode model.LobbyCode, game *model.Game) {
	b.send(lobbyCode, "game-started", map[string]any{
		"game_id":       game.ID,
		"starting_team": game.StartingTeam,
		"mode":          game.Mode,
	})
}

// BroadcastClueGiven signals the current turn's clue. The clue is public
// once accepted, so broadcasting it to all clients leaks nothing
func (b *Broadcaster) BroadcastClueGiven(lobbyCode model.LobbyCode, game *model.Game) {
	if game.ActiveClue == nil {
		return
	}
	b.send(lobbyCode, "clue-given", map[string]any{
		"game_id":  game.ID,
		"team":     game.ActiveClue.Team,
		"word":     game.ActiveClue.Word,
		"count":    game.ActiveClue.Count,
		"turn_seq": game.ActiveClue.TurnSeq,
	})
}

// BroadcastGuessMade signals an accepted guess and its outcome
func (b *Broadcaster) BroadcastGuessMade(lobbyCode model.LobbyCode, event *model.GuessEvent) {
	b.send(lobbyCode, "guess-made", map[string]any{
		"game_id":   event.GameID,
		"player_id": event.PlayerID,
		"team":      event.Team,
		"word":      event.Word,
		"card_id":   event.CardID,
		"outcome":   event.Outcome,
		"turn_seq":  event.TurnSeq,
	})
}

// BroadcastTurnEnded signals possession changing hands
func (b *Broadcaster) BroadcastTurnEnded(lobbyCode model.LobbyCode, game *model.Game) {
	b.send(lobbyCode, "turn-ended", map[string]any{
		"game_id":      game.ID,
		"turn_seq":     game.TurnSeq,
		"current_team": game.CurrentTeam,
	})
}

// BroadcastGameFinished signals the game's end and winner
func (b *Broadcaster) BroadcastGameFinished(lobbyCode model.LobbyCode, game *model.Game) {
	b.send(lobbyCode, "game-finished", map[string]any{
		"game_id": game.ID,
		"winner":  game.Winner,
	})
}

// BroadcastSubstitution signals a bot taking over a disconnected player's seat
func (b *Broadcaster) BroadcastSubstitution(lobbyCode model.LobbyCode, sub *model.Substitution) {
	b.send(lobbyCode, "player-substituted", map[string]any{
		"game_id":      sub.GameID,
		"player_id":    sub.OriginalID,
		"bot_id":       sub.BotID,
		"display_name": sub.DisplayName,
		"team":         sub.Team,
		"role":         sub.Role,
	})
}

// BroadcastResumption signals a returning player reclaiming their seat
func (b *Broadcaster) BroadcastResumption(lobbyCode model.LobbyCode, gameID model.GameID, playerID model.PlayerID) {
	b.send(lobbyCode, "player-resumed", map[string]any{
		"game_id":   gameID,
		"player_id": playerID,
	})
}
