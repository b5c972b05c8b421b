package response

import (
	"time"

	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/auth"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
		IsBot:       p.IsBot,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
}

// LobbyConfig represents lobby configuration
type LobbyConfig struct {
	Mode               string `json:"mode"`
	TurnTimeoutSeconds int    `json:"turn_timeout_seconds"`
}

// LobbyConfigFromModel converts model.LobbyConfig
func LobbyConfigFromModel(c model.LobbyConfig) LobbyConfig {
	return LobbyConfig{
		Mode:               string(c.Mode),
		TurnTimeoutSeconds: int(c.TurnTimeout.Seconds()),
	}
}

// LobbyMember represents a lobby member
type LobbyMember struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Team        string `json:"team,omitempty"`
	Role        string `json:"role"`
	IsHost      bool   `json:"is_host"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// LobbyMemberFromModel converts model.LobbyMember
func LobbyMemberFromModel(m model.LobbyMember) LobbyMember {
	return LobbyMember{
		PlayerID:    string(m.Player.ID),
		DisplayName: m.Player.DisplayName,
		Team:        string(m.Team),
		Role:        string(m.Role),
		IsHost:      m.IsHost,
		IsBot:       m.Player.IsBot,
	}
}

// GameSummary represents a completed game summary
type GameSummary struct {
	ID          string    `json:"id"`
	Winner      *string   `json:"winner"`
	TurnsPlayed int       `json:"turns_played"`
	CompletedAt time.Time `json:"completed_at"`
}

// GameSummaryFromModel converts model.GameSummary
func GameSummaryFromModel(g model.GameSummary) GameSummary {
	var winner *string
	if g.Winner != model.TeamNone {
		w := string(g.Winner)
		winner = &w
	}
	return GameSummary{
		ID:          string(g.ID),
		Winner:      winner,
		TurnsPlayed: g.TurnsPlayed,
		CompletedAt: g.CompletedAt,
	}
}

// Lobby represents a lobby in API responses
type Lobby struct {
	Code        string        `json:"code"`
	State       string        `json:"state"`
	Config      LobbyConfig   `json:"config"`
	Members     []LobbyMember `json:"members"`
	CurrentGame *string       `json:"current_game"`
	GameHistory []GameSummary `json:"game_history,omitempty"`
}

// LobbyFromModel converts model.Lobby
func LobbyFromModel(l *model.Lobby) Lobby {
	members := make([]LobbyMember, len(l.Members))
	for i, m := range l.Members {
		members[i] = LobbyMemberFromModel(m)
	}

	history := make([]GameSummary, len(l.GameHistory))
	for i, g := range l.GameHistory {
		history[i] = GameSummaryFromModel(g)
	}

	var currentGame *string
	if l.CurrentGame != nil {
		g := string(*l.CurrentGame)
		currentGame = &g
	}

	return Lobby{
		Code:        string(l.Code),
		State:       string(l.State),
		Config:      LobbyConfigFromModel(l.Config),
		Members:     members,
		CurrentGame: currentGame,
		GameHistory: history,
	}
}

// Card represents one board card. Kind is omitted for cards the viewer is
// not allowed to see
type Card struct {
	ID         int    `json:"id"`
	Word       string `json:"word"`
	Kind       string `json:"kind,omitempty"`
	Revealed   bool   `json:"revealed"`
	RevealedBy string `json:"revealed_by,omitempty"`
}

// Board represents the shared game board
type Board struct {
	Cards     []Card         `json:"cards"`
	Allocated map[string]int `json:"allocated"`
}

// BoardFromModel converts model.Board to response Board. The model board is
// assumed to already be visibility filtered for the viewer
func BoardFromModel(b *model.Board) Board {
	cards := make([]Card, len(b.Cards))
	for i, c := range b.Cards {
		cards[i] = Card{
			ID:         int(c.ID),
			Word:       c.Word,
			Kind:       string(c.Kind),
			Revealed:   c.Revealed,
			RevealedBy: string(c.RevealedBy),
		}
	}
	allocated := make(map[string]int, len(b.Allocated))
	for team, n := range b.Allocated {
		allocated[string(team)] = n
	}
	return Board{Cards: cards, Allocated: allocated}
}

// Participant represents a game seat
type Participant struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Team        string `json:"team"`
	Role        string `json:"role"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// Clue represents the active clue
type Clue struct {
	Word    string `json:"word"`
	Count   int    `json:"count"`
	Team    string `json:"team"`
	TurnSeq int    `json:"turn_seq"`
}

// GameState represents the current game state
type GameState struct {
	ID           string        `json:"id"`
	Mode         string        `json:"mode"`
	Phase        string        `json:"phase"`
	CurrentTeam  string        `json:"current_team"`
	TurnSeq      int           `json:"turn_seq"`
	StartingTeam string        `json:"starting_team"`
	Participants []Participant `json:"participants"`
	ActiveClue   *Clue         `json:"active_clue,omitempty"`
	GuessesMade  int           `json:"guesses_made"`
	Board        *Board        `json:"board,omitempty"`
	Winner       *string       `json:"winner,omitempty"`
}

// GameStateFromModel converts model.Game to response GameState. The board,
// if provided, must already be filtered for the viewer
func GameStateFromModel(g *model.Game, board *model.Board) GameState {
	participants := make([]Participant, len(g.Participants))
	for i, p := range g.Participants {
		participants[i] = Participant{
			PlayerID:    string(p.PlayerID),
			DisplayName: p.DisplayName,
			Team:        string(p.Team),
			Role:        string(p.Role),
			IsBot:       p.IsBot,
		}
	}

	var clue *Clue
	if g.ActiveClue != nil {
		clue = &Clue{
			Word:    g.ActiveClue.Word,
			Count:   g.ActiveClue.Count,
			Team:    string(g.ActiveClue.Team),
			TurnSeq: g.ActiveClue.TurnSeq,
		}
	}

	var boardResp *Board
	if board != nil {
		b := BoardFromModel(board)
		boardResp = &b
	}

	var winner *string
	if g.Winner != model.TeamNone {
		w := string(g.Winner)
		winner = &w
	}

	return GameState{
		ID:           string(g.ID),
		Mode:         string(g.Mode),
		Phase:        string(g.Phase),
		CurrentTeam:  string(g.CurrentTeam),
		TurnSeq:      g.TurnSeq,
		StartingTeam: string(g.StartingTeam),
		Participants: participants,
		ActiveClue:   clue,
		GuessesMade:  g.GuessesMade,
		Board:        boardResp,
		Winner:       winner,
	}
}

// GuessEvent represents one entry of the guess log
type GuessEvent struct {
	PlayerID  string    `json:"player_id"`
	Team      string    `json:"team"`
	Word      string    `json:"word"`
	CardID    int       `json:"card_id"`
	Outcome   string    `json:"outcome"`
	TurnSeq   int       `json:"turn_seq"`
	Timestamp time.Time `json:"timestamp"`
}

// GuessEventFromModel converts model.GuessEvent
func GuessEventFromModel(e model.GuessEvent) GuessEvent {
	return GuessEvent{
		PlayerID:  string(e.PlayerID),
		Team:      string(e.Team),
		Word:      e.Word,
		CardID:    int(e.CardID),
		Outcome:   string(e.Outcome),
		TurnSeq:   e.TurnSeq,
		Timestamp: e.Timestamp,
	}
}

// GuessResponse is the response after an accepted guess
type GuessResponse struct {
	Event GuessEvent `json:"event"`
	Game  GameState  `json:"game"`
}

// Presence represents a participant's liveness
type Presence struct {
	PlayerID      string    `json:"player_id"`
	Status        string    `json:"status"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	IsCurrentTurn bool      `json:"is_current_turn"`
}

// PresenceFromModel converts model.PresenceRecord
func PresenceFromModel(p *model.PresenceRecord) Presence {
	return Presence{
		PlayerID:      string(p.PlayerID),
		Status:        string(p.Status),
		LastHeartbeat: p.LastHeartbeat,
		IsCurrentTurn: p.IsCurrentTurn,
	}
}
