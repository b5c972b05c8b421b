package model

import "time"

// ConnectionStatus classifies a participant's liveness within a game
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusTimeout      ConnectionStatus = "timeout"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// PresenceRecord tracks the last liveness signals for a participant.
// Continuously overwritten by heartbeats; last writer wins
type PresenceRecord struct {
	GameID        GameID
	PlayerID      PlayerID
	LastHeartbeat time.Time
	LastActivity  time.Time
	Status        ConnectionStatus
	IsCurrentTurn bool // participant's team holds the turn
}

// Substitution maps a disconnected participant to the automated stand-in
// occupying their seat, so reconnection can reverse the swap
type Substitution struct {
	GameID      GameID
	OriginalID  PlayerID
	BotID       PlayerID
	DisplayName string // original's display name
	Team        Team
	Role        Role
	CreatedAt   time.Time
}
