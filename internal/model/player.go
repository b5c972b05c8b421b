package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a person (or an automated stand-in) who can join lobbies
type Player struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool   // true for unregistered players
	IsBot       bool   // true for automated stand-in participants
	BotStrategy string // strategy name; empty for humans
	CreatedAt   time.Time
}

// RegisteredPlayer extends Player with authentication data
// Stored separately so the password hash never travels with session data
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
