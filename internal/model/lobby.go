package model

import "time"

// LobbyCode is a human-readable identifier for joining lobbies
type LobbyCode string

// LobbyState represents the current state of a lobby
type LobbyState string

const (
	LobbyStateWaiting LobbyState = "waiting" // No game in progress
	LobbyStateInGame  LobbyState = "in_game" // Game currently active
)

// Team is one of the two competing sides
type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
	TeamNone Team = "" // Unassigned members and spectators
)

// Opponent returns the other team
func (t Team) Opponent() Team {
	switch t {
	case TeamRed:
		return TeamBlue
	case TeamBlue:
		return TeamRed
	default:
		return TeamNone
	}
}

// Role distinguishes the clue-giving caller from guessers
type Role string

const (
	RoleCaller    Role = "caller"
	RoleGuesser   Role = "guesser"
	RoleSpectator Role = "spectator"
)

// Mode selects the language of board words and the clue charset check
type Mode string

const (
	ModeEnglish Mode = "english"
	ModeRussian Mode = "russian"
)

// LobbyMember represents a player's membership in a lobby
type LobbyMember struct {
	Player   Player
	Team     Team
	Role     Role
	IsHost   bool
	JoinedAt time.Time
}

// LobbyConfig holds configurable settings for games in this lobby
type LobbyConfig struct {
	Mode        Mode
	TurnTimeout time.Duration // 0 disables server-side turn expiry
}

// DefaultLobbyConfig returns the default lobby configuration
func DefaultLobbyConfig() LobbyConfig {
	return LobbyConfig{
		Mode:        ModeEnglish,
		TurnTimeout: 0,
	}
}

// Lobby represents a group of players who can play games together
type Lobby struct {
	Code        LobbyCode
	State       LobbyState
	Members     []LobbyMember
	Config      LobbyConfig
	GameHistory []GameSummary // Completed games
	CurrentGame *GameID       // nil when State is waiting
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GetHost returns the current host member, or nil if none
func (l *Lobby) GetHost() *LobbyMember {
	for i := range l.Members {
		if l.Members[i].IsHost {
			return &l.Members[i]
		}
	}
	return nil
}

// GetMember returns the member with the given player ID, or nil if not found
func (l *Lobby) GetMember(playerID PlayerID) *LobbyMember {
	for i := range l.Members {
		if l.Members[i].Player.ID == playerID {
			return &l.Members[i]
		}
	}
	return nil
}

// TeamMembers returns all members assigned to the given team
func (l *Lobby) TeamMembers(team Team) []LobbyMember {
	var members []LobbyMember
	for _, m := range l.Members {
		if m.Team == team {
			members = append(members, m)
		}
	}
	return members
}

// Caller returns the caller for the given team, or nil if none is assigned
func (l *Lobby) Caller(team Team) *LobbyMember {
	for i := range l.Members {
		if l.Members[i].Team == team && l.Members[i].Role == RoleCaller {
			return &l.Members[i]
		}
	}
	return nil
}

// Guessers returns all guessers for the given team
func (l *Lobby) Guessers(team Team) []LobbyMember {
	var guessers []LobbyMember
	for _, m := range l.Members {
		if m.Team == team && m.Role == RoleGuesser {
			guessers = append(guessers, m)
		}
	}
	return guessers
}

// Spectators returns all members without a seat on either team
func (l *Lobby) Spectators() []LobbyMember {
	var spectators []LobbyMember
	for _, m := range l.Members {
		if m.Role == RoleSpectator {
			spectators = append(spectators, m)
		}
	}
	return spectators
}
