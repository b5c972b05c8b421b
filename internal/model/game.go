package model

import "time"

// GameID uniquely identifies a game
type GameID string

// Phase represents the current stage of a turn
type Phase string

const (
	PhaseAwaitingClue Phase = "awaiting_clue" // Caller has not yet given a clue
	PhaseGuessing     Phase = "guessing"      // Clue active, guessers revealing cards
	PhaseFinished     Phase = "finished"      // Winner set or game abandoned
)

// Participant is a seat in a running game: a snapshot of a lobby member's
// team and role at game start, updated in place on substitution
type Participant struct {
	PlayerID    PlayerID
	DisplayName string
	Team        Team
	Role        Role
	IsBot       bool
}

// Clue is a caller's word-and-count hint for the current turn.
// Immutable once accepted; at most one exists per turn sequence number
type Clue struct {
	Word     string
	Count    int
	Team     Team
	CallerID PlayerID
	TurnSeq  int
	GivenAt  time.Time
}

// Game represents a single running match between two teams
type Game struct {
	ID           GameID
	LobbyCode    LobbyCode
	Mode         Mode
	Participants []Participant

	// Turn state. TurnSeq strictly increases; exactly one team holds the
	// turn at any time
	Phase         Phase
	CurrentTeam   Team
	TurnSeq       int
	TurnStartedAt time.Time
	ActiveClue    *Clue // nil while Phase is awaiting_clue
	GuessesMade   int   // accepted guesses against ActiveClue

	StartingTeam Team
	Winner       Team // TeamNone until decided
	Ended        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Participant returns the participant seated as the given player, or nil
func (g *Game) Participant(playerID PlayerID) *Participant {
	for i := range g.Participants {
		if g.Participants[i].PlayerID == playerID {
			return &g.Participants[i]
		}
	}
	return nil
}

// TeamCaller returns the caller participant for a team, or nil
func (g *Game) TeamCaller(team Team) *Participant {
	for i := range g.Participants {
		if g.Participants[i].Team == team && g.Participants[i].Role == RoleCaller {
			return &g.Participants[i]
		}
	}
	return nil
}

// GuessesRemaining returns how many guesses the active clue still allows
func (g *Game) GuessesRemaining() int {
	if g.ActiveClue == nil {
		return 0
	}
	remaining := g.ActiveClue.Count - g.GuessesMade
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GameSummary is a lightweight record of a completed game
type GameSummary struct {
	ID          GameID
	Winner      Team
	TurnsPlayed int
	CompletedAt time.Time
}
