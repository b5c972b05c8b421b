package model

import "time"

// GuessOutcome classifies the card a guesser revealed
type GuessOutcome string

const (
	OutcomeCorrect  GuessOutcome = "correct"  // Own team's card
	OutcomeOpponent GuessOutcome = "opponent" // Other team's card
	OutcomeNeutral  GuessOutcome = "neutral"
	OutcomeAssassin GuessOutcome = "assassin"
)

// OutcomeForCard classifies a card kind from the guessing team's perspective
func OutcomeForCard(kind CardKind, team Team) GuessOutcome {
	switch kind {
	case CardAssassin:
		return OutcomeAssassin
	case CardNeutral:
		return OutcomeNeutral
	case KindForTeam(team):
		return OutcomeCorrect
	default:
		return OutcomeOpponent
	}
}

// GuessEvent is one entry in a game's append-only guess log
type GuessEvent struct {
	GameID    GameID
	PlayerID  PlayerID
	Team      Team
	Word      string
	CardID    CardID
	Outcome   GuessOutcome
	TurnSeq   int
	Timestamp time.Time
}
