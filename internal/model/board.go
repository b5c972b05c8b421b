package model

import "strings"

// CardID identifies a card within a board (0-indexed position)
type CardID int

// CardKind is the hidden allegiance of a board card
type CardKind string

const (
	CardRed      CardKind = "red"
	CardBlue     CardKind = "blue"
	CardNeutral  CardKind = "neutral"
	CardAssassin CardKind = "assassin"
)

// KindForTeam returns the card kind owned by a team
func KindForTeam(team Team) CardKind {
	if team == TeamRed {
		return CardRed
	}
	return CardBlue
}

// Board allocation constants. The starting team gets one extra card
const (
	BoardSize         = 25
	StartingTeamCards = 9
	SecondTeamCards   = 8
	NeutralCards      = 7
	AssassinCards     = 1
)

// Card is a single word on the board
type Card struct {
	ID         CardID
	Word       string
	Kind       CardKind
	Revealed   bool
	RevealedBy PlayerID // Empty until revealed
	TurnSeq    int      // Turn on which the card was revealed
}

// Board is the shared 25-card grid for a game
type Board struct {
	GameID GameID
	Cards  []Card

	// Allocated totals per team, recorded at deal time so win detection
	// never assumes a fixed count
	Allocated map[Team]int
}

// Card returns the card with the given ID, or nil if out of range
func (b *Board) Card(id CardID) *Card {
	if int(id) < 0 || int(id) >= len(b.Cards) {
		return nil
	}
	return &b.Cards[id]
}

// WordOverlaps reports whether a word equals, contains, or is contained in
// any board word. Revealed cards still count: their words stay off limits
func (b *Board) WordOverlaps(word string) bool {
	for _, c := range b.Cards {
		if strings.Contains(c.Word, word) || strings.Contains(word, c.Word) {
			return true
		}
	}
	return false
}

// RevealedCount returns the number of revealed cards of the given kind
func (b *Board) RevealedCount(kind CardKind) int {
	count := 0
	for _, c := range b.Cards {
		if c.Revealed && c.Kind == kind {
			count++
		}
	}
	return count
}

// Words returns every word on the board
func (b *Board) Words() []string {
	words := make([]string, len(b.Cards))
	for i, c := range b.Cards {
		words[i] = c.Word
	}
	return words
}

// TeamComplete reports whether every card allocated to a team is revealed
func (b *Board) TeamComplete(team Team) bool {
	return b.RevealedCount(KindForTeam(team)) == b.Allocated[team]
}
