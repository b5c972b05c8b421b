package bot

import (
	"github.com/medge/codewords/internal/dependencies/random"
	"github.com/medge/codewords/internal/model"
)

// RandomStrategy gives single-card clues and reveals random unrevealed cards
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChooseClue picks the first candidate that would pass the clue gate's
// board-overlap check, always for a single card
func (s *RandomStrategy) ChooseClue(game *model.Game, board *model.Board, candidates []string) (string, int) {
	for _, word := range candidates {
		if board.WordOverlaps(word) {
			continue
		}
		return word, 1
	}
	return "", 0
}

// ChooseCard picks a random unrevealed card
func (s *RandomStrategy) ChooseCard(game *model.Game, board *model.Board) model.CardID {
	var hidden []model.CardID
	for _, c := range board.Cards {
		if !c.Revealed {
			hidden = append(hidden, c.ID)
		}
	}
	if len(hidden) == 0 {
		return 0
	}
	return hidden[s.random.Intn(len(hidden))]
}

// ContinueGuessing keeps guessing while the clue allows it; the random
// strategy never passes voluntarily
func (s *RandomStrategy) ContinueGuessing(game *model.Game) bool {
	return game.GuessesRemaining() > 0
}
