package bot

import "github.com/medge/codewords/internal/model"

// StrategyRandom is the default registered strategy name
const StrategyRandom = "random"

// Strategy defines how a bot plays its seat
type Strategy interface {
	// ChooseClue selects a clue word and count for a bot caller.
	// candidates is a pool of legal words drawn from the game's wordlist
	ChooseClue(game *model.Game, board *model.Board, candidates []string) (string, int)
	// ChooseCard selects an unrevealed card for a bot guesser to reveal
	ChooseCard(game *model.Game, board *model.Board) model.CardID
	// ContinueGuessing reports whether a bot guesser should keep guessing
	// or voluntarily pass the turn
	ContinueGuessing(game *model.Game) bool
}
