package board

import (
	"context"

	"github.com/medge/codewords/internal/dependencies/random"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/services/wordlist"
	"github.com/medge/codewords/internal/storage"
)

// Service provides board dealing and card reveal operations
type Service struct {
	storage  storage.Storage
	wordlist *wordlist.Service
	random   random.Random
}

// New creates a new board Service
func New(storage storage.Storage, wl *wordlist.Service, rnd random.Random) *Service {
	return &Service{
		storage:  storage,
		wordlist: wl,
		random:   rnd,
	}
}

// Deal creates and persists the shared board for a game. The starting team
// is allocated one more card than its opponent
func (s *Service) Deal(ctx context.Context, gameID model.GameID, mode model.Mode, startingTeam model.Team) (*model.Board, error) {
	words, err := s.wordlist.Deal(mode, model.BoardSize, s.random)
	if err != nil {
		return nil, err
	}

	secondTeam := startingTeam.Opponent()

	kinds := make([]model.CardKind, 0, model.BoardSize)
	for i := 0; i < model.StartingTeamCards; i++ {
		kinds = append(kinds, model.KindForTeam(startingTeam))
	}
	for i := 0; i < model.SecondTeamCards; i++ {
		kinds = append(kinds, model.KindForTeam(secondTeam))
	}
	for i := 0; i < model.NeutralCards; i++ {
		kinds = append(kinds, model.CardNeutral)
	}
	for i := 0; i < model.AssassinCards; i++ {
		kinds = append(kinds, model.CardAssassin)
	}

	// Fisher-Yates over the kinds so allegiances land on random words
	for i := len(kinds) - 1; i > 0; i-- {
		j := s.random.Intn(i + 1)
		kinds[i], kinds[j] = kinds[j], kinds[i]
	}

	cards := make([]model.Card, model.BoardSize)
	for i := range cards {
		cards[i] = model.Card{
			ID:   model.CardID(i),
			Word: words[i],
			Kind: kinds[i],
		}
	}

	board := &model.Board{
		GameID: gameID,
		Cards:  cards,
		Allocated: map[model.Team]int{
			startingTeam: model.StartingTeamCards,
			secondTeam:   model.SecondTeamCards,
		},
	}

	if err := s.storage.SaveBoard(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

// GetBoard retrieves a game's board
func (s *Service) GetBoard(ctx context.Context, gameID model.GameID) (*model.Board, error) {
	return s.storage.GetBoard(ctx, gameID)
}

// Reveal marks a card revealed and persists the board. The card's kind is
// returned so the caller can classify the guess outcome
func (s *Service) Reveal(ctx context.Context, board *model.Board, cardID model.CardID, by model.PlayerID, turnSeq int) (model.CardKind, error) {
	card := board.Card(cardID)
	if card == nil {
		return "", model.ErrCardNotFound
	}
	if card.Revealed {
		return "", model.ErrCardRevealed
	}

	card.Revealed = true
	card.RevealedBy = by
	card.TurnSeq = turnSeq

	if err := s.storage.SaveBoard(ctx, board); err != nil {
		return "", err
	}
	return card.Kind, nil
}

// Interface for dependency injection
type ServiceInterface interface {
	Deal(ctx context.Context, gameID model.GameID, mode model.Mode, startingTeam model.Team) (*model.Board, error)
	GetBoard(ctx context.Context, gameID model.GameID) (*model.Board, error)
	Reveal(ctx context.Context, board *model.Board, cardID model.CardID, by model.PlayerID, turnSeq int) (model.CardKind, error)
}

var _ ServiceInterface = (*Service)(nil)
