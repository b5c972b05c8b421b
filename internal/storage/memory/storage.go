package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medge/codewords/internal/dependencies/clock"
	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu    sync.RWMutex
	clock clock.Clock

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	lobbies           map[model.LobbyCode]*model.Lobby
	games             map[model.GameID]*model.Game
	boards            map[model.GameID]*model.Board
	guessEvents       map[model.GameID][]model.GuessEvent
	presence          map[presenceKey]*model.PresenceRecord
	substitutions     map[presenceKey]*model.Substitution
	locks             map[string]lockEntry
	wordlists         map[model.Mode][]string
}

type presenceKey struct {
	gameID   model.GameID
	playerID model.PlayerID
}

type lockEntry struct {
	token     string
	owner     model.PlayerID
	expiresAt time.Time
}

// New creates a new in-memory storage instance
func New() *Storage {
	return NewWithClock(clock.New())
}

// NewWithClock creates an in-memory storage with an injected clock,
// so lock lease expiry can be tested without sleeping
func NewWithClock(clk clock.Clock) *Storage {
	return &Storage{
		clock:             clk,
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		lobbies:           make(map[model.LobbyCode]*model.Lobby),
		games:             make(map[model.GameID]*model.Game),
		boards:            make(map[model.GameID]*model.Board),
		guessEvents:       make(map[model.GameID][]model.GuessEvent),
		presence:          make(map[presenceKey]*model.PresenceRecord),
		substitutions:     make(map[presenceKey]*model.Substitution),
		locks:             make(map[string]lockEntry),
		wordlists:         make(map[model.Mode][]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registeredPlayers[rp.PlayerID] = rp
	s.usernameIndex[rp.Username] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return rp, nil
}

// Lobby operations

func (s *Storage) SaveLobby(ctx context.Context, lobby *model.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lobbies[lobby.Code] = lobby
	return nil
}

func (s *Storage) GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lobby, ok := s.lobbies[code]
	if !ok {
		return nil, model.ErrLobbyNotFound
	}
	return lobby, nil
}

func (s *Storage) DeleteLobby(ctx context.Context, code model.LobbyCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lobbies, code)
	return nil
}

func (s *Storage) LobbyExists(ctx context.Context, code model.LobbyCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.lobbies[code]
	return ok, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}

func (s *Storage) ListActiveGames(ctx context.Context) ([]model.GameID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []model.GameID
	for id, g := range s.games {
		if !g.Ended {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Board operations

func (s *Storage) SaveBoard(ctx context.Context, board *model.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[board.GameID] = board
	return nil
}

func (s *Storage) GetBoard(ctx context.Context, gameID model.GameID) (*model.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[gameID]
	if !ok {
		return nil, model.ErrBoardNotFound
	}
	return board, nil
}

func (s *Storage) DeleteBoard(ctx context.Context, gameID model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.boards, gameID)
	return nil
}

// Guess log operations

func (s *Storage) AppendGuessEvent(ctx context.Context, event *model.GuessEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guessEvents[event.GameID] = append(s.guessEvents[event.GameID], *event)
	return nil
}

func (s *Storage) GetGuessEvents(ctx context.Context, gameID model.GameID) ([]model.GuessEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.guessEvents[gameID]
	result := make([]model.GuessEvent, len(events))
	copy(result, events)
	return result, nil
}

// Presence operations

func (s *Storage) SavePresence(ctx context.Context, record *model.PresenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presence[presenceKey{record.GameID, record.PlayerID}] = record
	return nil
}

func (s *Storage) GetPresence(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.PresenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.presence[presenceKey{gameID, playerID}]
	if !ok {
		return nil, model.ErrPresenceNotFound
	}
	return record, nil
}

func (s *Storage) GetPresenceForGame(ctx context.Context, gameID model.GameID) ([]*model.PresenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []*model.PresenceRecord
	for key, record := range s.presence {
		if key.gameID == gameID {
			records = append(records, record)
		}
	}
	return records, nil
}

func (s *Storage) DeletePresenceForGame(ctx context.Context, gameID model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.presence {
		if key.gameID == gameID {
			delete(s.presence, key)
		}
	}
	return nil
}

// Substitution operations

func (s *Storage) SaveSubstitution(ctx context.Context, sub *model.Substitution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.substitutions[presenceKey{sub.GameID, sub.OriginalID}] = sub
	return nil
}

func (s *Storage) GetSubstitution(ctx context.Context, gameID model.GameID, originalID model.PlayerID) (*model.Substitution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.substitutions[presenceKey{gameID, originalID}]
	if !ok {
		return nil, model.ErrSubstitutionNotFound
	}
	return sub, nil
}

func (s *Storage) DeleteSubstitution(ctx context.Context, gameID model.GameID, originalID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.substitutions, presenceKey{gameID, originalID})
	return nil
}

// Lock operations

func (s *Storage) AcquireTurnLock(ctx context.Context, gameID model.GameID, owner model.PlayerID, ttl time.Duration) (string, bool, error) {
	return s.acquireLock("turn:"+string(gameID), owner, ttl)
}

func (s *Storage) ReleaseTurnLock(ctx context.Context, gameID model.GameID, token string) error {
	return s.releaseLock("turn:"+string(gameID), token)
}

func (s *Storage) AcquireSubstitutionLock(ctx context.Context, gameID model.GameID, playerID model.PlayerID, owner model.PlayerID, ttl time.Duration) (string, bool, error) {
	return s.acquireLock("sub:"+string(gameID)+":"+string(playerID), owner, ttl)
}

func (s *Storage) ReleaseSubstitutionLock(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string) error {
	return s.releaseLock("sub:"+string(gameID)+":"+string(playerID), token)
}

func (s *Storage) acquireLock(key string, owner model.PlayerID, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if existing, ok := s.locks[key]; ok && now.Before(existing.expiresAt) {
		return "", false, nil
	}

	token := uuid.NewString()
	s.locks[key] = lockEntry{
		token:     token,
		owner:     owner,
		expiresAt: now.Add(ttl),
	}
	return token, true, nil
}

func (s *Storage) releaseLock(key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Only the fencing token's holder may release; an expired-and-reclaimed
	// lock keeps the new holder's token so a stale release is a no-op
	if existing, ok := s.locks[key]; ok && existing.token == token {
		delete(s.locks, key)
	}
	return nil
}

// Wordlist operations

func (s *Storage) SaveWordlist(ctx context.Context, mode model.Mode, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]string, len(words))
	copy(stored, words)
	s.wordlists[mode] = stored
	return nil
}

func (s *Storage) GetWordlist(ctx context.Context, mode model.Mode) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	words, ok := s.wordlists[mode]
	if !ok {
		return nil, model.ErrWordlistNotLoaded
	}
	result := make([]string, len(words))
	copy(result, words)
	return result, nil
}
