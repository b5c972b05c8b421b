package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// releaseScript deletes a lock key only when it still holds the caller's
// fencing token, so a stale holder cannot release a reclaimed lock
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	key := playerKey(player.ID)

	// Apply TTL only for guest players
	var ttl time.Duration
	if player.IsGuest {
		ttl = s.cfg.GuestPlayerTTL
	}

	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.client.Del(ctx, playerKey(id)).Err()
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, registeredPlayerKey(rp.PlayerID), data, 0) // No TTL
	pipe.Set(ctx, usernameIndexKey(rp.Username), string(rp.PlayerID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	data, err := s.client.Get(ctx, registeredPlayerKey(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var rp model.RegisteredPlayer
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	playerIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetRegisteredPlayer(ctx, model.PlayerID(playerIDStr))
}

// Lobby operations

func (s *Storage) SaveLobby(ctx context.Context, lobby *model.Lobby) error {
	data, err := json.Marshal(lobby)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, lobbyKey(lobby.Code), data, s.cfg.LobbyTTL).Err()
}

func (s *Storage) GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error) {
	data, err := s.client.Get(ctx, lobbyKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrLobbyNotFound
		}
		return nil, err
	}

	var lobby model.Lobby
	if err := json.Unmarshal(data, &lobby); err != nil {
		return nil, err
	}
	return &lobby, nil
}

func (s *Storage) DeleteLobby(ctx context.Context, code model.LobbyCode) error {
	return s.client.Del(ctx, lobbyKey(code)).Err()
}

func (s *Storage) LobbyExists(ctx context.Context, code model.LobbyCode) (bool, error) {
	exists, err := s.client.Exists(ctx, lobbyKey(code)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	// Keep the active-games index in sync with the ended flag
	pipe := s.client.Pipeline()
	pipe.Set(ctx, gameKey(game.ID), data, s.cfg.GameTTL)
	if game.Ended {
		pipe.SRem(ctx, activeGamesKey(), string(game.ID))
	} else {
		pipe.SAdd(ctx, activeGamesKey(), string(game.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, gameKey(id))
	pipe.SRem(ctx, activeGamesKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListActiveGames(ctx context.Context) ([]model.GameID, error) {
	members, err := s.client.SMembers(ctx, activeGamesKey()).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]model.GameID, 0, len(members))
	for _, m := range members {
		ids = append(ids, model.GameID(m))
	}
	return ids, nil
}

// Board operations

func (s *Storage) SaveBoard(ctx context.Context, board *model.Board) error {
	data, err := json.Marshal(board)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, boardKey(board.GameID), data, s.cfg.GameTTL).Err()
}

func (s *Storage) GetBoard(ctx context.Context, gameID model.GameID) (*model.Board, error) {
	data, err := s.client.Get(ctx, boardKey(gameID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrBoardNotFound
		}
		return nil, err
	}

	var board model.Board
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *Storage) DeleteBoard(ctx context.Context, gameID model.GameID) error {
	return s.client.Del(ctx, boardKey(gameID)).Err()
}

// Guess log operations

func (s *Storage) AppendGuessEvent(ctx context.Context, event *model.GuessEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := guessLogKey(event.GameID)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.cfg.GameTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGuessEvents(ctx context.Context, gameID model.GameID) ([]model.GuessEvent, error) {
	entries, err := s.client.LRange(ctx, guessLogKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]model.GuessEvent, 0, len(entries))
	for _, entry := range entries {
		var event model.GuessEvent
		if err := json.Unmarshal([]byte(entry), &event); err != nil {
			continue // Skip invalid data
		}
		events = append(events, event)
	}
	return events, nil
}

// Presence operations

func (s *Storage) SavePresence(ctx context.Context, record *model.PresenceRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	key := presenceKey(record.GameID, record.PlayerID)
	indexKey := presenceForGameIndexKey(record.GameID)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, s.cfg.PresenceTTL)
	pipe.SAdd(ctx, indexKey, key)
	pipe.Expire(ctx, indexKey, s.cfg.PresenceTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPresence(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.PresenceRecord, error) {
	data, err := s.client.Get(ctx, presenceKey(gameID, playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPresenceNotFound
		}
		return nil, err
	}

	var record model.PresenceRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Storage) GetPresenceForGame(ctx context.Context, gameID model.GameID) ([]*model.PresenceRecord, error) {
	indexKey := presenceForGameIndexKey(gameID)

	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*model.PresenceRecord{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*model.PresenceRecord, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Record may have expired
		}
		var record model.PresenceRecord
		if err := json.Unmarshal([]byte(val.(string)), &record); err != nil {
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}

func (s *Storage) DeletePresenceForGame(ctx context.Context, gameID model.GameID) error {
	indexKey := presenceForGameIndexKey(gameID)

	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, indexKey)
	_, err = pipe.Exec(ctx)
	return err
}

// Substitution operations

func (s *Storage) SaveSubstitution(ctx context.Context, sub *model.Substitution) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, substitutionKey(sub.GameID, sub.OriginalID), data, s.cfg.GameTTL).Err()
}

func (s *Storage) GetSubstitution(ctx context.Context, gameID model.GameID, originalID model.PlayerID) (*model.Substitution, error) {
	data, err := s.client.Get(ctx, substitutionKey(gameID, originalID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSubstitutionNotFound
		}
		return nil, err
	}

	var sub model.Substitution
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Storage) DeleteSubstitution(ctx context.Context, gameID model.GameID, originalID model.PlayerID) error {
	return s.client.Del(ctx, substitutionKey(gameID, originalID)).Err()
}

// Lock operations

func (s *Storage) AcquireTurnLock(ctx context.Context, gameID model.GameID, owner model.PlayerID, ttl time.Duration) (string, bool, error) {
	return s.acquireLock(ctx, turnLockKey(gameID), ttl)
}

func (s *Storage) ReleaseTurnLock(ctx context.Context, gameID model.GameID, token string) error {
	return s.releaseLock(ctx, turnLockKey(gameID), token)
}

func (s *Storage) AcquireSubstitutionLock(ctx context.Context, gameID model.GameID, playerID model.PlayerID, owner model.PlayerID, ttl time.Duration) (string, bool, error) {
	return s.acquireLock(ctx, substitutionLockKey(gameID, playerID), ttl)
}

func (s *Storage) ReleaseSubstitutionLock(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string) error {
	return s.releaseLock(ctx, substitutionLockKey(gameID, playerID), token)
}

func (s *Storage) acquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	// SET NX with TTL is the compare-and-set plus lease in one operation;
	// Redis expires the key if the holder crashes before releasing
	acquired, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !acquired {
		return "", false, nil
	}
	return token, true, nil
}

func (s *Storage) releaseLock(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, s.client, []string{key}, token).Err()
}

// Wordlist operations

func (s *Storage) SaveWordlist(ctx context.Context, mode model.Mode, words []string) error {
	key := wordlistKey(mode)

	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)

	if len(words) > 0 {
		members := make([]interface{}, len(words))
		for i, w := range words {
			members[i] = w
		}
		pipe.SAdd(ctx, key, members...)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetWordlist(ctx context.Context, mode model.Mode) ([]string, error) {
	key := wordlistKey(mode)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrWordlistNotLoaded
	}

	return s.client.SMembers(ctx, key).Result()
}
