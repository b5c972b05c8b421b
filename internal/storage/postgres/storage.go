package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/retry"
	"github.com/medge/codewords/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface.
// Entities are stored as JSONB documents keyed the same way as the Redis
// backend, so all three backends stay interchangeable behind the interface
type Storage struct {
	pool *pgxpool.Pool
}

// New creates a Postgres storage connected to the given URL
func New(ctx context.Context, url string) (*Storage, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}

	// The database may still be coming up when the server starts
	pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	err = retry.DefaultPolicy().Do(pingCtx, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if err != nil {
		pool.Close()
		return nil, err
	}

	s := &Storage{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool creates a Postgres storage with an existing pool (for testing)
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close releases the connection pool
func (s *Storage) Close() {
	s.pool.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// migrate creates the schema if it does not exist
func (s *Storage) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS players (
	id TEXT PRIMARY KEY,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS registered_players (
	player_id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS lobbies (
	code TEXT PRIMARY KEY,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	ended BOOLEAN NOT NULL DEFAULT FALSE,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS boards (
	game_id TEXT PRIMARY KEY,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS guess_events (
	seq BIGSERIAL PRIMARY KEY,
	game_id TEXT NOT NULL,
	doc JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS guess_events_game_idx ON guess_events (game_id, seq);
CREATE TABLE IF NOT EXISTS presence (
	game_id TEXT NOT NULL,
	player_id TEXT NOT NULL,
	doc JSONB NOT NULL,
	PRIMARY KEY (game_id, player_id)
);
CREATE TABLE IF NOT EXISTS substitutions (
	game_id TEXT NOT NULL,
	original_id TEXT NOT NULL,
	doc JSONB NOT NULL,
	PRIMARY KEY (game_id, original_id)
);
CREATE TABLE IF NOT EXISTS locks (
	key TEXT PRIMARY KEY,
	token TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS wordlists (
	mode TEXT PRIMARY KEY,
	words TEXT[] NOT NULL
);
`)
	return err
}

func (s *Storage) saveDoc(ctx context.Context, table, keyCol, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+table+` (`+keyCol+`, doc) VALUES ($1, $2)
		 ON CONFLICT (`+keyCol+`) DO UPDATE SET doc = EXCLUDED.doc`,
		key, data)
	return err
}

func (s *Storage) getDoc(ctx context.Context, table, keyCol, key string, out any, notFound error) error {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM `+table+` WHERE `+keyCol+` = $1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, out)
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	return s.saveDoc(ctx, "players", "id", string(player.ID), player)
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	if err := s.getDoc(ctx, "players", "id", string(id), &player, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, string(id))
	return err
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO registered_players (player_id, username, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (player_id) DO UPDATE SET username = EXCLUDED.username, doc = EXCLUDED.doc`,
		string(rp.PlayerID), rp.Username, data)
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	var rp model.RegisteredPlayer
	if err := s.getDoc(ctx, "registered_players", "player_id", string(playerID), &rp, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM registered_players WHERE username = $1`, username).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

// Lobby operations

func (s *Storage) SaveLobby(ctx context.Context, lobby *model.Lobby) error {
	return s.saveDoc(ctx, "lobbies", "code", string(lobby.Code), lobby)
}

func (s *Storage) GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error) {
	var lobby model.Lobby
	if err := s.getDoc(ctx, "lobbies", "code", string(code), &lobby, model.ErrLobbyNotFound); err != nil {
		return nil, err
	}
	return &lobby, nil
}

func (s *Storage) DeleteLobby(ctx context.Context, code model.LobbyCode) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM lobbies WHERE code = $1`, string(code))
	return err
}

func (s *Storage) LobbyExists(ctx context.Context, code model.LobbyCode) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM lobbies WHERE code = $1)`, string(code)).Scan(&exists)
	return exists, err
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO games (id, ended, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET ended = EXCLUDED.ended, doc = EXCLUDED.doc`,
		string(game.ID), game.Ended, data)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var game model.Game
	if err := s.getDoc(ctx, "games", "id", string(id), &game, model.ErrGameNotFound); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, string(id))
	return err
}

func (s *Storage) ListActiveGames(ctx context.Context) ([]model.GameID, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM games WHERE NOT ended`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []model.GameID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, model.GameID(id))
	}
	return ids, rows.Err()
}

// Board operations

func (s *Storage) SaveBoard(ctx context.Context, board *model.Board) error {
	return s.saveDoc(ctx, "boards", "game_id", string(board.GameID), board)
}

func (s *Storage) GetBoard(ctx context.Context, gameID model.GameID) (*model.Board, error) {
	var board model.Board
	if err := s.getDoc(ctx, "boards", "game_id", string(gameID), &board, model.ErrBoardNotFound); err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *Storage) DeleteBoard(ctx context.Context, gameID model.GameID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM boards WHERE game_id = $1`, string(gameID))
	return err
}

// Guess log operations

func (s *Storage) AppendGuessEvent(ctx context.Context, event *model.GuessEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO guess_events (game_id, doc) VALUES ($1, $2)`,
		string(event.GameID), data)
	return err
}

func (s *Storage) GetGuessEvents(ctx context.Context, gameID model.GameID) ([]model.GuessEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM guess_events WHERE game_id = $1 ORDER BY seq`, string(gameID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.GuessEvent, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var event model.GuessEvent
		if err := json.Unmarshal(data, &event); err != nil {
			continue // Skip invalid data
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Presence operations

func (s *Storage) SavePresence(ctx context.Context, record *model.PresenceRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO presence (game_id, player_id, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (game_id, player_id) DO UPDATE SET doc = EXCLUDED.doc`,
		string(record.GameID), string(record.PlayerID), data)
	return err
}

func (s *Storage) GetPresence(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.PresenceRecord, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM presence WHERE game_id = $1 AND player_id = $2`,
		string(gameID), string(playerID)).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM presence WHERE game_id = $1`, string(gameID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*model.PresenceRecord
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var record model.PresenceRecord
		if err := json.Unmarshal(data, &record); err != nil {
			continue
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

func (s *Storage) DeletePresenceForGame(ctx context.Context, gameID model.GameID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM presence WHERE game_id = $1`, string(gameID))
	return err
}

// Substitution operations

func (s *Storage) SaveSubstitution(ctx context.Context, sub *model.Substitution) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO substitutions (game_id, original_id, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (game_id, original_id) DO UPDATE SET doc = EXCLUDED.doc`,
		string(sub.GameID), string(sub.OriginalID), data)
	return err
}

func (s *Storage) GetSubstitution(ctx context.Context, gameID model.GameID, originalID model.PlayerID) (*model.Substitution, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM substitutions WHERE game_id = $1 AND original_id = $2`,
		string(gameID), string(originalID)).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	_, err := s.pool.Exec(ctx,
		`DELETE FROM substitutions WHERE game_id = $1 AND original_id = $2`,
		string(gameID), string(originalID))
	return err
}

// Lock operations

func (s *Storage) AcquireTurnLock(ctx context.Context, gameID model.GameID, owner model.PlayerID, ttl time.Duration) (string, bool, error) {
	return s.acquireLock(ctx, "turn:"+string(gameID), ttl)
}

func (s *Storage) ReleaseTurnLock(ctx context.Context, gameID model.GameID, token string) error {
	return s.releaseLock(ctx, "turn:"+string(gameID), token)
}

func (s *Storage) AcquireSubstitutionLock(ctx context.Context, gameID model.GameID, playerID model.PlayerID, owner model.PlayerID, ttl time.Duration) (string, bool, error) {
	return s.acquireLock(ctx, "sub:"+string(gameID)+":"+string(playerID), ttl)
}

func (s *Storage) ReleaseSubstitutionLock(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string) error {
	return s.releaseLock(ctx, "sub:"+string(gameID)+":"+string(playerID), token)
}

func (s *Storage) acquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	// The upsert only wins when the existing lease has expired, giving
	// CAS semantics with automatic reclamation of crashed holders
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO locks (key, token, expires_at) VALUES ($1, $2, now() + $3)
		 ON CONFLICT (key) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at
		 WHERE locks.expires_at <= now()`,
		key, token, ttl)
	if err != nil {
		return "", false, err
	}
	if tag.RowsAffected() == 0 {
		return "", false, nil
	}
	return token, true, nil
}

func (s *Storage) releaseLock(ctx context.Context, key, token string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM locks WHERE key = $1 AND token = $2`, key, token)
	return err
}

// Wordlist operations

func (s *Storage) SaveWordlist(ctx context.Context, mode model.Mode, words []string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO wordlists (mode, words) VALUES ($1, $2)
		 ON CONFLICT (mode) DO UPDATE SET words = EXCLUDED.words`,
		string(mode), words)
	return err
}

func (s *Storage) GetWordlist(ctx context.Context, mode model.Mode) ([]string, error) {
	var words []string
	err := s.pool.QueryRow(ctx,
		`SELECT words FROM wordlists WHERE mode = $1`, string(mode)).Scan(&words)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrWordlistNotLoaded
		}
		return nil, err
	}
	return words, nil
}
