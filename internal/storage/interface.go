package storage

import (
	"context"
	"time"

	"github.com/medge/codewords/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Lobby operations
	SaveLobby(ctx context.Context, lobby *model.Lobby) error
	GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error)
	DeleteLobby(ctx context.Context, code model.LobbyCode) error
	LobbyExists(ctx context.Context, code model.LobbyCode) (bool, error)

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	ListActiveGames(ctx context.Context) ([]model.GameID, error)

	// Board operations (one shared board per game)
	SaveBoard(ctx context.Context, board *model.Board) error
	GetBoard(ctx context.Context, gameID model.GameID) (*model.Board, error)
	DeleteBoard(ctx context.Context, gameID model.GameID) error

	// Guess log operations (append-only per game)
	AppendGuessEvent(ctx context.Context, event *model.GuessEvent) error
	GetGuessEvents(ctx context.Context, gameID model.GameID) ([]model.GuessEvent, error)

	// Presence operations
	SavePresence(ctx context.Context, record *model.PresenceRecord) error
	GetPresence(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.PresenceRecord, error)
	GetPresenceForGame(ctx context.Context, gameID model.GameID) ([]*model.PresenceRecord, error)
	DeletePresenceForGame(ctx context.Context, gameID model.GameID) error

	// Substitution operations
	SaveSubstitution(ctx context.Context, sub *model.Substitution) error
	GetSubstitution(ctx context.Context, gameID model.GameID, originalID model.PlayerID) (*model.Substitution, error)
	DeleteSubstitution(ctx context.Context, gameID model.GameID, originalID model.PlayerID) error

	// Lock operations. Acquisition is compare-and-set with a lease: it
	// succeeds only when no live lock exists, and returns a fencing token
	// that must be presented to release. Expired locks are reclaimable
	AcquireTurnLock(ctx context.Context, gameID model.GameID, owner model.PlayerID, ttl time.Duration) (token string, acquired bool, err error)
	ReleaseTurnLock(ctx context.Context, gameID model.GameID, token string) error
	AcquireSubstitutionLock(ctx context.Context, gameID model.GameID, playerID model.PlayerID, owner model.PlayerID, ttl time.Duration) (token string, acquired bool, err error)
	ReleaseSubstitutionLock(ctx context.Context, gameID model.GameID, playerID model.PlayerID, token string) error

	// Wordlist operations
	SaveWordlist(ctx context.Context, mode model.Mode, words []string) error
	GetWordlist(ctx context.Context, mode model.Mode) ([]string, error)
}
