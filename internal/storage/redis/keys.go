package redis

import (
	"fmt"

	"github.com/medge/codewords/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "codewords"

// Key generation functions for each entity type

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// lobbyKey returns the Redis key for a Lobby
func lobbyKey(code model.LobbyCode) string {
	return fmt.Sprintf("%s:lobby:%s", keyPrefix, code)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// activeGamesKey returns the Redis key for the SET of unfinished games
func activeGamesKey() string {
	return fmt.Sprintf("%s:idx:active_games", keyPrefix)
}

// boardKey returns the Redis key for a game's Board
func boardKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:board:%s", keyPrefix, gameID)
}

// guessLogKey returns the Redis key for a game's guess event LIST
func guessLogKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:guesses:%s", keyPrefix, gameID)
}

// presenceKey returns the Redis key for a participant's presence record
func presenceKey(gameID model.GameID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:presence:%s:%s", keyPrefix, gameID, playerID)
}

// presenceForGameIndexKey returns the Redis key for the SET of presence keys
func presenceForGameIndexKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:presence_for_game:%s", keyPrefix, gameID)
}

// substitutionKey returns the Redis key for a substitution mapping
func substitutionKey(gameID model.GameID, originalID model.PlayerID) string {
	return fmt.Sprintf("%s:substitution:%s:%s", keyPrefix, gameID, originalID)
}

// turnLockKey returns the Redis key for a game's turn transition lock
func turnLockKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:lock:turn:%s", keyPrefix, gameID)
}

// substitutionLockKey returns the Redis key for a substitution lock
func substitutionLockKey(gameID model.GameID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:lock:sub:%s:%s", keyPrefix, gameID, playerID)
}

// wordlistKey returns the Redis key for a language mode's word SET
func wordlistKey(mode model.Mode) string {
	return fmt.Sprintf("%s:wordlist:%s", keyPrefix, mode)
}
