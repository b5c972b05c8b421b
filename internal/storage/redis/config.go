package redis

import "time"

// Config holds connection settings and per-entity TTLs. Guest players age
// out; registered players and everything they own are kept until deleted
type Config struct {
	// URL is the connection URL, e.g. redis://localhost:6379
	URL string

	PoolSize     int
	MinIdleConns int

	GuestPlayerTTL time.Duration
	LobbyTTL       time.Duration
	GameTTL        time.Duration
	PresenceTTL    time.Duration
}

// DefaultConfig returns the defaults used when nothing overrides them
func DefaultConfig() Config {
	return Config{
		URL:            "redis://localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		GuestPlayerTTL: 24 * time.Hour,
		LobbyTTL:       24 * time.Hour,
		GameTTL:        24 * time.Hour,
		PresenceTTL:    time.Hour,
	}
}
