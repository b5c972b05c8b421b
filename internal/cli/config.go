package cli

import (
	"os"
	"path/filepath"
)

// Config holds the CLI's connection settings. The session token persists
// in a file between invocations so login survives across commands
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
}

// DefaultConfig resolves config from the environment
func DefaultConfig() *Config {
	return &Config{
		ServerURL: envOr("CODEWORDS_SERVER", "http://localhost:8080"),
		Token:     os.Getenv("CODEWORDS_TOKEN"),
		TokenFile: envOr("CODEWORDS_TOKEN_FILE", defaultTokenFile()),
		Output:    "text",
	}
}

// LoadToken reads the persisted token unless one is already set. A missing
// token file just means the user has not logged in yet
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	c.Token = string(data)
	return nil
}

// SaveToken persists the token for later invocations
func (c *Config) SaveToken(token string) error {
	c.Token = token

	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0700); err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codewords/token"
	}
	return filepath.Join(home, ".codewords", "token")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
