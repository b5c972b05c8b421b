package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "codewords",
		Short: "CLI tool for the codewords game API",
		Long: `codewords is a CLI tool for interacting with the codewords JSON API.

It supports player management, lobby and seating operations, in-game
actions (clues, guesses, ending turns) and real-time SSE event streaming.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Flags and env win over the persisted token file
			if err := cfg.LoadToken(); err != nil {
				return err
			}
			client = NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: CODEWORDS_SERVER)")
	flags.StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: CODEWORDS_TOKEN)")
	flags.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: CODEWORDS_TOKEN_FILE)")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	rootCmd.AddCommand(
		newPlayerCmd(),
		newLobbyCmd(),
		newGameCmd(),
		newEventsCmd(),
		newHealthCmd(),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
