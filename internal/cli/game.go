package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameClueCmd())
	cmd.AddCommand(newGameGuessCmd())
	cmd.AddCommand(newGameEndTurnCmd())
	cmd.AddCommand(newGameLogCmd())
	cmd.AddCommand(newGamePresenceCmd())
	cmd.AddCommand(newGameHeartbeatCmd())
	cmd.AddCommand(newGameAbandonCmd())

	return cmd
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <code>",
		Short: "Start a new game in the lobby (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result GameState

			if err := client.Post(fmt.Sprintf("/api/v1/lobbies/%s/game", code), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get current game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result GameState

			if err := client.Get(fmt.Sprintf("/api/v1/lobbies/%s/game", code), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameClueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clue <code> <word> <count>",
		Short: "Submit a clue (caller only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, word := args[0], args[1]

			count, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid count: %w", err)
			}

			req := map[string]any{"word": word, "count": count}
			var result GameState

			if err := client.Post(fmt.Sprintf("/api/v1/lobbies/%s/game/clue", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameGuessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guess <code> <card-id>",
		Short: "Guess a card (guesser only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			cardID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid card id: %w", err)
			}

			req := map[string]int{"card_id": cardID}
			var result GuessResult

			if err := client.Post(fmt.Sprintf("/api/v1/lobbies/%s/game/guess", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameEndTurnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end-turn <code> <turn>",
		Short: "End the current turn without using remaining guesses",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			turnSeq, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid turn number: %w", err)
			}

			req := map[string]int{"turn_seq": turnSeq}
			var result GameState

			if err := client.Post(fmt.Sprintf("/api/v1/lobbies/%s/game/end-turn", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log <code>",
		Short: "Show the game's guess log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result []GuessEvent

			if err := client.Get(fmt.Sprintf("/api/v1/lobbies/%s/game/events", code), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGamePresenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presence <code>",
		Short: "Show participant connection status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result []Presence

			if err := client.Get(fmt.Sprintf("/api/v1/lobbies/%s/game/presence", code), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameHeartbeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heartbeat <code>",
		Short: "Send a presence heartbeat (reverses bot substitution)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			if err := client.Post(fmt.Sprintf("/api/v1/lobbies/%s/game/heartbeat", code), nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Heartbeat sent")
			return nil
		},
	}
}

func newGameAbandonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abandon <code>",
		Short: "Abandon the current game (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			if err := client.Delete(fmt.Sprintf("/api/v1/lobbies/%s/game", code)); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Game abandoned")
			return nil
		},
	}
}
