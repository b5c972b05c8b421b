package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLobbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lobby",
		Short: "Lobby management commands",
	}

	cmd.AddCommand(newLobbyCreateCmd())
	cmd.AddCommand(newLobbyGetCmd())
	cmd.AddCommand(newLobbyJoinCmd())
	cmd.AddCommand(newLobbyLeaveCmd())
	cmd.AddCommand(newLobbySeatCmd())
	cmd.AddCommand(newLobbyConfigCmd())
	cmd.AddCommand(newLobbyKickCmd())
	cmd.AddCommand(newLobbyTransferHostCmd())
	cmd.AddCommand(newLobbyBotCmd())
	cmd.AddCommand(newLobbyQRCmd())

	return cmd
}

func newLobbyCreateCmd() *cobra.Command {
	var mode string
	var turnTimeout int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new lobby",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if mode != "" {
				req["mode"] = mode
			}
			if turnTimeout > 0 {
				req["turn_timeout_seconds"] = turnTimeout
			}

			var result Lobby

			if err := client.Post("/api/v1/lobbies", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Word pool: english, russian (default: server default)")
	cmd.Flags().IntVar(&turnTimeout, "turn-timeout", 0, "Turn timeout in seconds (0 = no timer)")

	return cmd
}

func newLobbyGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get lobby details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result Lobby

			if err := client.Get(fmt.Sprintf("/api/v1/lobbies/%s", code), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newLobbyJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Join a lobby",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result Lobby

			if err := client.Post(fmt.Sprintf("/api/v1/lobbies/%s/join", code), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newLobbyLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <code>",
		Short: "Leave a lobby",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			if err := client.Post(fmt.Sprintf("/api/v1/lobbies/%s/leave", code), nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Left lobby %s", code))
			return nil
		},
	}
}

func newLobbySeatCmd() *cobra.Command {
	var team, role string

	cmd := &cobra.Command{
		Use:   "seat <code>",
		Short: "Take a team seat (or return to spectating)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			req := map[string]string{"team": team, "role": role}
			var result Lobby

			if err := client.Put(fmt.Sprintf("/api/v1/lobbies/%s/seat", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "Team: red, blue, none (required)")
	cmd.Flags().StringVar(&role, "role", "", "Role: caller, guesser, spectator (required)")
	_ = cmd.MarkFlagRequired("team")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func newLobbyConfigCmd() *cobra.Command {
	var mode string
	var turnTimeout int

	cmd := &cobra.Command{
		Use:   "config <code>",
		Short: "Update lobby configuration (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			req := map[string]any{}
			if mode != "" {
				req["mode"] = mode
			}
			if cmd.Flags().Changed("turn-timeout") {
				req["turn_timeout_seconds"] = turnTimeout
			}
			if len(req) == 0 {
				return fmt.Errorf("nothing to update: set --mode or --turn-timeout")
			}

			var result LobbyConfig

			if err := client.Patch(fmt.Sprintf("/api/v1/lobbies/%s/config", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Word pool: english, russian")
	cmd.Flags().IntVar(&turnTimeout, "turn-timeout", 0, "Turn timeout in seconds (0 = no timer)")

	return cmd
}

func newLobbyKickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kick <code> <player-id>",
		Short: "Remove a member from the lobby (host only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, playerID := args[0], args[1]

			if err := client.Delete(fmt.Sprintf("/api/v1/lobbies/%s/members/%s", code, playerID)); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Kicked %s from %s", playerID, code))
			return nil
		},
	}
}

func newLobbyTransferHostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer-host <code> <player-id>",
		Short: "Transfer lobby hosting to another member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, playerID := args[0], args[1]

			req := map[string]string{"player_id": playerID}
			var result Lobby

			if err := client.Post(fmt.Sprintf("/api/v1/lobbies/%s/transfer-host", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newLobbyBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Bot seat commands",
	}

	cmd.AddCommand(newLobbyBotAddCmd())
	cmd.AddCommand(newLobbyBotRemoveCmd())

	return cmd
}

func newLobbyBotAddCmd() *cobra.Command {
	var team, role, strategy string

	cmd := &cobra.Command{
		Use:   "add <code>",
		Short: "Add a bot to a seat (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			req := map[string]string{"team": team, "role": role}
			if strategy != "" {
				req["strategy"] = strategy
			}
			var result Lobby

			if err := client.Post(fmt.Sprintf("/api/v1/lobbies/%s/bots", code), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "Team: red, blue (required)")
	cmd.Flags().StringVar(&role, "role", "", "Role: caller, guesser (required)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Bot strategy (default: random)")
	_ = cmd.MarkFlagRequired("team")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func newLobbyBotRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <code> <player-id>",
		Short: "Remove a bot from the lobby (host only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, playerID := args[0], args[1]

			if err := client.Delete(fmt.Sprintf("/api/v1/lobbies/%s/bots/%s", code, playerID)); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Removed bot %s from %s", playerID, code))
			return nil
		},
	}
}

func newLobbyQRCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "qr <code>",
		Short: "Download the lobby join QR code as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			data, err := client.GetRaw(fmt.Sprintf("/api/v1/lobbies/%s/qr", code))
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = fmt.Sprintf("%s.png", code)
			}
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write QR image: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Wrote %s", outPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output file (default: <code>.png)")

	return cmd
}
