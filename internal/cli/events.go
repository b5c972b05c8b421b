package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <code>",
		Short: "Stream SSE events from a lobby",
		Long: `Connect to the lobby's SSE endpoint and stream events in real-time.

Events include:
  - lobby-update: Member list or seating changed
  - game-started: Game has started
  - clue-given: Caller submitted a clue
  - guess-made: Guesser revealed a card
  - turn-ended: Turn passed to the other team
  - game-finished: Game over, winner decided
  - player-substituted: Bot took over a disconnected player
  - player-resumed: Player reclaimed their seat from a bot

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	return cmd
}

// SSEEvent is one parsed server-sent event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(lobbyCode string, jsonOutput bool) error {
	// The token rides in the query string: browser EventSource clients
	// cannot set headers, and the CLI authenticates the same way
	streamURL := strings.TrimSuffix(cfg.ServerURL, "/") + "/api/v1/lobbies/" + lobbyCode + "/stream"
	if cfg.Token != "" {
		streamURL += "?token=" + url.QueryEscape(cfg.Token)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No client timeout: the stream stays open until interrupted
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Printf("Connected to lobby %s\n", lobbyCode)
	}

	err = readStream(resp.Body, jsonOutput)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

// readStream parses the SSE wire format: "event:" and "data:" lines
// accumulate until a blank line terminates the event
func readStream(body io.Reader, jsonOutput bool) error {
	scanner := bufio.NewScanner(body)
	var event string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if event != "" {
				printEvent(event, strings.Join(dataLines, "\n"), jsonOutput)
			}
			event = ""
			dataLines = nil
		}
	}
	return scanner.Err()
}

func printEvent(event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		line, _ := json.Marshal(SSEEvent{Time: now, Event: event, Data: data})
		fmt.Println(string(line))
		return
	}

	display := strings.ReplaceAll(data, "\n", " ")
	if len(display) > 120 {
		display = display[:120] + "..."
	}
	fmt.Printf("[%s] %s: %s\n", now.Format("2006-01-02 15:04:05"), event, display)
}
