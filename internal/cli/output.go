package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Lobby:
		o.printLobby(v)
	case LobbyConfig:
		o.printLobbyConfig(v)
	case GameState:
		o.printGameState(v)
	case GuessResult:
		o.printGuessResult(v)
	case []GuessEvent:
		o.printGuessEvents(v)
	case []Presence:
		o.printPresence(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// LobbyConfig response type
type LobbyConfig struct {
	Mode               string `json:"mode"`
	TurnTimeoutSeconds int    `json:"turn_timeout_seconds"`
}

// LobbyMember response type
type LobbyMember struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Team        string `json:"team,omitempty"`
	Role        string `json:"role"`
	IsHost      bool   `json:"is_host"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// Lobby response type
type Lobby struct {
	Code        string        `json:"code"`
	State       string        `json:"state"`
	Config      LobbyConfig   `json:"config"`
	Members     []LobbyMember `json:"members"`
	CurrentGame *string       `json:"current_game"`
}

// Card response type
type Card struct {
	ID         int    `json:"id"`
	Word       string `json:"word"`
	Kind       string `json:"kind,omitempty"`
	Revealed   bool   `json:"revealed"`
	RevealedBy string `json:"revealed_by,omitempty"`
}

// Board response type
type Board struct {
	Cards     []Card         `json:"cards"`
	Allocated map[string]int `json:"allocated"`
}

// Participant response type
type Participant struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Team        string `json:"team"`
	Role        string `json:"role"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// Clue response type
type Clue struct {
	Word    string `json:"word"`
	Count   int    `json:"count"`
	Team    string `json:"team"`
	TurnSeq int    `json:"turn_seq"`
}

// GameState response type
type GameState struct {
	ID           string        `json:"id"`
	Mode         string        `json:"mode"`
	Phase        string        `json:"phase"`
	CurrentTeam  string        `json:"current_team"`
	TurnSeq      int           `json:"turn_seq"`
	StartingTeam string        `json:"starting_team"`
	Participants []Participant `json:"participants"`
	ActiveClue   *Clue         `json:"active_clue,omitempty"`
	GuessesMade  int           `json:"guesses_made"`
	Board        *Board        `json:"board,omitempty"`
	Winner       *string       `json:"winner,omitempty"`
}

// GuessEvent response type
type GuessEvent struct {
	PlayerID  string    `json:"player_id"`
	Team      string    `json:"team"`
	Word      string    `json:"word"`
	CardID    int       `json:"card_id"`
	Outcome   string    `json:"outcome"`
	TurnSeq   int       `json:"turn_seq"`
	Timestamp time.Time `json:"timestamp"`
}

// GuessResult response type
type GuessResult struct {
	Event GuessEvent `json:"event"`
	Game  GameState  `json:"game"`
}

// Presence response type
type Presence struct {
	PlayerID      string    `json:"player_id"`
	Status        string    `json:"status"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	IsCurrentTurn bool      `json:"is_current_turn"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	if p.IsGuest {
		fmt.Println("Guest: yes")
	}
	if p.IsBot {
		fmt.Println("Bot: yes")
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printLobby(l Lobby) {
	fmt.Printf("Lobby: %s\n", l.Code)
	fmt.Printf("State: %s\n", l.State)
	fmt.Printf("Mode: %s\n", l.Config.Mode)
	if l.Config.TurnTimeoutSeconds > 0 {
		fmt.Printf("Turn Timeout: %ds\n", l.Config.TurnTimeoutSeconds)
	}
	if l.CurrentGame != nil {
		fmt.Printf("Current Game: %s\n", *l.CurrentGame)
	}
	fmt.Printf("Members (%d):\n", len(l.Members))
	for _, m := range l.Members {
		var tags []string
		if m.IsHost {
			tags = append(tags, "host")
		}
		if m.IsBot {
			tags = append(tags, "bot")
		}
		tagStr := ""
		if len(tags) > 0 {
			tagStr = " [" + strings.Join(tags, ", ") + "]"
		}
		seat := m.Role
		if m.Team != "" && m.Team != "none" {
			seat = m.Team + " " + m.Role
		}
		fmt.Printf("  - %s (%s) - %s%s\n", m.DisplayName, m.PlayerID, seat, tagStr)
	}
}

func (o *Output) printLobbyConfig(c LobbyConfig) {
	fmt.Printf("Mode: %s\n", c.Mode)
	fmt.Printf("Turn Timeout: %ds\n", c.TurnTimeoutSeconds)
}

func (o *Output) printGameState(g GameState) {
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("Phase: %s\n", g.Phase)
	fmt.Printf("Turn: %d (%s)\n", g.TurnSeq, g.CurrentTeam)

	if g.ActiveClue != nil {
		fmt.Printf("Clue: %q for %d (%d guessed)\n", g.ActiveClue.Word, g.ActiveClue.Count, g.GuessesMade)
	}

	if len(g.Participants) > 0 {
		fmt.Println("Seats:")
		for _, p := range g.Participants {
			botStr := ""
			if p.IsBot {
				botStr = " [bot]"
			}
			fmt.Printf("  - %s: %s %s%s\n", p.DisplayName, p.Team, p.Role, botStr)
		}
	}

	if g.Board != nil {
		fmt.Println("\nBoard:")
		o.printBoard(g.Board)
	}

	if g.Winner != nil {
		fmt.Printf("\nWinner: %s\n", *g.Winner)
	}
}

// printBoard lays the 25 cards out five per row. Revealed cards show their
// kind in brackets; hidden kinds (caller view) are marked with a prefix
func (o *Output) printBoard(b *Board) {
	const perRow = 5

	for i, c := range b.Cards {
		label := c.Word
		if c.Revealed {
			label = fmt.Sprintf("[%s:%s]", c.Word, kindAbbrev(c.Kind))
		} else if c.Kind != "" {
			label = fmt.Sprintf("%s·%s", kindAbbrev(c.Kind), c.Word)
		}
		fmt.Printf(" %-16s", label)
		if (i+1)%perRow == 0 {
			fmt.Println()
		}
	}
	if len(b.Cards)%perRow != 0 {
		fmt.Println()
	}

	if len(b.Allocated) > 0 {
		fmt.Print("Allocation:")
		for team, n := range b.Allocated {
			fmt.Printf(" %s=%d", team, n)
		}
		fmt.Println()
	}
}

func kindAbbrev(kind string) string {
	switch kind {
	case "assassin":
		return "X"
	case "neutral":
		return "-"
	default:
		if kind == "" {
			return "?"
		}
		return strings.ToUpper(kind[:1])
	}
}

func (o *Output) printGuessResult(g GuessResult) {
	fmt.Printf("Guessed %q: %s\n", g.Event.Word, g.Event.Outcome)
	fmt.Println()
	o.printGameState(g.Game)
}

func (o *Output) printGuessEvents(events []GuessEvent) {
	if len(events) == 0 {
		fmt.Println("No guesses yet")
		return
	}
	for _, e := range events {
		fmt.Printf("[turn %d] %s (%s) guessed %q: %s\n", e.TurnSeq, e.PlayerID, e.Team, e.Word, e.Outcome)
	}
}

func (o *Output) printPresence(records []Presence) {
	for _, p := range records {
		turnStr := ""
		if p.IsCurrentTurn {
			turnStr = " (current turn)"
		}
		fmt.Printf("  - %s: %s, last heartbeat %s%s\n",
			p.PlayerID, p.Status, p.LastHeartbeat.Format(time.RFC3339), turnStr)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
