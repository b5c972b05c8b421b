package events

import (
	"context"
	"time"

	"github.com/medge/codewords/internal/model"
)

// EventType classifies published game events
type EventType string

const (
	EventGameStarted       EventType = "game.started"
	EventClueGiven         EventType = "game.clue_given"
	EventGuessMade         EventType = "game.guess_made"
	EventTurnEnded         EventType = "game.turn_ended"
	EventGameFinished      EventType = "game.finished"
	EventPlayerSubstituted EventType = "game.player_substituted"
	EventPlayerResumed     EventType = "game.player_resumed"
)

// Event is the envelope published for every notable game happening
type Event struct {
	Type      EventType       `json:"type"`
	GameID    model.GameID    `json:"game_id"`
	LobbyCode model.LobbyCode `json:"lobby_code,omitempty"`
	PlayerID  model.PlayerID  `json:"player_id,omitempty"`
	Team      model.Team      `json:"team,omitempty"`
	TurnSeq   int             `json:"turn_seq"`
	Payload   any             `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher delivers game events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher discards all events. Used when no broker is configured
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (NoopPublisher) Close() error                                   { return nil }

var _ Publisher = NoopPublisher{}
