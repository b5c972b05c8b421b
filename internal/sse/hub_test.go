package sse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medge/codewords/internal/model"
	"github.com/medge/codewords/internal/testutil"
)

// receive waits for one message on a client's channel
func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

// waitForClients polls until the hub reports the expected client count,
// since Register hands off through the hub goroutine
func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("hub never reached %d clients", n)
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub("LOBBY1", testutil.NopLogger(), nil)
	go hub.Run()
	defer hub.Close()

	a := NewClient(hub, "alice")
	b := NewClient(hub, "bob")
	hub.Register(a)
	hub.Register(b)
	waitForClients(t, hub, 2)

	hub.Broadcast([]byte("event: ping\ndata: {}\n\n"))

	assert.Equal(t, "event: ping\ndata: {}\n\n", string(receive(t, a)))
	assert.Equal(t, "event: ping\ndata: {}\n\n", string(receive(t, b)))
}

func TestHubUnregisterClosesClient(t *testing.T) {
	hub := NewHub("LOBBY1", testutil.NopLogger(), nil)
	go hub.Run()
	defer hub.Close()

	c := NewClient(hub, "alice")
	hub.Register(c)
	waitForClients(t, hub, 1)

	hub.Unregister(c)
	waitForClients(t, hub, 0)

	_, open := <-c.send
	assert.False(t, open)
}

func TestHubTracksClientGauge(t *testing.T) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_sse_clients"})
	hub := NewHub("LOBBY1", testutil.NopLogger(), gauge)
	go hub.Run()

	// The gauge moves inside the hub goroutine, so poll for each level
	waitForGauge := func(want float64) {
		t.Helper()
		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			if promtestutil.ToFloat64(gauge) == want {
				return
			}
			time.Sleep(time.Millisecond)
		}
		t.Fatalf("gauge never reached %v", want)
	}

	a := NewClient(hub, "alice")
	b := NewClient(hub, "bob")
	hub.Register(a)
	hub.Register(b)
	waitForGauge(2)

	hub.Unregister(a)
	waitForGauge(1)

	hub.Close()
	waitForGauge(0)
}

func TestFormatSSEMessage(t *testing.T) {
	msg := formatSSEMessage("lobby-update", `{"state":"waiting"}`)
	assert.Equal(t, "event: lobby-update\ndata: {\"state\":\"waiting\"}\n\n", string(msg))
}

func TestFormatSSEMessagePrefixesEveryLine(t *testing.T) {
	msg := formatSSEMessage("note", "line one\nline two")
	assert.Equal(t, "event: note\ndata: line one\ndata: line two\n\n", string(msg))
}

func TestHubManagerReusesHubs(t *testing.T) {
	m := NewHubManager(testutil.NopLogger(), nil)

	first := m.GetOrCreateHub("LOBBY1")
	second := m.GetOrCreateHub("LOBBY1")
	assert.Same(t, first, second)

	assert.Nil(t, m.GetHub("LOBBY2"))
}

func TestHubManagerCleanupRemovesEmptyHubs(t *testing.T) {
	m := NewHubManager(testutil.NopLogger(), nil)

	busy := m.GetOrCreateHub("BUSY01")
	c := NewClient(busy, "alice")
	busy.Register(c)
	waitForClients(t, busy, 1)
	m.GetOrCreateHub("EMPTY1")

	m.CleanupEmptyHubs()

	assert.NotNil(t, m.GetHub("BUSY01"))
	assert.Nil(t, m.GetHub("EMPTY1"))
}

func TestBroadcasterSendsLobbyUpdate(t *testing.T) {
	m := NewHubManager(testutil.NopLogger(), nil)
	b := NewBroadcaster(m, testutil.NopLogger())

	hub := m.GetOrCreateHub("LOBBY1")
	c := NewClient(hub, "alice")
	hub.Register(c)
	waitForClients(t, hub, 1)

	b.BroadcastLobbyUpdate(&model.Lobby{
		Code:  "LOBBY1",
		State: model.LobbyStateWaiting,
		Members: []model.LobbyMember{
			{Player: model.Player{ID: "alice", DisplayName: "Alice"}, Team: model.TeamRed, Role: model.RoleCaller, IsHost: true},
		},
	})

	msg := string(receive(t, c))
	require.Contains(t, msg, "event: lobby-update\n")

	// Frame payload is one JSON document on the data line
	var payload struct {
		State   model.LobbyState `json:"state"`
		Members []struct {
			PlayerID model.PlayerID `json:"player_id"`
			Team     model.Team     `json:"team"`
			IsHost   bool           `json:"is_host"`
		} `json:"members"`
	}
	data := msg[len("event: lobby-update\ndata: ") : len(msg)-2]
	require.NoError(t, json.Unmarshal([]byte(data), &payload))
	assert.Equal(t, model.LobbyStateWaiting, payload.State)
	require.Len(t, payload.Members, 1)
	assert.Equal(t, model.PlayerID("alice"), payload.Members[0].PlayerID)
	assert.True(t, payload.Members[0].IsHost)
}

func TestBroadcasterSkipsUnknownLobby(t *testing.T) {
	m := NewHubManager(testutil.NopLogger(), nil)
	b := NewBroadcaster(m, testutil.NopLogger())

	// No hub exists for this code; nothing to deliver, nothing to panic on
	b.BroadcastGameFinished("GHOST1", &model.Game{ID: "g1", Winner: model.TeamRed})
}
