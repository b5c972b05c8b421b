package sse

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/medge/codewords/internal/model"
)

// Hub manages event stream clients for a single lobby
type Hub struct {
	lobbyCode   model.LobbyCode
	clients     map[*Client]bool
	mu          sync.RWMutex
	logger      *slog.Logger
	clientGauge prometheus.Gauge // may be nil

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub creates a new Hub for a lobby. clientGauge tracks the connected
// client count and may be nil
func NewHub(lobbyCode model.LobbyCode, logger *slog.Logger, clientGauge prometheus.Gauge) *Hub {
	return &Hub{
		lobbyCode:   lobbyCode,
		clients:     make(map[*Client]bool),
		logger:      logger.With(slog.String("lobby", string(lobbyCode))),
		clientGauge: clientGauge,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan []byte, 256),
		done:        make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("sse hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			if h.clientGauge != nil {
				h.clientGauge.Inc()
			}
			h.logger.Info("sse client registered",
				slog.String("player_id", string(client.playerID)),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				if h.clientGauge != nil {
					h.clientGauge.Dec()
				}
				h.logger.Info("sse client unregistered",
					slog.String("player_id", string(client.playerID)),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			dropped := 0
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					dropped++
					h.logger.Warn("sse message dropped - client buffer full",
						slog.String("player_id", string(client.playerID)))
				}
			}
			h.mu.RUnlock()
			if dropped > 0 {
				h.logger.Warn("sse broadcast partial failure",
					slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			if h.clientGauge != nil {
				h.clientGauge.Sub(float64(clientCount))
			}
			h.logger.Info("sse hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast sends a message to all clients
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("sse broadcast dropped - hub buffer full")
	}
}

// BroadcastEvent sends an SSE event with a name and data
func (h *Hub) BroadcastEvent(eventName, data string) {
	h.Broadcast(formatSSEMessage(eventName, data))
}

// Close shuts down the hub
func (h *Hub) Close() {
	close(h.done)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage formats an SSE frame. Each line of data gets its own
// "data: " prefix as the protocol requires
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteString("\n")
	for _, line := range strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// HubManager manages hubs for all lobbies
type HubManager struct {
	hubs        map[model.LobbyCode]*Hub
	mu          sync.RWMutex
	logger      *slog.Logger
	clientGauge prometheus.Gauge // may be nil
}

// NewHubManager creates a new HubManager. clientGauge counts connected
// clients across every hub and may be nil
func NewHubManager(logger *slog.Logger, clientGauge prometheus.Gauge) *HubManager {
	return &HubManager{
		hubs:        make(map[model.LobbyCode]*Hub),
		logger:      logger.With(slog.String("component", "sse")),
		clientGauge: clientGauge,
	}
}

// GetOrCreateHub returns the hub for a lobby, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(lobbyCode model.LobbyCode) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[lobbyCode]; ok {
		return hub
	}

	hub := NewHub(lobbyCode, m.logger, m.clientGauge)
	m.hubs[lobbyCode] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a lobby, or nil if it doesn't exist
func (m *HubManager) GetHub(lobbyCode model.LobbyCode) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[lobbyCode]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(lobbyCode model.LobbyCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[lobbyCode]; ok {
		hub.Close()
		delete(m.hubs, lobbyCode)
		m.logger.Info("sse hub removed", slog.String("lobby", string(lobbyCode)))
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for code, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, code)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("sse empty hubs cleaned up", slog.Int("removed", removed))
	}
}
