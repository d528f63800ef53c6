package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message type constants sent to dashboard clients.
const (
	TypeConnection    = "connection"
	TypeDatasetLoaded = "dataset:loaded"
)

// Message is the envelope for every frame pushed to clients.
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub maintains the set of connected dashboard clients and pushes
// dataset events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     *slog.Logger

	writeWait time.Duration
	pongWait  time.Duration
	upgrader  websocket.Upgrader
}

// NewHub creates a hub with default timings. Call Run before
// registering clients.
func NewHub(logger *slog.Logger) *Hub {
	return NewHubWithConfig(logger, defaultReadBufferSize, defaultWriteBufferSize, defaultWriteWait, defaultPongWait)
}

// NewHubWithConfig creates a hub with explicit buffer sizes and
// connection timings. Zero values fall back to the defaults.
func NewHubWithConfig(logger *slog.Logger, readBufferSize, writeBufferSize int, writeWait, pongWait time.Duration) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if readBufferSize <= 0 {
		readBufferSize = defaultReadBufferSize
	}
	if writeBufferSize <= 0 {
		writeBufferSize = defaultWriteBufferSize
	}
	if writeWait <= 0 {
		writeWait = defaultWriteWait
	}
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		writeWait:  writeWait,
		pongWait:   pongWait,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
		},
	}
}

// Run drives the hub loop until the context is canceled. Run closes
// every client on shutdown.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client connected",
				slog.String("client_id", client.id),
				slog.Int("clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client disconnected",
				slog.String("client_id", client.id),
				slog.Int("clients", count))

		case payload := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Slow client, drop the frame rather than block.
					h.logger.Warn("dropping frame for slow client",
						slog.String("client_id", client.id))
				}
			}
			h.mu.RUnlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastDatasetLoaded notifies clients that a new dataset replaced
// the current one, so dashboards can refetch.
func (h *Hub) BroadcastDatasetLoaded(contentHash string, rows int) {
	h.send(Message{
		Type:      TypeDatasetLoaded,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"content_hash": contentHash,
			"rows":         rows,
		},
	})
}

func (h *Hub) send(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast message",
			slog.String("type", msg.Type),
			slog.String("error", err.Error()))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("broadcast channel full, dropping message",
			slog.String("type", msg.Type))
	}
}
