// Package ws provides the WebSocket hub for real-time sync events.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pricetrack/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Single-user tool; the API is not exposed beyond the shop network.
		return true
	},
}

// Event types pushed to clients.
const (
	EventEntrySaved          = "entry.saved"
	EventEntryQueued         = "entry.queued"
	EventSyncStarted         = "sync.started"
	EventSyncCompleted       = "sync.completed"
	EventSyncStalled         = "sync.stalled"
	EventConnectivityChanged = "connectivity.changed"
)

// Envelope wraps all WebSocket messages.
type Envelope struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// client represents one WebSocket connection.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains active client connections and broadcasts sync events.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	logger  *zap.Logger
}

// NewHub creates a WebSocket hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*client),
		logger:  logger,
	}
}

// Serve upgrades an HTTP request to a WebSocket connection and registers it.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, 64),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket client connected",
		zap.String("client_id", c.id),
		zap.Int("total", total))

	go h.writePump(c)
	go h.readPump(c)
}

// writePump forwards broadcast messages to one client.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// readPump discards inbound frames and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// drop unregisters a client and closes its send channel.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket client disconnected",
		zap.String("client_id", c.id),
		zap.Int("total", total))
}

// Broadcast sends an event to all connected clients. Slow clients are
// dropped rather than allowed to block delivery.
func (h *Hub) Broadcast(eventType string, data map[string]interface{}) {
	envelope := Envelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	message, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Warn("failed to marshal event", zap.Error(err))
		return
	}

	h.mu.Lock()
	for id, c := range h.clients {
		select {
		case c.send <- message:
		default:
			delete(h.clients, id)
			close(c.send)
		}
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// =====================================================
// Sync engine event sink
// =====================================================

// EntrySynced notifies clients that an entry reached the remote store.
func (h *Hub) EntrySynced(entry models.NewPriceEntry) {
	h.Broadcast(EventEntrySaved, map[string]interface{}{
		"item_name": entry.ItemName,
		"supplier":  entry.Supplier,
		"price":     entry.Price,
	})
}

// EntryQueued notifies clients that an entry was accepted for later delivery.
func (h *Hub) EntryQueued(op models.PendingOperation) {
	h.Broadcast(EventEntryQueued, map[string]interface{}{
		"operation_id": op.ID,
		"item_name":    op.Entry.ItemName,
		"supplier":     op.Entry.Supplier,
	})
}

// DrainStarted notifies clients that queue replay began.
func (h *Hub) DrainStarted(pending int) {
	h.Broadcast(EventSyncStarted, map[string]interface{}{
		"pending": pending,
	})
}

// DrainCompleted notifies clients that the queue was fully flushed.
func (h *Hub) DrainCompleted(flushed int) {
	h.Broadcast(EventSyncCompleted, map[string]interface{}{
		"flushed": flushed,
	})
}

// DrainStalled notifies clients that replay stopped at the queue head.
func (h *Hub) DrainStalled(remaining int, err error) {
	h.Broadcast(EventSyncStalled, map[string]interface{}{
		"remaining": remaining,
		"error":     err.Error(),
	})
}

// ConnectivityChanged notifies clients about online state transitions.
func (h *Hub) ConnectivityChanged(online bool) {
	h.Broadcast(EventConnectivityChanged, map[string]interface{}{
		"online": online,
	})
}
