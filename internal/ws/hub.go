package ws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chat-backend/internal/observability"
)

// ConnInfo describes one subscribed connection.
type ConnInfo struct {
	ConnID      string
	UserID      int
	IP          string
	ConnectedAt time.Time
}

// Envelope is the frame written to local subscribers. It mirrors what a
// hosted pub/sub client would receive: the channel, the event name, and the
// event payload.
type Envelope struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Data    any    `json:"data"`
}

// subscriber holds one connection's metadata and its write lock. The
// websocket transport allows one concurrent writer per connection.
type subscriber struct {
	info    ConnInfo
	writeMu sync.Mutex
}

// Hub is an in-process channel fan-out used when no hosted transport is
// configured. It satisfies the same Notifier contract the Pusher client does.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*websocket.Conn]*subscriber
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{channels: make(map[string]map[*websocket.Conn]*subscriber)}
}

// Add registers a connection as a subscriber of a channel.
func (h *Hub) Add(channel string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*websocket.Conn]*subscriber)
	}
	h.channels[channel][conn] = &subscriber{info: info}
}

// Remove unregisters a connection from a channel.
func (h *Hub) Remove(channel string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.channels[channel]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.channels, channel)
		}
	}
}

// Subscribers returns the number of live subscriptions on a channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// Trigger writes the event to every subscriber of the channel. Connections
// that fail to accept the write are dropped.
func (h *Hub) Trigger(ctx context.Context, channel, event string, payload any) error {
	body, err := json.Marshal(Envelope{Channel: channel, Event: event, Data: payload})
	if err != nil {
		return err
	}

	h.mu.RLock()
	subs := make(map[*websocket.Conn]*subscriber, len(h.channels[channel]))
	for conn, sub := range h.channels[channel] {
		subs[conn] = sub
	}
	h.mu.RUnlock()

	for conn, sub := range subs {
		sub.writeMu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, body)
		sub.writeMu.Unlock()
		if err != nil {
			log.Printf("websocket write error channel=%s: %v", channel, err)
			conn.Close()
			h.Remove(channel, conn)
			observability.IncWSEvent("ws_error")
		}
	}
	return nil
}

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
