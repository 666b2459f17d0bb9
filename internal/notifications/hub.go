package notifications

import (
	"log/slog"
	"sync"
	"time"

	"townsquare/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 8
	maxTotalConns   = 10000
)

// Hub tracks open live-feed connections. Anonymous watchers register
// under user ID zero alongside authenticated ones.
type Hub struct {
	mu    sync.RWMutex
	conns map[uint]map[*Client]struct{}
	total int
}

func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// RegisterClient adds a client, enforcing per-user and global connection
// limits. Returns false when the connection should be refused.
func (h *Hub) RegisterClient(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.total >= maxTotalConns {
		slog.Warn("live feed at capacity, refusing connection", "user_id", c.UserID)
		return false
	}
	if len(h.conns[c.UserID]) >= maxConnsPerUser && c.UserID != 0 {
		slog.Warn("per-user connection limit reached", "user_id", c.UserID)
		return false
	}

	if h.conns[c.UserID] == nil {
		h.conns[c.UserID] = make(map[*Client]struct{})
	}
	h.conns[c.UserID][c] = struct{}{}
	h.total++
	middleware.ActiveWebSockets.Inc()
	return true
}

// UnregisterClient removes a client and closes its send channel.
func (h *Hub) UnregisterClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.conns, c.UserID)
	}
	h.total--
	middleware.ActiveWebSockets.Dec()
	close(c.Send)
}

// BroadcastUser delivers a message to all connections of one user.
func (h *Hub) BroadcastUser(userID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns[userID] {
		c.TrySend(message)
	}
}

// BroadcastAll delivers a message to every connected client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, set := range h.conns {
		for c := range set {
			c.TrySend(message)
		}
	}
}

// Shutdown closes every connection with a going-away frame.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	deadline := time.Now().Add(writeWait)
	for _, set := range h.conns {
		for c := range set {
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = c.Conn.WriteControl(websocket.CloseMessage, msg, deadline)
			_ = c.Conn.Close()
			close(c.Send)
			h.total--
			middleware.ActiveWebSockets.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
}
