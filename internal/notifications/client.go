package notifications

import (
	"log/slog"
	"time"

	"townsquare/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must stay under pongWait
	maxMessageSize = 4096

	sendBufferSize = 256
)

// Client pairs one websocket connection with its hub registration.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn

	// Send buffers outbound feed payloads; the hub closes it on
	// unregister.
	Send chan []byte

	// UserID is zero for anonymous feed watchers.
	UserID uint
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// ReadPump drains the connection until it closes. The feed is
// server-push only; inbound frames only matter for close and pong
// processing.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read closed", "user_id", c.UserID, "error", err)
			}
			return
		}
	}
}

// WritePump flushes the send buffer to the connection and keeps the
// peer alive with periodic pings. Exits when the hub closes Send or a
// write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, payload []byte) error {
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(messageType, payload)
}

// TrySend queues a message without ever blocking a broadcast. A full
// buffer drops the message and queues a drop notice so the client can
// re-fetch; a closed channel is absorbed.
func (c *Client) TrySend(message []byte) {
	defer func() {
		if r := recover(); r != nil {
			middleware.WebSocketDrops.WithLabelValues("closed").Inc()
		}
	}()

	select {
	case c.Send <- message:
		return
	default:
	}

	middleware.WebSocketDrops.WithLabelValues("full").Inc()
	slog.Warn("websocket buffer full, dropped message", "user_id", c.UserID)

	notice := []byte(`{"type":"messages_dropped","payload":{"reason":"buffer_full"}}`)
	select {
	case c.Send <- notice:
	default:
	}
}
