package server

import (
	"townsquare/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// LiveFeedHandler upgrades GET /api/ws to a WebSocket pushing content
// events (comments, reactions, RSVPs, news). Anonymous watchers are
// allowed; a Bearer token additionally subscribes the connection to
// user-targeted events.
func (s *Server) LiveFeedHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)

		client := notifications.NewClient(s.hub, conn, userID)
		if !s.hub.RegisterClient(client) {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"too many connections"}`))
			_ = conn.Close()
			return
		}

		client.TrySend([]byte(`{"type":"connected"}`))

		go client.WritePump()
		// Read pump runs in the handler goroutine and blocks until the
		// peer disconnects; it unregisters the client on the way out.
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
