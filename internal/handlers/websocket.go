package handlers

import (
	ws "obrolan/server/internal/websocket"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// WebSocketUpgrade checks if the request should be upgraded to WebSocket
func (h *Handler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}

	return fail(c, fiber.StatusUpgradeRequired, "WebSocket upgrade required")
}

// WebSocketHandler handles WebSocket connections
func (h *Handler) WebSocketHandler(c *websocket.Conn) {
	// Get user info from context (set by auth middleware)
	userID := c.Locals("userID").(string)
	name, _ := c.Locals("name").(string)

	client := ws.NewClient(userID, name, c, h.hub, h.signaler)

	h.hub.Register <- client

	// Start write pump in a separate goroutine; ReadPump blocks until the
	// connection closes and tears the subscription down on its way out.
	go client.WritePump()
	client.ReadPump()
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(c *fiber.Ctx) error {
	return ok(c, fiber.Map{
		"onlineUsers": h.hub.GetOnlineCount(),
		"userIds":     h.hub.GetOnlineUsers(),
	})
}
