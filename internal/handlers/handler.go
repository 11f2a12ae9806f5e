// Package handlers contains the fiber HTTP and WebSocket handlers. A Handler
// carries its dependencies explicitly instead of reaching for package globals
// so the synchronization logic can be exercised against the in-memory store.
package handlers

import (
	"obrolan/server/internal/store"
	"obrolan/server/internal/typing"
	ws "obrolan/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
)

// Handler bundles the stores, the live hub and the typing signaler.
type Handler struct {
	users    store.Users
	contacts store.Contacts
	messages store.Messages
	hub      *ws.Hub
	signaler *typing.Signaler
}

// New returns a ready-to-use Handler wired with stores, hub and signaler.
func New(users store.Users, contacts store.Contacts, messages store.Messages, hub *ws.Hub, signaler *typing.Signaler) *Handler {
	return &Handler{
		users:    users,
		contacts: contacts,
		messages: messages,
		hub:      hub,
		signaler: signaler,
	}
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}
