package handlers

import (
	"errors"
	"time"

	"obrolan/server/internal/models"
	"obrolan/server/internal/normalize"
	"obrolan/server/internal/store"
	ws "obrolan/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
)

// AddContactRequest represents add contact request body
type AddContactRequest struct {
	Email string `json:"email"`
}

// AddContact adds a new contact by email. On success both halves of the
// mutual edge exist; on any failure neither does.
func (h *Handler) AddContact(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var req AddContactRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	targetEmail := normalize.Email(req.Email)
	if targetEmail == "" {
		return fail(c, fiber.StatusBadRequest, "Email is required")
	}

	self, err := h.users.GetByID(c.Context(), userID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Database error")
	}

	// Check if trying to add self (emails are stored normalized)
	if targetEmail == self.Email {
		return fail(c, fiber.StatusBadRequest, "You cannot add yourself as a contact")
	}

	target, err := h.users.GetByEmail(c.Context(), targetEmail)
	if errors.Is(err, store.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, "User with this email not found")
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Database error")
	}

	// Direct existence check keyed by the target's ID, not a scan
	exists, err := h.contacts.Exists(c.Context(), self.ID, target.ID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Database error")
	}
	if exists {
		return fail(c, fiber.StatusConflict, "Contact already added")
	}

	edge, err := h.contacts.Add(c.Context(), self, target)
	if errors.Is(err, store.ErrAlreadyExists) {
		return fail(c, fiber.StatusConflict, "Contact already added")
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to add contact")
	}

	// Both participants get a live contact-list update
	h.hub.BroadcastToUsers([]string{self.ID, target.ID}, ws.WSMessage{
		Type:      ws.EventContactsUpdated,
		Payload:   ws.ContactPreviewPayload{ContactID: target.ID, LastMessage: ""},
		Timestamp: time.Now(),
	})

	return created(c, edge)
}

// GetContacts returns the caller's contact edges, most recent conversation
// first, contacts without any message last.
func (h *Handler) GetContacts(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	edges, err := h.contacts.ListByOwner(c.Context(), userID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Database error")
	}

	if edges == nil {
		edges = []models.ContactEdge{}
	}

	return ok(c, edges)
}
