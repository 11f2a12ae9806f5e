package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"obrolan/server/internal/models"
	"obrolan/server/internal/store"
	"obrolan/server/internal/utils"
	ws "obrolan/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
)

// SendMessageRequest represents send message request body
type SendMessageRequest struct {
	RecipientID string `json:"recipientId"`
	Body        string `json:"body"`
}

// SendMessage appends one message to the conversation, then mirrors the
// preview onto both contact edges and clears the sender's typing flag. The
// message append is the only write whose failure reaches the caller: once it
// is durable, preview and typing failures are logged and swallowed.
func (h *Handler) SendMessage(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	// Whitespace-only text writes nothing at all
	body := strings.TrimSpace(req.Body)
	if req.RecipientID == "" || body == "" {
		return fail(c, fiber.StatusBadRequest, "Recipient ID and message body are required")
	}

	sender, err := h.users.GetByID(c.Context(), userID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Database error")
	}

	if _, err := h.users.GetByID(c.Context(), req.RecipientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Recipient not found")
		}
		return fail(c, fiber.StatusInternalServerError, "Database error")
	}

	chatID := utils.ChatID(sender.ID, req.RecipientID)
	message, err := h.messages.Append(c.Context(), models.Message{
		ChatID:       chatID,
		SenderID:     sender.ID,
		SenderName:   sender.Name,
		SenderAvatar: sender.Avatar,
		RecipientID:  req.RecipientID,
		Body:         body,
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to send message")
	}

	// Best-effort from here on: the message is durable, so a failed preview
	// mirror is logged rather than rolled back.
	if err := h.contacts.UpdatePreview(c.Context(), sender.ID, req.RecipientID, message.Body, message.CreatedAt); err != nil {
		log.Printf("Failed to update contact previews for chat %s: %v", chatID, err)
	}

	h.signaler.Clear(chatID, sender.ID, sender.Name)

	h.hub.BroadcastToChat(chatID, ws.NewMessageEvent(message), "")
	h.hub.BroadcastToUsers([]string{sender.ID, req.RecipientID}, ws.WSMessage{
		Type: ws.EventContactsUpdated,
		Payload: ws.ContactPreviewPayload{
			ContactID:     sender.ID,
			LastMessage:   message.Body,
			LastMessageAt: &message.CreatedAt,
		},
		Timestamp: message.CreatedAt,
	})

	return created(c, message)
}

// GetMessages returns message history with one peer, oldest first
func (h *Handler) GetMessages(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	peerID := c.Params("peerId")

	if peerID == "" {
		return fail(c, fiber.StatusBadRequest, "Peer ID is required")
	}

	// Pagination
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	chatID := utils.ChatID(userID, peerID)
	messages, total, err := h.messages.ListByChat(c.Context(), chatID, limit, offset)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Database error")
	}

	if messages == nil {
		messages = []models.Message{}
	}

	return ok(c, fiber.Map{
		"messages": messages,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}
