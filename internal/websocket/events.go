package websocket

import (
	"time"

	"obrolan/server/internal/models"
)

// EventType represents different WebSocket event types
type EventType string

const (
	// Subscription events (client -> server)
	EventSubscribe   EventType = "subscribe"
	EventUnsubscribe EventType = "unsubscribe"

	// Message events
	EventMessageReceived EventType = "message_received"

	// Contact list events
	EventContactsUpdated EventType = "contacts_updated"

	// Typing events
	EventTypingStart EventType = "typing_start"
	EventTypingStop  EventType = "typing_stop"

	// Presence events
	EventUserOnline  EventType = "user_online"
	EventUserOffline EventType = "user_offline"

	// Error events
	EventError EventType = "error"
)

// WSMessage represents a WebSocket message structure
type WSMessage struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// TypingPayload represents typing indicator payload
type TypingPayload struct {
	UserID      string `json:"userId"`
	ChatID      string `json:"chatId"`
	DisplayName string `json:"displayName"`
	IsTyping    bool   `json:"isTyping"`
}

// PresencePayload represents user presence payload
type PresencePayload struct {
	UserID   string    `json:"userId"`
	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen,omitempty"`
}

// ContactPreviewPayload tells a participant their contact edge's preview
// changed (new last message, or a freshly added contact).
type ContactPreviewPayload struct {
	ContactID     string     `json:"contactId"`
	LastMessage   string     `json:"lastMessage"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
}

// ErrorPayload represents error event payload
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IncomingMessage represents messages received from clients
type IncomingMessage struct {
	Type    EventType              `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

// NewMessageEvent wraps a stored message for delivery to subscribers.
func NewMessageEvent(m *models.Message) WSMessage {
	return WSMessage{Type: EventMessageReceived, Payload: m, Timestamp: time.Now()}
}
