package models

import "time"

// Message represents a chat message. Messages are immutable once written:
// there is no edit or delete path anywhere in the system.
type Message struct {
	ID           string    `json:"id" db:"id"`
	ChatID       string    `json:"chatId" db:"chat_id"`
	SenderID     string    `json:"senderId" db:"sender_id"`
	SenderName   string    `json:"senderName" db:"sender_name"`     // denormalized at write time
	SenderAvatar *string   `json:"senderAvatar,omitempty" db:"sender_avatar"`
	RecipientID  string    `json:"recipientId" db:"recipient_id"`
	Body         string    `json:"body" db:"body"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"` // assigned by the store
}
