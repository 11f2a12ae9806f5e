package models

import "time"

// ContactEdge is one user's directed record of a relationship with another
// user. A mutual add always produces two edges, (A->B) and (B->A), written in
// the same transaction. The other party's profile fields are denormalized onto
// the edge, together with a preview of the most recent message in the shared
// conversation.
type ContactEdge struct {
	OwnerID       string     `json:"-" db:"user_id"`
	ContactID     string     `json:"contactId" db:"contact_id"`
	ContactName   string     `json:"contactName" db:"contact_name"`
	ContactAvatar *string    `json:"contactAvatar,omitempty" db:"contact_avatar"`
	ContactEmail  string     `json:"contactEmail" db:"contact_email"`
	AddedAt       time.Time  `json:"addedAt" db:"added_at"`
	LastMessage   string     `json:"lastMessage" db:"last_message"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty" db:"last_message_at"`
}
