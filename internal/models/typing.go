package models

import "time"

// TypingStatus is the transient, best-effort flag one user asserts inside one
// conversation. It is advisory only: staleness or absence must never block
// messaging.
type TypingStatus struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	IsTyping    bool      `json:"isTyping"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
