// Package store holds the persistence layer: users, contact edges and
// messages live in Postgres, typing flags live in Redis. Handlers depend on
// the interfaces below so tests can swap in the in-memory implementation.
package store

import (
	"context"
	"time"

	"obrolan/server/internal/models"
)

// Users performs user persistence operations.
type Users interface {
	// Create inserts a new user. The store assigns ID and timestamps.
	Create(ctx context.Context, u models.User) (*models.User, error)
	// GetByEmail looks a user up by normalized email. Returns ErrNotFound
	// when no user matches.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// UpsertProfile creates the user on first authentication and refreshes
	// display name, avatar and last-seen on every subsequent one.
	UpsertProfile(ctx context.Context, email, name string, avatar, googleID *string) (*models.User, error)
	// SetPresence flips the online flag and refreshes last-seen.
	SetPresence(ctx context.Context, id string, online bool) error
	SetAvatar(ctx context.Context, id, avatarURL string) error
}

// Contacts maintains the mirrored contact edges between users.
type Contacts interface {
	// Add writes both halves of the mutual edge in one transaction with an
	// identical added_at and empty initial preview, and returns the owner's
	// half. Returns ErrAlreadyExists if the edge pair is already present.
	Add(ctx context.Context, owner, target *models.User) (*models.ContactEdge, error)
	// Exists checks for the (owner, contact) edge by key, not by scanning.
	Exists(ctx context.Context, ownerID, contactID string) (bool, error)
	// ListByOwner returns the owner's edges ordered by last-message time
	// descending, edges without one last.
	ListByOwner(ctx context.Context, ownerID string) ([]models.ContactEdge, error)
	// UpdatePreview rewrites the preview fields on both halves of the edge
	// between the two users to the same text and timestamp.
	UpdatePreview(ctx context.Context, userA, userB, text string, at time.Time) error
}

// Messages is the append-only conversation log.
type Messages interface {
	// Append inserts one message. The store assigns ID and creation time.
	Append(ctx context.Context, m models.Message) (*models.Message, error)
	// ListByChat returns messages of one conversation ascending by creation
	// time (id as tiebreak, so equal timestamps keep a stable order), plus
	// the total count for pagination.
	ListByChat(ctx context.Context, chatID string, limit, offset int) ([]models.Message, int, error)
}

// Typing holds the transient per-(conversation, user) typing flag. All
// implementations expire entries on their own so a crashed client cannot
// leave a flag behind forever.
type Typing interface {
	Set(ctx context.Context, chatID string, status models.TypingStatus) error
	// Clear removes the flag. Idempotent.
	Clear(ctx context.Context, chatID, userID string) error
	// Get returns the flag for one user in one conversation, or nil if the
	// flag is absent or expired.
	Get(ctx context.Context, chatID, userID string) (*models.TypingStatus, error)
}
