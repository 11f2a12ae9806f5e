package store

import (
	"context"
	"fmt"
	"time"

	"obrolan/server/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ContactsStore is the Postgres-backed Contacts implementation.
type ContactsStore struct {
	pool *pgxpool.Pool
}

// NewContactsStore returns a ContactsStore using the provided pool.
func NewContactsStore(pool *pgxpool.Pool) *ContactsStore {
	return &ContactsStore{pool: pool}
}

// Add writes both halves of the mutual edge inside one transaction. Either
// both rows land or neither does; a failure rolls the whole pair back and is
// returned to the caller.
func (s *ContactsStore) Add(ctx context.Context, owner, target *models.User) (*models.ContactEdge, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin add contact: %w", err)
	}
	defer tx.Rollback(ctx)

	// Both edges share the same added_at so the pair is indistinguishable
	// from a single logical write.
	addedAt := time.Now()

	_, err = tx.Exec(ctx, `
		INSERT INTO contacts (user_id, contact_id, contact_name, contact_avatar, contact_email, added_at, last_message)
		VALUES ($1, $2, $3, $4, $5, $6, '')
	`, owner.ID, target.ID, target.Name, target.Avatar, target.Email, addedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert contact edge: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO contacts (user_id, contact_id, contact_name, contact_avatar, contact_email, added_at, last_message)
		VALUES ($1, $2, $3, $4, $5, $6, '')
	`, target.ID, owner.ID, owner.Name, owner.Avatar, owner.Email, addedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert mirrored contact edge: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit add contact: %w", err)
	}

	return &models.ContactEdge{
		OwnerID:       owner.ID,
		ContactID:     target.ID,
		ContactName:   target.Name,
		ContactAvatar: target.Avatar,
		ContactEmail:  target.Email,
		AddedAt:       addedAt,
		LastMessage:   "",
	}, nil
}

// Exists checks for the directed (owner, contact) edge by its key.
func (s *ContactsStore) Exists(ctx context.Context, ownerID, contactID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM contacts WHERE user_id = $1 AND contact_id = $2)
	`, ownerID, contactID).Scan(&exists)
	return exists, err
}

// ListByOwner returns the owner's edges, most recent conversation first.
// Edges that never carried a message sort last, newest added first.
func (s *ContactsStore) ListByOwner(ctx context.Context, ownerID string) ([]models.ContactEdge, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, contact_id, contact_name, contact_avatar, contact_email, added_at, last_message, last_message_at
		FROM contacts
		WHERE user_id = $1
		ORDER BY last_message_at DESC NULLS LAST, added_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []models.ContactEdge
	for rows.Next() {
		var e models.ContactEdge
		if err := rows.Scan(&e.OwnerID, &e.ContactID, &e.ContactName, &e.ContactAvatar,
			&e.ContactEmail, &e.AddedAt, &e.LastMessage, &e.LastMessageAt); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// UpdatePreview rewrites the preview on both halves of the edge in a single
// statement so both sides observe the same text and timestamp.
func (s *ContactsStore) UpdatePreview(ctx context.Context, userA, userB, text string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE contacts SET last_message = $1, last_message_at = $2
		WHERE (user_id = $3 AND contact_id = $4) OR (user_id = $4 AND contact_id = $3)
	`, text, at, userA, userB)
	return err
}
