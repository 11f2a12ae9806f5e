package store

import (
	"context"
	"fmt"

	"obrolan/server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessagesStore is the Postgres-backed Messages implementation.
type MessagesStore struct {
	pool *pgxpool.Pool
}

// NewMessagesStore returns a MessagesStore using the provided pool.
func NewMessagesStore(pool *pgxpool.Pool) *MessagesStore {
	return &MessagesStore{pool: pool}
}

// Append inserts one message with a generated ID and a server-assigned
// creation timestamp.
func (s *MessagesStore) Append(ctx context.Context, m models.Message) (*models.Message, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, chat_id, sender_id, sender_name, sender_avatar, recipient_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING id, chat_id, sender_id, sender_name, sender_avatar, recipient_id, body, created_at
	`, uuid.NewString(), m.ChatID, m.SenderID, m.SenderName, m.SenderAvatar, m.RecipientID, m.Body)

	var saved models.Message
	err := row.Scan(&saved.ID, &saved.ChatID, &saved.SenderID, &saved.SenderName,
		&saved.SenderAvatar, &saved.RecipientID, &saved.Body, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return &saved, nil
}

// ListByChat returns one conversation's messages oldest first. The id column
// breaks timestamp ties so a given snapshot never reorders.
func (s *MessagesStore) ListByChat(ctx context.Context, chatID string, limit, offset int) ([]models.Message, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE chat_id = $1`, chatID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, chat_id, sender_id, sender_name, sender_avatar, recipient_id, body, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`, chatID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.SenderName,
			&m.SenderAvatar, &m.RecipientID, &m.Body, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}
