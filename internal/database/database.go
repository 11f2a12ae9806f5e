package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect establishes a connection pool to PostgreSQL
func Connect(databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Connected to PostgreSQL")
	return pool, nil
}

// EnsureSchema creates the tables and indexes the server needs if they
// do not exist yet. Safe to run on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			avatar        TEXT,
			auth_provider TEXT NOT NULL DEFAULT 'email',
			google_id     TEXT,
			is_online     BOOLEAN NOT NULL DEFAULT FALSE,
			last_seen     TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			user_id         TEXT NOT NULL REFERENCES users(id),
			contact_id      TEXT NOT NULL REFERENCES users(id),
			contact_name    TEXT NOT NULL,
			contact_avatar  TEXT,
			contact_email   TEXT NOT NULL,
			added_at        TIMESTAMPTZ NOT NULL,
			last_message    TEXT NOT NULL DEFAULT '',
			last_message_at TIMESTAMPTZ,
			PRIMARY KEY (user_id, contact_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id            TEXT PRIMARY KEY,
			chat_id       TEXT NOT NULL,
			sender_id     TEXT NOT NULL REFERENCES users(id),
			sender_name   TEXT NOT NULL,
			sender_avatar TEXT,
			recipient_id  TEXT NOT NULL REFERENCES users(id),
			body          TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages (chat_id, created_at, id)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_owner ON contacts (user_id, last_message_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	log.Println("✅ Database schema ensured")
	return nil
}
