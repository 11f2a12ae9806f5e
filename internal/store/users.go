package store

import (
	"context"
	"fmt"
	"time"

	"obrolan/server/internal/models"
	"obrolan/server/internal/normalize"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsersStore is the Postgres-backed Users implementation.
type UsersStore struct {
	pool *pgxpool.Pool
}

// NewUsersStore returns a UsersStore using the provided pool.
func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

const userColumns = "id, email, name, password_hash, avatar, auth_provider, google_id, is_online, last_seen, created_at, updated_at"

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Password, &u.Avatar, &u.AuthProvider,
		&u.GoogleID, &u.IsOnline, &u.LastSeen, &u.CreatedAt, &u.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user with a generated ID.
func (s *UsersStore) Create(ctx context.Context, u models.User) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, password_hash, avatar, auth_provider, google_id, last_seen, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now(), now())
		RETURNING `+userColumns,
		uuid.NewString(), normalize.Email(u.Email), u.Name, u.Password, u.Avatar, u.AuthProvider, u.GoogleID)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// GetByEmail finds a user by normalized email.
func (s *UsersStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalize.Email(email))
	return scanUser(row)
}

// GetByID finds a user by ID.
func (s *UsersStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// UpsertProfile creates the user document on first authentication and
// refreshes display name, avatar and last-seen on every later one.
func (s *UsersStore) UpsertProfile(ctx context.Context, email, name string, avatar, googleID *string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, avatar, auth_provider, google_id, last_seen, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'google', $5, now(), now(), now())
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
		    avatar = COALESCE(EXCLUDED.avatar, users.avatar),
		    google_id = COALESCE(EXCLUDED.google_id, users.google_id),
		    last_seen = now(),
		    updated_at = now()
		RETURNING `+userColumns,
		uuid.NewString(), normalize.Email(email), name, avatar, googleID)

	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return u, nil
}

// SetPresence flips the online flag and refreshes last-seen.
func (s *UsersStore) SetPresence(ctx context.Context, id string, online bool) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET is_online = $1, last_seen = $2, updated_at = now() WHERE id = $3
	`, online, time.Now(), id)
	return err
}

// SetAvatar points the user at a new avatar reference.
func (s *UsersStore) SetAvatar(ctx context.Context, id, avatarURL string) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET avatar = $1, updated_at = now() WHERE id = $2`, avatarURL, id)
	return err
}
