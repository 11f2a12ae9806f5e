package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"obrolan/server/internal/models"

	"github.com/redis/go-redis/v9"
)

// TypingStore keeps typing flags in Redis with a TTL. The TTL is the expiry
// for flags left behind by sessions that terminated without clearing them
// (closed tab, crash): every keystroke re-asserts the flag, so a live typist
// is never expired, while an abandoned flag disappears on its own.
type TypingStore struct {
	client *redis.Client
	ttl    time.Duration
}

// DefaultTypingTTL bounds how long a stale typing flag can survive.
const DefaultTypingTTL = 10 * time.Second

// NewTypingStore builds a Redis-backed typing store.
func NewTypingStore(addr, password string, ttl time.Duration) *TypingStore {
	return NewTypingStoreWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	}), ttl)
}

// NewTypingStoreWithClient wraps an existing client (used by tests).
func NewTypingStoreWithClient(client *redis.Client, ttl time.Duration) *TypingStore {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &TypingStore{client: client, ttl: ttl}
}

func typingKey(chatID, userID string) string {
	return fmt.Sprintf("typing:%s:%s", chatID, userID)
}

// Set writes the flag for one user in one conversation, refreshing the TTL.
func (s *TypingStore) Set(ctx context.Context, chatID string, status models.TypingStatus) error {
	status.UpdatedAt = time.Now()
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, typingKey(chatID, status.UserID), data, s.ttl).Err()
}

// Clear removes the flag. Deleting an absent key is not an error.
func (s *TypingStore) Clear(ctx context.Context, chatID, userID string) error {
	if err := s.client.Del(ctx, typingKey(chatID, userID)).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// Get returns the flag, or nil if absent or expired.
func (s *TypingStore) Get(ctx context.Context, chatID, userID string) (*models.TypingStatus, error) {
	data, err := s.client.Get(ctx, typingKey(chatID, userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var status models.TypingStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Close releases the underlying Redis connection.
func (s *TypingStore) Close() error {
	return s.client.Close()
}
