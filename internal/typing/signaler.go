// Package typing throttles and persists the per-conversation typing flag.
// The flag is best-effort state: every write failure here is logged and
// swallowed, never surfaced to the user.
package typing

import (
	"context"
	"log"
	"sync"
	"time"

	"obrolan/server/internal/models"
	"obrolan/server/internal/store"
)

// DefaultWindow is the debounce window applied to keystroke bursts.
const DefaultWindow = 500 * time.Millisecond

const writeTimeout = 3 * time.Second

// Signaler debounces typing updates per (conversation, user), writes the
// coalesced value to the typing store and notifies the live channel.
type Signaler struct {
	store  store.Typing
	window time.Duration
	notify func(chatID string, status models.TypingStatus)

	mu         sync.Mutex
	debouncers map[string]*Debouncer
}

// NewSignaler builds a signaler over the given store. notify is invoked after
// every flushed write so the hub can push the event to the peer; it may be
// nil.
func NewSignaler(s store.Typing, window time.Duration, notify func(chatID string, status models.TypingStatus)) *Signaler {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Signaler{
		store:      s,
		window:     window,
		notify:     notify,
		debouncers: make(map[string]*Debouncer),
	}
}

func signalKey(chatID, userID string) string {
	return chatID + "/" + userID
}

// Set records the user's typing state for one conversation. Calls landing
// inside the same window coalesce into a single store write carrying the
// latest value.
func (s *Signaler) Set(chatID, userID, displayName string, isTyping bool) {
	s.mu.Lock()
	key := signalKey(chatID, userID)
	d, ok := s.debouncers[key]
	if !ok {
		d = NewDebouncer(s.window, func(v bool) {
			s.write(chatID, userID, displayName, v)
		})
		s.debouncers[key] = d
	}
	s.mu.Unlock()

	d.Set(isTyping)
}

func (s *Signaler) write(chatID, userID, displayName string, isTyping bool) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	status := models.TypingStatus{
		UserID:      userID,
		DisplayName: displayName,
		IsTyping:    isTyping,
	}
	if err := s.store.Set(ctx, chatID, status); err != nil {
		log.Printf("typing: failed to write flag for %s in %s: %v", userID, chatID, err)
		return
	}
	if s.notify != nil {
		s.notify(chatID, status)
	}
}

// Clear discards any pending debounced value and removes the stored flag.
// Idempotent; invoked on send, on conversation switch and on disconnect.
func (s *Signaler) Clear(chatID, userID, displayName string) {
	s.mu.Lock()
	key := signalKey(chatID, userID)
	if d, ok := s.debouncers[key]; ok {
		d.Close()
		delete(s.debouncers, key)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := s.store.Clear(ctx, chatID, userID); err != nil {
		log.Printf("typing: failed to clear flag for %s in %s: %v", userID, chatID, err)
		return
	}
	if s.notify != nil {
		s.notify(chatID, models.TypingStatus{UserID: userID, DisplayName: displayName, IsTyping: false})
	}
}

// Close stops every pending debouncer. Used on shutdown.
func (s *Signaler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, d := range s.debouncers {
		d.Close()
		delete(s.debouncers, key)
	}
}
