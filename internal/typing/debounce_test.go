package typing

import (
	"context"
	"sync"
	"testing"
	"time"

	"obrolan/server/internal/models"
)

const testWindow = 25 * time.Millisecond

func TestDebouncerCoalescesToLatestValue(t *testing.T) {
	var (
		mu      sync.Mutex
		flushes []bool
	)
	d := NewDebouncer(testWindow, func(v bool) {
		mu.Lock()
		flushes = append(flushes, v)
		mu.Unlock()
	})
	defer d.Close()

	// A burst of keystrokes ending in "stopped typing" must produce exactly
	// one flush, carrying the final value.
	d.Set(true)
	d.Set(true)
	d.Set(false)

	time.Sleep(4 * testWindow)

	mu.Lock()
	defer mu.Unlock()
	if len(flushes) != 1 {
		t.Fatalf("expected 1 flush, got %d", len(flushes))
	}
	if flushes[0] != false {
		t.Errorf("expected latest value false, got %v", flushes[0])
	}
}

func TestDebouncerFlushesAgainAfterWindow(t *testing.T) {
	var (
		mu      sync.Mutex
		flushes []bool
	)
	d := NewDebouncer(testWindow, func(v bool) {
		mu.Lock()
		flushes = append(flushes, v)
		mu.Unlock()
	})
	defer d.Close()

	d.Set(true)
	time.Sleep(4 * testWindow)
	d.Set(false)
	time.Sleep(4 * testWindow)

	mu.Lock()
	defer mu.Unlock()
	if len(flushes) != 2 {
		t.Fatalf("expected 2 flushes, got %d", len(flushes))
	}
	if !flushes[0] || flushes[1] {
		t.Errorf("expected [true false], got %v", flushes)
	}
}

func TestDebouncerCloseDiscardsPending(t *testing.T) {
	var (
		mu      sync.Mutex
		flushes int
	)
	d := NewDebouncer(testWindow, func(bool) {
		mu.Lock()
		flushes++
		mu.Unlock()
	})

	d.Set(true)
	d.Close()
	time.Sleep(4 * testWindow)

	mu.Lock()
	defer mu.Unlock()
	if flushes != 0 {
		t.Errorf("expected no flush after Close, got %d", flushes)
	}
}

// recordingTyping captures store writes so signaler tests can observe what
// reached the store after debouncing.
type recordingTyping struct {
	mu     sync.Mutex
	sets   []models.TypingStatus
	clears []string
}

func (r *recordingTyping) Set(_ context.Context, chatID string, status models.TypingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = append(r.sets, status)
	return nil
}

func (r *recordingTyping) Clear(_ context.Context, chatID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears = append(r.clears, chatID+"/"+userID)
	return nil
}

func (r *recordingTyping) Get(context.Context, string, string) (*models.TypingStatus, error) {
	return nil, nil
}

func TestSignalerCoalescesBurstIntoOneWrite(t *testing.T) {
	rec := &recordingTyping{}
	var (
		mu       sync.Mutex
		notified []models.TypingStatus
	)
	s := NewSignaler(rec, testWindow, func(_ string, status models.TypingStatus) {
		mu.Lock()
		notified = append(notified, status)
		mu.Unlock()
	})
	defer s.Close()

	for i := 0; i < 10; i++ {
		s.Set("a_b", "a", "Alice", true)
	}
	time.Sleep(4 * testWindow)

	rec.mu.Lock()
	sets := len(rec.sets)
	rec.mu.Unlock()
	if sets != 1 {
		t.Fatalf("expected 1 store write for the burst, got %d", sets)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(notified) != 1 || !notified[0].IsTyping {
		t.Errorf("expected one typing=true notification, got %v", notified)
	}
}

func TestSignalerClearCancelsPendingWrite(t *testing.T) {
	rec := &recordingTyping{}
	s := NewSignaler(rec, testWindow, nil)
	defer s.Close()

	s.Set("a_b", "a", "Alice", true)
	s.Clear("a_b", "a", "Alice")
	time.Sleep(4 * testWindow)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.sets) != 0 {
		t.Errorf("expected pending write to be discarded, got %d writes", len(rec.sets))
	}
	if len(rec.clears) != 1 {
		t.Errorf("expected 1 clear, got %d", len(rec.clears))
	}
}

func TestSignalerClearIsIdempotent(t *testing.T) {
	rec := &recordingTyping{}
	s := NewSignaler(rec, testWindow, nil)
	defer s.Close()

	s.Clear("a_b", "a", "Alice")
	s.Clear("a_b", "a", "Alice")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.clears) != 2 {
		t.Errorf("expected both clears to pass through, got %d", len(rec.clears))
	}
}
