package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"obrolan/server/internal/models"
	"obrolan/server/internal/store"
	"obrolan/server/internal/typing"
	ws "obrolan/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
)

// fakeTyping is an in-memory store.Typing so handler tests can observe
// typing-flag clears without Redis.
type fakeTyping struct {
	mu    sync.Mutex
	flags map[string]models.TypingStatus
}

func newFakeTyping() *fakeTyping {
	return &fakeTyping{flags: make(map[string]models.TypingStatus)}
}

func (f *fakeTyping) key(chatID, userID string) string { return chatID + "/" + userID }

func (f *fakeTyping) Set(_ context.Context, chatID string, status models.TypingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags[f.key(chatID, status.UserID)] = status
	return nil
}

func (f *fakeTyping) Clear(_ context.Context, chatID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.flags, f.key(chatID, userID))
	return nil
}

func (f *fakeTyping) Get(_ context.Context, chatID, userID string) (*models.TypingStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.flags[f.key(chatID, userID)]; ok {
		return &s, nil
	}
	return nil, nil
}

type testEnv struct {
	app      *fiber.App
	store    *store.MemoryStore
	typing   *fakeTyping
	hub      *ws.Hub
	signaler *typing.Signaler
}

// newTestEnv wires the handlers over the in-memory store, with a header-based
// stand-in for the auth middleware: X-User-ID identifies the caller.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mem := store.NewMemoryStore()
	ft := newFakeTyping()
	hub := ws.NewHub(mem, mem)
	// Zero window flushes immediately; tests never wait on the debounce.
	signaler := typing.NewSignaler(ft, time.Nanosecond, hub.BroadcastTyping)
	t.Cleanup(signaler.Close)

	h := New(mem, mem, mem, hub, signaler)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-User-ID"); id != "" {
			c.Locals("userID", id)
		}
		return c.Next()
	})
	app.Post("/api/v1/auth/register", h.Register)
	app.Post("/api/v1/auth/login", h.Login)
	app.Post("/api/v1/contacts/", h.AddContact)
	app.Get("/api/v1/contacts/", h.GetContacts)
	app.Post("/api/v1/messages/", h.SendMessage)
	app.Get("/api/v1/messages/:peerId", h.GetMessages)

	return &testEnv{app: app, store: mem, typing: ft, hub: hub, signaler: signaler}
}

// envelope mirrors the JSON response shape of every handler.
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) request(t *testing.T, method, path, userID string, body interface{}) (*http.Response, *envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	resp.Body.Close()
	return resp, &env
}

func (e *testEnv) seedUser(t *testing.T, email, name string) *models.User {
	t.Helper()

	u, err := e.store.Create(context.Background(), models.User{
		Email:        email,
		Name:         name,
		Password:     "x",
		AuthProvider: "email",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}
