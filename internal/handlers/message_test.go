package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"obrolan/server/internal/models"
	"obrolan/server/internal/utils"
)

func addContact(t *testing.T, env *testEnv, callerID, email string) {
	t.Helper()

	resp, body := env.request(t, http.MethodPost, "/api/v1/contacts/", callerID,
		AddContactRequest{Email: email})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add contact %s: expected 201, got %d (%s)", email, resp.StatusCode, body.Error)
	}
}

func TestSendMessageStoresAndMirrorsPreview(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice@example.com", "Alice")
	bob := env.seedUser(t, "bob@example.com", "Bob")
	addContact(t, env, alice.ID, "bob@example.com")

	resp, body := env.request(t, http.MethodPost, "/api/v1/messages/", alice.ID,
		SendMessageRequest{RecipientID: bob.ID, Body: "  hello  "})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", resp.StatusCode, body.Error)
	}

	var msg models.Message
	if err := json.Unmarshal(body.Data, &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if msg.Body != "hello" {
		t.Errorf("expected trimmed body 'hello', got %q", msg.Body)
	}
	if msg.ChatID != utils.ChatID(alice.ID, bob.ID) {
		t.Errorf("unexpected chat ID %q", msg.ChatID)
	}
	if msg.SenderName != "Alice" {
		t.Errorf("expected denormalized sender name, got %q", msg.SenderName)
	}
	if msg.ID == "" || msg.CreatedAt.IsZero() {
		t.Errorf("expected store-assigned ID and timestamp: %+v", msg)
	}

	// Both contact edges carry the same preview text and timestamp
	ctx := context.Background()
	aliceEdges, _ := env.store.ListByOwner(ctx, alice.ID)
	bobEdges, _ := env.store.ListByOwner(ctx, bob.ID)
	for _, e := range []models.ContactEdge{aliceEdges[0], bobEdges[0]} {
		if e.LastMessage != "hello" {
			t.Errorf("expected preview 'hello' on edge %s -> %s, got %q", e.OwnerID, e.ContactID, e.LastMessage)
		}
		if e.LastMessageAt == nil || !e.LastMessageAt.Equal(msg.CreatedAt) {
			t.Errorf("expected preview time %v, got %v", msg.CreatedAt, e.LastMessageAt)
		}
	}
}

func TestSendMessageWhitespaceOnlyWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice@example.com", "Alice")
	bob := env.seedUser(t, "bob@example.com", "Bob")
	addContact(t, env, alice.ID, "bob@example.com")

	for _, body := range []string{"", "   ", "\n\t "} {
		resp, _ := env.request(t, http.MethodPost, "/api/v1/messages/", alice.ID,
			SendMessageRequest{RecipientID: bob.ID, Body: body})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, resp.StatusCode)
		}
	}

	// No message, no preview change
	ctx := context.Background()
	_, total, _ := env.store.ListByChat(ctx, utils.ChatID(alice.ID, bob.ID), 50, 0)
	if total != 0 {
		t.Errorf("expected no stored messages, got %d", total)
	}
	edges, _ := env.store.ListByOwner(ctx, alice.ID)
	if edges[0].LastMessage != "" || edges[0].LastMessageAt != nil {
		t.Errorf("expected untouched preview, got %+v", edges[0])
	}
}

func TestSendMessageUnknownRecipient(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice@example.com", "Alice")

	resp, _ := env.request(t, http.MethodPost, "/api/v1/messages/", alice.ID,
		SendMessageRequest{RecipientID: "missing", Body: "hello"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSendMessageClearsTypingFlag(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice@example.com", "Alice")
	bob := env.seedUser(t, "bob@example.com", "Bob")
	addContact(t, env, alice.ID, "bob@example.com")

	chatID := utils.ChatID(alice.ID, bob.ID)
	ctx := context.Background()
	if err := env.typing.Set(ctx, chatID, models.TypingStatus{UserID: alice.ID, IsTyping: true}); err != nil {
		t.Fatalf("seed typing flag: %v", err)
	}

	resp, body := env.request(t, http.MethodPost, "/api/v1/messages/", alice.ID,
		SendMessageRequest{RecipientID: bob.ID, Body: "hello"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", resp.StatusCode, body.Error)
	}

	flag, err := env.typing.Get(ctx, chatID, alice.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if flag != nil {
		t.Errorf("expected typing flag cleared on send, got %+v", flag)
	}
}

func TestGetMessagesOrderedOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice@example.com", "Alice")
	bob := env.seedUser(t, "bob@example.com", "Bob")
	addContact(t, env, alice.ID, "bob@example.com")

	for _, text := range []string{"one", "two", "three"} {
		if resp, body := env.request(t, http.MethodPost, "/api/v1/messages/", alice.ID,
			SendMessageRequest{RecipientID: bob.ID, Body: text}); resp.StatusCode != http.StatusCreated {
			t.Fatalf("send %q: expected 201, got %d (%s)", text, resp.StatusCode, body.Error)
		}
	}

	// Both participants read the same conversation
	for _, view := range []struct{ caller, peer string }{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		resp, body := env.request(t, http.MethodGet, "/api/v1/messages/"+view.peer, view.caller, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var data struct {
			Messages []models.Message `json:"messages"`
		}
		if err := json.Unmarshal(body.Data, &data); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(data.Messages) != 3 {
			t.Fatalf("expected 3 messages, got %d", len(data.Messages))
		}
		for i, want := range []string{"one", "two", "three"} {
			if data.Messages[i].Body != want {
				t.Errorf("message %d: expected %q, got %q", i, want, data.Messages[i].Body)
			}
		}
	}
}

func TestGetMessagesConversationIsolation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice@example.com", "Alice")
	bob := env.seedUser(t, "bob@example.com", "Bob")
	carol := env.seedUser(t, "carol@example.com", "Carol")
	addContact(t, env, alice.ID, "bob@example.com")
	addContact(t, env, alice.ID, "carol@example.com")

	env.request(t, http.MethodPost, "/api/v1/messages/", alice.ID,
		SendMessageRequest{RecipientID: bob.ID, Body: "for bob"})
	env.request(t, http.MethodPost, "/api/v1/messages/", alice.ID,
		SendMessageRequest{RecipientID: carol.ID, Body: "for carol"})

	resp, body := env.request(t, http.MethodGet, "/api/v1/messages/"+bob.ID, alice.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var data struct {
		Messages []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(data.Messages) != 1 || data.Messages[0].Body != "for bob" {
		t.Errorf("expected only Bob's conversation, got %+v", data.Messages)
	}
}

func TestGetMessagesPagination(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice@example.com", "Alice")
	bob := env.seedUser(t, "bob@example.com", "Bob")
	addContact(t, env, alice.ID, "bob@example.com")

	for i := 0; i < 5; i++ {
		env.request(t, http.MethodPost, "/api/v1/messages/", alice.ID,
			SendMessageRequest{RecipientID: bob.ID, Body: fmt.Sprintf("m%d", i)})
	}

	resp, body := env.request(t, http.MethodGet, "/api/v1/messages/"+bob.ID+"?page=2&limit=2", alice.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var data struct {
		Messages   []models.Message `json:"messages"`
		Pagination struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Pagination.Total != 5 || data.Pagination.Page != 2 {
		t.Errorf("unexpected pagination: %+v", data.Pagination)
	}
	if len(data.Messages) != 2 || data.Messages[0].Body != "m2" || data.Messages[1].Body != "m3" {
		t.Errorf("unexpected page contents: %+v", data.Messages)
	}
}
