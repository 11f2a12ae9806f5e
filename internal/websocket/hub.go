package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"obrolan/server/internal/models"
	"obrolan/server/internal/store"
)

// Hub maintains the set of active clients and routes events to them. A client
// is keyed by user ID; each client additionally holds at most one active
// conversation subscription, and conversation-scoped events (messages,
// typing) are only delivered to clients whose active conversation matches.
type Hub struct {
	// Registered clients mapped by user ID
	Clients map[string]*Client

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	users    store.Users
	contacts store.Contacts

	// Mutex for thread-safe operations; also guards every client's
	// activeChat field, which is what makes a conversation switch atomic
	// with respect to delivery.
	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub(users store.Users, contacts store.Contacts) *Hub {
	return &Hub{
		Clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		users:      users,
		contacts:   contacts,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()

	// If user already has a connection, close the old one
	if existing, ok := h.Clients[client.ID]; ok {
		close(existing.Send)
	}
	h.Clients[client.ID] = client
	h.mu.Unlock()

	if err := h.users.SetPresence(context.Background(), client.ID, true); err != nil {
		log.Printf("Failed to update online status: %v", err)
	}
	h.broadcastPresence(client.ID, true)

	log.Printf("Client connected: %s", client.ID)
}

// unregisterClient removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if current, ok := h.Clients[client.ID]; !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.Clients, client.ID)
	close(client.Send)
	h.mu.Unlock()

	if err := h.users.SetPresence(context.Background(), client.ID, false); err != nil {
		log.Printf("Failed to update offline status: %v", err)
	}
	h.broadcastPresence(client.ID, false)

	log.Printf("Client disconnected: %s", client.ID)
}

// Subscribe points the client's live conversation subscription at chatID,
// atomically replacing any previous one: once this returns, no event for the
// prior conversation reaches the client, and each event is delivered at most
// once no matter how fast subscriptions switch.
func (h *Hub) Subscribe(client *Client, chatID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.activeChat = chatID
}

// Unsubscribe drops the client's conversation subscription.
func (h *Hub) Unsubscribe(client *Client) {
	h.Subscribe(client, "")
}

// ActiveChat returns the client's current conversation subscription.
func (h *Hub) ActiveChat(client *Client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return client.activeChat
}

// broadcastPresence sends user's online/offline status to their contacts
func (h *Hub) broadcastPresence(userID string, isOnline bool) {
	edges, err := h.contacts.ListByOwner(context.Background(), userID)
	if err != nil {
		log.Printf("Failed to get contacts: %v", err)
		return
	}

	eventType := EventUserOnline
	if !isOnline {
		eventType = EventUserOffline
	}
	message := WSMessage{
		Type: eventType,
		Payload: PresencePayload{
			UserID:   userID,
			IsOnline: isOnline,
			LastSeen: time.Now(),
		},
		Timestamp: time.Now(),
	}

	peers := make([]string, 0, len(edges))
	for _, e := range edges {
		peers = append(peers, e.ContactID)
	}
	h.BroadcastToUsers(peers, message)
}

// BroadcastToUser sends a message to a specific user
func (h *Hub) BroadcastToUser(userID string, message WSMessage) {
	h.BroadcastToUsers([]string{userID}, message)
}

// BroadcastToUsers sends a message to multiple users
func (h *Hub) BroadcastToUsers(userIDs []string, message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, userID := range userIDs {
		if client, ok := h.Clients[userID]; ok {
			select {
			case client.Send <- data:
			default:
				log.Printf("Failed to send message to client: %s", userID)
			}
		}
	}
}

// BroadcastTyping pushes a flushed typing flag to the conversation peer. The
// signaler's own client is always excluded: a user never sees their own flag.
func (h *Hub) BroadcastTyping(chatID string, status models.TypingStatus) {
	eventType := EventTypingStop
	if status.IsTyping {
		eventType = EventTypingStart
	}
	h.BroadcastToChat(chatID, WSMessage{
		Type: eventType,
		Payload: TypingPayload{
			UserID:      status.UserID,
			ChatID:      chatID,
			DisplayName: status.DisplayName,
			IsTyping:    status.IsTyping,
		},
		Timestamp: time.Now(),
	}, status.UserID)
}

// BroadcastToChat delivers a conversation-scoped event to every client whose
// active subscription matches chatID, except excludeUserID (pass "" to
// deliver to all participants).
func (h *Hub) BroadcastToChat(chatID string, message WSMessage, excludeUserID string) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, client := range h.Clients {
		if client.activeChat != chatID || userID == excludeUserID {
			continue
		}
		select {
		case client.Send <- data:
		default:
			log.Printf("Failed to send message to client: %s", userID)
		}
	}
}

// IsUserOnline checks if a user is currently connected
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.Clients[userID]
	return ok
}

// GetOnlineUsers returns a list of currently online user IDs
func (h *Hub) GetOnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userIDs := make([]string, 0, len(h.Clients))
	for userID := range h.Clients {
		userIDs = append(userIDs, userID)
	}

	return userIDs
}

// GetOnlineCount returns the number of currently connected clients
func (h *Hub) GetOnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.Clients)
}
