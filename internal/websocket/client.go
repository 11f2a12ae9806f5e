package websocket

import (
	"encoding/json"
	"log"
	"time"

	"obrolan/server/internal/typing"
	"obrolan/server/internal/utils"

	"github.com/gofiber/contrib/websocket"
)

// Client represents a WebSocket client connection
type Client struct {
	ID       string // User ID
	Name     string // Display name, carried into typing signals
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan []byte
	Signaler *typing.Signaler

	// activeChat is the conversation this client is currently subscribed
	// to. Guarded by the hub's mutex.
	activeChat string
}

// NewClient creates a new WebSocket client
func NewClient(userID, name string, conn *websocket.Conn, hub *Hub, signaler *typing.Signaler) *Client {
	return &Client{
		ID:       userID,
		Name:     name,
		Conn:     conn,
		Hub:      hub,
		Send:     make(chan []byte, 256),
		Signaler: signaler,
	}
}

// ReadPump handles incoming messages from the client
func (c *Client) ReadPump() {
	defer func() {
		// Leaving the conversation must clear the typing flag; failures
		// in there are logged, never allowed to block teardown.
		if chatID := c.Hub.ActiveChat(c); chatID != "" {
			c.Signaler.Clear(chatID, c.ID, c.Name)
		}
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Parse incoming message
		var incoming IncomingMessage
		if err := json.Unmarshal(message, &incoming); err != nil {
			log.Printf("Failed to parse message: %v", err)
			continue
		}

		c.handleIncomingMessage(incoming)
	}
}

// WritePump handles outgoing messages to the client
func (c *Client) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleIncomingMessage processes different types of incoming messages
func (c *Client) handleIncomingMessage(msg IncomingMessage) {
	switch msg.Type {
	case EventSubscribe:
		c.handleSubscribe(msg.Payload)
	case EventUnsubscribe:
		c.handleUnsubscribe()
	case EventTypingStart:
		c.handleTyping(msg.Payload, true)
	case EventTypingStop:
		c.handleTyping(msg.Payload, false)
	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// handleSubscribe switches the client's live conversation. The previous
// subscription is dropped before the new one takes effect, and the typing
// flag left in the previous conversation is cleared.
func (c *Client) handleSubscribe(payload map[string]interface{}) {
	peerID, _ := payload["peerId"].(string)
	if peerID == "" || peerID == c.ID {
		return
	}

	if prev := c.Hub.ActiveChat(c); prev != "" {
		c.Signaler.Clear(prev, c.ID, c.Name)
	}
	c.Hub.Subscribe(c, utils.ChatID(c.ID, peerID))
}

func (c *Client) handleUnsubscribe() {
	if prev := c.Hub.ActiveChat(c); prev != "" {
		c.Signaler.Clear(prev, c.ID, c.Name)
	}
	c.Hub.Unsubscribe(c)
}

// handleTyping feeds the debounced typing signaler
func (c *Client) handleTyping(payload map[string]interface{}, isTyping bool) {
	peerID, _ := payload["peerId"].(string)
	if peerID == "" || peerID == c.ID {
		return
	}

	c.Signaler.Set(utils.ChatID(c.ID, peerID), c.ID, c.Name, isTyping)
}
