// internal/socket/hub.go
package socket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Customer messages
	MessageCustomerCreated  MessageType = "customer_created"
	MessageCustomerUpdated  MessageType = "customer_updated"
	MessageCustomerDeleted  MessageType = "customer_deleted"
	MessageInteractionAdded MessageType = "interaction_added"

	// Lead messages
	MessageLeadCreated MessageType = "lead_created"
	MessageLeadUpdated MessageType = "lead_updated"
	MessageLeadDeleted MessageType = "lead_deleted"

	// Task messages
	MessageTaskCreated  MessageType = "task_created"
	MessageTaskUpdated  MessageType = "task_updated"
	MessageTaskDeleted  MessageType = "task_deleted"
	MessageTasksOverdue MessageType = "tasks_overdue"

	// System messages
	MessagePing MessageType = "ping"
	MessagePong MessageType = "pong"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Client represents a connected WebSocket client
type Client struct {
	ID       string
	UserID   string
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan []byte
	lastPing time.Time

	mu     sync.Mutex
	closed bool
}

// trySend queues data without blocking. It fails when the buffer is full or
// the client has been closed.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Hub maintains the set of active clients and routes messages to the
// connections of a single user.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Clients indexed by user ID for direct messaging
	userClients map[string]map[*Client]bool

	register      chan *Client
	unregister    chan *Client
	directMessage chan *DirectMessage
	done          chan struct{}

	mu sync.RWMutex
}

// DirectMessage represents a message to be sent to a specific user
type DirectMessage struct {
	UserID  string
	Message []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		userClients:   make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		directMessage: make(chan *DirectMessage, 256),
		done:          make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns when ctx is cancelled, after
// closing every client connection.
func (h *Hub) Run(ctx context.Context) {
	logger.App().Info("[Hub] WebSocket hub started")

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case dm := <-h.directMessage:
			h.sendToUser(dm)

		case <-pingTicker.C:
			h.pingClients()

		case <-ctx.Done():
			h.shutdown()
			return
		}
	}
}

// Register adds a client unless the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client; it is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.userClients[client.UserID] == nil {
		h.userClients[client.UserID] = make(map[*Client]bool)
	}
	h.userClients[client.UserID][client] = true

	logger.App().WithFields(logrus.Fields{
		"user_id":       client.UserID,
		"client_id":     client.ID,
		"total_clients": len(h.clients),
	}).Debug("[Hub] Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	if clients, ok := h.userClients[client.UserID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userClients, client.UserID)
		}
	}

	client.close()
	logger.App().WithFields(logrus.Fields{
		"user_id":       client.UserID,
		"client_id":     client.ID,
		"total_clients": len(h.clients),
	}).Debug("[Hub] Client disconnected")
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	close(h.done)
	for client := range h.clients {
		client.close()
	}
	h.clients = make(map[*Client]bool)
	h.userClients = make(map[string]map[*Client]bool)
	logger.App().Info("[Hub] WebSocket hub stopped")
}

func (h *Hub) sendToUser(dm *DirectMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.userClients[dm.UserID] {
		if !client.trySend(dm.Message) {
			go h.Unregister(client)
		}
	}
}

func (h *Hub) pingClients() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, _ := json.Marshal(Message{Type: MessagePing, Timestamp: time.Now()})
	for client := range h.clients {
		if !client.trySend(data) {
			go h.Unregister(client)
		}
	}
}

// ============================================
// Public Methods
// ============================================

// SendToUser queues a message for every connection of userID. Users with no
// connection are skipped silently.
func (h *Hub) SendToUser(userID string, msgType MessageType, payload interface{}) {
	if !h.IsUserOnline(userID) {
		return
	}
	data, err := json.Marshal(Message{Type: msgType, Payload: payload, Timestamp: time.Now()})
	if err != nil {
		logger.App().WithError(err).WithField("type", msgType).Error("[Hub] Failed to marshal message")
		return
	}

	select {
	case h.directMessage <- &DirectMessage{UserID: userID, Message: data}:
	case <-h.done:
	default:
		logger.App().WithField("user_id", userID).Warn("[Hub] Direct message queue full, dropping message")
	}
}

// IsUserOnline reports whether userID has at least one open connection.
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID]) > 0
}

// GetConnectedClientsCount returns the number of open connections.
func (h *Hub) GetConnectedClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
