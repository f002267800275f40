// internal/socket/handler.go
package socket

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
)

// Authenticate resolves a bearer token to a user id.
type Authenticate func(token string) (userID string, err error)

// Handler handles WebSocket connections
type Handler struct {
	Hub          *Hub
	authenticate Authenticate
	upgrader     websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. An empty allowedOrigins list or
// a "*" entry accepts any origin.
func NewHandler(hub *Hub, authenticate Authenticate, allowedOrigins []string) *Handler {
	return &Handler{
		Hub:          hub,
		authenticate: authenticate,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket handles WebSocket upgrade requests.
// Browsers cannot set headers on a WebSocket handshake, so the token may
// also arrive as the "token" query parameter.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	userID, err := h.authenticate(tokenString)
	if err != nil || userID == "" {
		logger.App().WithError(err).Debug("[WebSocket] Token rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.App().WithError(err).Warn("[WebSocket] Upgrade error")
		return
	}

	client := NewClient(h.Hub, userID, conn)
	if !h.Hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, userID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		Conn:     conn,
		Hub:      hub,
		Send:     make(chan []byte, 256),
		lastPing: time.Now(),
	}
}
