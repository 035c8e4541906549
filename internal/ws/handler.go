package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chat-backend/internal/auth"
	"chat-backend/internal/observability"
	"chat-backend/internal/realtime"
)

// Handler upgrades channel subscriptions onto the local hub, applying the
// same gate as the hosted handshake: the public channel is open to any
// authenticated user, a private channel only to its two participants.
type Handler struct {
	hub    *Hub
	tokens *auth.TokenManager
}

// NewHandler constructs a Handler.
func NewHandler(hub *Hub, tokens *auth.TokenManager) *Handler {
	return &Handler{hub: hub, tokens: tokens}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authorizes and registers a websocket subscription.
func (h *Handler) Handle(c *gin.Context) {
	channel := c.Param("channel")

	token := c.GetHeader("Authorization")
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		token = c.Query("token")
	}

	claims, err := h.tokens.Parse(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if !authorized(channel, claims.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized channel access"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      claims.UserID,
		IP:          c.ClientIP(),
		ConnectedAt: time.Now(),
	}
	h.hub.Add(channel, conn, info)
	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")

	// Drain the connection until the client goes away.
	go func() {
		defer func() {
			h.hub.Remove(channel, conn)
			conn.Close()
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func authorized(channel string, userID int) bool {
	if channel == realtime.PublicChannel {
		return true
	}
	user1, user2, ok := realtime.ParsePrivateChannel(channel)
	if !ok {
		return false
	}
	return userID == user1 || userID == user2
}
