package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"chat-backend/internal/realtime"
	"chat-backend/internal/telemetry"
)

// RealtimeAuthHandler serves the private-channel subscription handshake. The
// signed blob it returns is produced by the transport's authorizer and passed
// back to the client verbatim.
type RealtimeAuthHandler struct {
	authorizer realtime.ChannelAuthorizer
	audit      *telemetry.AuditEmitter
}

// NewRealtimeAuthHandler builds a RealtimeAuthHandler. authorizer may be nil
// when no hosted transport is configured.
func NewRealtimeAuthHandler(authorizer realtime.ChannelAuthorizer, audit *telemetry.AuditEmitter) *RealtimeAuthHandler {
	return &RealtimeAuthHandler{authorizer: authorizer, audit: audit}
}

// Authorize validates that the caller is a participant of the requested
// private channel and signs the handshake.
func (h *RealtimeAuthHandler) Authorize(c *gin.Context) {
	socketID := c.PostForm("socket_id")
	channel := c.PostForm("channel_name")
	if socketID == "" || channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "socket_id and channel_name are required"})
		return
	}

	userID := c.GetInt("userID")
	user1, user2, ok := realtime.ParsePrivateChannel(channel)
	if !ok || (userID != user1 && userID != user2) {
		h.audit.Emit(c.Request.Context(), "channel_auth_denied", "WARN", "unauthorized channel access: "+channel, requestIDFromContext(c), auditUserID(c))
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized channel access"})
		return
	}

	if h.authorizer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "realtime authorization is not configured"})
		return
	}

	params := url.Values{
		"socket_id":    {socketID},
		"channel_name": {channel},
	}
	blob, err := h.authorizer.AuthorizeChannel([]byte(params.Encode()), realtime.Identity{
		UserID:   strconv.Itoa(userID),
		Username: c.GetString("username"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authorization failed"})
		return
	}

	c.Data(http.StatusOK, "application/json", blob)
}
