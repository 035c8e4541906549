package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"chat-backend/internal/observability"
	"chat-backend/internal/realtime"
	"chat-backend/internal/repositories"
	"chat-backend/internal/storage"
	"chat-backend/internal/telemetry"
)

const (
	publicHistoryLimit  = 100
	privateHistoryLimit = 100
	userHistoryLimit    = 50
)

// MessageHandler persists messages and fans them out to the realtime
// transport.
type MessageHandler struct {
	messages    repositories.MessageRepository
	friendships repositories.FriendshipRepository
	files       storage.FileStore
	notifier    realtime.Notifier
	audit       *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messages repositories.MessageRepository, friendships repositories.FriendshipRepository, files storage.FileStore, notifier realtime.Notifier, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{messages: messages, friendships: friendships, files: files, notifier: notifier, audit: audit}
}

// ListPublic returns the public broadcast history.
func (h *MessageHandler) ListPublic(c *gin.Context) {
	msgs, err := h.messages.ListPublic(c.Request.Context(), publicHistoryLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// Send stores a text message, public or private.
func (h *MessageHandler) Send(c *gin.Context) {
	var req struct {
		Message    string `json:"message"`
		ReceiverID *int   `json:"receiver_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body := strings.TrimSpace(req.Message)
	if body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	h.createAndEmit(c, &body, nil, req.ReceiverID)
}

// SendFile stores a file message with an optional caption.
func (h *MessageHandler) SendFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	var receiverID *int
	if raw := c.PostForm("receiver_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receiver id"})
			return
		}
		receiverID = &id
	}

	var body *string
	if caption := strings.TrimSpace(c.PostForm("message")); caption != "" {
		body = &caption
	}

	stored, err := h.files.Save(c.Request.Context(), fileHeader)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds size limit"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	h.createAndEmit(c, body, &stored, receiverID)
}

// createAndEmit runs the shared send path: friendship gate for private
// messages, content gate, persist, then emit to the derived channel. The
// emission outcome never changes the response; the stored row is the
// durability boundary.
func (h *MessageHandler) createAndEmit(c *gin.Context, body *string, file *storage.StoredFile, receiverID *int) {
	senderID := c.GetInt("userID")
	username := c.GetString("username")

	if receiverID != nil {
		friends, err := h.friendships.Exists(c.Request.Context(), senderID, *receiverID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
			return
		}
		if !friends {
			c.JSON(http.StatusForbidden, gin.H{"error": "can only send messages to friends"})
			return
		}
	}

	if body == nil && file == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message or file is required"})
		return
	}

	params := repositories.CreateMessageParams{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Username:   username,
		Body:       body,
		IsPrivate:  receiverID != nil,
	}
	if file != nil {
		params.FileURL = &file.URL
		params.FileName = &file.Name
		params.FileType = &file.Type
		params.FileSize = &file.Size
	}

	msg, err := h.messages.Create(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	channel := realtime.MessageChannel(senderID, receiverID)
	channelKind := "public"
	if msg.IsPrivate {
		channelKind = "private"
	}
	if err := h.notifier.Trigger(c.Request.Context(), channel, realtime.EventNewMessage, msg); err != nil {
		log.Printf("notify failed channel=%s message=%d: %v", channel, msg.ID, err)
		observability.IncNotifyEvent(channelKind, "error")
	} else {
		observability.IncNotifyEvent(channelKind, "ok")
	}

	h.audit.Emit(c.Request.Context(), "message_created", "INFO", "message stored and emitted", requestIDFromContext(c), auditUserID(c))

	c.JSON(http.StatusCreated, msg)
}

// GetPrivate returns the conversation with a friend. Reading history is
// friendship-gated the same way sending is.
func (h *MessageHandler) GetPrivate(c *gin.Context) {
	friendID, err := strconv.Atoi(c.Param("friend_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return
	}

	userID := c.GetInt("userID")
	friends, err := h.friendships.Exists(c.Request.Context(), userID, friendID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if !friends {
		c.JSON(http.StatusForbidden, gin.H{"error": "can only view messages with friends"})
		return
	}

	msgs, err := h.messages.ListPrivate(c.Request.Context(), userID, friendID, privateHistoryLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// ByUser returns a user's public messages.
func (h *MessageHandler) ByUser(c *gin.Context) {
	username := c.Param("username")

	msgs, err := h.messages.ListPublicByUsername(c.Request.Context(), username, userHistoryLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
