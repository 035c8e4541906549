package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chat-backend/internal/presence"
	"chat-backend/internal/repositories"
)

// FriendHandler drives the friend-request lifecycle and friend listings.
type FriendHandler struct {
	users       repositories.UserRepository
	requests    repositories.FriendRequestRepository
	friendships repositories.FriendshipRepository
	tracker     *presence.Tracker
}

// NewFriendHandler builds a FriendHandler.
func NewFriendHandler(users repositories.UserRepository, requests repositories.FriendRequestRepository, friendships repositories.FriendshipRepository, tracker *presence.Tracker) *FriendHandler {
	return &FriendHandler{users: users, requests: requests, friendships: friendships, tracker: tracker}
}

// SendRequest creates a pending friend request to another user.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req struct {
		ReceiverID int `json:"receiver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if userID == req.ReceiverID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot send a friend request to yourself"})
		return
	}

	if _, err := h.users.GetByID(c.Request.Context(), req.ReceiverID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send friend request"})
		return
	}

	friends, err := h.friendships.Exists(c.Request.Context(), userID, req.ReceiverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send friend request"})
		return
	}
	if friends {
		c.JSON(http.StatusConflict, gin.H{"error": "already friends with this user"})
		return
	}

	request, err := h.requests.Create(c.Request.Context(), userID, req.ReceiverID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "friend request already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send friend request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// AcceptRequest accepts a pending request addressed to the caller and returns
// the new friendship.
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	userID := c.GetInt("userID")
	friendship, err := h.requests.Accept(c.Request.Context(), requestID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "friend request not found or already processed"})
		case errors.Is(err, repositories.ErrAlreadyFriends):
			c.JSON(http.StatusConflict, gin.H{"error": "already friends with this user"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept friend request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"friendship": friendship})
}

// RejectRequest rejects a pending request addressed to the caller.
func (h *FriendHandler) RejectRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	userID := c.GetInt("userID")
	if err := h.requests.Reject(c.Request.Context(), requestID, userID); err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "friend request not found or already processed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reject friend request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

// ListFriends returns the caller's friends with live presence overlaid on the
// stored flags.
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID := c.GetInt("userID")

	friends, err := h.friendships.ListFriends(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load friends"})
		return
	}

	ids := make([]int, 0, len(friends))
	for _, f := range friends {
		ids = append(ids, f.ID)
	}
	online, err := h.tracker.Online(c.Request.Context(), ids)
	if err != nil {
		log.Printf("presence lookup failed: %v", err)
	} else {
		for i := range friends {
			if online[friends[i].ID] {
				friends[i].IsOnline = true
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// PendingRequests returns the open requests addressed to the caller.
func (h *FriendHandler) PendingRequests(c *gin.Context) {
	userID := c.GetInt("userID")

	requests, err := h.requests.ListPending(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pending requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
