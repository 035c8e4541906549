package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chat-backend/internal/repositories"
)

// UserHandler serves user directory lookups.
type UserHandler struct {
	users repositories.UserRepository
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users repositories.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// Search finds users by username or email fragment, excluding the caller.
func (h *UserHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search query is required"})
		return
	}

	userID := c.GetInt("userID")
	users, err := h.users.Search(c.Request.Context(), userID, query, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
