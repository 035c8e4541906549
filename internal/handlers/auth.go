package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-backend/internal/auth"
	"chat-backend/internal/models"
	"chat-backend/internal/presence"
	"chat-backend/internal/repositories"
	"chat-backend/internal/telemetry"
)

// AuthHandler manages registration, login and session identity.
type AuthHandler struct {
	users   repositories.UserRepository
	tracker *presence.Tracker
	tokens  *auth.TokenManager
	audit   *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(users repositories.UserRepository, tracker *presence.Tracker, tokens *auth.TokenManager, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{users: users, tracker: tracker, tokens: tokens, audit: audit}
}

type authResponse struct {
	User  models.Profile `json:"user"`
	Token string         `json:"token"`
}

// Register creates an account and returns it with a fresh token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string  `json:"username" binding:"required,min=3,max=30"`
		Email    string  `json:"email" binding:"required,email"`
		Password string  `json:"password" binding:"required,min=6"`
		Avatar   *string `json:"avatar"`
		Bio      *string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Username, req.Email, hash, req.Avatar, req.Bio)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "user with this email already exists"})
		case errors.Is(err, repositories.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "username is already taken"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		}
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	if err := h.tracker.MarkOnline(c.Request.Context(), user.ID); err != nil {
		log.Printf("presence mark online failed user=%d: %v", user.ID, err)
	}

	userID := int64(user.ID)
	h.audit.Emit(c.Request.Context(), "user_registered", "INFO", "user registered", requestIDFromContext(c), &userID)

	c.JSON(http.StatusCreated, authResponse{User: user.Profile(), Token: token})
}

// Login verifies credentials and marks the user online.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	if err := h.users.SetPresence(c.Request.Context(), user.ID, true); err != nil {
		log.Printf("presence update failed user=%d: %v", user.ID, err)
	}
	if err := h.tracker.MarkOnline(c.Request.Context(), user.ID); err != nil {
		log.Printf("presence mark online failed user=%d: %v", user.ID, err)
	}
	user.IsOnline = true

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	userID := int64(user.ID)
	h.audit.Emit(c.Request.Context(), "user_login", "INFO", "user logged in", requestIDFromContext(c), &userID)

	c.JSON(http.StatusOK, authResponse{User: user.Profile(), Token: token})
}

// Logout marks the caller offline. The token itself stays valid until expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetInt("userID")

	if err := h.users.SetPresence(c.Request.Context(), userID, false); err != nil {
		log.Printf("presence update failed user=%d: %v", userID, err)
	}
	if err := h.tracker.MarkOffline(c.Request.Context(), userID); err != nil {
		log.Printf("presence mark offline failed user=%d: %v", userID, err)
	}

	c.Status(http.StatusNoContent)
}

// Profile returns the authenticated user's own profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID := c.GetInt("userID")

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Profile()})
}
