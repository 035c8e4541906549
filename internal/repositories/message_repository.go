package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"chat-backend/internal/models"
)

// CreateMessageParams carries everything needed to append one message.
type CreateMessageParams struct {
	SenderID   int
	ReceiverID *int
	Username   string
	Body       *string
	FileURL    *string
	FileName   *string
	FileType   *string
	FileSize   *int64
	IsPrivate  bool
}

// MessageRepository is the append-only message log.
type MessageRepository interface {
	Create(ctx context.Context, params CreateMessageParams) (models.Message, error)
	ListPublic(ctx context.Context, limit int) ([]models.Message, error)
	ListPrivate(ctx context.Context, userID, friendID, limit int) ([]models.Message, error)
	ListPublicByUsername(ctx context.Context, username string, limit int) ([]models.Message, error)
}

// MessageRepo is a sqlx implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, sender_id, receiver_id, username, body, file_url, file_name, file_type, file_size, is_private, created_at`

// Create appends a message to the log.
func (r *MessageRepo) Create(ctx context.Context, params CreateMessageParams) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`INSERT INTO messages (sender_id, receiver_id, username, body, file_url, file_name, file_type, file_size, is_private)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING `+messageColumns,
		params.SenderID, params.ReceiverID, params.Username, params.Body,
		params.FileURL, params.FileName, params.FileType, params.FileSize, params.IsPrivate)
	return msg, err
}

// ListPublic returns the public broadcast history, oldest first.
func (r *MessageRepo) ListPublic(ctx context.Context, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages
         WHERE is_private = FALSE
         ORDER BY created_at ASC
         LIMIT $1`, limit)
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, err
}

// ListPrivate returns the conversation between two users, oldest first.
func (r *MessageRepo) ListPrivate(ctx context.Context, userID, friendID, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages
         WHERE is_private = TRUE
           AND ((sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1))
         ORDER BY created_at ASC
         LIMIT $3`, userID, friendID, limit)
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, err
}

// ListPublicByUsername returns a user's public messages, newest first.
func (r *MessageRepo) ListPublicByUsername(ctx context.Context, username string, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages
         WHERE is_private = FALSE AND username=$1
         ORDER BY created_at DESC
         LIMIT $2`, username, limit)
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, err
}
