package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chat-backend/internal/models"
)

var (
	ErrRequestNotFound = errors.New("friend request not found")
	ErrRequestExists   = errors.New("friend request already exists")
	ErrAlreadyFriends  = errors.New("users are already friends")
)

// FriendRequestRepository drives the request lifecycle: created pending,
// settled exactly once by the receiver.
type FriendRequestRepository interface {
	Create(ctx context.Context, senderID, receiverID int) (models.FriendRequest, error)
	Accept(ctx context.Context, requestID, receiverID int) (models.Friendship, error)
	Reject(ctx context.Context, requestID, receiverID int) error
	ListPending(ctx context.Context, receiverID int) ([]models.PendingRequest, error)
}

// FriendRequestRepo is a sqlx implementation of FriendRequestRepository.
type FriendRequestRepo struct {
	db *sqlx.DB
}

// NewFriendRequestRepo constructs a FriendRequestRepo.
func NewFriendRequestRepo(db *sqlx.DB) *FriendRequestRepo {
	return &FriendRequestRepo{db: db}
}

// Create inserts a pending request. A live request in either direction blocks
// a new one; a rejected request does not, so the pair can try again later.
// The partial unique index on the unordered pending pair closes the race
// between this check and the insert.
func (r *FriendRequestRepo) Create(ctx context.Context, senderID, receiverID int) (models.FriendRequest, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(
            SELECT 1 FROM friend_requests
            WHERE LEAST(sender_id, receiver_id) = LEAST($1::int, $2::int)
              AND GREATEST(sender_id, receiver_id) = GREATEST($1::int, $2::int)
              AND status IN ('pending', 'accepted')
        )`, senderID, receiverID)
	if err != nil {
		return models.FriendRequest{}, err
	}
	if exists {
		return models.FriendRequest{}, ErrRequestExists
	}

	var request models.FriendRequest
	err = r.db.GetContext(ctx, &request,
		`INSERT INTO friend_requests (sender_id, receiver_id)
         VALUES ($1, $2)
         RETURNING id, sender_id, receiver_id, status, created_at, updated_at`,
		senderID, receiverID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.FriendRequest{}, ErrRequestExists
		}
		return models.FriendRequest{}, err
	}
	return request, nil
}

// Accept settles a pending request addressed to receiverID and records the
// resulting friendship in canonical order. Both writes commit as one
// transaction. The status guard on the UPDATE makes concurrent accepts of the
// same request resolve to exactly one winner; the loser sees ErrRequestNotFound.
func (r *FriendRequestRepo) Accept(ctx context.Context, requestID, receiverID int) (models.Friendship, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Friendship{}, err
	}
	defer tx.Rollback()

	var senderID, recipientID int
	err = tx.QueryRowxContext(ctx,
		`UPDATE friend_requests
         SET status='accepted', updated_at=NOW()
         WHERE id=$1 AND receiver_id=$2 AND status='pending'
         RETURNING sender_id, receiver_id`,
		requestID, receiverID).Scan(&senderID, &recipientID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Friendship{}, ErrRequestNotFound
	}
	if err != nil {
		return models.Friendship{}, err
	}

	user1, user2 := senderID, recipientID
	if user1 > user2 {
		user1, user2 = user2, user1
	}

	var friendship models.Friendship
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO friendships (user1_id, user2_id)
         VALUES ($1, $2)
         RETURNING id, user1_id, user2_id, created_at`,
		user1, user2).
		Scan(&friendship.ID, &friendship.User1ID, &friendship.User2ID, &friendship.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Friendship{}, ErrAlreadyFriends
		}
		return models.Friendship{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Friendship{}, err
	}
	return friendship, nil
}

// Reject settles a pending request without creating a friendship.
func (r *FriendRequestRepo) Reject(ctx context.Context, requestID, receiverID int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE friend_requests
         SET status='rejected', updated_at=NOW()
         WHERE id=$1 AND receiver_id=$2 AND status='pending'`,
		requestID, receiverID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// ListPending returns the open requests addressed to a user, newest first,
// with each sender's profile attached.
func (r *FriendRequestRepo) ListPending(ctx context.Context, receiverID int) ([]models.PendingRequest, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT fr.id, fr.sender_id, fr.created_at,
                u.id, u.username, u.email, u.avatar, u.bio, u.is_online, u.last_seen, u.created_at
         FROM friend_requests fr
         JOIN users u ON u.id = fr.sender_id
         WHERE fr.receiver_id=$1 AND fr.status='pending'
         ORDER BY fr.created_at DESC`,
		receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.PendingRequest{}
	for rows.Next() {
		var req models.PendingRequest
		if err := rows.Scan(
			&req.ID, &req.SenderID, &req.CreatedAt,
			&req.Sender.ID, &req.Sender.Username, &req.Sender.Email, &req.Sender.Avatar,
			&req.Sender.Bio, &req.Sender.IsOnline, &req.Sender.LastSeen, &req.Sender.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
