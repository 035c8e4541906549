package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"chat-backend/internal/models"
)

// FriendshipRepository is the authorization source of truth for private
// messaging: two users may exchange private messages iff Exists returns true.
type FriendshipRepository interface {
	Exists(ctx context.Context, userA, userB int) (bool, error)
	ListFriends(ctx context.Context, userID int) ([]models.Friend, error)
}

// FriendshipRepo is a sqlx implementation of FriendshipRepository.
type FriendshipRepo struct {
	db *sqlx.DB
}

// NewFriendshipRepo constructs a FriendshipRepo.
func NewFriendshipRepo(db *sqlx.DB) *FriendshipRepo {
	return &FriendshipRepo{db: db}
}

// Exists reports whether a friendship covers the unordered pair. Rows are
// stored canonically (user1_id < user2_id) so one lookup covers both
// argument orders.
func (r *FriendshipRepo) Exists(ctx context.Context, userA, userB int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(
            SELECT 1 FROM friendships
            WHERE user1_id = LEAST($1::int, $2::int) AND user2_id = GREATEST($1::int, $2::int)
        )`, userA, userB)
	return exists, err
}

// ListFriends returns the profile on the other side of every friendship
// touching userID, newest friendship first.
func (r *FriendshipRepo) ListFriends(ctx context.Context, userID int) ([]models.Friend, error) {
	var friends []models.Friend
	err := r.db.SelectContext(ctx, &friends,
		`SELECT u.id, u.username, u.email, u.avatar, u.bio, u.is_online, u.last_seen, u.created_at,
                f.created_at AS friends_since
         FROM friendships f
         JOIN users u ON u.id = CASE WHEN f.user1_id = $1 THEN f.user2_id ELSE f.user1_id END
         WHERE f.user1_id = $1 OR f.user2_id = $1
         ORDER BY f.created_at DESC`,
		userID)
	if friends == nil {
		friends = []models.Friend{}
	}
	return friends, err
}
