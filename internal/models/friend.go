package models

import "time"

// Friend request lifecycle. A request is created pending and transitions to
// accepted or rejected exactly once.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// FriendRequest is a directional friendship proposal from sender to receiver.
type FriendRequest struct {
	ID         int       `db:"id" json:"id"`
	SenderID   int       `db:"sender_id" json:"sender_id"`
	ReceiverID int       `db:"receiver_id" json:"receiver_id"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// PendingRequest is an incoming request joined with the sender's profile.
type PendingRequest struct {
	ID        int       `json:"id"`
	SenderID  int       `json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`
	Sender    Profile   `json:"sender"`
}

// Friendship is a confirmed, symmetric relationship. User1ID < User2ID so the
// pair is stored in exactly one canonical form.
type Friendship struct {
	ID        int       `db:"id" json:"id"`
	User1ID   int       `db:"user1_id" json:"user1_id"`
	User2ID   int       `db:"user2_id" json:"user2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Friend is the other side of a friendship from one user's point of view.
type Friend struct {
	Profile
	FriendsSince time.Time `db:"friends_since" json:"friends_since"`
}
