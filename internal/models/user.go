package models

import "time"

// User is a registered account. PasswordHash is the opaque credential and
// must never be serialized across the trust boundary.
type User struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Avatar       *string   `db:"avatar" json:"avatar,omitempty"`
	Bio          *string   `db:"bio" json:"bio,omitempty"`
	IsOnline     bool      `db:"is_online" json:"is_online"`
	LastSeen     time.Time `db:"last_seen" json:"last_seen"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Profile is the credential-free view of a user returned to clients.
type Profile struct {
	ID        int       `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Avatar    *string   `db:"avatar" json:"avatar,omitempty"`
	Bio       *string   `db:"bio" json:"bio,omitempty"`
	IsOnline  bool      `db:"is_online" json:"is_online"`
	LastSeen  time.Time `db:"last_seen" json:"last_seen"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Profile projects the user onto its public view.
func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		IsOnline:  u.IsOnline,
		LastSeen:  u.LastSeen,
		CreatedAt: u.CreatedAt,
	}
}
