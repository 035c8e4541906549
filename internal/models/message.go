package models

import "time"

// Message is one entry in the append-only message log. ReceiverID is set only
// for private messages; Body and the file fields are individually optional but
// never both absent.
type Message struct {
	ID         int       `db:"id" json:"id"`
	SenderID   int       `db:"sender_id" json:"sender_id"`
	ReceiverID *int      `db:"receiver_id" json:"receiver_id,omitempty"`
	Username   string    `db:"username" json:"username"`
	Body       *string   `db:"body" json:"message,omitempty"`
	FileURL    *string   `db:"file_url" json:"file_url,omitempty"`
	FileName   *string   `db:"file_name" json:"file_name,omitempty"`
	FileType   *string   `db:"file_type" json:"file_type,omitempty"`
	FileSize   *int64    `db:"file_size" json:"file_size,omitempty"`
	IsPrivate  bool      `db:"is_private" json:"is_private"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
