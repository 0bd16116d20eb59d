package model

import "time"

// Comment mirrors the `comments` table together with its author, which
// is always loaded in the same query.
type Comment struct {
	ID        uint64    `json:"id"`
	PostID    uint64    `json:"post_id"`
	UserID    uint64    `json:"user_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	User      Author    `json:"user"`
}
