package model

import "time"

// PostView is a post enriched for rendering: its author, the total number
// of comments and an ordered subset (or all) of those comments.
//
// Fields:
//  CommentCount – total comment rows of the post, independent of how many
//                 comments are attached.
//  Comments     – oldest first.
//  ImageURL     – path served by the image endpoint, "/image/<id>.<ext>".
type PostView struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"user_id"`
	Body         string    `json:"body"`
	Mime         string    `json:"mime"`
	CreatedAt    time.Time `json:"created_at"`
	ImageURL     string    `json:"image_url"`
	CommentCount int       `json:"comment_count"`
	Comments     []Comment `json:"comments"`
	User         Author    `json:"user"`
}

// UserPage is the profile bundle cached under user:<account_name>:page0.
type UserPage struct {
	User  Author     `json:"user"`
	Posts []PostView `json:"posts"`
	UserStats
}
