package model

import "time"

// Post mirrors the `posts` table without the image column. Feed queries
// never load image payloads; images go through PostImage.
type Post struct {
	ID        uint64    // posts.id
	UserID    uint64    // posts.user_id
	Mime      string    // posts.mime
	Body      string    // posts.body
	CreatedAt time.Time // posts.created_at
}

// PostImage is the image column of a post decoded at the repository
// boundary.
type PostImage struct {
	PostID uint64
	Mime   string
	Data   ImageData
}

// ImageEntry is a lightweight classification of a post's image column used
// by batch scans; it never carries image bytes.
type ImageEntry struct {
	PostID uint64
	Mime   string
	Kind   ImageKind
}
