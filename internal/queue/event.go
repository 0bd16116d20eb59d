// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// ImageMigrationRequested asks a consumer to move the inline image of a
// post into the blob store. Consumers must tolerate duplicates and posts
// that were migrated or deleted in the meantime.
type ImageMigrationRequested struct {
	PostID      uint64    `json:"post_id"`
	RequestedAt time.Time `json:"requested_at"`
}
