package cache

import (
	"strconv"
	"time"
)

// FeedTTL is the lifetime of every feed cache entry.
const FeedTTL = 30 * time.Second

const (
	TimelineTopKey = "tl:top"

	timelineBeforePrefix = "tl:before:"
	// TimelinePattern matches every timeline entry.
	TimelinePattern = "tl:*"
	// UserPagePattern matches every profile page entry.
	UserPagePattern = "user:*:page0"
	// PostPattern matches every single-post entry.
	PostPattern = "post:*"
)

// TimelineBeforeKey keys the older-than window for a raw cursor string.
// An empty cursor uses the "top" marker.
func TimelineBeforeKey(cursor string) string {
	if cursor == "" {
		cursor = "top"
	}
	return timelineBeforePrefix + cursor
}

// UserPageKey keys the first profile page of an account.
func UserPageKey(accountName string) string { return "user:" + accountName + ":page0" }

// PostKey keys a single post view.
func PostKey(postID uint64) string { return "post:" + strconv.FormatUint(postID, 10) }
