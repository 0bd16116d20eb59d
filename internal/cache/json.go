package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetJSON decodes the entry at key into dest. A payload that does not
// decode is reported as a miss.
func GetJSON(ctx context.Context, c FeedCache, key string, dest any) bool {
	b, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		Requests.WithLabelValues("malformed").Inc()
		return false
	}
	return true
}

// SetJSON encodes v and stores it. Encoding failures skip the write.
func SetJSON(ctx context.Context, c FeedCache, key string, v any, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Set(ctx, key, b, ttl)
}
