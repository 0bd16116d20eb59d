package config

import "time"

// FeedCacheConfig controls the Redis-backed feed cache. When Enabled is
// false, or Redis cannot be reached at startup, the service runs with a
// cache that always misses. OpTimeout bounds every cache round-trip so a
// slow Redis degrades into misses instead of slow pages.
type FeedCacheConfig struct {
	Enabled   bool
	OpTimeout time.Duration
}

// LoadFeedCacheConfig reads FEED_CACHE_* variables.
func LoadFeedCacheConfig() FeedCacheConfig {
	return FeedCacheConfig{
		Enabled:   envBool("FEED_CACHE_ENABLED", true),
		OpTimeout: envDur("FEED_CACHE_OP_TIMEOUT", 100*time.Millisecond),
	}
}
