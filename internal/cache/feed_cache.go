// Package cache is a best-effort key/value cache for rendered feed
// fragments. No operation reports an error: an unreachable, slow or
// corrupted cache behaves exactly like an empty one.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FeedCache stores serialized feed fragments.
type FeedCache interface {
	// Get returns the stored value and true, or false on miss or failure.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value for ttl. Failures are ignored.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Delete removes keys. Failures are ignored.
	Delete(ctx context.Context, keys ...string)
	// DeletePattern removes every key matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string)
}

const scanCount = 500

// RedisFeedCache implements FeedCache on go-redis. A nil client yields a
// cache that always misses.
type RedisFeedCache struct {
	rdb       *redis.Client
	log       *zap.Logger
	opTimeout time.Duration
}

// NewRedisFeedCache wraps rdb. opTimeout bounds each operation; zero
// means the caller's context alone applies.
func NewRedisFeedCache(rdb *redis.Client, log *zap.Logger, opTimeout time.Duration) *RedisFeedCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisFeedCache{rdb: rdb, log: log, opTimeout: opTimeout}
}

func (c *RedisFeedCache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

func (c *RedisFeedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.rdb == nil {
		Requests.WithLabelValues("miss").Inc()
		return nil, false
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		Requests.WithLabelValues("miss").Inc()
		return nil, false
	case err != nil:
		Requests.WithLabelValues("error").Inc()
		c.log.Debug("feed cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	Requests.WithLabelValues("hit").Inc()
	return b, true
}

func (c *RedisFeedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c.rdb == nil {
		return
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Debug("feed cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisFeedCache) Delete(ctx context.Context, keys ...string) {
	if c.rdb == nil || len(keys) == 0 {
		return
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Debug("feed cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// DeletePattern walks the keyspace with SCAN so Redis is never blocked by
// KEYS. It is meant for rare administrative purges.
func (c *RedisFeedCache) DeletePattern(ctx context.Context, pattern string) {
	if c.rdb == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, pattern, scanCount).Iterator()
	batch := make([]string, 0, scanCount)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanCount {
			c.Delete(ctx, batch...)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Debug("feed cache scan failed", zap.String("pattern", pattern), zap.Error(err))
	}
	c.Delete(ctx, batch...)
}

// Disabled is a FeedCache that stores nothing.
type Disabled struct{}

func (Disabled) Get(context.Context, string) ([]byte, bool) {
	Requests.WithLabelValues("miss").Inc()
	return nil, false
}
func (Disabled) Set(context.Context, string, []byte, time.Duration) {}
func (Disabled) Delete(context.Context, ...string)                  {}
func (Disabled) DeletePattern(context.Context, string)              {}
