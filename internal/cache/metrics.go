package cache

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	// Requests counts feed cache lookups by result (hit, miss, error).
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photofeed_cache_requests_total",
		Help: "Feed cache lookups by result.",
	}, []string{"result"})

	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photofeed_redis_errors_total",
		Help: "Redis command failures by command.",
	}, []string{"command"})
)

// MetricsHook records Redis command failures. redis.Nil is a normal miss
// and is not counted.
type MetricsHook struct{}

func (h MetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h MetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h MetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}
