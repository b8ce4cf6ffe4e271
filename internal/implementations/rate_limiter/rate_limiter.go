package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	ratelimiter "reminderengine/internal/core/domain/rate_limiter"
	"time"

	"github.com/go-redis/redis/v9"
)

// Redis is a fixed window rate limiter: one counter per key and window.
type Redis struct {
	redisClient *redis.Client
	log         logging.Logger
	now         func() time.Time
}

func NewRedis(redisClient *redis.Client, log logging.Logger, now func() time.Time) *Redis {
	if redisClient == nil {
		panic(e.NewNilArgumentError("redisClient"))
	}
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &Redis{redisClient: redisClient, log: log, now: now}
}

func (r *Redis) CheckLimit(ctx context.Context, key string, limit ratelimiter.Limit) ratelimiter.Result {
	windowKey, ttl := window(key, limit.Interval, r.now())

	cmds, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, windowKey)
		pipe.Expire(ctx, windowKey, ttl)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return ratelimiter.NotAllowed()
	}
	if err != nil {
		// Users are not blocked because of a Redis outage.
		r.log.Error(
			ctx,
			"Could not check rate limit due to Redis client error.",
			logging.Entry("key", windowKey),
			logging.Entry("err", err),
		)
		return ratelimiter.Allowed()
	}
	count := cmds[0].(*redis.IntCmd).Val()
	if count > int64(limit.Value) {
		return ratelimiter.NotAllowed()
	}
	return ratelimiter.Allowed()
}

func window(key string, interval ratelimiter.Interval, now time.Time) (string, time.Duration) {
	var d time.Duration
	switch interval {
	case ratelimiter.Hour:
		d = time.Hour
	case ratelimiter.Minute:
		d = time.Minute
	default:
		panic("invalid rate limiting interval")
	}
	start := now.Truncate(d).Unix()
	return fmt.Sprintf("ratelimit::%s::%d", key, start), d
}
