package ratelimiting

import (
	"context"
	"fmt"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	ratelimiter "reminderengine/internal/core/domain/rate_limiter"
	"reminderengine/internal/core/services"
)

// hasRateLimitKey is implemented by inputs of user-triggered actions. The key
// names the action and the owner, e.g. "snooze_notification::1".
type hasRateLimitKey interface {
	GetRateLimitKey() string
}

type serviceWithRateLimiting[T hasRateLimitKey, S any] struct {
	log         logging.Logger
	rateLimiter ratelimiter.RateLimiter
	rateLimit   ratelimiter.Limit
	inner       services.Service[T, S]
}

func WithRateLimiting[T hasRateLimitKey, S any](
	log logging.Logger,
	rateLimiter ratelimiter.RateLimiter,
	rateLimit ratelimiter.Limit,
	inner services.Service[T, S],
) services.Service[T, S] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if rateLimiter == nil {
		panic(e.NewNilArgumentError("rateLimiter"))
	}
	if inner == nil {
		panic(e.NewNilArgumentError("inner"))
	}
	return &serviceWithRateLimiting[T, S]{
		log:         log,
		rateLimiter: rateLimiter,
		rateLimit:   rateLimit,
		inner:       inner,
	}
}

// Run calls the inner service unless the owner used up the limit for the
// action. The returned error wraps ErrRateLimitExceeded.
func (s *serviceWithRateLimiting[T, S]) Run(ctx context.Context, input T) (result S, err error) {
	if s.rateLimit.IsDisabled() {
		return s.inner.Run(ctx, input)
	}

	rateLimitKey := input.GetRateLimitKey()
	rate := s.rateLimiter.CheckLimit(ctx, rateLimitKey, s.rateLimit)
	if rate.IsAllowed {
		return s.inner.Run(ctx, input)
	}

	s.log.Warning(
		ctx,
		"Rate limit exceeded, action rejected.",
		logging.Entry("key", rateLimitKey),
		logging.Entry("limit", s.rateLimit.Value),
		logging.Entry("interval", s.rateLimit.Interval.String()),
	)
	return result, fmt.Errorf(
		"%w: %d per %s",
		ratelimiter.ErrRateLimitExceeded,
		s.rateLimit.Value,
		s.rateLimit.Interval,
	)
}
