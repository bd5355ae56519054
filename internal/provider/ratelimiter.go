package provider

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket shared by every caller of one upstream.
// Wait blocks rather than dropping the call.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows a burst of maxTokens and one new token per refillInterval.
func NewRateLimiter(maxTokens int, refillInterval time.Duration) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	if refillInterval <= 0 {
		refillInterval = time.Millisecond
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(refillInterval), maxTokens)}
}

// PerMinute spreads perMinute calls evenly over a minute.
func PerMinute(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return NewRateLimiter(perMinute, time.Minute/time.Duration(perMinute))
}

func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
