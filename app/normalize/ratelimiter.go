package normalize

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a fixed-window request ceiling. The window start is
// reset to "now" once the window has elapsed since the last reset, so up to
// 2N requests can land across a window boundary (N just before the reset, N
// just after). This matches the upstream API accounting we mirror; do not
// replace it with a sliding window without adjusting the configured limit.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu          sync.Mutex
	windowStart time.Time
	count       int
}

// NewRateLimiter returns a limiter admitting at most perMinute requests per
// trailing minute window.
func NewRateLimiter(perMinute int) *RateLimiter {
	return newRateLimiter(perMinute, time.Minute)
}

func newRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	return &RateLimiter{
		limit:  limit,
		window: window,
	}
}

// Admit blocks until issuing another request stays within the window limit,
// then records the request. Returns early with the context error if ctx is
// cancelled while waiting.
func (r *RateLimiter) Admit(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()

		if r.windowStart.IsZero() || now.Sub(r.windowStart) >= r.window {
			r.windowStart = now
			r.count = 0
		}

		if r.count < r.limit {
			r.count++
			r.mu.Unlock()
			return nil
		}

		wait := r.window - now.Sub(r.windowStart)
		r.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
