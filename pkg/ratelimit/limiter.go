package ratelimit

import (
	"context"
	"time"
)

// Result describes one admission decision. Remaining is what is left in the
// current window after this request; RetryAfter is only set when denied.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
}

// Limiter is a fixed-window counter keyed by client.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (Result, error)
}
