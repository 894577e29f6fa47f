package ratelimit

import (
	"context"
	"time"
)

// Result contains the result of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is allowed.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests remaining in the current window.
	Remaining int

	// ResetAt is the time when the rate limit window resets.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter defines the interface for rate limiting implementations.
type Limiter interface {
	// Allow checks if a single request is allowed for the given key.
	// If allowed, it consumes one slot.
	Allow(ctx context.Context, key string) (*Result, error)

	// Status returns the current rate limit status for the given key
	// without consuming any slots.
	Status(ctx context.Context, key string) (*Result, error)

	// Reset resets the rate limit for the given key.
	Reset(ctx context.Context, key string) error
}

// SlidingWindowStore persists per-key request timestamps for sliding window
// rate limiting. Implementations must not let concurrent writers corrupt a
// record; lost updates under race are tolerable, corrupted records are not.
type SlidingWindowStore interface {
	// RecordTimestampIfAllowed atomically checks whether recording n more
	// timestamps would stay within limit and records them if so. Denied
	// attempts are NOT recorded. Returns whether the timestamps were
	// recorded and the resulting count within the window.
	RecordTimestampIfAllowed(ctx context.Context, key string, timestamp time.Time, window time.Duration, limit int, n int) (bool, int64, error)

	// CountInWindow returns the number of timestamps within the sliding window.
	CountInWindow(ctx context.Context, key string, window time.Duration) (int64, error)

	// CleanupExpired removes expired timestamps from the sliding window.
	CleanupExpired(ctx context.Context, key string, window time.Duration) error

	// Delete removes the given key from the store.
	Delete(ctx context.Context, key string) error
}
