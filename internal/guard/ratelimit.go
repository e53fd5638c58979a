package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/courtside/platform/internal/domain"
)

// RateLimiter counts calls per key over a sliding window. Keys are chosen by
// the caller, typically "scope:principal" or "scope:ip".
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time // oldest first
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter allows limit calls per window for each key.
// A non-positive limit disables limiting.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Check records a call for key and reports whether it fits in the window.
// Rejected calls are not recorded.
func (rl *RateLimiter) Check(_ context.Context, key string) domain.GuardResult {
	if rl.limit <= 0 {
		return domain.GuardResult{Allowed: true}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	hits := rl.prune(key, now)
	if len(hits) >= rl.limit {
		wait := hits[0].Add(rl.window).Sub(now)
		return domain.GuardResult{
			Allowed:    false,
			Reason:     fmt.Sprintf("too many requests, limit is %d per %s", rl.limit, rl.window),
			Guard:      "rate_limiter",
			RetryAfter: wait,
		}
	}
	rl.windows[key] = append(hits, now)
	return domain.GuardResult{Allowed: true}
}

// prune drops hits for key that have left the window. Caller holds mu.
func (rl *RateLimiter) prune(key string, now time.Time) []time.Time {
	hits := rl.windows[key]
	cutoff := now.Add(-rl.window)
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	hits = hits[i:]
	rl.windows[key] = hits
	return hits
}

// Sweep forgets keys with no hits left in the window.
func (rl *RateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key := range rl.windows {
		if len(rl.prune(key, now)) == 0 {
			delete(rl.windows, key)
		}
	}
}
