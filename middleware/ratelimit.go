// ABOUTME: Sliding-window rate limiter for mutating requests
// ABOUTME: Per-key request logs with per-key locking, keyed by operator or client IP

package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// bucket holds the admitted request instants of one key, oldest first.
type bucket struct {
	mu      sync.Mutex
	hits    []time.Time
	removed bool // set by the sweeper once the bucket left the map
}

// prune drops instants that are no longer inside the window ending at now.
func (b *bucket) prune(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(b.hits) && !b.hits[i].After(cutoff) {
		i++
	}
	if i > 0 {
		b.hits = append(b.hits[:0], b.hits[i:]...)
	}
}

// RateLimiter admits at most limit requests per key within any trailing window.
// Buckets are locked individually so a hot key never blocks other keys.
type RateLimiter struct {
	buckets sync.Map // string -> *bucket
	limit   int
	window  time.Duration
	now     func() time.Time
}

// LimiterOption customizes a RateLimiter.
type LimiterOption func(*RateLimiter)

// WithLimiterClock replaces time.Now, for deterministic tests.
func WithLimiterClock(now func() time.Time) LimiterOption {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// NewRateLimiter creates a rate limiter that allows limit requests per sliding window.
func NewRateLimiter(limit int, window time.Duration, opts ...LimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Limit returns the maximum number of requests per window.
func (rl *RateLimiter) Limit() int { return rl.limit }

// Window returns the sliding window length.
func (rl *RateLimiter) Window() time.Duration { return rl.window }

// Allow checks whether a request for key should be admitted and records it if so.
// A rejected request returns how long until the oldest recorded instant leaves the window.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	for {
		b := rl.bucket(key)
		b.mu.Lock()
		if b.removed {
			// Lost a race with Sweep; the key needs a fresh bucket.
			b.mu.Unlock()
			continue
		}

		now := rl.now()
		b.prune(now, rl.window)

		if len(b.hits) >= rl.limit {
			retryAfter := b.hits[0].Add(rl.window).Sub(now)
			b.mu.Unlock()
			if retryAfter < 0 {
				retryAfter = 0
			}
			return false, retryAfter
		}

		b.hits = append(b.hits, now)
		b.mu.Unlock()
		return true, 0
	}
}

func (rl *RateLimiter) bucket(key string) *bucket {
	if v, ok := rl.buckets.Load(key); ok {
		return v.(*bucket)
	}
	v, _ := rl.buckets.LoadOrStore(key, &bucket{})
	return v.(*bucket)
}

// Sweep removes buckets with no instants left inside the window and returns
// how many were removed. Each bucket is locked on its own.
func (rl *RateLimiter) Sweep() int {
	removed := 0
	now := rl.now()
	rl.buckets.Range(func(k, v any) bool {
		b := v.(*bucket)
		b.mu.Lock()
		b.prune(now, rl.window)
		if len(b.hits) == 0 && !b.removed {
			b.removed = true
			rl.buckets.CompareAndDelete(k, b)
			removed++
		}
		b.mu.Unlock()
		return true
	})
	return removed
}

// Len returns the number of live buckets.
func (rl *RateLimiter) Len() int {
	n := 0
	rl.buckets.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// RunSweeper sweeps idle buckets every interval until ctx is cancelled.
func (rl *RateLimiter) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := rl.Sweep(); n > 0 {
				slog.Debug("Rate limiter swept idle buckets", "removed", n, "remaining", rl.Len())
			}
		}
	}
}

// ClientIP extracts the client IP from X-Forwarded-For (leftmost) or RemoteAddr.
// This trusts the X-Forwarded-For header, which is safe when the application runs
// behind a trusted reverse proxy that sets the header.
// If exposed directly to the internet without a proxy, attackers could spoof this
// header to bypass IP-based rate limits.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Validate with net.ParseIP to reject garbage values from spoofed headers.
		parts := strings.SplitN(xff, ",", 2)
		ip := strings.TrimSpace(parts[0])
		if ip != "" && net.ParseIP(ip) != nil {
			return "ip:" + ip
		}
	}

	// Fall back to RemoteAddr, stripping port
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return "ip:" + host
}

// OperatorOrIP returns a key function that limits a named operator by the
// identity it asserts in header, and unlabeled callers by client address.
func OperatorOrIP(header string) func(*http.Request) string {
	return func(r *http.Request) string {
		if name := strings.TrimSpace(r.Header.Get(header)); name != "" {
			return "operator:" + name
		}
		return ClientIP(r)
	}
}
