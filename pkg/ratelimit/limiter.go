package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// FixedInterval enforces a fixed delay between consecutive requests.
// It is the politeness delay of the sequential crawl: the first request
// passes immediately, every following one waits until the interval since
// the previous request has elapsed.
type FixedInterval struct {
	interval time.Duration
	last     time.Time
	mu       sync.Mutex
}

// NewFixedInterval creates a fixed-interval limiter
func NewFixedInterval(interval time.Duration) *FixedInterval {
	return &FixedInterval{
		interval: interval,
	}
}

// Allow checks if a request can proceed without waiting
func (fi *FixedInterval) Allow() bool {
	fi.mu.Lock()
	defer fi.mu.Unlock()

	now := time.Now()
	if fi.last.IsZero() || now.Sub(fi.last) >= fi.interval {
		fi.last = now
		return true
	}

	return false
}

// Wait blocks until the interval since the last request has elapsed
func (fi *FixedInterval) Wait() {
	for !fi.Allow() {
		fi.mu.Lock()
		remaining := fi.interval - time.Since(fi.last)
		fi.mu.Unlock()

		if remaining > 0 {
			time.Sleep(remaining)
		} else {
			// Small sleep to prevent busy waiting
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// Reset clears the last-request timestamp
func (fi *FixedInterval) Reset() {
	fi.mu.Lock()
	defer fi.mu.Unlock()

	fi.last = time.Time{}
}

// Nop is a limiter that never blocks. Used when the delay is zero or the
// crawl runs a worker pool, which deliberately applies no cross-worker
// rate limiting.
type Nop struct{}

// NewNop creates a no-op limiter
func NewNop() *Nop { return &Nop{} }

// Allow always permits the request
func (n *Nop) Allow() bool { return true }

// Wait returns immediately
func (n *Nop) Wait() {}

// Reset does nothing
func (n *Nop) Reset() {}
