// Package ratelimit provides request pacing for the photo crawler.
//
// The crawler hits photo pages on a shared hosting service, so requests
// are spaced out to stay polite and avoid getting blocked.
//
// Available Implementations:
//
// Fixed Interval:
//   - Enforces a minimum delay between consecutive requests
//   - The first request passes immediately
//   - Default implementation used by the sequential crawl
//
// Nop:
//   - Never blocks
//   - Used when the delay is zero or requests are spread across workers
//
// Interface:
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// One request per second
//	limiter := ratelimit.NewFixedInterval(time.Second)
//
//	for _, rec := range records {
//	    limiter.Wait()
//	    // Proceed with request
//	}
package ratelimit
