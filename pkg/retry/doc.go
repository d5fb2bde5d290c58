// Package retry provides backoff and retry logic for handling transient
// failures in network operations, particularly page and image fetches.
//
// The same combinator covers the three places the crawler retries: the
// photo-page fetch, the image download, and the per-size download.
//
// Features:
//   - Multiple backoff strategies (linear, exponential, constant)
//   - Jitter to avoid thundering herd problems
//   - Context support for cancellation
//   - Configurable retry predicates
//   - Integration with the crawler's typed errors
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		return client.DownloadImage(url)
//	}, nil)
//
//	// Custom configuration: sleep delay x attempt, like the crawl policy
//	cfg := &retry.Config{
//		MaxAttempts: 3,
//		Backoff: &retry.LinearBackoff{
//			BaseDelay: time.Second,
//			Increment: time.Second,
//			MaxDelay:  30 * time.Second,
//		},
//		RetryIf: retry.DefaultRetryIf,
//		Logger:  logger.GetLogger(),
//	}
//	err := retry.Do(operation, cfg)
//
// Error Type Handling:
//
// DefaultRetryIf classifies typed crawl errors: network failures, server
// errors, empty payloads and decode failures are retried; private photos,
// 404s, 410s and unresolvable pages are not.
package retry
