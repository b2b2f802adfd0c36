package queue

import (
	"time"

	"github.com/vuciv/true-random-shuffle/internal/spotify"
)

// Policy governs per-item retry behavior during a queue drain.
type Policy struct {
	// MaxRetries bounds the retry attempts for one item, not counting the
	// initial submission.
	MaxRetries int
	// Backoff returns the wait before retry attempt n (0-based).
	Backoff func(attempt int) time.Duration
	// Retryable decides whether a failure is worth retrying at all.
	Retryable func(err error) bool
}

// DefaultPolicy retries rate-limited submissions up to three times with
// exponential backoff (1s, 2s, 4s). Any other failure is permanent for that
// item.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		Backoff: func(attempt int) time.Duration {
			return time.Second << attempt
		},
		Retryable: spotify.IsRateLimited,
	}
}

// wait resolves the delay before a retry: the policy's backoff, stretched to
// the provider's Retry-After when that asks for longer.
func (p Policy) wait(attempt int, err error) time.Duration {
	delay := p.Backoff(attempt)
	if after := spotify.RetryAfter(err); after > delay {
		delay = after
	}
	return delay
}
