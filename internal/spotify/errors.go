package spotify

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a failed API call at the request-executor boundary.
//
// Callers branch on the kind, never on message text: the executor is the only
// layer allowed to inspect provider error bodies.
type ErrorKind int

const (
	// RequestFailed covers transport errors and unclassified non-2xx statuses.
	RequestFailed ErrorKind = iota
	// Unauthenticated means no usable access token was available.
	Unauthenticated
	// AuthRefreshFailed means a 401 was answered with one refresh-and-retry
	// and the retry failed too. Re-authentication is required.
	AuthRefreshFailed
	// InsufficientScope is a 403 whose body names a missing OAuth scope.
	InsufficientScope
	// Forbidden is any other 403.
	Forbidden
	// RateLimited is a 429, carrying Retry-After when the provider sent one.
	RateLimited
	// Cancelled means the caller's context ended the call.
	Cancelled
)

func (k ErrorKind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case AuthRefreshFailed:
		return "auth refresh failed"
	case InsufficientScope:
		return "insufficient scope"
	case Forbidden:
		return "forbidden"
	case RateLimited:
		return "rate limited"
	case Cancelled:
		return "cancelled"
	default:
		return "request failed"
	}
}

// Error is the typed failure produced by the request executor.
type Error struct {
	Kind       ErrorKind
	Status     int
	URL        string
	Message    string
	RetryAfter time.Duration
	cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("spotify: %s", e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// AsError extracts a typed *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsRateLimited reports whether err classifies as a 429.
func IsRateLimited(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == RateLimited
}

// IsInsufficientScope reports whether err is a missing-scope 403.
func IsInsufficientScope(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == InsufficientScope
}

// RetryAfter returns the provider-requested wait for a rate-limited error,
// or zero when none was sent.
func RetryAfter(err error) time.Duration {
	if apiErr, ok := AsError(err); ok {
		return apiErr.RetryAfter
	}
	return 0
}
