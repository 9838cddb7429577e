package arrhttp

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy. Errors returned by a Fetcher
// match exactly one of these via errors.Is.
var (
	// ErrUnreachable indicates connection or timeout failures that
	// survived all retry attempts.
	ErrUnreachable = errors.New("upstream unreachable")
	// ErrUnauthorized indicates a rejected API key. Never retried.
	ErrUnauthorized = errors.New("unauthorized: invalid API key")
	// ErrNotFound indicates the requested resource does not exist
	// upstream. Never retried.
	ErrNotFound = errors.New("resource not found")
	// ErrRateLimited indicates 429 responses that survived all retries.
	ErrRateLimited = errors.New("rate limited by upstream")
	// ErrUpstreamServer indicates 5xx responses that survived all retries.
	ErrUpstreamServer = errors.New("upstream server error")
	// ErrMalformedResponse indicates a 200 response whose body could not
	// be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// Kind classifies a terminal request failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnreachable
	KindUnauthorized
	KindNotFound
	KindRateLimited
	KindUpstreamServer
	KindMalformedResponse
)

// String returns the wire/log name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstreamServer:
		return "upstream_server_error"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnreachable:
		return ErrUnreachable
	case KindUnauthorized:
		return ErrUnauthorized
	case KindNotFound:
		return ErrNotFound
	case KindRateLimited:
		return ErrRateLimited
	case KindUpstreamServer:
		return ErrUpstreamServer
	case KindMalformedResponse:
		return ErrMalformedResponse
	default:
		return nil
	}
}

// Error is the terminal error surfaced to callers after retries and
// classification. Its message never contains the API key.
type Error struct {
	Kind       Kind
	StatusCode int // 0 for transport-level failures
	Op         string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel corresponding to the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// IsNotFound reports whether err is a terminal not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether err is a rejected-key failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsUnreachable reports whether err is a transport-level failure.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// statusError carries a non-200 status through the retry loop. It is
// internal to the layer; callers only ever see *Error.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func retryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
