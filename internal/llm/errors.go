package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Failure kinds. A provider error matches exactly one with errors.Is.
var (
	ErrUnavailable   = errors.New("llm: provider unavailable")
	ErrRateLimited   = errors.New("llm: rate limited")
	ErrRejected      = errors.New("llm: request rejected")
	ErrInvalidOutput = errors.New("llm: reply does not match schema")
	ErrTruncated     = errors.New("llm: reply truncated at max tokens")
)

// Error is a classified provider failure.
type Error struct {
	Provider string
	Kind     error

	// RetryAfter is the wait the provider asked for, if any.
	RetryAfter time.Duration

	// Raw is the reply that failed checks, kept for debugging prompts.
	Raw json.RawMessage

	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// classify maps an HTTP status from a provider SDK onto a failure kind.
// A zero status means the request never got a response.
func classify(provider string, status int, err error) error {
	kind := ErrUnavailable
	switch {
	case status == http.StatusTooManyRequests:
		kind = ErrRateLimited
	case status == http.StatusRequestTimeout:
	case status >= 400 && status < 500:
		kind = ErrRejected
	}
	return &Error{Provider: provider, Kind: kind, Err: err}
}

// retryable reports whether another attempt could succeed. Invalid output
// is worth one more try since sampling may fix it.
func retryable(err error, invalidSeen *bool) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrRejected), errors.Is(err, ErrTruncated):
		return false
	case errors.Is(err, ErrInvalidOutput):
		if *invalidSeen {
			return false
		}
		*invalidSeen = true
		return true
	}
	return true
}

// retryAfter returns the wait a rate-limited provider asked for.
func retryAfter(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.Kind == ErrRateLimited {
		return e.RetryAfter
	}
	return 0
}
