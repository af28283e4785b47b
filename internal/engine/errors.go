package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrContentUnavailable means the content pool was empty or every
	// fetch failed. It is logged; callers receive a truncated result.
	ErrContentUnavailable = errors.New("content unavailable")

	// ErrInvalidOverride marks an override naming an unknown template or
	// module. Such entries are dropped with a warning.
	ErrInvalidOverride = errors.New("invalid override")

	// ErrStoreUnavailable is matched by every StoreError.
	ErrStoreUnavailable = errors.New("learner store unavailable")

	// ErrMissionNotFound is returned for a mission id with no live batch.
	ErrMissionNotFound = errors.New("mission not found")

	// ErrNoSession is returned when a session operation finds nothing cached.
	ErrNoSession = errors.New("no active session")
)

// StoreError wraps a durable learner store failure. The operation can be
// retried; local cache state was left as it was.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: learner store: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStoreUnavailable) hold for any StoreError.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func storeError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
