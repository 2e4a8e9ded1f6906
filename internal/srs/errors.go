package srs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested item does not exist or belongs to
	// another user. Always surfaced to the caller; it means the caller acted
	// on stale state.
	ErrNotFound = errors.New("review item not found")

	// ErrConflict indicates a concurrent write to the same item won. The
	// caller may reload the item and recompute instead of surfacing an error.
	ErrConflict = errors.New("review item was modified concurrently")
)

// StorageError wraps failures of the persistence layer (constraint
// violations other than the idempotency key, transient unavailability).
// Retry policy belongs to the caller, not to the engine.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a storage failure for operation op.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err is a storage-layer failure.
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}
