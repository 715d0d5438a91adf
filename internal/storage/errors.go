// ABOUTME: Storage error types shared by every backend.
// ABOUTME: Error wraps backend IO failures; ErrNotFound marks missing records.
package storage

import (
	"errors"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Error reports a failed durable store operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err wrapped in an *Error for op, or nil if err is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// IsStorageError reports whether err came from a durable store.
func IsStorageError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
