package history

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record or saved query does not exist.
var ErrNotFound = errors.New("not found")

// StoreError represents an error from the history store.
type StoreError struct {
	Operation string // Operation that failed ("record", "list", "save", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("history store error [operation=%s]: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation string, cause error) *StoreError {
	return &StoreError{Operation: operation, Cause: cause}
}
