package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a request referencing state that does not exist,
// such as a chat session that was never created.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// MemoryStoreError wraps a retrieval failure from a memory collection.
type MemoryStoreError struct {
	Collection string
	Err        error
}

func (e *MemoryStoreError) Error() string {
	return fmt.Sprintf("memory store error in collection %q: %v", e.Collection, e.Err)
}

func (e *MemoryStoreError) Unwrap() error { return e.Err }
