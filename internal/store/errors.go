package store

import (
	"errors"
	"fmt"
)

var (
	// ErrTaskNotFound is returned when the referenced task id does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound is returned when a user id cannot be resolved.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError reports malformed input on a write, naming the offending
// field so callers can surface it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
