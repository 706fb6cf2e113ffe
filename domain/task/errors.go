package task

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the task was not found.
	ErrNotFound = errors.New("task not found")
	// ErrValidation indicates a required field is missing or out of range.
	ErrValidation = errors.New("validation failed")
)

// validationError wraps ErrValidation with a field-level message so callers
// can both match with errors.Is and surface the detail to the user.
func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
