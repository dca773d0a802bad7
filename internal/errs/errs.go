// Package errs defines the service-layer error types mapped to HTTP statuses
// at the API boundary.
package errs

import "errors"

// ErrConflict marks a business-rule violation rejected before mutation, such
// as redeeming a used invitation.
var ErrConflict = errors.New("conflict")

// ErrUnauthorized marks a request with no resolvable, active user. The API
// responds 401 without distinguishing the cause.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError is a rejected input tied to a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation builds a ValidationError for the given field.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Conflict wraps ErrConflict with a specific message.
func Conflict(message string) error {
	return &conflictError{message}
}

type conflictError struct{ message string }

func (e *conflictError) Error() string { return e.message }
func (e *conflictError) Is(target error) bool {
	return target == ErrConflict
}
