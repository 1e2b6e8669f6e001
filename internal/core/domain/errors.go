package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent workflow failures the caller can render or retry.
var (
	// ErrNetwork indicates the transport or an API was unreachable or answered
	// with a non-success status.
	ErrNetwork = errors.New("network error")

	// ErrCancelled indicates a user-initiated abort.
	ErrCancelled = errors.New("cancelled")

	// ErrAlreadyInProgress indicates a duplicate extraction request while one
	// is queued or running.
	ErrAlreadyInProgress = errors.New("extraction already in progress")

	// ErrNotFound indicates an operation on an id absent from the registry.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a malformed or missing required field.
	ErrValidation = errors.New("validation error")

	// ErrNotConfigured indicates a required collaborator or setting is missing.
	ErrNotConfigured = errors.New("not configured")

	// ErrBatchClosed indicates an operation on a batch that has already finished.
	ErrBatchClosed = errors.New("batch closed")
)

// APIError describes a non-success response from a backing service.
// It unwraps to ErrNetwork.
type APIError struct {
	// Operation names the call that failed, e.g. "create document".
	Operation string

	// StatusCode is the HTTP status returned by the service.
	StatusCode int

	// Body is a truncated copy of the response body.
	Body string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is(err, ErrNetwork) match API failures.
func (e *APIError) Unwrap() error {
	return ErrNetwork
}

// ValidationError names the field that failed validation.
// It unwraps to ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) match field failures.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// invalid is shorthand for NewValidationError.
func invalid(field, reason string) error {
	return NewValidationError(field, reason)
}
