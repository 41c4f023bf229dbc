package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps them to HTTP
// status codes.
var (
	// ErrCardNotFound indicates that the flashcard does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrSessionNotFound indicates that the tutor session does not exist.
	ErrSessionNotFound = errors.New("tutor session not found")

	// ErrMaterialNotFound indicates that the referenced material does not exist.
	ErrMaterialNotFound = errors.New("material not found")

	// ErrNoCardsDue indicates that no flashcard is due for review.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrInvalidAnswer indicates an invalid review answer was provided.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrEmptyMessage indicates a learner message without content.
	ErrEmptyMessage = errors.New("message cannot be empty")

	// ErrBusy indicates that background work could not be queued.
	ErrBusy = errors.New("too much background work queued, try again later")
)

// ServiceError wraps unexpected failures from a service operation with
// additional context. It allows consumers to differentiate between different
// types of service errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "review", "send_message")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
