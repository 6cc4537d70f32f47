// Package apperror defines the error taxonomy shared by every layer.
//
// Services return these domain errors; the HTTP layer translates them
// to status codes in one place (handler.writeError). Sentinel errors
// plus errors.Is/errors.As keep the mapping explicit without any layer
// knowing about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Violation is a single failed field check. Validation errors carry
// every violation found in the payload, not just the first one, so the
// client can render all messages at once.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is a typed application error wrapping one of the sentinel
// errors above. Message is safe to show to the caller; Violations is
// populated only for validation errors.
type AppError struct {
	Err        error
	Message    string
	Violations []Violation
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Unauthorized returns an AppError for requests with no valid identity.
// HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// NotFound returns an AppError for an absent entity.
// HTTP handlers map this to 404.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// Conflict returns an AppError for a duplicate create.
// HTTP handlers map this to 409.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// ValidationFailed returns an AppError for a single failed field check.
// HTTP handlers map this to 400.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Message:    message,
		Violations: []Violation{{Field: field, Message: message}},
	}
}

// Invalid returns an AppError carrying every violation found in a
// payload. The message summarises; Violations holds the field detail.
func Invalid(violations []Violation) *AppError {
	msg := "validation failed"
	if len(violations) == 1 {
		msg = violations[0].Message
	}
	return &AppError{
		Err:        ErrValidation,
		Message:    msg,
		Violations: violations,
	}
}
