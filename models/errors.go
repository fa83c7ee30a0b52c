package models

import "fmt"

// Error codes surfaced to API clients.
const (
	CodeValidation        = "validation_error"
	CodeUnknownService    = "unknown_service"
	CodeInvalidTransition = "invalid_transition"
	CodeNotFound          = "not_found"
	CodeUnauthorized      = "unauthorized"
	CodeConflict          = "conflict"
)

// Error is a domain error with a stable code. Two errors match under errors.Is
// when their codes are equal, so callers compare against the sentinels below.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrValidation        = &Error{Code: CodeValidation}
	ErrUnknownService    = &Error{Code: CodeUnknownService}
	ErrInvalidTransition = &Error{Code: CodeInvalidTransition}
	ErrNotFound          = &Error{Code: CodeNotFound}
	ErrUnauthorized      = &Error{Code: CodeUnauthorized}
	ErrConflict          = &Error{Code: CodeConflict}
)

func NewValidationError(format string, args ...any) error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewUnknownServiceError(key string) error {
	return &Error{Code: CodeUnknownService, Message: fmt.Sprintf("service %q is not in the catalog", key)}
}

func NewInvalidTransitionError(from, to BookingStatus) error {
	return &Error{Code: CodeInvalidTransition, Message: fmt.Sprintf("cannot move booking from %s to %s", from, to)}
}

func NewNotFoundError(what, id string) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", what, id)}
}

func NewUnauthorizedError(msg string) error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

func NewConflictError(bookingID string) error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf("booking %s was modified concurrently", bookingID)}
}
