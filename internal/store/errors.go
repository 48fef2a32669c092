package store

import (
	"fmt"
	"net/http"
)

// Error is a persistence error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{
		Code:    e.Code,
		Message: msg,
		Err:     e.Err,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Is reports whether target is an *Error with the same code and message.
// This lets errors.Is match the sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Sentinel errors.
var (
	ErrRecordNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "record not found",
	}

	ErrUserNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "user not found",
	}

	ErrOrderNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "order not found",
	}

	ErrPlaylistNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "playlist not found",
	}

	ErrSessionNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "session not found",
	}

	ErrEmailTaken = &Error{
		Code:    http.StatusConflict,
		Message: "email already registered",
	}
)
