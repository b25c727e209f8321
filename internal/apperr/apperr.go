// Package apperr defines the error kinds every layer reports and the HTTP
// layer maps to status codes.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication error")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Error carries a caller-facing message and one of the kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "error"
}

func (e *Error) Unwrap() error { return e.Kind }

func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return New(ErrValidation, format, args...) }
func Auth(format string, args ...any) *Error       { return New(ErrAuth, format, args...) }
func Forbidden(format string, args ...any) *Error  { return New(ErrForbidden, format, args...) }
func NotFound(format string, args ...any) *Error   { return New(ErrNotFound, format, args...) }
func Conflict(format string, args ...any) *Error   { return New(ErrConflict, format, args...) }

// Message returns the caller-facing text of err when it belongs to the
// taxonomy, and ok=false for anything else (store failures and the like).
func Message(err error) (msg string, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Error(), true
	}
	return "", false
}
