// Package apperror holds the error kinds services report to the HTTP boundary.
package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("action forbidden")
	ErrInvalidCredential = errors.New("wrong password")
	ErrBadRequest        = errors.New("bad request")
	ErrInternal          = errors.New("internal error")
)

// Error is a kind plus the message shown to the caller.
type Error struct {
	Kind  error
	Msg   string
	cause error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

// New wraps kind with a caller-facing message.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Internal wraps a store or driver failure, keeping its message.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrInternal, Msg: err.Error(), cause: err}
}

// StatusCode maps an error kind to its default HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidCredential), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
