// Package apperr is the error taxonomy shared by every engine operation.
// Services return *Error values (or wrap them); handlers map the kind to an
// HTTP status and forward only the sanitized message, never driver internals.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindPolicy       Kind = "POLICY"
	KindStorage      Kind = "STORAGE"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Is treats two taxonomy errors as equal when kind and message match, so
// sentinel errors survive fmt.Errorf("%w") wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause that is kept for server-side logs only.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Storage wraps a store-level failure. The raw error is never exposed to the
// caller.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "internal storage error", Err: err}
}

// KindOf extracts the taxonomy kind; anything untyped counts as storage.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// MessageOf returns the client-safe message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// CauseOf returns the server-side cause kept by Wrap/Storage, or err itself
// when there is none. Callers log it; it never goes into a response.
func CauseOf(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err
	}
	return err
}

// HTTPStatus maps the taxonomy kind to an HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindPolicy:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
