// Package apperror carries the error kinds a request can end in and the
// HTTP status each one maps to.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	Unauthenticated
	Forbidden
	NotFound
	DuplicateEmail
	ExternalService
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case DuplicateEmail:
		return "duplicate_email"
	case ExternalService:
		return "external_service"
	default:
		return "internal"
	}
}

// Error is returned by services. Message is safe to show to clients; Err is
// kept for logs and errors.Is/As.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	switch e.Kind {
	case Validation, DuplicateEmail:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewValidation(message string) *Error {
	return New(Validation, message, nil)
}

func NewUnauthenticated(message string, err error) *Error {
	return New(Unauthenticated, message, err)
}

func NewForbidden(message string) *Error {
	return New(Forbidden, message, nil)
}

func NewNotFound(message string) *Error {
	return New(NotFound, message, nil)
}

func NewDuplicateEmail(err error) *Error {
	return New(DuplicateEmail, "Email already in use", err)
}

func NewExternalService(message string, err error) *Error {
	return New(ExternalService, message, err)
}

func NewInternal(message string, err error) *Error {
	return New(Internal, message, err)
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
