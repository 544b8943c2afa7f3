// Package apperr classifies the recoverable failures of the order lifecycle
// and its surrounding surfaces. Every kind maps to an HTTP status at the
// request boundary; none is fatal to the process.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure category.
type Kind int

const (
	// Unknown covers errors that carry no kind; treated as upstream failure.
	Unknown Kind = iota
	// NotFound: the entity id does not resolve.
	NotFound
	// PreconditionFailed: valid request, but the entity is not in a state
	// permitting the operation (e.g. order already claimed).
	PreconditionFailed
	// InvalidTransition: the requested status change is not a legal edge.
	InvalidTransition
	// Forbidden: the caller does not own / is not entitled to mutate this
	// entity.
	Forbidden
	// ValidationError: malformed input shape or missing required field.
	ValidationError
	// UpstreamFailure: the storage or auth collaborator itself failed.
	UpstreamFailure
)

// Error is a kinded error. The message is safe to surface to callers.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a kinded error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// NotFoundf reports a missing entity.
func NotFoundf(format string, args ...any) *Error { return New(NotFound, format, args...) }

// Preconditionf reports an entity in the wrong state for the operation.
func Preconditionf(format string, args ...any) *Error {
	return New(PreconditionFailed, format, args...)
}

// Transitionf reports an illegal status edge.
func Transitionf(format string, args ...any) *Error { return New(InvalidTransition, format, args...) }

// Forbiddenf reports an ownership or entitlement violation.
func Forbiddenf(format string, args ...any) *Error { return New(Forbidden, format, args...) }

// Validationf reports malformed input.
func Validationf(format string, args ...any) *Error { return New(ValidationError, format, args...) }

// Upstreamf wraps a failure of a storage or auth collaborator.
func Upstreamf(err error, format string, args ...any) *Error {
	return Wrap(UpstreamFailure, err, format, args...)
}

// KindOf extracts the kind from an error chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// HTTPStatus maps an error to the status code its kind surfaces as.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case PreconditionFailed, InvalidTransition, ValidationError:
		return http.StatusBadRequest
	case Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
