// Package apperror classifies request failures so handlers can map them to
// HTTP status codes in one place.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the class of a failure.
type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindUnavailable  Kind = "PROVIDER_UNAVAILABLE"
	KindProvider     Kind = "PROVIDER_ERROR"
	KindRejected     Kind = "DELIVERY_REJECTED"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindRateLimited  Kind = "RATE_LIMIT_EXCEEDED"
	KindInternal     Kind = "INTERNAL_ERROR"
)

// Error is a classified failure. Message is safe to return to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation reports a malformed request.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// MissingField reports an absent required request field.
func MissingField(field string) *Error {
	return New(KindValidation, "Missing required field: "+field)
}

// Unavailable reports that the push provider was never initialised.
func Unavailable(message string) *Error {
	return New(KindUnavailable, message)
}

// Provider wraps an error returned by the push provider. The provider text
// becomes the client-facing message.
func Provider(err error) *Error {
	return Wrap(err, KindProvider, err.Error())
}

// Rejected wraps a provider refusal that concerns one recipient, such as an
// unregistered or malformed token. The provider itself is healthy.
func Rejected(err error) *Error {
	return Wrap(err, KindRejected, err.Error())
}

func Internal(err error) *Error {
	return Wrap(err, KindInternal, err.Error())
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Message returns the client-facing text for err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// StatusCode maps err to an HTTP status code.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		// Unavailable, provider, rejected and unexpected failures all surface as 500.
		return http.StatusInternalServerError
	}
}
