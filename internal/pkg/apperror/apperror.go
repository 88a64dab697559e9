package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure for the HTTP boundary.
type Kind string

const (
	KindInvariantViolation Kind = "INVARIANT_VIOLATION"
	KindInvalidTransition  Kind = "INVALID_TRANSITION"
	KindCapabilityDenied   Kind = "CAPABILITY_DENIED"
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindTimeout            Kind = "TIMEOUT"
	KindStoreUnavailable   Kind = "STORE_UNAVAILABLE"
	KindInternal           Kind = "INTERNAL"
)

// Error carries a kind and a human-readable message across layer boundaries.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to the status code the API promises.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvariantViolation, KindInvalidTransition:
		return http.StatusBadRequest
	case KindCapabilityDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTimeout, KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
