package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies domain errors so handlers can map them to HTTP statuses
// without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindStateConflict
	KindCapacity
	KindIntegrity
)

// Error is a kind-tagged domain error. Wraps an underlying cause when present.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed input.
func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// NotFound reports a missing entity. Tenant-scope misses use this too, so
// existence never leaks across tenants.
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// StateConflict reports an operation attempted from an incompatible state.
func StateConflict(format string, args ...interface{}) *Error {
	return newf(KindStateConflict, format, args...)
}

// Capacity reports a quantity or length exceeding what is available.
func Capacity(format string, args ...interface{}) *Error {
	return newf(KindCapacity, format, args...)
}

// Integrity reports snapshot/ledger divergence. Should never surface under
// correct operation; always rolls the enclosing transaction back.
func Integrity(format string, args ...interface{}) *Error {
	return newf(KindIntegrity, format, args...)
}

// Wrap attaches a cause to a kind-tagged error.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from an error chain, KindUnknown if untagged.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error chain to the HTTP status handlers should return.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindStateConflict:
		return http.StatusConflict
	case KindCapacity:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
