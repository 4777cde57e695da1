package apperr

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a failure for the caller.
type Kind int

const (
	KindUnexpected Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindUpstream
	KindSignature
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUpstream:
		return "upstream"
	case KindSignature:
		return "signature"
	}
	return "unexpected"
}

// Status maps a Kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindSignature:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Error is a classified failure. Message is safe to show to callers; Err
// holds server-side detail and is never echoed.
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

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }
func Forbidden(msg string) *Error       { return New(KindForbidden, msg) }
func NotFound(msg string) *Error        { return New(KindNotFound, msg) }
func Validation(msg string) *Error      { return New(KindValidation, msg) }
func Signature(msg string) *Error       { return New(KindSignature, msg) }

func Upstream(msg string, err error) *Error { return Wrap(KindUpstream, msg, err) }

// Required builds the validation failure listing every required field,
// e.g. "title, description and clientId are required".
func Required(fields ...string) *Error {
	var list string
	switch len(fields) {
	case 0:
		list = "fields"
	case 1:
		return Validation(fields[0] + " is required")
	default:
		list = strings.Join(fields[:len(fields)-1], ", ") + " and " + fields[len(fields)-1]
	}
	return Validation(list + " are required")
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Public returns the status code and the caller-facing message for err.
// Unexpected failures always read as a generic message.
func Public(err error) (int, string) {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindUnexpected {
		return http.StatusInternalServerError, "internal server error"
	}
	return e.Kind.Status(), e.Message
}
