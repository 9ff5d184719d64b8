// Package apperr defines the error taxonomy surfaced to callers of the judge.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error. Its numeric value is the wire code.
type Kind int

const (
	InvalidArgument Kind = iota + 1
	InvalidState
	NotFound
	RateLimit
	External
	Internal
)

var reasons = map[Kind]string{
	InvalidArgument: "ERR_INVALID_ARGUMENT",
	InvalidState:    "ERR_INVALID_STATE",
	NotFound:        "ERR_NOT_FOUND",
	RateLimit:       "ERR_RATE_LIMIT",
	External:        "ERR_EXTERNAL",
	Internal:        "ERR_INTERNAL",
}

func (k Kind) Code() int { return int(k) }

// Reason returns the stable reason string, e.g. "ERR_NOT_FOUND".
func (k Kind) Reason() string {
	if r, ok := reasons[k]; ok {
		return r
	}
	return reasons[Internal]
}

func (k Kind) String() string { return k.Reason() }

// HTTPStatus maps the kind onto a response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidArgument, InvalidState, RateLimit:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a Kind, a human readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Reason()
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to err. A nil err yields nil.
func Wrap(err error, kind Kind, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of the outermost *Error in err's chain.
// Errors outside the taxonomy are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
