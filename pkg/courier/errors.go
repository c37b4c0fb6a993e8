package courier

import (
	"errors"
	"fmt"
)

// ErrorKind classifies adapter failures into the small vocabulary the rest
// of the system branches on.
type ErrorKind string

const (
	KindAuthFailed           ErrorKind = "auth_failed"
	KindUpstreamTimeout      ErrorKind = "upstream_timeout"
	KindUpstreamRejected     ErrorKind = "upstream_rejected"
	KindInvalidResponseShape ErrorKind = "invalid_response_shape"
)

// Error is a classified failure from one courier backend. The upstream code
// and message are kept for logging; callers outside this layer only ever see
// ErrProviderUnavailable.
type Error struct {
	Courier string
	Kind    ErrorKind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s (%s): %s: %v", e.Courier, e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s (%s): %s", e.Courier, e.Kind, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two courier errors by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError creates a classified courier error.
func NewError(courier string, kind ErrorKind, code, message string) *Error {
	return &Error{Courier: courier, Kind: kind, Code: code, Message: message}
}

// WithCause attaches the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// Sentinel errors for the adapter layer.
var (
	// ErrProviderUnavailable is the single externally-visible failure for any
	// adapter error; the classified detail stays in logs.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrCourierNotFound indicates the requested courier is not registered.
	ErrCourierNotFound = errors.New("courier not found")

	// ErrRateNotSupported indicates the backend has no direct rate API.
	ErrRateNotSupported = errors.New("rate calculation not supported")
)

// Kind extracts the classification from an error chain, or "" when the error
// did not originate from an adapter.
func Kind(err error) ErrorKind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return ""
}

// IsRetryable reports whether the failure is safe to retry. Only timeouts
// qualify; bookings are never retried regardless (not idempotent upstream).
func IsRetryable(err error) bool {
	return Kind(err) == KindUpstreamTimeout
}
