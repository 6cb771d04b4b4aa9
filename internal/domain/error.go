package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the closed set of failure classes the service reports.
type ErrorKind string

const (
	KindInvalidRequest          ErrorKind = "invalid_request"
	KindConfiguration           ErrorKind = "configuration_error"
	KindUpstreamUnavailable     ErrorKind = "upstream_unavailable"
	KindRateLimited             ErrorKind = "rate_limited"
	KindUpstreamError           ErrorKind = "upstream_error"
	KindMalformedUpstreamOutput ErrorKind = "malformed_upstream_output"
)

// Kinds lists every ErrorKind in a stable order.
var Kinds = []ErrorKind{
	KindInvalidRequest,
	KindConfiguration,
	KindUpstreamUnavailable,
	KindRateLimited,
	KindUpstreamError,
	KindMalformedUpstreamOutput,
}

var (
	// Sentinels for errors.Is; they match any *Error of the same kind.
	ErrInvalidRequest          = &Error{Kind: KindInvalidRequest}
	ErrConfiguration           = &Error{Kind: KindConfiguration}
	ErrUpstreamUnavailable     = &Error{Kind: KindUpstreamUnavailable}
	ErrRateLimited             = &Error{Kind: KindRateLimited}
	ErrUpstreamError           = &Error{Kind: KindUpstreamError}
	ErrMalformedUpstreamOutput = &Error{Kind: KindMalformedUpstreamOutput}
)

// Error is the typed error carried from the adapters and use cases up to the
// HTTP layer.
type Error struct {
	Kind    ErrorKind
	Message string

	// UpstreamStatus is the HTTP status reported by the completion service, if any.
	UpstreamStatus int
	// RawOutput holds the model text that failed to parse.
	RawOutput string

	Err error
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap builds an Error of the given kind around cause.
func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.UpstreamStatus != 0 {
		fmt.Fprintf(&b, " (upstream status %d)", e.UpstreamStatus)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors (no message) of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Retryable reports whether the caller may retry the same request later.
func (e *Error) Retryable() bool {
	return e.Kind == KindUpstreamUnavailable || e.Kind == KindRateLimited
}

// AsError extracts the *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// KindOf classifies err. Errors outside the taxonomy count as upstream errors.
func KindOf(err error) ErrorKind {
	if de, ok := AsError(err); ok {
		return de.Kind
	}
	return KindUpstreamError
}

// IsRetryable is Retryable for arbitrary errors.
func IsRetryable(err error) bool {
	if de, ok := AsError(err); ok {
		return de.Retryable()
	}
	return false
}
