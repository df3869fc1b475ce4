package transport

import (
	"errors"
	"fmt"
)

// Kind classifies transport failures.
type Kind int

const (
	// KindTimeout indicates the exchange did not complete in time.
	KindTimeout Kind = iota
	// KindConnection indicates no status was obtained (refused, DNS, reset).
	KindConnection
	// KindCancelled indicates the caller cancelled the exchange.
	KindCancelled
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is a transport failure.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// URL is the target of the failed exchange.
	URL string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("transport: %s: %s: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("transport: %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(url string, err error) *Error {
	return &Error{Kind: KindTimeout, URL: url, Err: err}
}

// NewConnectionError creates a connection error.
func NewConnectionError(url string, err error) *Error {
	return &Error{Kind: KindConnection, URL: url, Err: err}
}

// NewCancelledError creates a cancellation error.
func NewCancelledError(url string, err error) *Error {
	return &Error{Kind: KindCancelled, URL: url, Err: err}
}

// KindOf returns the kind of a transport error and whether err is one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindTimeout
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindConnection
}

// IsCancelled checks if an error is a cancellation.
func IsCancelled(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindCancelled
}
