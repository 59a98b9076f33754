package position

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies why the observer position is unavailable
type Kind int

// Kind constants
const (
	KindUnavailable      Kind = iota // Lookup failed for any other reason
	KindUnsupported                  // No geolocation capability configured
	KindPermissionDenied             // The geolocation service refused the request
	KindTimeout                      // The lookup did not finish in time
)

func (k Kind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindPermissionDenied:
		return "permission denied"
	case KindTimeout:
		return "timeout"
	default:
		return "unavailable"
	}
}

// Error is a structured geolocation failure
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinel errors for errors.Is; matching compares Kind only
var (
	ErrUnavailable      = &Error{Kind: KindUnavailable, Message: "Position is unavailable"}
	ErrUnsupported      = &Error{Kind: KindUnsupported, Message: "Geolocation is not supported"}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied, Message: "User denied geolocation"}
	ErrTimeout          = &Error{Kind: KindTimeout, Message: "Timeout expired"}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// NewError creates an Error of the given kind wrapping err
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Classify converts any lookup error into a new *Error.
// Deadline errors become timeouts and unstructured errors become unavailable.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var posErr *Error
	if errors.As(err, &posErr) {
		// Copy so callers never hold a pointer to a package-level sentinel
		classified := *posErr
		return &classified
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTimeout, ErrTimeout.Message, err)
	}

	return NewError(KindUnavailable, ErrUnavailable.Message, err)
}
