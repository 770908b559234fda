package fetch

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failures an Invoker reports. ErrorKind
// values are themselves errors, so callers can match with errors.Is.
type ErrorKind int

// Failure kinds delivered through Result.
const (
	// ErrEmptyURL is reported for transport failures and for responses whose
	// status code falls outside 200-299. The name is kept for compatibility
	// with existing callers; inspect Error.StatusCode to tell the two apart.
	ErrEmptyURL ErrorKind = iota + 1

	// ErrURLCreationFailure is reported when the URL string cannot be parsed.
	// No network I/O happens in that case.
	ErrURLCreationFailure

	// ErrURLRequestCreationFailure is reported when an HTTP request cannot be
	// built from an already-parsed URL. Parsing catches everything request
	// construction rejects, so this kind is not produced in practice.
	ErrURLRequestCreationFailure

	// ErrErrorParsingJSON is reported when a 2xx body does not decode into
	// the target type. A literal null for a non-nullable type and an object
	// missing a required struct field both count as not decoding.
	ErrErrorParsingJSON

	// ErrEmptyData is reported when a 2xx response has no body.
	ErrEmptyData
)

// String returns the kind's identifier.
func (k ErrorKind) String() string {
	switch k {
	case ErrEmptyURL:
		return "emptyURL"
	case ErrURLCreationFailure:
		return "urlCreationFailure"
	case ErrURLRequestCreationFailure:
		return "urlRequestCreationFailure"
	case ErrErrorParsingJSON:
		return "errorParsingJson"
	case ErrEmptyData:
		return "emptyData"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error implements the error interface.
func (k ErrorKind) Error() string {
	switch k {
	case ErrEmptyURL:
		return "request failed or returned a non-2xx status"
	case ErrURLCreationFailure:
		return "invalid URL"
	case ErrURLRequestCreationFailure:
		return "failed to create request"
	case ErrErrorParsingJSON:
		return "failed to decode JSON response"
	case ErrEmptyData:
		return "response body is empty"
	default:
		return k.String()
	}
}

// Error is the failure value carried by a Result. Kind is always set; the
// remaining fields give context where it exists.
type Error struct {
	Kind ErrorKind
	URL  string
	// StatusCode is the HTTP status of the response, or zero when no
	// response was received.
	StatusCode int
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// KindOf returns the ErrorKind carried by err, or zero if err is not a
// fetch failure.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	var k ErrorKind
	if errors.As(err, &k) {
		return k
	}
	return 0
}

// Errors returned synchronously by Invoke for misuse. They are never
// delivered through a Result.
var (
	ErrNilCallback    = errors.New("completion callback is nil")
	ErrAlreadyInvoked = errors.New("invoker has already been invoked")
)
