package exchange

import (
	"fmt"

	"github.com/bitly/go-simplejson"
)

// ErrorKind classifies how an order attempt failed.
type ErrorKind string

const (
	// KindTransport covers connection, DNS and timeout failures.
	KindTransport ErrorKind = "transport"
	// KindHTTPStatus covers non-2xx exchange responses; Status carries the code.
	KindHTTPStatus ErrorKind = "http_status"
	// KindDecode covers response bodies that are not valid JSON.
	KindDecode ErrorKind = "decode"
	// KindCancelled marks slices never attempted because the run was aborted.
	KindCancelled ErrorKind = "cancelled"
)

// Error is the typed failure of a single order attempt.
type Error struct {
	Kind    ErrorKind
	Status  int    // HTTP status code, set for KindHTTPStatus
	Body    string // response body, set for KindHTTPStatus
	Message string
	cause   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("exchange returned status %d: %s", e.Status, e.Body)
	case KindTransport:
		return fmt.Sprintf("transport failure: %s", e.Message)
	case KindDecode:
		return fmt.Sprintf("failed to decode response: %s", e.Message)
	case KindCancelled:
		return "cancelled before dispatch"
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: err.Error(), cause: err}
}

func statusError(status int, body string) *Error {
	return &Error{Kind: KindHTTPStatus, Status: status, Body: body}
}

func decodeError(err error) *Error {
	return &Error{Kind: KindDecode, Message: err.Error(), cause: err}
}

// Cancelled returns the marker error recorded for slices that were never
// dispatched.
func Cancelled() *Error {
	return &Error{Kind: KindCancelled}
}

// Result is the immutable outcome of one request attempt: either a decoded
// payload or a typed error, never both.
type Result struct {
	Payload *simplejson.Json
	Err     *Error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Unpack converts the result to the conventional (value, error) pair for
// single-shot call sites.
func (r Result) Unpack() (*simplejson.Json, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Payload, nil
}
