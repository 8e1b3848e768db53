package disqus

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownMethod is returned before any request is made when the method
	// name is not in the method table.
	ErrUnknownMethod = errors.New("disqus: unknown method")

	// ErrUnsupportedVerb is returned when a method is bound to a verb other
	// than GET or POST.
	ErrUnsupportedVerb = errors.New("disqus: unsupported verb")

	// ErrUnsupportedParam is returned when a parameter value cannot be
	// form-encoded.
	ErrUnsupportedParam = errors.New("unsupported parameter value")
)

// APIError is a well-formed response that reported succeeded: false.
type APIError struct {
	Method     string
	StatusCode int
	Code       string
	Message    json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("disqus: %s failed: %s: %s", e.Method, e.Code, e.MessageText())
}

// MessageText returns the message as plain text when the host sent a JSON
// string, and the raw JSON otherwise.
func (e *APIError) MessageText() string {
	var s string
	if err := json.Unmarshal(e.Message, &s); err == nil {
		return s
	}
	return string(e.Message)
}

// TransportError means no usable HTTP response came back: DNS, timeouts,
// refused connections, or a non-2xx status without a JSON envelope.
type TransportError struct {
	Method     string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("disqus: %s: transport: status %d: %v", e.Method, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("disqus: %s: transport: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is a 2xx response whose body is not a valid envelope.
type DecodeError struct {
	Method string
	Body   []byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("disqus: %s: decode response: %v", e.Method, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsTransport reports whether err is, or wraps, a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsAPI reports whether err is, or wraps, an *APIError.
func IsAPI(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
