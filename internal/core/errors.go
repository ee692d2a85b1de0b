package core

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrMalformedCommand is returned when the input does not start with curl.
	ErrMalformedCommand = errors.New(`command must start with "curl"`)

	// ErrMissingURL is returned when no URL can be located in the command.
	ErrMissingURL = errors.New("no URL found in curl command")
)

// TransportError wraps a failure of the underlying HTTP transport: DNS,
// connect, TLS, timeouts, cancellation or a broken body stream.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was caused by a deadline.
func (e *TransportError) Timeout() bool {
	var netErr net.Error
	if errors.As(e.Err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// DecodeError is returned when a response declared as JSON cannot be parsed.
type DecodeError struct {
	ContentType string
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %v", e.ContentType, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
