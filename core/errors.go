package core

import "fmt"

// TransportError reports a network-level failure (connection refused, timeout,
// closed body) talking to a remote service. Transport failures are transient
// from the protocol's point of view; callers may retry with backoff.
type TransportError struct {
	Op  string // logical operation, e.g. "chat", "upsert"
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s (%s): %v", e.Op, e.URL, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that did not match the expected schema.
// It indicates a protocol or version mismatch, not a transient condition, and
// must never be retried blindly.
type DecodeError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error during %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *DecodeError) Unwrap() error { return e.Err }

// ShapeError reports a count or dimension mismatch between a request and its
// response, e.g. an embedding batch whose size differs from the input batch.
// Like DecodeError it is fatal for the call, never retryable.
type ShapeError struct {
	Op   string
	Want int
	Got  int
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape error during %s: want %d, got %d", e.Op, e.Want, e.Got)
}
