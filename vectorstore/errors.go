package vectorstore

import "fmt"

// StoreError reports a failure raised by the vector store itself: missing
// collection, dimension mismatch, rejected write. It is distinct from the
// transport taxonomy in core so callers can treat "store said no" differently
// from "store unreachable".
type StoreError struct {
	Op         string // "ensure_collection", "upsert", "search", ...
	Collection string
	Status     int // HTTP status when applicable, 0 otherwise
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("store error during %s on %q (status %d): %s", e.Op, e.Collection, e.Status, e.Message)
	}
	return fmt.Sprintf("store error during %s on %q: %s", e.Op, e.Collection, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *StoreError) Unwrap() error { return e.Err }
