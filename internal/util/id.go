// Package util contains small internal helpers (ids, parameter schema
// handling) shared across packages without committing to public API stability.
package util

import "github.com/google/uuid"

// NewID returns a random identifier suitable for correlating turns and tool
// invocations in logs.
func NewID() string { return uuid.NewString() }
