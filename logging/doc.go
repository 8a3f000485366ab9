// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. The built-in adapter emits JSON or text through a
// configurable slog handler; NoOpLogger discards everything and is the default
// for library construction so logging stays opt-in.
package logging
