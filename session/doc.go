// Package session houses conversation stores keyed by session id, so one
// Agent can serve many independent transcripts. The Conversation type itself
// lives in the core package to centralize domain contracts; keeping only
// storage here prevents higher level packages (runner, engine) from depending
// on concrete storage.
//
// Add additional backends (Redis, Postgres, etc.) in sub-packages without
// changing any calling code. Only the wiring layer decides which
// implementation to instantiate.
package session
