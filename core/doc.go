// Package core provides the foundational domain types shared across RagMesh:
//
//   - Roles and Messages (the typed units of a conversation transcript)
//   - ToolCall (a structured function invocation request parsed from model output)
//   - Conversation (an ordered, append-only transcript owned by one session)
//   - SearchResult (a retrieved memory item with relevance score)
//   - The transport-level error taxonomy shared by remote clients
//
// The package intentionally keeps implementation concerns (HTTP clients,
// orchestration, storage backends) out of scope, exposing small types to
// enable custom backends and extensions without dependency cycles.
package core
