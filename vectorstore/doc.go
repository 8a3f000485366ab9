// Package vectorstore defines the typed client contract for an external
// vector database: collection lifecycle, durable batch upsert and k-nearest
// neighbor search with payload filtering. The store owns all state; clients
// only issue commands and never cache anything locally.
//
// The wire-level implementation for Qdrant lives in the qdrant sub-package;
// InMemoryStore provides a process-local implementation with exact cosine
// scoring for tests and demos.
package vectorstore
