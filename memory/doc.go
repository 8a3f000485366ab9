// Package memory provides semantic memory implementations used for retrieval
// augmentation. VectorMemory combines a model.Gateway embedder with a
// vectorstore.Store; InMemoryStore is a substring-matching fallback for tests
// and demos. The orchestrator depends only on the Memory interface and treats
// retrieval as an enhancement: a failing store degrades a turn, it does not
// abort it.
package memory
