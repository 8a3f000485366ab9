package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/hupe1980/ragmesh/core"
)

// InMemoryStore is a naive process-local Memory using case-insensitive
// substring matching with a constant score of 1.0 per hit. Suitable only for
// tests and demos; use VectorMemory for semantic retrieval.
//
// Concurrency: protected by RWMutex.
type InMemoryStore struct {
	mu    sync.RWMutex
	texts []string
}

var _ Memory = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Remember implements Memory by appending the texts.
func (m *InMemoryStore) Remember(_ context.Context, texts []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, texts...)
	return nil
}

// Recall implements Memory via linear substring scan in insertion order.
func (m *InMemoryStore) Recall(_ context.Context, query string, k int) ([]core.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(query)
	results := make([]core.SearchResult, 0, k)
	for i, text := range m.texts {
		if k > 0 && len(results) >= k {
			break
		}
		if needle == "" || strings.Contains(strings.ToLower(text), needle) {
			results = append(results, core.SearchResult{ID: uint64(i), Content: text, Score: 1.0})
		}
	}
	return results, nil
}
