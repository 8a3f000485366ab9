package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// InMemoryStore is a process-local Store with exact cosine scoring. It honors
// the same EnsureCollection reset semantics as the remote client so tests and
// demos exercise identical behavior.
//
// Concurrency: protected by RWMutex.
type InMemoryStore struct {
	mu          sync.RWMutex
	resetPolicy ResetPolicy
	collections map[string]*memCollection
}

type memCollection struct {
	cfg    CollectionConfig
	points map[uint64]Point
}

// NewInMemoryStore creates an empty store with the given reset policy.
func NewInMemoryStore(policy ResetPolicy) *InMemoryStore {
	return &InMemoryStore{
		resetPolicy: policy,
		collections: make(map[string]*memCollection),
	}
}

// EnsureCollection implements Store.
func (s *InMemoryStore) EnsureCollection(_ context.Context, cfg CollectionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.collections[cfg.Name]
	if ok {
		if s.resetPolicy == AppendIfExists {
			if existing.cfg.Dimensions != cfg.Dimensions {
				return &StoreError{
					Op:         "ensure_collection",
					Collection: cfg.Name,
					Message:    "existing collection has different dimensions",
				}
			}
			return nil
		}
		// ResetOnExists: drop everything.
	}

	s.collections[cfg.Name] = &memCollection{cfg: cfg, points: make(map[uint64]Point)}
	return nil
}

// DeleteCollection implements Store.
func (s *InMemoryStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// CollectionExists implements Store.
func (s *InMemoryStore) CollectionExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

// Upsert implements Store with full replace-by-id semantics.
func (s *InMemoryStore) Upsert(_ context.Context, collection string, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return &StoreError{Op: "upsert", Collection: collection, Message: "collection does not exist"}
	}
	for _, p := range points {
		if len(p.Vector) != col.cfg.Dimensions {
			return &StoreError{Op: "upsert", Collection: collection, Message: "vector dimensions mismatch"}
		}
	}
	for _, p := range points {
		col.points[p.ID] = p
	}
	return nil
}

// Search implements Store ordering hits by descending cosine similarity.
func (s *InMemoryStore) Search(_ context.Context, collection string, vector []float32, limit int, filter *Filter) ([]ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, &StoreError{Op: "search", Collection: collection, Message: "collection does not exist"}
	}
	if len(vector) != col.cfg.Dimensions {
		return nil, &StoreError{Op: "search", Collection: collection, Message: "query vector dimensions mismatch"}
	}

	hits := make([]ScoredPoint, 0, len(col.points))
	for _, p := range col.points {
		if filter != nil && !matchesFilter(p.Payload, filter) {
			continue
		}
		hits = append(hits, ScoredPoint{ID: p.ID, Score: CosineSimilarity(vector, p.Vector), Payload: p.Payload})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func matchesFilter(payload map[string]any, filter *Filter) bool {
	for _, cond := range filter.Must {
		value, ok := payload[cond.Key]
		if !ok {
			return false
		}
		if cond.Match != nil && !looselyEqual(value, cond.Match) {
			return false
		}
		if cond.GTE != nil || cond.LTE != nil {
			num, ok := asFloat(value)
			if !ok {
				return false
			}
			if cond.GTE != nil && num < *cond.GTE {
				return false
			}
			if cond.LTE != nil && num > *cond.LTE {
				return false
			}
		}
	}
	return true
}

// looselyEqual compares payload values numerically where possible so that
// int conditions match JSON-decoded float64 payloads.
func looselyEqual(a, b any) bool {
	if a == b {
		return true
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	return aok && bok && af == bf
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// CosineSimilarity computes the cosine similarity of two equal-length vectors.
// Zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
