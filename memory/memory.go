package memory

import (
	"context"

	"github.com/hupe1980/ragmesh/core"
)

// Memory stores texts and recalls the most semantically related ones.
type Memory interface {
	// Remember ingests a batch of texts.
	Remember(ctx context.Context, texts []string) error

	// Recall returns up to k stored texts ranked by relevance to the query.
	Recall(ctx context.Context, query string, k int) ([]core.SearchResult, error)
}
