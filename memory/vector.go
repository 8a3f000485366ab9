package memory

import (
	"context"
	"fmt"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/logging"
	"github.com/hupe1980/ragmesh/model"
	"github.com/hupe1980/ragmesh/vectorstore"
)

// PayloadKeyQuestion is the fixed payload field carrying the source text that
// produced a point's embedding.
const PayloadKeyQuestion = "question"

// Options configure a VectorMemory.
type Options struct {
	// Quantization is passed through to collection creation.
	Quantization bool
	Logger       logging.Logger
}

// VectorMemory implements Memory on top of a batch embedder and an external
// vector store. The collection is created lazily on the first write; all
// point and collection state lives in the store process, nothing is cached
// client-side.
type VectorMemory struct {
	embedder   model.Gateway
	store      vectorstore.Store
	collection string
	dimensions int
	opts       Options
}

var _ Memory = (*VectorMemory)(nil)

// NewVectorMemory wires an embedder and a store into a semantic memory over
// the named collection with fixed dimensions.
func NewVectorMemory(embedder model.Gateway, store vectorstore.Store, collection string, dimensions int, optFns ...func(o *Options)) *VectorMemory {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &VectorMemory{
		embedder:   embedder,
		store:      store,
		collection: collection,
		dimensions: dimensions,
		opts:       opts,
	}
}

// Remember implements Memory. Each text is embedded and upserted as a point
// whose id is its position in the batch, with the source text stored under
// PayloadKeyQuestion. Upsert waits for durability, so a Recall issued after
// Remember returns is guaranteed to see the batch.
func (m *VectorMemory) Remember(ctx context.Context, texts []string) error {
	if len(texts) == 0 {
		return nil
	}

	vectors, err := m.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	for i, vec := range vectors {
		if len(vec) != m.dimensions {
			return &core.ShapeError{Op: fmt.Sprintf("embed[%d]", i), Want: m.dimensions, Got: len(vec)}
		}
	}

	if err := m.store.EnsureCollection(ctx, vectorstore.CollectionConfig{
		Name:         m.collection,
		Dimensions:   m.dimensions,
		Distance:     vectorstore.DistanceCosine,
		Quantization: m.opts.Quantization,
	}); err != nil {
		return err
	}

	points := make([]vectorstore.Point, len(texts))
	for i, text := range texts {
		points[i] = vectorstore.Point{
			ID:      uint64(i),
			Vector:  vectors[i],
			Payload: map[string]any{PayloadKeyQuestion: text},
		}
	}

	m.opts.Logger.Debug("memory.remember", "collection", m.collection, "count", len(points))
	return m.store.Upsert(ctx, m.collection, points)
}

// Recall implements Memory. The query is embedded and matched against the
// collection under cosine similarity.
func (m *VectorMemory) Recall(ctx context.Context, query string, k int) ([]core.SearchResult, error) {
	vectors, err := m.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, &core.ShapeError{Op: "embed", Want: 1, Got: len(vectors)}
	}

	hits, err := m.store.Search(ctx, m.collection, vectors[0], k, nil)
	if err != nil {
		return nil, err
	}

	results := make([]core.SearchResult, 0, len(hits))
	for _, hit := range hits {
		content, _ := hit.Payload[PayloadKeyQuestion].(string)
		results = append(results, core.SearchResult{
			ID:       hit.ID,
			Content:  content,
			Score:    hit.Score,
			Metadata: hit.Payload,
		})
	}

	m.opts.Logger.Debug("memory.recall", "collection", m.collection, "query_len", len(query), "hits", len(results))
	return results, nil
}
