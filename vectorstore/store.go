package vectorstore

import "context"

// Distance identifies the similarity metric of a collection.
type Distance string

// DistanceCosine is the only metric this system provisions. Scores are
// similarities in [-1, 1]; identical vectors score ~1.0.
const DistanceCosine Distance = "Cosine"

// ResetPolicy decides what EnsureCollection does when the collection already
// exists. The destructive reset mirrors legacy behavior where reusing a name
// drops all stored points; append mode preserves them and only verifies the
// schema. Make this an explicit choice, never an accident.
type ResetPolicy int

const (
	// AppendIfExists reuses an existing collection after verifying its
	// dimensions match. Data is preserved.
	AppendIfExists ResetPolicy = iota
	// ResetOnExists deletes and recreates an existing collection. All points
	// in it are lost.
	ResetOnExists
)

// String returns a readable policy name.
func (p ResetPolicy) String() string {
	switch p {
	case ResetOnExists:
		return "reset_on_exists"
	default:
		return "append_if_exists"
	}
}

// CollectionConfig describes a named, dimensioned point container.
type CollectionConfig struct {
	Name       string
	Dimensions int
	Distance   Distance
	// Quantization enables scalar quantization on creation. Quantized indexes
	// trade a small, bounded score deviation (<= ScoreTolerance) for memory.
	Quantization bool
}

// ScoreTolerance bounds the score deviation introduced by scalar quantization.
// Searches against non-quantized collections are exact to floating-point
// precision.
const ScoreTolerance = 1e-4

// Point is one stored (id, vector, payload) triple. IDs are assigned by the
// caller; vector length must equal the collection dimensions.
type Point struct {
	ID      uint64         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ScoredPoint is a search hit ordered by descending similarity.
type ScoredPoint struct {
	ID      uint64         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Condition restricts search hits to points whose payload field matches an
// equality value or a numeric range. Exactly one of Match or the range bounds
// should be set.
type Condition struct {
	Key   string
	Match any
	GTE   *float64
	LTE   *float64
}

// Filter is a conjunction of conditions (all must hold).
type Filter struct {
	Must []Condition
}

// MatchValue builds an equality condition.
func MatchValue(key string, value any) Condition {
	return Condition{Key: key, Match: value}
}

// InRange builds an inclusive numeric range condition.
func InRange(key string, gte, lte float64) Condition {
	return Condition{Key: key, GTE: &gte, LTE: &lte}
}

// Store is the typed client contract for a remote vector database. All
// operations are synchronous commands against the external store process.
//
// Upsert must provide wait=true durability semantics: once it returns without
// error, a subsequent Search sees the written points. Failures surface as
// *StoreError (remote rejection) or the transport taxonomy in core.
type Store interface {
	// EnsureCollection guarantees a collection with the given name and
	// dimensions exists afterward. Behavior on an existing collection is
	// governed by the implementation's ResetPolicy.
	EnsureCollection(ctx context.Context, cfg CollectionConfig) error

	// DeleteCollection removes a collection and all its points.
	DeleteCollection(ctx context.Context, name string) error

	// CollectionExists reports whether the named collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// Upsert writes points by id (full replace per id) and waits for
	// durability confirmation.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns up to limit points ordered by descending similarity to
	// the query vector, optionally restricted by a payload filter.
	Search(ctx context.Context, collection string, vector []float32, limit int, filter *Filter) ([]ScoredPoint, error)
}
