package core

// SearchResult represents a retrieved memory item with a relevance score and
// arbitrary metadata. Scores are similarity values, higher is closer.
type SearchResult struct {
	ID       uint64
	Content  string
	Score    float64
	Metadata map[string]any
}
