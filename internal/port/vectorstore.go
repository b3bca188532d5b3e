package port

import "sage/internal/domain"

// VectorStore persists chunk embeddings and supports nearest-neighbor search.
type VectorStore interface {
	// Upsert adds or updates records in the collection.
	Upsert(items []VectorItem) error

	// ReplaceSource deletes every record belonging to sourceID and
	// upserts the given items in their place.
	ReplaceSource(sourceID string, items []VectorItem) error

	// Search finds the k nearest records to the query vector, best match
	// first. An absent collection yields no results, not an error.
	Search(query []float32, k int) ([]VectorResult, error)

	// Stats returns chunk and source counts for the collection.
	Stats() (domain.Stats, error)

	Close() error
}

// VectorItem is a record to be stored.
type VectorItem struct {
	ID       string
	Vector   []float32
	Text     string
	SourceID string
	Position int
}

// VectorResult is a single search hit. Score is cosine similarity,
// higher is better.
type VectorResult struct {
	ID    string
	Text  string
	Score float64
}
