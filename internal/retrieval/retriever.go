// Package retrieval finds index chunks relevant to a question. Retrieval
// failures degrade to "no information found": the caller sees an empty
// result, never an error.
package retrieval

import (
	"context"
	"log/slog"
	"strings"

	"sage/internal/port"
)

// Searcher is the slice of the vector store retrieval needs.
type Searcher interface {
	Search(query []float32, k int) ([]port.VectorResult, error)
}

// Retriever embeds a query, searches the index, and keeps results whose
// similarity clears the configured floor. The store scores with cosine
// similarity (higher is better), so min-score is a floor, not a distance
// ceiling.
type Retriever struct {
	index    Searcher
	embedder port.Embedder
	topK     int
	minScore float64
}

func NewRetriever(index Searcher, embedder port.Embedder, topK int, minScore float64) *Retriever {
	if topK <= 0 {
		topK = 10
	}
	return &Retriever{
		index:    index,
		embedder: embedder,
		topK:     topK,
		minScore: minScore,
	}
}

// Retrieve returns the texts of relevant chunks in ranking order, at most
// topK, scores already applied and dropped. A blank query returns nothing
// without touching the index.
func (r *Retriever) Retrieve(ctx context.Context, query string) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if r.index == nil || r.embedder == nil {
		return nil
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		slog.Debug("query embedding failed", "error", err)
		return nil
	}

	results, err := r.index.Search(vectors[0], r.topK)
	if err != nil {
		slog.Debug("index search failed", "error", err)
		return nil
	}

	var texts []string
	for _, res := range results {
		if res.Score >= r.minScore {
			texts = append(texts, res.Text)
		}
	}
	return texts
}
