package retrieval

import (
	"context"
	"errors"
	"testing"

	"sage/internal/port"
)

type stubSearcher struct {
	results []port.VectorResult
	err     error
	calls   int
}

func (s *stubSearcher) Search(query []float32, k int) ([]port.VectorResult, error) {
	s.calls++
	return s.results, s.err
}

type stubEmbedder struct {
	err   error
	calls int
}

func (e *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func (e *stubEmbedder) Dimension() int    { return 3 }
func (e *stubEmbedder) ModelName() string { return "stub" }

func TestRetrieveAppliesScoreFloor(t *testing.T) {
	index := &stubSearcher{results: []port.VectorResult{
		{ID: "1", Text: "doc1", Score: 0.5},
		{ID: "2", Text: "doc2", Score: 0.1},
	}}
	r := NewRetriever(index, &stubEmbedder{}, 10, 0.2)

	got := r.Retrieve(context.Background(), "library hours")
	if len(got) != 1 || got[0] != "doc1" {
		t.Errorf("expected [doc1], got %v", got)
	}
}

func TestRetrievePreservesRankingOrder(t *testing.T) {
	index := &stubSearcher{results: []port.VectorResult{
		{ID: "1", Text: "first", Score: 0.9},
		{ID: "2", Text: "second", Score: 0.5},
		{ID: "3", Text: "dropped", Score: 0.05},
		{ID: "4", Text: "third", Score: 0.4},
	}}
	r := NewRetriever(index, &stubEmbedder{}, 10, 0.2)

	got := r.Retrieve(context.Background(), "campus facilities")
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRetrieveBlankQuerySkipsIndex(t *testing.T) {
	index := &stubSearcher{}
	embedder := &stubEmbedder{}
	r := NewRetriever(index, embedder, 10, 0.2)

	for _, q := range []string{"", "   ", "\n\t"} {
		if got := r.Retrieve(context.Background(), q); len(got) != 0 {
			t.Errorf("blank query %q returned %v", q, got)
		}
	}
	if embedder.calls != 0 {
		t.Errorf("embedder called %d times for blank queries", embedder.calls)
	}
	if index.calls != 0 {
		t.Errorf("index touched %d times for blank queries", index.calls)
	}
}

func TestRetrieveSearchFailureReturnsEmpty(t *testing.T) {
	index := &stubSearcher{err: errors.New("index corrupted")}
	r := NewRetriever(index, &stubEmbedder{}, 10, 0.2)

	if got := r.Retrieve(context.Background(), "hostel rules"); len(got) != 0 {
		t.Errorf("expected empty result on search failure, got %v", got)
	}
}

func TestRetrieveEmbedFailureReturnsEmpty(t *testing.T) {
	index := &stubSearcher{results: []port.VectorResult{{Text: "doc1", Score: 0.9}}}
	r := NewRetriever(index, &stubEmbedder{err: errors.New("backend down")}, 10, 0.2)

	if got := r.Retrieve(context.Background(), "fees"); len(got) != 0 {
		t.Errorf("expected empty result on embed failure, got %v", got)
	}
	if index.calls != 0 {
		t.Error("index should not be searched when embedding fails")
	}
}

func TestRetrieveNilIndex(t *testing.T) {
	r := NewRetriever(nil, &stubEmbedder{}, 10, 0.2)
	if got := r.Retrieve(context.Background(), "anything"); len(got) != 0 {
		t.Errorf("expected empty result with nil index, got %v", got)
	}
}
