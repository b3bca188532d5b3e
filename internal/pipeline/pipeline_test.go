package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sage/config"
	"sage/internal/adapter/chunker"
	"sage/internal/adapter/embedding"
	"sage/internal/adapter/store"
	"sage/internal/generation"
	"sage/internal/port"
	"sage/internal/retrieval"
)

type scriptedCompleter struct {
	output string
	calls  int
}

func (c *scriptedCompleter) Complete(ctx context.Context, model, prompt string) (string, error) {
	c.calls++
	return c.output, nil
}

type staticRetriever struct {
	chunks []string
}

func (r *staticRetriever) Retrieve(ctx context.Context, query string) []string {
	return r.chunks
}

func testModels() config.ModelsConfig {
	return config.DefaultConfig().Models
}

func TestResolveModel(t *testing.T) {
	p := New(&staticRetriever{}, &scriptedCompleter{}, testModels(), time.Minute)

	cases := []struct {
		ref  string
		want string
	}{
		{"llama", "llama3.1:8b"},
		{"deepseek", "deepseek-coder:6.7b"},
		{"llama3.1:8b", "llama3.1:8b"},
		{"unknown-key", "llama3.1:8b"},
		{"", "llama3.1:8b"},
	}

	for _, tc := range cases {
		if got := p.ResolveModel(tc.ref); got != tc.want {
			t.Errorf("ResolveModel(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}

func TestAnswerThreadsContextToGenerator(t *testing.T) {
	completer := &scriptedCompleter{output: "The library opens at 8 AM."}
	p := New(&staticRetriever{chunks: []string{"Library opens at 8 AM."}}, completer, testModels(), time.Minute)

	got := p.Answer(context.Background(), "When does the library open?", "llama")
	if got != completer.output {
		t.Errorf("expected backend output, got %q", got)
	}
	if completer.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", completer.calls)
	}
}

func TestAnswerEmptyRetrievalStillReachesGenerator(t *testing.T) {
	completer := &scriptedCompleter{output: "should not be called"}
	p := New(&staticRetriever{chunks: nil}, completer, testModels(), time.Minute)

	got := p.Answer(context.Background(), "What is the hostel curfew time?", "llama")
	if got != generation.RefusalMessage {
		t.Errorf("expected refusal for empty retrieval, got %q", got)
	}
	if completer.calls != 0 {
		t.Errorf("backend invoked %d times with no context", completer.calls)
	}
}

// buildIndex ingests the given source texts into a fresh bolt collection the
// way the offline ingestion job does: chunk, embed, replace.
func buildIndex(t *testing.T, embedder port.Embedder, sources map[string]string) *store.BoltCollection {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vector_db", "sage.db")
	coll, err := store.Create(path, config.CollectionName)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { coll.Close() })

	ck := chunker.NewWindowChunker(500, 100)
	for sourceID, text := range sources {
		chunks := ck.Chunks(sourceID, text)
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vectors, err := embedder.Embed(context.Background(), texts)
		if err != nil {
			t.Fatal(err)
		}
		items := make([]port.VectorItem, len(chunks))
		for i, c := range chunks {
			items[i] = port.VectorItem{
				ID:       c.ID,
				Vector:   vectors[i],
				Text:     c.Text,
				SourceID: c.SourceID,
				Position: c.Position,
			}
		}
		if err := coll.ReplaceSource(sourceID, items); err != nil {
			t.Fatal(err)
		}
	}
	return coll
}

func TestEndToEndAnswerFromIndexedChunk(t *testing.T) {
	embedder := embedding.NewMockEmbedder(256)
	coll := buildIndex(t, embedder, map[string]string{
		"library.pdf": "The university library is open from 8 AM to 8 PM on weekdays.",
	})

	completer := &scriptedCompleter{
		output: "The library is open from 8 AM to 8 PM on weekdays.",
	}
	retriever := retrieval.NewRetriever(coll, embedder, 10, 0.2)
	p := New(retriever, completer, testModels(), time.Minute)

	got := p.Answer(context.Background(), "What are the library working hours?", "llama")

	lower := strings.ToLower(got)
	if !strings.Contains(lower, "8 am") {
		t.Errorf("answer missing opening time: %q", got)
	}
	if !strings.Contains(lower, "weekday") {
		t.Errorf("answer missing weekday mention: %q", got)
	}
	if completer.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", completer.calls)
	}
}

func TestEndToEndUnrelatedIndexRefuses(t *testing.T) {
	embedder := embedding.NewMockEmbedder(256)
	coll := buildIndex(t, embedder, map[string]string{
		"admission.pdf": "Applications for undergraduate programs open on January 15th. " +
			"Admission test held on March 10th at campus.",
	})

	completer := &scriptedCompleter{output: "should never run"}
	retriever := retrieval.NewRetriever(coll, embedder, 10, 0.2)
	p := New(retriever, completer, testModels(), time.Minute)

	got := p.Answer(context.Background(), "hostel curfew?", "llama")
	if got != generation.RefusalMessage {
		t.Errorf("expected refusal for unrelated index, got %q", got)
	}
	if completer.calls != 0 {
		t.Errorf("backend invoked %d times for ungrounded question", completer.calls)
	}
}

func TestEndToEndMissingIndexRefuses(t *testing.T) {
	embedder := embedding.NewMockEmbedder(256)
	coll := store.Open(filepath.Join(t.TempDir(), "absent.db"), config.CollectionName)
	defer coll.Close()

	completer := &scriptedCompleter{output: "should never run"}
	retriever := retrieval.NewRetriever(coll, embedder, 10, 0.2)
	p := New(retriever, completer, testModels(), time.Minute)

	got := p.Answer(context.Background(), "What are the library hours?", "llama")
	if got != generation.RefusalMessage {
		t.Errorf("expected refusal with missing index, got %q", got)
	}
}
