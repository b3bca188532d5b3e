package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"sage/internal/adapter/chunker"
	"sage/internal/port"
)

// ProgressFunc reports ingestion progress after each document.
type ProgressFunc func(processed, total int, currentFile string)

// Job ingests documents into a vector collection: extract, clean,
// chunk, embed, replace.
type Job struct {
	store     port.VectorStore
	walker    *Walker
	chunker   *chunker.WindowChunker
	embedder  port.Embedder
	batchSize int
}

func NewJob(store port.VectorStore, walker *Walker, chk *chunker.WindowChunker, embedder port.Embedder, batchSize int) *Job {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Job{
		store:     store,
		walker:    walker,
		chunker:   chk,
		embedder:  embedder,
		batchSize: batchSize,
	}
}

// Result summarizes an ingestion run.
type Result struct {
	SourcesIngested int
	SourcesSkipped  int
	ChunksCreated   int
	Errors          []string
}

// Run walks root and ingests every selected document. Documents that
// fail to extract are reported in Result.Errors and do not abort the
// run. Existing records for each re-ingested source are replaced.
func (j *Job) Run(ctx context.Context, root string, progress ProgressFunc) (*Result, error) {
	docs, err := j.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	result := &Result{}
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := j.ingestOne(ctx, doc, result); err != nil {
			slog.Warn("document skipped", "source", doc.SourceID, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", doc.SourceID, err))
		}

		if progress != nil {
			progress(i+1, len(docs), doc.SourceID)
		}
	}

	return result, nil
}

func (j *Job) ingestOne(ctx context.Context, doc Document, result *Result) error {
	text, err := ExtractText(doc.Path)
	if err != nil {
		return err
	}

	chunks := j.chunker.Chunks(doc.SourceID, text)
	if len(chunks) == 0 {
		result.SourcesSkipped++
		return nil
	}

	items := make([]port.VectorItem, 0, len(chunks))
	for start := 0; start < len(chunks); start += j.batchSize {
		end := start + j.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for k, c := range batch {
			texts[k] = c.Text
		}

		vectors, err := j.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(batch))
		}

		for k, c := range batch {
			items = append(items, port.VectorItem{
				ID:       c.ID,
				Vector:   vectors[k],
				Text:     c.Text,
				SourceID: c.SourceID,
				Position: c.Position,
			})
		}
	}

	if err := j.store.ReplaceSource(doc.SourceID, items); err != nil {
		return fmt.Errorf("store %s: %w", doc.SourceID, err)
	}

	result.SourcesIngested++
	result.ChunksCreated += len(items)
	return nil
}
