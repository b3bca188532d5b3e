package store

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"sage/internal/domain"
	"sage/internal/port"
)

// BoltCollection is a named collection of chunk embeddings persisted in a
// BoltDB file. Vectors are kept in an in-memory cache for brute-force cosine
// search; fine for a single-campus document corpus, swap for an ANN index if
// the corpus outgrows it.
//
// A collection opened for querying may be absent (database file missing or
// unreadable). An absent collection is not an error: searches return no
// results and ingestion-side writes fail.
type BoltCollection struct {
	db     *bbolt.DB
	bucket []byte

	mu      sync.RWMutex
	records map[string]record
}

type record struct {
	vector   []float32
	text     string
	sourceID string
	position int
}

type storedRecord struct {
	Vector   []float32 `json:"v"`
	Text     string    `json:"t"`
	SourceID string    `json:"s"`
	Position int       `json:"p"`
}

// Create opens the collection for ingestion, creating the database file and
// bucket as needed.
func Create(path, collection string) (*BoltCollection, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create vector db directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}

	bucket := []byte(collection)
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create collection %s: %w", collection, err)
	}

	c := &BoltCollection{db: db, bucket: bucket, records: make(map[string]record)}
	if err := c.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load collection: %w", err)
	}
	return c, nil
}

// Open opens the collection read-only for querying. A missing or corrupted
// database yields an absent collection handle rather than an error; every
// search against it returns empty.
func Open(path, collection string) *BoltCollection {
	absent := &BoltCollection{bucket: []byte(collection)}

	if _, err := os.Stat(path); err != nil {
		return absent
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return absent
	}

	c := &BoltCollection{db: db, bucket: []byte(collection), records: make(map[string]record)}
	if err := c.load(); err != nil {
		db.Close()
		return absent
	}
	return c
}

// load reads every record in the bucket into the in-memory cache.
func (c *BoltCollection) load() error {
	return c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return fmt.Errorf("collection %s not found", c.bucket)
		}
		return b.ForEach(func(k, v []byte) error {
			var stored storedRecord
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // skip corrupted entries
			}
			c.records[string(k)] = record{
				vector:   stored.Vector,
				text:     stored.Text,
				sourceID: stored.SourceID,
				position: stored.Position,
			}
			return nil
		})
	})
}

// Available reports whether the collection is open and backed by storage.
func (c *BoltCollection) Available() bool {
	return c.db != nil
}

// Upsert adds or updates records in the collection.
func (c *BoltCollection) Upsert(items []port.VectorItem) error {
	if c.db == nil {
		return fmt.Errorf("collection %s is not open for writing", c.bucket)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)
		for _, item := range items {
			data, err := json.Marshal(storedRecord{
				Vector:   item.Vector,
				Text:     item.Text,
				SourceID: item.SourceID,
				Position: item.Position,
			})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(item.ID), data); err != nil {
				return err
			}
			c.records[item.ID] = record{
				vector:   item.Vector,
				text:     item.Text,
				sourceID: item.SourceID,
				position: item.Position,
			}
		}
		return nil
	})
}

// ReplaceSource removes every record belonging to sourceID and writes the
// given items in their place. Re-ingesting a document replaces it wholesale;
// records are never updated piecemeal.
func (c *BoltCollection) ReplaceSource(sourceID string, items []port.VectorItem) error {
	if c.db == nil {
		return fmt.Errorf("collection %s is not open for writing", c.bucket)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(c.bucket)

		for id, rec := range c.records {
			if rec.sourceID != sourceID {
				continue
			}
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
			delete(c.records, id)
		}

		for _, item := range items {
			data, err := json.Marshal(storedRecord{
				Vector:   item.Vector,
				Text:     item.Text,
				SourceID: item.SourceID,
				Position: item.Position,
			})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(item.ID), data); err != nil {
				return err
			}
			c.records[item.ID] = record{
				vector:   item.Vector,
				text:     item.Text,
				sourceID: item.SourceID,
				position: item.Position,
			}
		}
		return nil
	})
}

// Search finds the k nearest records to the query vector using cosine
// similarity, best match first. An absent or empty collection returns no
// results.
func (c *BoltCollection) Search(query []float32, k int) ([]port.VectorResult, error) {
	if c.db == nil {
		return nil, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.records) == 0 || k <= 0 {
		return nil, nil
	}

	scored := make([]port.VectorResult, 0, len(c.records))
	for id, rec := range c.records {
		scored = append(scored, port.VectorResult{
			ID:    id,
			Text:  rec.text,
			Score: cosineSimilarity(query, rec.vector),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Stats returns chunk and distinct source counts.
func (c *BoltCollection) Stats() (domain.Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sources := make(map[string]struct{})
	for _, rec := range c.records {
		sources[rec.sourceID] = struct{}{}
	}
	return domain.Stats{
		TotalChunks:  len(c.records),
		TotalSources: len(sources),
	}, nil
}

func (c *BoltCollection) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

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
