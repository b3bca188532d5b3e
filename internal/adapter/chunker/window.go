package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"sage/internal/domain"
)

const (
	DefaultSize    = 500
	DefaultOverlap = 100
)

// WindowChunker splits text into overlapping fixed-size character windows.
// It has no semantic awareness: sentence and paragraph boundaries are not
// respected.
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker creates a chunker with the given window size and overlap,
// both in characters. Degenerate configurations are clamped so chunking
// always terminates: size must be positive and overlap must be smaller
// than size.
func NewWindowChunker(size, overlap int) *WindowChunker {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	return &WindowChunker{size: size, overlap: overlap}
}

// Split cuts text into windows of size characters, advancing the start by
// size-overlap each step so consecutive windows share overlap characters.
// Each window is trimmed of surrounding whitespace; empty windows are
// dropped. The final window may be shorter than size.
func (c *WindowChunker) Split(text string) []string {
	runes := []rune(text)
	step := c.size - c.overlap

	var windows []string
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		w := strings.TrimSpace(string(runes[start:end]))
		if w != "" {
			windows = append(windows, w)
		}
	}
	return windows
}

// Chunks splits text and wraps each surviving window in a domain.Chunk with
// a stable ID derived from the source and the window position.
func (c *WindowChunker) Chunks(sourceID, text string) []domain.Chunk {
	windows := c.Split(text)
	chunks := make([]domain.Chunk, 0, len(windows))
	for i, w := range windows {
		chunks = append(chunks, domain.Chunk{
			ID:       chunkID(sourceID, i),
			SourceID: sourceID,
			Position: i,
			Text:     w,
		})
	}
	return chunks
}

func chunkID(sourceID string, position int) string {
	data := fmt.Sprintf("%s:%d", sourceID, position)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
