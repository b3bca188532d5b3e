package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ledongthuc/pdf"
)

// Walker selects document files under a root directory using
// doublestar glob patterns.
type Walker struct {
	includes []string
	excludes []string
}

func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

// Document is a file selected for ingestion. SourceID is the path
// relative to the walked root, used as the stable identifier in the
// vector collection.
type Document struct {
	Path     string
	SourceID string
}

func (w *Walker) Walk(root string) ([]Document, error) {
	var docs []Document

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if w.shouldExclude(relPath + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			docs = append(docs, Document{Path: path, SourceID: relPath})
		}

		return nil
	})

	return docs, err
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// ExtractText reads a document and returns its cleaned text. PDFs go
// through page-wise text extraction, everything else is read as plain
// text.
func ExtractText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return Clean(string(data)), nil
}

func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		raw, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		if text := Clean(raw); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		// Fall back to whole-document extraction for PDFs whose pages
		// the reader cannot address individually.
		plain, err := reader.GetPlainText()
		if err != nil {
			return "", fmt.Errorf("extract pdf %s: %w", path, err)
		}
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, plain); err != nil {
			return "", fmt.Errorf("extract pdf %s: %w", path, err)
		}
		return Clean(buf.String()), nil
	}

	return strings.Join(pages, "\n"), nil
}
