// Package extract dispatches attachment bytes to mimetype-specific text
// extractors. Rich formats (PDF, Word, spreadsheets, OCR) are external
// collaborators: the host registers them, this package only routes.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Extractor turns attachment bytes into plain text.
type Extractor func(ctx context.Context, filename string, data []byte) (string, error)

// Dispatcher routes extraction requests by mimetype. Unsupported mimetypes
// are a hard error: silently skipping a document would cache an incomplete
// summary permanently.
type Dispatcher struct {
	mu         sync.RWMutex
	extractors map[string]Extractor
}

// NewDispatcher creates a dispatcher with the built-in plain-text family
// extractors registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{extractors: make(map[string]Extractor)}
	d.Register("text/plain", extractPlainText)
	d.Register("text/csv", extractPlainText)
	d.Register("text/html", extractHTML)
	return d
}

// Register adds or replaces the extractor for a mimetype.
func (d *Dispatcher) Register(mimetype string, fn Extractor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.extractors[normalizeMimetype(mimetype)] = fn
}

// ExtractText dispatches to the extractor registered for the mimetype.
func (d *Dispatcher) ExtractText(ctx context.Context, filename, mimetype string, data []byte) (string, error) {
	d.mu.RLock()
	fn, ok := d.extractors[normalizeMimetype(mimetype)]
	d.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("no text extractor registered for mimetype %q (file %q)", mimetype, filename)
	}
	return fn(ctx, filename, data)
}

// normalizeMimetype lowercases and strips parameters ("text/plain; charset=utf-8").
func normalizeMimetype(mimetype string) string {
	if idx := strings.Index(mimetype, ";"); idx >= 0 {
		mimetype = mimetype[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mimetype))
}

func extractPlainText(ctx context.Context, filename string, data []byte) (string, error) {
	return string(data), nil
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

func extractHTML(ctx context.Context, filename string, data []byte) (string, error) {
	text := htmlTagRe.ReplaceAllString(string(data), " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&quot;", "\"")

	// Collapse whitespace runs left behind by removed tags
	return strings.Join(strings.Fields(text), " "), nil
}
