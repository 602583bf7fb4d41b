// Package memory provides a target that accumulates output in memory.
package memory

import (
	"strings"

	"github.com/FocuswithJustin/corpus2alpino/core/ir"
)

// Target keeps everything written since the last flush.
type Target struct {
	buf strings.Builder
}

// New creates an empty memory target.
func New() *Target {
	return &Target{}
}

// Write appends content to the buffer.
func (t *Target) Write(doc *ir.Document, content, filename, suffix string) error {
	t.buf.WriteString(content)
	return nil
}

// Flush returns the buffered output and resets the buffer.
func (t *Target) Flush() (string, error) {
	out := t.buf.String()
	t.buf.Reset()
	return out, nil
}

// Close is a no-op.
func (t *Target) Close() error {
	return nil
}
