// Package console provides a target that streams output to a writer,
// typically standard output.
package console

import (
	"io"
	"os"

	"github.com/FocuswithJustin/corpus2alpino/core/ir"
)

// Target writes content unchanged to its writer.
type Target struct {
	w io.Writer
}

// New creates a console target. A nil writer means standard output.
func New(w io.Writer) *Target {
	if w == nil {
		w = os.Stdout
	}
	return &Target{w: w}
}

// Write copies content to the writer.
func (t *Target) Write(doc *ir.Document, content, filename, suffix string) error {
	_, err := io.WriteString(t.w, content)
	return err
}

// Flush returns nothing; output has already been streamed.
func (t *Target) Flush() (string, error) {
	return "", nil
}

// Close does not close the underlying writer.
func (t *Target) Close() error {
	return nil
}
