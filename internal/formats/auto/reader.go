// Package auto selects a format reader by probing the file.
package auto

import (
	"iter"

	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/internal/converter"
	"github.com/FocuswithJustin/corpus2alpino/internal/formats/chat"
	"github.com/FocuswithJustin/corpus2alpino/internal/formats/folia"
	"github.com/FocuswithJustin/corpus2alpino/internal/formats/lassy"
	"github.com/FocuswithJustin/corpus2alpino/internal/formats/paqu"
	"github.com/FocuswithJustin/corpus2alpino/internal/formats/tei"
)

// Reader delegates to the first reader that accepts a file.
type Reader struct {
	readers []converter.Reader
}

// New creates a reader probing CHAT, FoLiA, Lassy, PaQu and TEI, in that
// order.
func New() *Reader {
	return NewWith(chat.New(), folia.New(), lassy.New(), paqu.New(), tei.New())
}

// NewWith creates a reader probing the given readers in order.
func NewWith(readers ...converter.Reader) *Reader {
	return &Reader{readers: readers}
}

// TestFile reports whether any reader accepts the file.
func (r *Reader) TestFile(file *ir.CollectedFile) bool {
	return r.pick(file) != nil
}

// Read decodes the file with the first accepting reader. A file no reader
// accepts yields nothing.
func (r *Reader) Read(file *ir.CollectedFile) iter.Seq2[*ir.Document, error] {
	if reader := r.pick(file); reader != nil {
		return reader.Read(file)
	}
	return func(yield func(*ir.Document, error) bool) {}
}

func (r *Reader) pick(file *ir.CollectedFile) converter.Reader {
	for _, reader := range r.readers {
		if reader.TestFile(file) {
			return reader
		}
	}
	return nil
}
