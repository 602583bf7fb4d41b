package converter

import (
	"context"
	"iter"

	"github.com/FocuswithJustin/corpus2alpino/core/ir"
)

// Collector produces the files to convert, in order.
type Collector interface {
	Read(ctx context.Context) iter.Seq2[*ir.CollectedFile, error]
}

// Progress is implemented by collectors that know how far along they are.
type Progress interface {
	// Position is the number of files produced so far.
	Position() int
	// Total is the number of files to produce, or 0 when unknown.
	Total() int
}

// Reader decodes a collected file into documents.
type Reader interface {
	// TestFile reports whether the reader understands the file.
	TestFile(file *ir.CollectedFile) bool
	// Read decodes the file. A decode error ends the sequence.
	Read(file *ir.CollectedFile) iter.Seq2[*ir.Document, error]
}

// Annotator mutates the utterances of a document in place. Per-utterance
// failures are logged and never abort the document.
type Annotator interface {
	Annotate(ctx context.Context, doc *ir.Document)
}

// Writer serializes a document into a target.
type Writer interface {
	Write(doc *ir.Document, target Target) error
}

// Target receives serialized output.
type Target interface {
	// Write stores content for doc. filename optionally names a unit within
	// the document; suffix replaces the document's file extension.
	Write(doc *ir.Document, content, filename, suffix string) error
	// Flush completes the current document and returns what was written
	// since the previous flush, when the target keeps it.
	Flush() (string, error)
	// Close releases the target. It is called exactly once.
	Close() error
}
