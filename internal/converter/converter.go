// Package converter runs the conversion pipeline:
// collector, reader, annotators, writer and target.
//
// The pipeline is lazy and single-pass. Nothing is read until the caller
// starts pulling steps, and one document is fully written before the next
// is read.
package converter

import (
	"context"
	stderrors "errors"
	"iter"
	"sync"

	"github.com/FocuswithJustin/corpus2alpino/core/errors"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/internal/logging"
)

// Step is the outcome of converting one document.
type Step struct {
	File     *ir.CollectedFile
	Document *ir.Document

	// Output is what the target returned on flush.
	Output string

	// Position and Total report collector progress; Total is 0 when unknown.
	Position int
	Total    int
}

// Converter wires the pipeline stages together.
type Converter struct {
	Collector  Collector
	Reader     Reader
	Annotators []Annotator
	Writer     Writer
	Target     Target

	closeOnce sync.Once
	closeErr  error
}

// New creates a converter.
func New(collector Collector, reader Reader, writer Writer, target Target, annotators ...Annotator) *Converter {
	return &Converter{
		Collector:  collector,
		Reader:     reader,
		Annotators: annotators,
		Writer:     writer,
		Target:     target,
	}
}

// Convert returns the pipeline as a sequence of steps, one per document.
//
// A decode error is yielded with the failing file; continuing the loop skips
// the rest of that file, breaking stops the pipeline. The target is closed
// when the sequence ends, including when the caller stops early.
func (c *Converter) Convert(ctx context.Context) iter.Seq2[Step, error] {
	return func(yield func(Step, error) bool) {
		defer c.Close()

		for file, err := range c.Collector.Read(ctx) {
			if err != nil {
				if !yield(Step{File: file}, err) {
					return
				}
				continue
			}
			if err := ctx.Err(); err != nil {
				yield(Step{File: file}, err)
				return
			}
			if !c.Reader.TestFile(file) {
				logging.DebugContext(ctx, "no reader for file", "path", file.Path())
				continue
			}
			if !c.convertFile(ctx, file, yield) {
				return
			}
		}

		if err := c.Close(); err != nil {
			yield(Step{}, errors.Wrap(err, "failed to close target"))
		}
	}
}

// convertFile runs every document of file through the pipeline. It returns
// false when the consumer asked to stop.
func (c *Converter) convertFile(ctx context.Context, file *ir.CollectedFile, yield func(Step, error) bool) bool {
	for doc, err := range c.Reader.Read(file) {
		if err != nil {
			return yield(c.step(file, nil), err)
		}
		if errs := ir.ValidateDocument(doc); len(errs) > 0 {
			err := errors.Wrapf(stderrors.Join(errs...), "invalid document %s", doc.Path())
			if !yield(c.step(file, doc), err) {
				return false
			}
			continue
		}

		for _, a := range c.Annotators {
			a.Annotate(ctx, doc)
		}

		if err := c.Writer.Write(doc, c.Target); err != nil {
			if !yield(c.step(file, doc), errors.Wrapf(err, "failed to write %s", doc.Path())) {
				return false
			}
			continue
		}

		step := c.step(file, doc)
		output, err := c.Target.Flush()
		step.Output = output
		if err != nil {
			err = errors.Wrapf(err, "failed to flush %s", doc.Path())
		}
		if !yield(step, err) {
			return false
		}
	}
	return true
}

func (c *Converter) step(file *ir.CollectedFile, doc *ir.Document) Step {
	s := Step{File: file, Document: doc}
	if p, ok := c.Collector.(Progress); ok {
		s.Position = p.Position()
		s.Total = p.Total()
	}
	return s
}

// Close closes the target. It is safe to call more than once and from code
// that never iterated the pipeline.
func (c *Converter) Close() error {
	c.closeOnce.Do(func() {
		if c.Target != nil {
			c.closeErr = c.Target.Close()
		}
	})
	return c.closeErr
}

// Summary counts the work done by Run.
type Summary struct {
	Files     int
	Documents int
	Failures  int
}

// Run drains the pipeline. Files that fail to decode or write are logged and
// skipped; cancellation and I/O errors on the target stop the run.
func (c *Converter) Run(ctx context.Context) (Summary, error) {
	if logging.GetRunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, logging.NewRunID())
	}

	var summary Summary
	var lastFile *ir.CollectedFile
	for step, err := range c.Convert(ctx) {
		if step.File != nil && step.File != lastFile {
			lastFile = step.File
			summary.Files++
		}
		if err == nil {
			summary.Documents++
			if step.Total > 0 {
				logging.DebugContext(ctx, "converted document",
					"document", step.Document.Path(),
					"position", step.Position,
					"total", step.Total)
			}
			continue
		}

		var ioErr *errors.IOError
		if ctx.Err() != nil || errors.As(err, &ioErr) {
			return summary, err
		}
		summary.Failures++
		path := ""
		if step.File != nil {
			path = step.File.Path()
		}
		logging.FileSkipped(ctx, path, err)
	}

	logging.InfoContext(ctx, "conversion finished",
		"files", summary.Files,
		"documents", summary.Documents,
		"failures", summary.Failures)
	return summary, nil
}
