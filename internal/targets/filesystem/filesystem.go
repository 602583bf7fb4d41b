// Package filesystem provides a target that writes output files to disk.
//
// In merged mode everything goes into a single file. Otherwise each document
// is written below the output root, mirroring its location in the input:
//
//	<root>/<relpath>/<filename>[/<subpath>][/<name>]
//
// where a writer-provided suffix replaces the extension of the last element.
package filesystem

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/FocuswithJustin/corpus2alpino/core/errors"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/internal/logging"
	"github.com/FocuswithJustin/corpus2alpino/internal/validation"
)

// Target writes to the filesystem.
type Target struct {
	root  string
	merge bool

	currentPath string
	file        *os.File
	w           *bufio.Writer
}

// New creates a filesystem target. With merge set, path is the single output
// file and it is created immediately; otherwise path is the output directory.
func New(path string, merge bool) (*Target, error) {
	t := &Target{root: path, merge: merge}
	if merge {
		if err := t.open(path); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// OutputPath returns the file a write for doc would go to.
func (t *Target) OutputPath(doc *ir.Document, filename, suffix string) (string, error) {
	if t.merge {
		return t.root, nil
	}

	parts := []string{doc.File.RelPath, doc.File.Filename}
	if doc.Subpath != "" {
		// subpaths come from document ids and may hold separators
		sub, err := validation.SanitizeFilename(doc.Subpath)
		if err != nil {
			return "", errors.Wrapf(err, "invalid subpath %q of %s", doc.Subpath, doc.File.Path())
		}
		parts = append(parts, sub)
	}
	if filename != "" {
		parts = append(parts, filename)
	}
	rel := filepath.Join(parts...)
	if suffix != "" {
		rel = replaceSuffix(rel, suffix)
	}

	clean, err := validation.SanitizePath(t.root, rel)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve output path for %s", doc.Path())
	}
	return filepath.Join(t.root, clean), nil
}

// Write appends content to the output file of doc, switching files when the
// path changes.
func (t *Target) Write(doc *ir.Document, content, filename, suffix string) error {
	path, err := t.OutputPath(doc, filename, suffix)
	if err != nil {
		return err
	}
	if path != t.currentPath {
		if err := t.closeFile(); err != nil {
			return err
		}
		if err := t.open(path); err != nil {
			return err
		}
	}
	if _, err := t.w.WriteString(content); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}

// Flush writes buffered output to disk. The result is always empty.
func (t *Target) Flush() (string, error) {
	if t.w == nil {
		return "", nil
	}
	if err := t.w.Flush(); err != nil {
		return "", errors.NewIO("flush", t.currentPath, err)
	}
	return "", nil
}

// Close flushes and closes the current file.
func (t *Target) Close() error {
	return t.closeFile()
}

func (t *Target) open(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewIO("mkdir", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIO("create", path, err)
	}
	logging.Debug("output file opened", "path", path)
	t.file = f
	t.w = bufio.NewWriter(f)
	t.currentPath = path
	return nil
}

func (t *Target) closeFile() error {
	if t.file == nil {
		return nil
	}
	flushErr := t.w.Flush()
	closeErr := t.file.Close()
	path := t.currentPath
	t.file, t.w, t.currentPath = nil, nil, ""
	if flushErr != nil {
		return errors.NewIO("flush", path, flushErr)
	}
	if closeErr != nil {
		return errors.NewIO("close", path, closeErr)
	}
	return nil
}

func replaceSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}
