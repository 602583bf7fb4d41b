// Package filesystem collects corpus files from paths on disk.
package filesystem

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/FocuswithJustin/corpus2alpino/core/errors"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/internal/logging"
	"github.com/FocuswithJustin/corpus2alpino/internal/validation"
)

// Collector reads the given files, and every file below the given
// directories, in order. Relative paths are taken from the deepest
// directory the inputs have in common.
type Collector struct {
	paths    []string
	root     string
	fixed    bool
	position int
	total    int
}

// New creates a collector for paths.
func New(paths ...string) *Collector {
	return &Collector{paths: paths}
}

// WithRoot places files relative to root instead of the common root of the
// inputs. Parallel runs over parts of one corpus use it to keep their
// output layout consistent.
func (c *Collector) WithRoot(root string) *Collector {
	c.root = root
	c.fixed = true
	return c
}

// Position is the number of files produced so far.
func (c *Collector) Position() int { return c.position }

// Total is the number of files found.
func (c *Collector) Total() int { return c.total }

// Root returns the common root of the inputs, once Read has started.
func (c *Collector) Root() string { return c.root }

// Files expands the inputs into the list of files to read.
func (c *Collector) Files() ([]string, error) {
	var files []string
	for _, p := range c.paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.NewIO("stat", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && path != p && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if d.Type().IsRegular() && !strings.HasPrefix(d.Name(), ".") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.NewIO("walk", p, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// Read yields the collected files. Files that are too large or binary are
// reported as errors and skipped.
func (c *Collector) Read(ctx context.Context) iter.Seq2[*ir.CollectedFile, error] {
	return func(yield func(*ir.CollectedFile, error) bool) {
		files, err := c.Files()
		if err != nil {
			yield(nil, err)
			return
		}
		if !c.fixed {
			c.root = CommonRoot(files)
		}
		c.total = len(files)
		c.position = 0
		logging.DebugContext(ctx, "collecting files", "root", c.root, "total", c.total)

		for _, path := range files {
			if ctx.Err() != nil {
				return
			}
			c.position++
			file, err := Load(c.root, path)
			if !yield(file, err) {
				return
			}
		}
	}
}

// Load reads a single file, placing it relative to root.
func Load(root, path string) (*ir.CollectedFile, error) {
	rel, err := filepath.Rel(absolute(root), filepath.Dir(absolute(path)))
	if err != nil || rel == "." {
		rel = ""
	}
	file := &ir.CollectedFile{RelPath: filepath.ToSlash(rel), Filename: filepath.Base(path)}

	info, err := os.Stat(path)
	if err != nil {
		return file, errors.NewIO("stat", path, err)
	}
	if info.Size() > validation.MaxFileSize {
		return file, errors.NewValidation(path, "file exceeds the maximum size")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return file, errors.NewIO("read", path, err)
	}
	if !validation.IsLikelyText(data) {
		return file, errors.NewValidation(path, "not a text file")
	}

	file.Content = validation.DecodeText(data)
	return file, nil
}

// CommonRoot returns the deepest directory containing all files.
func CommonRoot(files []string) string {
	if len(files) == 0 {
		return ""
	}
	root := filepath.Dir(absolute(files[0]))
	for _, f := range files[1:] {
		dir := filepath.Dir(absolute(f))
		for !within(dir, root) {
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}
	return root
}

func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
