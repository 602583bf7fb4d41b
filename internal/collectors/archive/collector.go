// Package archive collects corpus files from tar archives.
package archive

import (
	stdarchive "archive/tar"
	"context"
	"io"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/FocuswithJustin/corpus2alpino/core/errors"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/internal/archive"
	"github.com/FocuswithJustin/corpus2alpino/internal/logging"
	"github.com/FocuswithJustin/corpus2alpino/internal/validation"
)

// Collector yields the regular files of .tar, .tar.gz and .tar.xz archives.
// Members are placed below a directory named after their archive.
type Collector struct {
	paths    []string
	position int
}

// New creates a collector for the given archives.
func New(paths ...string) *Collector {
	return &Collector{paths: paths}
}

// Position is the number of members produced so far.
func (c *Collector) Position() int { return c.position }

// Total is unknown until every archive has been read.
func (c *Collector) Total() int { return 0 }

// Read yields every member of every archive, in archive order.
func (c *Collector) Read(ctx context.Context) iter.Seq2[*ir.CollectedFile, error] {
	return func(yield func(*ir.CollectedFile, error) bool) {
		c.position = 0
		for _, p := range c.paths {
			if ctx.Err() != nil {
				return
			}
			if !c.readArchive(ctx, p, yield) {
				return
			}
		}
	}
}

func (c *Collector) readArchive(ctx context.Context, p string, yield func(*ir.CollectedFile, error) bool) bool {
	if err := checkArchive(p); err != nil {
		return yield(&ir.CollectedFile{Filename: filepath.Base(p)}, err)
	}

	stem := Stem(p)
	stopped := false
	err := archive.IterateFiles(p, func(header *stdarchive.Header, content io.Reader) (bool, error) {
		if ctx.Err() != nil {
			return true, nil
		}
		c.position++
		file, err := member(stem, header, content)
		if !yield(file, err) {
			stopped = true
			return true, nil
		}
		return false, nil
	})
	if stopped {
		return false
	}
	if err != nil {
		logging.Debug("archive iteration failed", "archive", p, "error", err)
		return yield(&ir.CollectedFile{Filename: filepath.Base(p)}, errors.NewIO("read", p, err))
	}
	return true
}

func checkArchive(p string) error {
	if !archive.IsArchive(p) {
		return errors.NewUnsupported("archive", filepath.Base(p))
	}
	f, err := os.Open(p)
	if err != nil {
		return errors.NewIO("open", p, err)
	}
	defer f.Close()
	if _, err := validation.ValidateFileType(f, p); err != nil {
		return &errors.ValidationError{Field: p, Message: "not a valid archive", Err: err}
	}
	return nil
}

func member(stem string, header *stdarchive.Header, content io.Reader) (*ir.CollectedFile, error) {
	name := strings.TrimPrefix(path.Clean(header.Name), "/")
	dir, base := path.Split(name)
	file := &ir.CollectedFile{
		RelPath:  path.Join(stem, strings.TrimSuffix(dir, "/")),
		Filename: base,
	}

	if _, err := validation.SanitizePath(".", filepath.FromSlash(name)); err != nil {
		return file, &errors.ValidationError{Field: header.Name, Message: "unsafe member name", Err: err}
	}
	if header.Size > validation.MaxFileSize {
		return file, errors.NewValidation(header.Name, "file exceeds the maximum size")
	}
	data, err := io.ReadAll(io.LimitReader(content, validation.MaxFileSize))
	if err != nil {
		return file, errors.NewIO("read", header.Name, err)
	}
	if !validation.IsLikelyText(data) {
		return file, errors.NewValidation(header.Name, "not a text file")
	}
	file.Content = validation.DecodeText(data)
	return file, nil
}

// Stem returns the archive name without its archive extensions.
func Stem(p string) string {
	base := filepath.Base(p)
	lower := strings.ToLower(base)
	for _, ext := range []string{".tar.xz", ".tar.gz", ".tgz", ".tar"} {
		if strings.HasSuffix(lower, ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return base
}
