// Package watch collects files as they appear in a directory.
package watch

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/FocuswithJustin/corpus2alpino/core/cas"
	"github.com/FocuswithJustin/corpus2alpino/core/errors"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/internal/collectors/filesystem"
	"github.com/FocuswithJustin/corpus2alpino/internal/logging"
)

// DefaultSettle is how long a file must be left alone before it is read.
const DefaultSettle = 250 * time.Millisecond

// Collector yields files created or modified in a directory until its
// context is cancelled. A file is read once writes to it have settled, and
// only again when its content changes.
type Collector struct {
	// Settle is the quiet period before a changed file is read.
	Settle time.Duration

	dir        string
	extensions []string
	watcher    *fsnotify.Watcher
	seen       map[string]string
	position   int
}

// New starts watching dir. Only files with one of the extensions are
// collected; no extensions means every file.
func New(dir string, extensions ...string) (*Collector, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewIO("watch", dir, err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, errors.NewIO("watch", dir, err)
	}

	return &Collector{
		Settle:     DefaultSettle,
		dir:        dir,
		extensions: extensions,
		watcher:    w,
		seen:       make(map[string]string),
	}, nil
}

// Position is the number of files produced so far.
func (c *Collector) Position() int { return c.position }

// Total is unknown.
func (c *Collector) Total() int { return 0 }

// Close stops watching.
func (c *Collector) Close() error {
	return c.watcher.Close()
}

// Read yields changed files until ctx is cancelled or the watcher closes.
func (c *Collector) Read(ctx context.Context) iter.Seq2[*ir.CollectedFile, error] {
	return func(yield func(*ir.CollectedFile, error) bool) {
		settle := c.Settle
		if settle <= 0 {
			settle = DefaultSettle
		}
		ticker := time.NewTicker(settle / 2)
		defer ticker.Stop()

		pending := make(map[string]time.Time)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-c.watcher.Events:
				if !ok {
					return
				}
				if !c.watched(event.Name) {
					continue
				}
				if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
					pending[event.Name] = time.Now()
				}
				if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					delete(pending, event.Name)
					delete(c.seen, event.Name)
				}
			case err, ok := <-c.watcher.Errors:
				if !ok {
					return
				}
				logging.WarnContext(ctx, "watch error", "dir", c.dir, "error", err)
			case now := <-ticker.C:
				var ready []string
				for path, changed := range pending {
					if now.Sub(changed) >= settle {
						ready = append(ready, path)
					}
				}
				slices.Sort(ready)
				for _, path := range ready {
					delete(pending, path)
					if info, err := os.Stat(path); err != nil || info.IsDir() {
						continue
					}
					file, err := filesystem.Load(c.dir, path)
					if err == nil && !c.changed(path, file.Content) {
						continue
					}
					c.position++
					if !yield(file, err) {
						return
					}
				}
			}
		}
	}
}

// changed records the content hash of path and reports whether it differs
// from the last one collected.
func (c *Collector) changed(path, content string) bool {
	sum := cas.Blake3Hash([]byte(content))
	if prev, ok := c.seen[path]; ok && prev == sum {
		return false
	}
	c.seen[path] = sum
	return true
}

func (c *Collector) watched(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	if len(c.extensions) == 0 {
		return true
	}
	return slices.Contains(c.extensions, filepath.Ext(path))
}
