// Package base provides common functionality for the format readers: content
// probing, id bookkeeping and error construction.
package base

import (
	"fmt"
	"path"
	"strings"

	"github.com/FocuswithJustin/corpus2alpino/core/errors"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
)

// ProbeSize is how much of a file is inspected for content markers.
const ProbeSize = 400

// DetectConfig contains configuration for format detection.
type DetectConfig struct {
	// Extensions is a list of valid file extensions (e.g., ".cha", ".txt")
	Extensions []string
	// ContentMarkers are strings of which at least one must appear in the
	// first ProbeSize bytes
	ContentMarkers []string
	// FormatName is the name to return in DetectResult
	FormatName string
	// CustomValidator is an optional function for additional validation
	CustomValidator func(file *ir.CollectedFile) (bool, string)
}

// DetectResult is the outcome of probing a file.
type DetectResult struct {
	Detected bool
	Format   string
	Reason   string
}

// DetectFile performs common file detection logic: content markers first,
// then the custom validator, then the extension.
func DetectFile(file *ir.CollectedFile, config DetectConfig) DetectResult {
	if file == nil {
		return DetectResult{Reason: "no file"}
	}

	head := file.Head(ProbeSize)
	for _, marker := range config.ContentMarkers {
		if strings.Contains(head, marker) {
			return DetectResult{
				Detected: true,
				Format:   config.FormatName,
				Reason:   fmt.Sprintf("%s marker %q detected", config.FormatName, marker),
			}
		}
	}

	if config.CustomValidator != nil {
		if ok, reason := config.CustomValidator(file); ok {
			return DetectResult{Detected: true, Format: config.FormatName, Reason: reason}
		}
	}

	if HasExtension(file.Filename, config.Extensions...) {
		return DetectResult{
			Detected: true,
			Format:   config.FormatName,
			Reason:   fmt.Sprintf("%s file extension detected", config.FormatName),
		}
	}

	return DetectResult{Reason: fmt.Sprintf("not a %s file", config.FormatName)}
}

// HasExtension reports whether filename ends in one of the extensions,
// ignoring case.
func HasExtension(filename string, extensions ...string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// Stem returns the filename without its extension.
func Stem(filename string) string {
	return strings.TrimSuffix(filename, path.Ext(filename))
}

// UniqueIDs hands out utterance ids that are unique within a document. A
// repeated id gets a _N suffix, starting at _2.
type UniqueIDs struct {
	seen map[string]int
}

// NewUniqueIDs creates an empty id set.
func NewUniqueIDs() *UniqueIDs {
	return &UniqueIDs{seen: make(map[string]int)}
}

// Next returns id, or id with a suffix when it was handed out before.
func (u *UniqueIDs) Next(id string) string {
	n := u.seen[id]
	u.seen[id] = n + 1
	if n == 0 {
		return id
	}
	candidate := fmt.Sprintf("%s_%d", id, n+1)
	for u.seen[candidate] > 0 {
		n++
		candidate = fmt.Sprintf("%s_%d", id, n+1)
	}
	u.seen[id] = n + 1
	u.seen[candidate] = 1
	return candidate
}

// ParseError creates a decode error for file.
func ParseError(format string, file *ir.CollectedFile, line int, message string, err error) error {
	return &errors.ParseError{
		Format:  format,
		Path:    file.Path(),
		Line:    line,
		Message: message,
		Err:     err,
	}
}
