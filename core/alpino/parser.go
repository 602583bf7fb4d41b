package alpino

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FocuswithJustin/corpus2alpino/core/errors"
)

// AnnotationKey is the utterance annotation slot holding the parse tree.
const AnnotationKey = "alpino"

// rootMarker must appear in every valid parse response.
const rootMarker = "<alpino_ds"

// Parser parses a single sentence into Alpino XML.
type Parser interface {
	// ParseLine parses the tokenized text and returns the parse tree with
	// its sentence id set to id.
	ParseLine(ctx context.Context, text, id string) (string, error)

	// Info describes the parser installation.
	Info() Info
}

// Info describes a parser installation. Zero values mean unknown.
type Info struct {
	Version     string
	VersionDate time.Time
}

// Known reports whether a version was found.
func (i Info) Known() bool {
	return i.Version != ""
}

// ReadInfo reads the version file of an Alpino installation. The version date
// is the modification date of that file. A missing home directory or version
// file yields an empty Info.
func ReadInfo(home string) Info {
	if home == "" {
		return Info{}
	}
	versionPath := filepath.Join(home, "version")
	data, err := os.ReadFile(versionPath)
	if err != nil {
		return Info{}
	}
	st, err := os.Stat(versionPath)
	if err != nil {
		return Info{}
	}
	mod := st.ModTime()
	return Info{
		Version:     strings.TrimSpace(string(data)),
		VersionDate: time.Date(mod.Year(), mod.Month(), mod.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// ResponseError is returned when the parser answers without a parse tree.
type ResponseError struct {
	Response string
}

func (e *ResponseError) Error() string {
	resp := e.Response
	if len(resp) > 200 {
		resp = resp[:200] + "..."
	}
	return fmt.Sprintf("unexpected parser response: %q", resp)
}

func (e *ResponseError) Unwrap() error {
	return errors.ErrInvalidInput
}

func checkResponse(xml string) error {
	if !strings.Contains(xml, rootMarker) {
		return &ResponseError{Response: xml}
	}
	return nil
}
