package ir

// types.go - document model type definitions shared by readers, annotators and writers.

import (
	"path"
	"sort"
)

// Kind is the type tag of a metadata value.
type Kind string

// Metadata kinds.
const (
	KindText Kind = "text"
	KindInt  Kind = "int"
	KindDate Kind = "date"
)

// validKinds is the set of valid metadata kinds.
var validKinds = map[Kind]bool{
	KindText: true,
	KindInt:  true,
	KindDate: true,
}

// IsValid returns true if the kind is one of the known metadata kinds.
func (k Kind) IsValid() bool {
	return validKinds[k]
}

// ParseKind converts a kind name as found in source files. Unknown or empty
// names fall back to KindText.
func ParseKind(s string) Kind {
	k := Kind(s)
	if k.IsValid() {
		return k
	}
	return KindText
}

// CollectedFile is a file produced by a collector. It is never modified after
// creation.
type CollectedFile struct {
	// RelPath is the directory of the file relative to the collection root.
	RelPath string

	// Filename is the base name of the file.
	Filename string

	// MimeType is an optional hint about the content type.
	MimeType string

	// Content is the decoded text content.
	Content string
}

// Path returns the relative path of the file.
func (f *CollectedFile) Path() string {
	return path.Join(f.RelPath, f.Filename)
}

// Head returns at most the first n bytes of the content, used by readers to
// probe for format markers.
func (f *CollectedFile) Head(n int) string {
	if len(f.Content) <= n {
		return f.Content
	}
	return f.Content[:n]
}

// MetadataValue is an immutable typed metadata value.
type MetadataValue struct {
	Value string
	Kind  Kind
}

// Text creates a text metadata value.
func Text(value string) MetadataValue {
	return MetadataValue{Value: value, Kind: KindText}
}

// Metadata maps keys to values. A key that is not present is absent; a
// metadata map never holds a placeholder for a missing value.
type Metadata map[string]MetadataValue

// Clone returns a shallow copy of the metadata. Cloning nil returns an empty
// map.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Keys returns the keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether both maps hold the same keys and values.
func (m Metadata) Equal(other Metadata) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		if o, ok := other[k]; !ok || o != v {
			return false
		}
	}
	return true
}

// Utterance is a single sentence of a document.
type Utterance struct {
	// Text is the (tokenized) sentence text.
	Text string

	// ID identifies the utterance within its document.
	ID string

	// Metadata holds utterance level metadata.
	Metadata Metadata

	// Line is the line number in the source file, when known.
	Line int

	// Annotations holds raw serialized annotator results keyed by annotator.
	Annotations map[string]string
}

// NewUtterance creates an utterance with initialized maps.
func NewUtterance(text, id string, metadata Metadata, line int) *Utterance {
	if metadata == nil {
		metadata = Metadata{}
	}
	return &Utterance{
		Text:        text,
		ID:          id,
		Metadata:    metadata,
		Line:        line,
		Annotations: make(map[string]string),
	}
}

// Annotation returns the annotation stored under key.
func (u *Utterance) Annotation(key string) (string, bool) {
	if u.Annotations == nil {
		return "", false
	}
	a, ok := u.Annotations[key]
	return a, ok
}

// SetAnnotation stores an annotation under key.
func (u *Utterance) SetAnnotation(key, value string) {
	if u.Annotations == nil {
		u.Annotations = make(map[string]string)
	}
	u.Annotations[key] = value
}

// Document is one logical document found in a collected file.
type Document struct {
	// File is the file the document was read from.
	File *CollectedFile

	// Utterances in document order.
	Utterances []*Utterance

	// Metadata holds document level metadata.
	Metadata Metadata

	// Subpath distinguishes multiple logical documents inside one file.
	Subpath string
}

// NewDocument creates a document with initialized metadata.
func NewDocument(file *CollectedFile, utterances []*Utterance, metadata Metadata, subpath string) *Document {
	if metadata == nil {
		metadata = Metadata{}
	}
	return &Document{
		File:       file,
		Utterances: utterances,
		Metadata:   metadata,
		Subpath:    subpath,
	}
}

// Path returns the file path of the document including its subpath, for use
// in diagnostics.
func (d *Document) Path() string {
	p := ""
	if d.File != nil {
		p = d.File.Path()
	}
	if d.Subpath != "" {
		p = path.Join(p, d.Subpath)
	}
	return p
}
