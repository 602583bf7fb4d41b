// Package paqu writes documents in the PaQu plain text format.
//
// Metadata is written differentially: a document block first, then before
// each sentence only the entries that changed since the previous sentence.
//
//	##META text title = Verslag
//
//	##META text speaker = CHI
//	1|ik wil koek
//
//	##META text speaker =
//	2|nee
package paqu

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/internal/converter"
)

// Suffix is the extension of PaQu output files.
const Suffix = ".txt"

// Writer is the PaQu encoder. It keeps no state between documents.
type Writer struct{}

// New creates a PaQu writer.
func New() *Writer {
	return &Writer{}
}

// Write encodes doc into target.
func (w *Writer) Write(doc *ir.Document, target converter.Target) error {
	if len(doc.Metadata) > 0 {
		block := MetadataLines(doc.Metadata, nil)
		if err := target.Write(doc, strings.Join(block, "\n")+"\n\n", "", Suffix); err != nil {
			return err
		}
	}

	prev := doc.Metadata.Clone()
	for _, u := range doc.Utterances {
		effective := ir.MergeChild(doc.Metadata, u.Metadata)
		changes := Delta(prev, effective)

		var sb strings.Builder
		for _, line := range MetadataLines(changes, prev) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s|%s\n\n", u.ID, u.Text)
		if err := target.Write(doc, sb.String(), "", Suffix); err != nil {
			return err
		}

		for k, v := range changes {
			prev[k] = v
		}
	}
	return nil
}

// Delta returns the effective metadata plus an empty text value for every
// key of prev that is no longer present.
func Delta(prev, effective ir.Metadata) ir.Metadata {
	out := effective.Clone()
	for k := range prev {
		if _, ok := effective[k]; !ok {
			out[k] = ir.Text("")
		}
	}
	return out
}

// MetadataLines renders the entries of m whose value differs from prev,
// sorted by key. A nil prev renders every entry.
func MetadataLines(m, prev ir.Metadata) []string {
	var lines []string
	for _, k := range m.Keys() {
		v := m[k]
		if p, ok := prev[k]; ok && p.Value == v.Value {
			continue
		}
		lines = append(lines, fmt.Sprintf("##META %s %s = %s", v.Kind, k, v.Value))
	}
	return lines
}
