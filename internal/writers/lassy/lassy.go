// Package lassy writes Alpino parse trees as Lassy XML, re-embedding the
// document and utterance metadata into each tree.
package lassy

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/FocuswithJustin/corpus2alpino/core/alpino"
	"github.com/FocuswithJustin/corpus2alpino/core/encoding"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/internal/converter"
	"github.com/FocuswithJustin/corpus2alpino/internal/logging"
)

// Suffix is the extension of Lassy output files.
const Suffix = ".xml"

const (
	treebankStart = `<?xml version="1.0" encoding="UTF-8"?>` + "\n<treebank>\n"
	treebankEnd   = "</treebank>\n"
)

var metaName = regexp.MustCompile(`<meta .*name="([^"]+)".*?/>`)

// Writer is the Lassy encoder.
type Writer struct {
	// Merge writes all trees of a document into one treebank instead of one
	// file per tree.
	Merge bool
}

// New creates a Lassy writer.
func New(merge bool) *Writer {
	return &Writer{Merge: merge}
}

// Write encodes doc into target. Utterances without a parse are skipped.
func (w *Writer) Write(doc *ir.Document, target converter.Target) error {
	if w.Merge {
		if err := target.Write(doc, treebankStart, "", Suffix); err != nil {
			return err
		}
	}

	for i, u := range doc.Utterances {
		annotation, ok := u.Annotation(alpino.AnnotationKey)
		if !ok {
			logging.UtteranceSkipped(context.Background(), "lassy", doc.Path(), u.ID, "no parse")
			continue
		}
		metadata := ir.MergeChild(doc.Metadata, u.Metadata)

		var err error
		if w.Merge {
			err = target.Write(doc, Render(annotation, metadata, true)+"\n", "", Suffix)
		} else {
			err = target.Write(doc, Render(annotation, metadata, false), fmt.Sprintf("%d.xml", i+1), "")
		}
		if err != nil {
			return err
		}
	}

	if w.Merge {
		return target.Write(doc, treebankEnd, "", Suffix)
	}
	return nil
}

// Render injects metadata into a tree. With stripHeader the XML declaration
// line and trailing whitespace are removed so the tree can be embedded.
//
// Existing <meta> entries inside a <metadata> block are overwritten by name.
// Remaining entries are added before </metadata>, or as a new block before
// the closing root line when the tree has none. An empty <metadata/> line is
// replaced by a full block.
func Render(annotation string, metadata ir.Metadata, stripHeader bool) string {
	if len(metadata) == 0 && !stripHeader {
		return annotation
	}

	lines := strings.Split(strings.TrimRight(annotation, "\n"), "\n")
	if stripHeader {
		if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "<?xml") {
			lines = lines[1:]
		}
		if len(lines) > 0 {
			lines[len(lines)-1] = strings.TrimRightFunc(lines[len(lines)-1], isSpace)
		}
	}
	if len(metadata) == 0 || len(lines) == 0 {
		return strings.Join(lines, "\n")
	}

	pending := metadata.Clone()
	blockStart, blockEnd, empty := -1, -1, false
	for i, line := range lines {
		if blockStart < 0 {
			if strings.Contains(line, "<metadata") {
				blockStart = i
				trimmed := strings.TrimSpace(line)
				if strings.HasSuffix(trimmed, "/>") || trimmed == "<metadata></metadata>" {
					empty = true
					break
				}
			}
			continue
		}
		if strings.Contains(line, "</metadata>") {
			blockEnd = i
			break
		}
		m := metaName.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if v, ok := pending[m[1]]; ok {
			lines[i] = indentOf(line) + metaLine(m[1], v)
			delete(pending, m[1])
		}
	}
	if len(pending) == 0 {
		return strings.Join(lines, "\n")
	}

	var insert []string
	at, skip := blockEnd, 0
	indent := "  "
	if empty {
		at, skip = blockStart, 1
		indent = indentOf(lines[blockStart])
	} else if at < 0 {
		at = len(lines) - 1
	}
	if blockEnd < 0 {
		insert = append(insert, indent+"<metadata>")
	}
	for _, k := range pending.Keys() {
		insert = append(insert, indent+"  "+metaLine(k, pending[k]))
	}
	if blockEnd < 0 {
		insert = append(insert, indent+"</metadata>")
	}

	out := make([]string, 0, len(lines)+len(insert))
	out = append(out, lines[:at]...)
	out = append(out, insert...)
	out = append(out, lines[at+skip:]...)
	return strings.Join(out, "\n")
}

func metaLine(name string, v ir.MetadataValue) string {
	return fmt.Sprintf(`<meta type="%s" name="%s" value="%s"/>`, v.Kind, encoding.EscapeXMLAttr(name), encoding.EscapeMetaValue(v.Value))
}

func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
