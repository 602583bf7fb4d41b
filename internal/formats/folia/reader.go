// Package folia reads FoLiA XML documents.
//
// Each sentence (<s>) becomes an utterance. Words that carry both a lemma
// and a part-of-speech tag are passed to the parser as lexical assignments,
// corrected words as lexical additions; other words are escaped.
package folia

import (
	"iter"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/corpus2alpino/core/encoding"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/core/xml"
	"github.com/FocuswithJustin/corpus2alpino/internal/formats/base"
	"github.com/FocuswithJustin/corpus2alpino/internal/tokenize"
)

const formatName = "FoLiA"

var detectConfig = base.DetectConfig{
	ContentMarkers: []string{"<FoLiA"},
	FormatName:     formatName,
}

// Reader decodes FoLiA documents.
type Reader struct{}

// New creates a FoLiA reader.
func New() *Reader {
	return &Reader{}
}

// TestFile reports whether the FoLiA root element starts near the top of the
// file.
func (r *Reader) TestFile(file *ir.CollectedFile) bool {
	return base.DetectFile(file, detectConfig).Detected
}

// Read yields one document per file.
func (r *Reader) Read(file *ir.CollectedFile) iter.Seq2[*ir.Document, error] {
	return func(yield func(*ir.Document, error) bool) {
		doc, err := xml.ParseString(file.Content)
		if err != nil {
			yield(nil, base.ParseError(formatName, file, 0, "malformed XML", err))
			return
		}
		root := doc.Root()
		if root == nil || root.Name() != "FoLiA" {
			yield(nil, base.ParseError(formatName, file, 0, "no FoLiA root element", nil))
			return
		}

		ids := base.NewUniqueIDs()
		var utterances []*ir.Utterance
		for i, s := range root.Descendants("s") {
			text := sentenceText(s)
			if text == "" {
				continue
			}
			id := s.Attr("id")
			if id == "" {
				id = base.Stem(file.Filename) + "." + strconv.Itoa(i+1)
			}
			utterances = append(utterances, ir.NewUtterance(text, ids.Next(encoding.EscapeID(id)), sentenceMetadata(s), i+1))
		}

		yield(ir.NewDocument(file, utterances, Metadata(root), ""), nil)
	}
}

// Metadata reads the native metadata entries of the document.
func Metadata(root *xml.Node) ir.Metadata {
	m := ir.Metadata{}
	block := root.Child("metadata")
	if block == nil {
		return m
	}
	for _, meta := range block.Descendants("meta") {
		if key := meta.Attr("id"); key != "" {
			m[key] = ir.Text(xml.CollapseSpace(meta.Text()))
		}
	}
	return m
}

func sentenceMetadata(s *xml.Node) ir.Metadata {
	m := ir.Metadata{}
	if speaker := s.Attr("speaker"); speaker != "" {
		m["speaker"] = ir.Text(speaker)
	}
	return m
}

// sentenceText renders the words of a sentence. A sentence without word
// elements falls back to its own tokenized text.
func sentenceText(s *xml.Node) string {
	words := s.Descendants("w")
	if len(words) == 0 {
		var escaped []string
		for _, tok := range tokenize.Tokens(text(s)) {
			escaped = append(escaped, encoding.EscapeWord(tok))
		}
		return strings.Join(escaped, " ")
	}

	var parts []string
	for _, w := range words {
		if part := wordString(w); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

func wordString(w *xml.Node) string {
	word := text(w)

	if c := w.Child("correction"); c != nil {
		corrected := text(c.Child("new"))
		original := text(c.Child("original"))
		if word == "" {
			word = corrected
		}
		if corrected != "" && original != "" && corrected != original {
			return encoding.FormatAddLex(corrected, original)
		}
	}
	if word == "" {
		return ""
	}

	lemma := classOf(w.Child("lemma"))
	pos := classOf(w.Child("pos"))
	if lemma != "" && pos != "" {
		return encoding.FormatFolia(lemma, pos, word)
	}
	return encoding.EscapeWord(word)
}

// text returns the current text content (<t> without a class, or with
// class "current") of an element.
func text(n *xml.Node) string {
	if n == nil {
		return ""
	}
	for _, child := range n.Children() {
		if child.Name() != "t" {
			continue
		}
		if class, ok := child.LookupAttr("class"); ok && class != "current" {
			continue
		}
		return xml.CollapseSpace(child.Text())
	}
	return ""
}

func classOf(n *xml.Node) string {
	if n == nil {
		return ""
	}
	return n.Attr("class")
}
