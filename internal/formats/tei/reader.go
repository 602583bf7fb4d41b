// Package tei reads TEI XML documents.
//
// Every lowest division (a div without nested divs, or the body when there
// are none) is split into sentences. Metadata flows down from the divisions
// and up from the inline elements of each sentence:
//
//   - nested divisions merge parent to child with ir.MergeChild
//   - inline elements within one sentence combine with ir.MergeSibling
//   - the division's metadata is merged over the sentence's, so structural
//     keys of the division win
//
// Words with a lemma and a part-of-speech tag are passed to the parser as
// lexical assignments and quotations (<q>) are put between quotes.
package tei

import (
	"iter"
	"strconv"
	"strings"
	"unicode"

	"github.com/FocuswithJustin/corpus2alpino/core/encoding"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/core/xml"
	"github.com/FocuswithJustin/corpus2alpino/internal/formats/base"
	"github.com/FocuswithJustin/corpus2alpino/internal/tokenize"
)

const (
	formatName = "TEI"
	tagKey     = "tei-tag"
)

var detectConfig = base.DetectConfig{
	ContentMarkers: []string{"<TEI"},
	FormatName:     formatName,
}

// Elements that end the current sentence.
var blocks = map[string]bool{
	"p": true, "s": true, "l": true, "ab": true, "head": true, "item": true, "u": true, "lg": true,
}

// Elements whose content is not part of the running text.
var skipped = map[string]bool{
	"note": true, "fw": true, "teiHeader": true,
}

// Reader decodes TEI documents.
type Reader struct{}

// New creates a TEI reader.
func New() *Reader {
	return &Reader{}
}

// TestFile reports whether a TEI element starts near the top of the file.
func (r *Reader) TestFile(file *ir.CollectedFile) bool {
	return base.DetectFile(file, detectConfig).Detected
}

// Read yields one document per TEI element. When a file holds several, each
// document's subpath is its id or position.
func (r *Reader) Read(file *ir.CollectedFile) iter.Seq2[*ir.Document, error] {
	return func(yield func(*ir.Document, error) bool) {
		parsed, err := xml.ParseString(file.Content)
		if err != nil {
			yield(nil, base.ParseError(formatName, file, 0, "malformed XML", err))
			return
		}
		root := parsed.Root()
		if root == nil {
			yield(nil, base.ParseError(formatName, file, 0, "empty document", nil))
			return
		}

		docs := []*xml.Node{root}
		if root.Name() != "TEI" {
			docs = root.Descendants("TEI")
		}
		if len(docs) == 0 {
			yield(nil, base.ParseError(formatName, file, 0, "no TEI element", nil))
			return
		}

		for i, tei := range docs {
			doc := readDocument(file, tei)
			if len(docs) > 1 {
				doc.Subpath = tei.Attr("id")
				if doc.Subpath == "" {
					doc.Subpath = strconv.Itoa(i + 1)
				}
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

func readDocument(file *ir.CollectedFile, tei *xml.Node) *ir.Document {
	metadata := attributes(tei)
	if header := tei.Child("teiHeader"); header != nil {
		for _, title := range header.Descendants("title") {
			if text := xml.CollapseSpace(title.Text()); text != "" {
				metadata["title"] = ir.Text(text)
				break
			}
		}
	}

	ids := base.NewUniqueIDs()
	var utterances []*ir.Utterance
	for _, div := range lowestDivisions(tei) {
		for _, s := range sentences(div.node) {
			m := ir.MergeChild(div.metadata, s.metadata)
			utterances = append(utterances, ir.NewUtterance(s.text, ids.Next(sentenceID(file, metadata, m)), m, 0))
		}
	}
	return ir.NewDocument(file, utterances, metadata, "")
}

// sentenceID picks the document id, the sentence id or the filename.
func sentenceID(file *ir.CollectedFile, doc, sentence ir.Metadata) string {
	if id, ok := doc["id"]; ok {
		return encoding.EscapeID(id.Value)
	}
	if id, ok := sentence["id"]; ok {
		return encoding.EscapeID(id.Value)
	}
	return file.Filename
}

type division struct {
	node     *xml.Node
	metadata ir.Metadata
}

// lowestDivisions returns the divisions without nested divisions, with the
// metadata of their ancestors merged in.
func lowestDivisions(tei *xml.Node) []division {
	text := tei.Child("text")
	if text == nil {
		return nil
	}
	body := text.Child("body")
	if body == nil {
		body = text
	}

	var result []division
	var walk func(n *xml.Node, inherited ir.Metadata) bool
	walk = func(n *xml.Node, inherited ir.Metadata) bool {
		found := false
		for _, child := range n.Children() {
			if child.Name() != "div" {
				if walk(child, inherited) {
					found = true
				}
				continue
			}
			found = true
			m := ir.MergeChild(inherited, elementMetadata(child))
			if !walk(child, m) {
				result = append(result, division{node: child, metadata: m})
			}
		}
		return found
	}
	if !walk(body, ir.Metadata{}) {
		result = append(result, division{node: body, metadata: ir.Metadata{}})
	}
	return result
}

type sentence struct {
	text     string
	metadata ir.Metadata
}

type token struct {
	text     string
	metadata ir.Metadata
}

// splitter collects tokens into sentences.
type splitter struct {
	done    [][]token
	current []token
}

func (s *splitter) add(tok token, terminal bool) {
	s.current = append(s.current, tok)
	if terminal {
		s.end()
	}
}

// addClosing adds a closing quote, moving it back into the previous sentence
// when that sentence has just ended.
func (s *splitter) addClosing(tok token) {
	if len(s.current) == 0 && len(s.done) > 0 {
		last := len(s.done) - 1
		s.done[last] = append(s.done[last], tok)
		return
	}
	s.current = append(s.current, tok)
}

func (s *splitter) end() {
	if len(s.current) > 0 {
		s.done = append(s.done, s.current)
		s.current = nil
	}
}

func (s *splitter) walk(n *xml.Node, inherited ir.Metadata) {
	for _, child := range n.Nodes() {
		if child.IsText() {
			for _, tok := range tokenize.Tokens(child.Text()) {
				s.add(token{encoding.EscapeWord(tok), inherited}, tokenize.IsTerminal(tok))
			}
			continue
		}

		name := child.Name()
		if skipped[name] {
			continue
		}
		m := ir.MergeChild(inherited, elementMetadata(child))

		switch name {
		case "w":
			if lexical, ok := lexicalToken(child, m); ok {
				s.add(lexical, false)
			} else {
				s.walk(child, m)
			}
		case "q":
			s.add(token{`"`, m}, false)
			s.walk(child, m)
			s.addClosing(token{`"`, m})
		default:
			s.walk(child, m)
		}

		if blocks[name] {
			s.end()
		}
	}
}

// lexicalToken renders a word with a lemma and a pos (or type) attribute.
func lexicalToken(w *xml.Node, m ir.Metadata) (token, bool) {
	lemma, ok := m["lemma"]
	if !ok {
		return token{}, false
	}
	posKey := "pos"
	if _, ok := m[posKey]; !ok {
		posKey = "type"
	}
	pos, ok := m[posKey]
	if !ok {
		return token{}, false
	}
	word := xml.CollapseSpace(w.Text())
	if word == "" {
		return token{}, false
	}

	rest := m.Clone()
	delete(rest, "lemma")
	delete(rest, posKey)
	return token{encoding.FormatFolia(lemma.Value, pos.Value, word), rest}, true
}

// sentences splits the running text of a division.
func sentences(div *xml.Node) []sentence {
	s := &splitter{}
	s.walk(div, ir.Metadata{})
	s.end()

	var result []sentence
	for _, tokens := range s.done {
		texts := make([]string, 0, len(tokens))
		metadata := ir.Metadata{}
		for _, tok := range tokens {
			texts = append(texts, tok.text)
			metadata = ir.MergeSibling(metadata, tok.metadata)
		}
		text := strings.Join(texts, " ")
		if !hasWords(text) {
			continue
		}
		result = append(result, sentence{text: text, metadata: metadata})
	}
	return result
}

// elementMetadata returns the attributes of an element plus its tag name.
func elementMetadata(n *xml.Node) ir.Metadata {
	m := attributes(n)
	m[tagKey] = ir.Text(n.Name())
	return m
}

// attributes returns the attributes of an element as metadata. Repeated
// names are combined.
func attributes(n *xml.Node) ir.Metadata {
	m := ir.Metadata{}
	for _, attr := range n.Attributes() {
		ir.AppendValue(m, attr.Name, attr.Value)
	}
	return m
}

func hasWords(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
