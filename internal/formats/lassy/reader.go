// Package lassy reads Lassy/Alpino treebank XML. The existing parse is kept
// as the utterance annotation, so these files can be re-encoded without
// parsing them again.
package lassy

import (
	"iter"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/corpus2alpino/core/alpino"
	"github.com/FocuswithJustin/corpus2alpino/core/encoding"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/core/xml"
	"github.com/FocuswithJustin/corpus2alpino/internal/formats/base"
)

const (
	formatName  = "Lassy"
	declaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
)

var detectConfig = base.DetectConfig{
	ContentMarkers: []string{"<alpino_ds"},
	FormatName:     formatName,
}

// Reader decodes single trees (<alpino_ds>) and treebanks (<treebank>).
type Reader struct{}

// New creates a Lassy reader.
func New() *Reader {
	return &Reader{}
}

// TestFile reports whether an Alpino tree starts near the top of the file.
func (r *Reader) TestFile(file *ir.CollectedFile) bool {
	return base.DetectFile(file, detectConfig).Detected
}

// Read yields a single document holding one utterance per tree.
func (r *Reader) Read(file *ir.CollectedFile) iter.Seq2[*ir.Document, error] {
	return func(yield func(*ir.Document, error) bool) {
		doc, err := xml.ParseString(file.Content)
		if err != nil {
			yield(nil, base.ParseError(formatName, file, 0, "malformed XML", err))
			return
		}

		trees := doc.Descendants("alpino_ds")
		if root := doc.Root(); root != nil && root.Name() == "alpino_ds" {
			trees = []*xml.Node{root}
		}
		if len(trees) == 0 {
			yield(nil, base.ParseError(formatName, file, 0, "no alpino_ds element", nil))
			return
		}

		ids := base.NewUniqueIDs()
		utterances := make([]*ir.Utterance, 0, len(trees))
		for i, tree := range trees {
			u, err := utterance(tree)
			if err != nil {
				yield(nil, base.ParseError(formatName, file, 0, "tree "+strconv.Itoa(i+1)+": "+err.Error(), nil))
				return
			}
			u.ID = ids.Next(u.ID)
			utterances = append(utterances, u)
		}

		yield(ir.NewDocument(file, utterances, nil, ""), nil)
	}
}

type missingError string

func (e missingError) Error() string { return "missing " + string(e) }

// utterance turns a tree into an utterance. The metadata block moves into
// the utterance metadata and is dropped from the stored tree.
func utterance(tree *xml.Node) (*ir.Utterance, error) {
	sentence := tree.Child("sentence")
	if sentence == nil {
		return nil, missingError("sentence")
	}
	sentid, ok := sentence.LookupAttr("sentid")
	if !ok {
		return nil, missingError("sentid")
	}
	line, _ := strconv.Atoi(sentid)

	u := ir.NewUtterance(sentence.Text(), encoding.EscapeID(sentid), Metadata(tree), line)
	if block := tree.Child("metadata"); block != nil {
		block.Remove()
	}
	u.SetAnnotation(alpino.AnnotationKey, declaration+strings.TrimSpace(tree.XML()))
	return u, nil
}

// Metadata reads the <meta> entries of a tree.
func Metadata(tree *xml.Node) ir.Metadata {
	m := ir.Metadata{}
	block := tree.Child("metadata")
	if block == nil {
		return m
	}
	for _, meta := range block.Children() {
		if meta.Name() != "meta" {
			continue
		}
		name, ok := meta.LookupAttr("name")
		if !ok {
			continue
		}
		m[name] = ir.MetadataValue{Value: meta.Attr("value"), Kind: ir.ParseKind(meta.Attr("type"))}
	}
	return m
}
