// Package enrich adds attributes to the nodes of Alpino parse trees using a
// table of rules.
//
// The rules file is delimited text (comma, semicolon or tab). Header columns
// starting with @ match node attributes, the other columns are assigned.
// For example this file adds penn_pos="NNS" to <node pos="noun" num="pl"/>:
//
//	@pos,@num,penn_pos
//	noun,pl,NNS
//	noun,,NN
//
// Empty cells are left out of the rule. Rules are tried in file order and the
// first matching rule is applied to a node.
package enrich

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/FocuswithJustin/corpus2alpino/core/alpino"
	"github.com/FocuswithJustin/corpus2alpino/core/errors"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/core/xml"
	"github.com/FocuswithJustin/corpus2alpino/internal/logging"
)

// Rule assigns attributes to the nodes it matches.
type Rule struct {
	Matchers  map[string]string
	Assigners map[string]string
}

// Matches reports whether every matcher attribute of the node is absent or
// equal to the matcher value. A rule without matchers matches every node.
func (r Rule) Matches(node *xml.Node) bool {
	for key, want := range r.Matchers {
		if got, ok := node.LookupAttr(key); ok && got != want {
			return false
		}
	}
	return true
}

// Apply assigns the rule's attributes when the node matches.
func (r Rule) Apply(node *xml.Node) bool {
	if !r.Matches(node) {
		return false
	}
	keys := make([]string, 0, len(r.Assigners))
	for k := range r.Assigners {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		node.SetAttr(k, r.Assigners[k])
	}
	return true
}

// Annotator enriches parse trees in place.
type Annotator struct {
	rules []Rule
}

// New creates an annotator from rules.
func New(rules []Rule) *Annotator {
	return &Annotator{rules: rules}
}

// Load reads rules from a file. An unreadable file or one without a header
// is a configuration error.
func Load(path string) (*Annotator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewConfig("enrich", "cannot open rules file", errors.NewIO("open", path, err))
	}
	defer f.Close()

	rules, err := ParseRules(f)
	if err != nil {
		return nil, errors.NewConfig("enrich", "cannot read rules file "+path, err)
	}
	return New(rules), nil
}

// ParseRules reads a rules table.
func ParseRules(r io.Reader) ([]Rule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(data)

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = sniffDelimiter(text)
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewParse("rules", "", "missing header")
	}
	if err != nil {
		return nil, &errors.ParseError{Format: "rules", Message: "invalid header", Err: err}
	}
	trimCells(headers)

	var rules []Rule
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &errors.ParseError{Format: "rules", Message: "invalid row", Err: err}
		}
		trimCells(row)
		rule := Rule{Matchers: map[string]string{}, Assigners: map[string]string{}}
		for i, header := range headers {
			if i >= len(row) || row[i] == "" {
				continue
			}
			if name, ok := strings.CutPrefix(header, "@"); ok {
				rule.Matchers[name] = row[i]
			} else {
				rule.Assigners[header] = row[i]
			}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// trimCells strips surrounding whitespace from every cell. The csv reader's
// TrimLeadingSpace would swallow empty tab separated cells.
func trimCells(cells []string) {
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
}

// sniffDelimiter picks the most frequent candidate in the header line.
func sniffDelimiter(text string) rune {
	header, _, _ := strings.Cut(text, "\n")
	best, count := ',', strings.Count(header, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(header, string(d)); n > count {
			best, count = d, n
		}
	}
	return best
}

// Rules returns the loaded rules in order.
func (a *Annotator) Rules() []Rule {
	return a.rules
}

// Annotate enriches the tree of every utterance. Utterances without a tree
// are logged and left alone.
func (a *Annotator) Annotate(ctx context.Context, doc *ir.Document) {
	for _, u := range doc.Utterances {
		tree, ok := u.Annotation(alpino.AnnotationKey)
		if !ok {
			logging.UtteranceError(ctx, "enrich", doc.Path(), u.ID, u.Text,
				errors.NewNotFound("annotation", alpino.AnnotationKey))
			continue
		}
		enriched, err := a.enrich(tree)
		if err != nil {
			logging.UtteranceError(ctx, "enrich", doc.Path(), u.ID, u.Text, err)
			continue
		}
		u.SetAnnotation(alpino.AnnotationKey, enriched)
	}
}

func (a *Annotator) enrich(tree string) (string, error) {
	parsed, err := xml.ParseString(tree)
	if err != nil {
		return "", err
	}
	modified := false
	for _, node := range parsed.Descendants("node") {
		for _, rule := range a.rules {
			if rule.Apply(node) {
				modified = true
				break
			}
		}
	}
	if !modified {
		return tree, nil
	}
	return parsed.Serialize(), nil
}
