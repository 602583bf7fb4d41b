// Package alpino attaches Alpino parse trees to utterances.
package alpino

import (
	"context"
	"strings"

	"github.com/FocuswithJustin/corpus2alpino/core/alpino"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/internal/logging"
)

// Metadata keys describing the parser that produced a tree.
const (
	VersionKey     = "alpino_version"
	VersionDateKey = "alpino_version_date"
)

// timeAlignment is the CHAT time alignment marker. It is not allowed in XML
// and is replaced by a middle dot.
const timeAlignment = "\x15"

// Outcome is the result of parsing one utterance.
type Outcome struct {
	Utterance *ir.Utterance
	Err       error
}

// Report lists the utterances a single Annotate call tried to parse.
type Report struct {
	Outcomes []Outcome
}

// Failures returns the failed outcomes.
func (r Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Annotator parses every utterance that has no tree yet.
type Annotator struct {
	parser alpino.Parser
}

// New creates an annotator using parser.
func New(parser alpino.Parser) *Annotator {
	return &Annotator{parser: parser}
}

// Annotate parses the utterances of doc. Failures are logged and the
// utterance is left without a tree.
func (a *Annotator) Annotate(ctx context.Context, doc *ir.Document) {
	a.AnnotateReport(ctx, doc)
}

// AnnotateReport is Annotate returning the per-utterance outcomes.
func (a *Annotator) AnnotateReport(ctx context.Context, doc *ir.Document) Report {
	var report Report
	info := a.parser.Info()

	for _, u := range doc.Utterances {
		if _, ok := u.Annotation(alpino.AnnotationKey); ok {
			continue
		}

		xml, err := a.parser.ParseLine(ctx, u.Text, u.ID)
		report.Outcomes = append(report.Outcomes, Outcome{Utterance: u, Err: err})
		if err != nil {
			logging.UtteranceError(ctx, "alpino", doc.Path(), u.ID, u.Text, err,
				"subpath", doc.Subpath)
			continue
		}

		u.SetAnnotation(alpino.AnnotationKey, strings.ReplaceAll(xml, timeAlignment, "·"))
		if info.Known() {
			if u.Metadata == nil {
				u.Metadata = ir.Metadata{}
			}
			u.Metadata[VersionKey] = ir.Text(info.Version)
			if !info.VersionDate.IsZero() {
				u.Metadata[VersionDateKey] = ir.MetadataValue{
					Value: info.VersionDate.Format("2006-01-02"),
					Kind:  ir.KindDate,
				}
			}
		}
	}
	return report
}
