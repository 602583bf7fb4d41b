// Package paqu reads PaQu plain text: running text or id|sentence lines,
// optionally annotated with ##META lines.
//
// Metadata lines before the first blank line belong to the whole file. A
// metadata line following text starts a new document.
package paqu

import (
	"bufio"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/internal/formats/base"
	"github.com/FocuswithJustin/corpus2alpino/internal/tokenize"
)

const formatName = "PaQu"

var detectConfig = base.DetectConfig{
	Extensions: []string{".txt"},
	FormatName: formatName,
}

var (
	metadataLine = regexp.MustCompile(`^##META (\S+) (\S+) ?= ?(.*)$`)
	idLine       = regexp.MustCompile(`^(\S+)\|(.*)$`)
)

// Keys whose value names a document within the file.
var subpathKeys = []string{"id", "messageid"}

// Reader decodes PaQu text files.
type Reader struct{}

// New creates a PaQu reader.
func New() *Reader {
	return &Reader{}
}

// TestFile reports whether the file has the .txt extension.
func (r *Reader) TestFile(file *ir.CollectedFile) bool {
	return base.DetectFile(file, detectConfig).Detected
}

type textLine struct {
	id   string
	text string
	line int
}

// Read yields the documents of the file in order.
func (r *Reader) Read(file *ir.CollectedFile) iter.Seq2[*ir.Document, error] {
	return func(yield func(*ir.Document, error) bool) {
		var (
			fileMetadata ir.Metadata
			metadata     = ir.Metadata{}
			lines        []textLine
			header       = true
		)

		emit := func() bool {
			doc := ir.NewDocument(file, utterances(metadata, lines), ir.MergeChild(fileMetadata, metadata), subpath(metadata))
			metadata, lines = ir.Metadata{}, nil
			return yield(doc, nil)
		}

		scanner := bufio.NewScanner(strings.NewReader(file.Content))
		scanner.Buffer(make([]byte, 64*1024), len(file.Content)+1)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				if header && len(metadata) > 0 {
					fileMetadata, metadata = metadata, ir.Metadata{}
				}
				header = false
				continue
			}

			if m := metadataLine.FindStringSubmatch(line); m != nil {
				if len(lines) > 0 && !emit() {
					return
				}
				metadata[m[2]] = ir.MetadataValue{Value: m[3], Kind: ir.ParseKind(m[1])}
				continue
			}

			if m := idLine.FindStringSubmatch(line); m != nil {
				lines = append(lines, textLine{id: m[1], text: m[2], line: lineNo})
			} else {
				lines = append(lines, textLine{text: line, line: lineNo})
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, base.ParseError(formatName, file, lineNo, "unreadable text", err))
			return
		}

		if len(lines) > 0 {
			emit()
		}
	}
}

// utterances splits every text line into sentences. Sentence n of a line
// with id X gets id X-n, counting from 0.
func utterances(metadata ir.Metadata, lines []textLine) []*ir.Utterance {
	ids := base.NewUniqueIDs()
	var result []*ir.Utterance
	for i, l := range lines {
		id := l.id
		if id == "" {
			if uttid, ok := metadata["uttid"]; ok {
				id = uttid.Value
			} else {
				id = strconv.Itoa(i)
			}
		}
		for j, sentence := range tokenize.Sentences(l.text) {
			uid := ids.Next(id + "-" + strconv.Itoa(j))
			result = append(result, ir.NewUtterance(sentence, uid, metadata.Clone(), l.line))
		}
	}
	return result
}

func subpath(metadata ir.Metadata) string {
	for _, key := range subpathKeys {
		if v, ok := metadata[key]; ok {
			return v.Value
		}
	}
	return ""
}
