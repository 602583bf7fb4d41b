// Package chat reads CHAT transcripts (.cha), the CHILDES transcription
// format.
//
// Header lines become document metadata, every main tier becomes an
// utterance with the speaker (and what the @ID header says about the
// speaker) as utterance metadata. Dependent tiers are ignored.
package chat

import (
	stderrors "errors"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/FocuswithJustin/corpus2alpino/core/encoding"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
	"github.com/FocuswithJustin/corpus2alpino/internal/formats/base"
	"github.com/FocuswithJustin/corpus2alpino/internal/tokenize"
	"github.com/alecthomas/participle/v2"
)

const formatName = "CHAT"

var detectConfig = base.DetectConfig{
	Extensions: []string{".cha"},
	FormatName: formatName,
}

// Fields of an @ID header, in order.
var idFields = []string{"language", "corpus", "code", "age", "sex", "group", "ses", "role", "education", "custom"}

// Headers without a value that carry no information.
var markerHeaders = map[string]bool{"begin": true, "end": true, "utf8": true, "blank": true, "new episode": true}

var (
	timeAlignment = regexp.MustCompile("\x15[^\x15]*\x15")
	codes         = regexp.MustCompile(`\[[^\]]*\]`)
	pauses        = regexp.MustCompile(`\(\.+\)`)
	scopes        = regexp.MustCompile(`[<>‹›“”]`)
	terminators   = regexp.MustCompile(`\+(?:\.\.\.|\.\.\?|!\?|/\.|/\?|//\.|//\?|"/\.|"\.|\.|,|\+|<|\^|")`)
)

// Reader decodes CHAT transcripts.
type Reader struct{}

// New creates a CHAT reader.
func New() *Reader {
	return &Reader{}
}

// TestFile reports whether the file has the .cha extension.
func (r *Reader) TestFile(file *ir.CollectedFile) bool {
	return base.DetectFile(file, detectConfig).Detected
}

// Read yields one document per transcript.
func (r *Reader) Read(file *ir.CollectedFile) iter.Seq2[*ir.Document, error] {
	return func(yield func(*ir.Document, error) bool) {
		entries, err := parseTranscript(file.Path(), file.Content)
		if err != nil {
			line := 0
			var perr participle.Error
			if stderrors.As(err, &perr) {
				line = perr.Position().Line
			}
			yield(nil, base.ParseError(formatName, file, line, "invalid transcript", err))
			return
		}

		metadata := ir.Metadata{}
		speakers := map[string]ir.Metadata{}
		var utterances []*ir.Utterance

		for _, e := range entries {
			switch e.kind {
			case '@':
				key := strings.ToLower(e.label)
				if markerHeaders[key] || e.value == "" {
					continue
				}
				if key == "id" {
					code, fields := parseID(e.value)
					speakers[code] = fields
					continue
				}
				ir.AppendValue(metadata, key, e.value)

			case '*':
				text := Clean(e.value)
				if !hasWords(text) {
					continue
				}
				m := ir.Metadata{"speaker": ir.Text(e.label)}
				for k, v := range speakers[e.label] {
					m[k] = v
				}
				id := strconv.Itoa(len(utterances) + 1)
				utterances = append(utterances, ir.NewUtterance(text, id, m, e.line))
			}
		}

		yield(ir.NewDocument(file, utterances, metadata, ""), nil)
	}
}

// parseID splits an @ID header into the speaker code and its non-empty
// fields, except the code itself.
func parseID(value string) (string, ir.Metadata) {
	parts := strings.Split(value, "|")
	m := ir.Metadata{}
	code := ""
	for i, part := range parts {
		if i >= len(idFields) {
			break
		}
		part = strings.TrimSpace(part)
		if idFields[i] == "code" {
			code = part
			continue
		}
		if part != "" {
			m[idFields[i]] = ir.Text(part)
		}
	}
	return code, m
}

// Clean turns a main tier into plain tokenized text: codes, scope markers,
// time alignment, fillers and untranscribed material are dropped, shortened
// words are completed and special terminators become plain punctuation.
func Clean(text string) string {
	text = timeAlignment.ReplaceAllString(text, " ")
	text = codes.ReplaceAllString(text, " ")
	text = pauses.ReplaceAllString(text, " ")
	text = scopes.ReplaceAllString(text, " ")
	text = terminators.ReplaceAllStringFunc(text, func(t string) string {
		if strings.Contains(t, "?") {
			return " ?"
		}
		if strings.Contains(t, "!") {
			return " !"
		}
		if strings.HasSuffix(t, ".") {
			return " ."
		}
		return " "
	})

	var words []string
	for _, word := range strings.Fields(text) {
		word = cleanWord(word)
		if word == "" {
			continue
		}
		for _, tok := range tokenize.Tokens(word) {
			words = append(words, encoding.EscapeWord(tok))
		}
	}
	return strings.Join(words, " ")
}

func hasWords(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

func cleanWord(word string) string {
	switch {
	case strings.HasPrefix(word, "&"), word == "0":
		return ""
	case word[0] == '0' && (word[1] < '0' || word[1] > '9'):
		return ""
	case word == "xxx", word == "yyy", word == "www", word == "xx", word == "yy":
		return ""
	}
	if at := strings.IndexByte(word, '@'); at > 0 {
		word = word[:at]
	}
	word = strings.NewReplacer("(", "", ")", "", "_", " ", "+", "", ":", "", "^", "").Replace(word)
	return strings.TrimSpace(word)
}
