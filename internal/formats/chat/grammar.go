package chat

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// transcript is a parsed CHAT file: one entry per line, in file order.
type transcript struct {
	Lines []*line `@@*`
}

// line is a single CHAT line. Exactly one field is set.
type line struct {
	Pos lexer.Position

	Header       string `  @Header`
	Main         string `| @Main`
	Dependent    string `| @Dependent`
	Continuation string `| @Continuation`
	Other        string `| @Other`
}

// chatLexer splits CHAT into lines by their first character. Tabs inside a
// line are part of its token, so only a tab at the start of a line
// produces a Continuation.
var chatLexer = lexer.MustSimple([]lexer.SimpleRule{
	// @Begin, @Participants:	CHI Child
	{Name: "Header", Pattern: `@[^\r\n]*`},
	// *CHI:	ik wil koek .
	{Name: "Main", Pattern: `\*[^:\r\n]+:[^\r\n]*`},
	// %mor:	pro|ik v|wil n|koek .
	{Name: "Dependent", Pattern: `%[^:\r\n]+:[^\r\n]*`},
	// tab-indented continuation of the previous line
	{Name: "Continuation", Pattern: `\t[^\r\n]*`},
	{Name: "Whitespace", Pattern: `[ ]+`},
	{Name: "Newline", Pattern: `\r?\n`},
	{Name: "Other", Pattern: `[^\r\n]+`},
})

var chatParser = participle.MustBuild[transcript](
	participle.Lexer(chatLexer),
	participle.Elide("Whitespace", "Newline"),
)

// entry is a logical line with its continuations joined.
type entry struct {
	kind  byte // '@', '*' or '%'
	label string
	value string
	line  int
}

// parseTranscript parses CHAT text into logical entries.
func parseTranscript(filename, content string) ([]entry, error) {
	t, err := chatParser.ParseString(filename, content)
	if err != nil {
		return nil, err
	}

	var entries []entry
	for _, l := range t.Lines {
		switch {
		case l.Continuation != "":
			if len(entries) > 0 {
				last := &entries[len(entries)-1]
				last.value = strings.TrimSpace(last.value + " " + strings.TrimSpace(l.Continuation))
			}
		case l.Header != "":
			entries = append(entries, split('@', l.Header, l.Pos.Line))
		case l.Main != "":
			entries = append(entries, split('*', l.Main, l.Pos.Line))
		case l.Dependent != "":
			entries = append(entries, split('%', l.Dependent, l.Pos.Line))
		}
	}
	return entries, nil
}

func split(kind byte, text string, lineNo int) entry {
	label, value, _ := strings.Cut(text[1:], ":")
	return entry{
		kind:  kind,
		label: strings.TrimSpace(label),
		value: strings.TrimSpace(value),
		line:  lineNo,
	}
}
