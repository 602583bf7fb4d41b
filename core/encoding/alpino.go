package encoding

import (
	"fmt"
	"strings"
)

// Alpino bracket annotations. Square brackets are the parser's markup
// characters, so literal brackets in words must be escaped.

// EscapeWord escapes a word for use in Alpino input.
func EscapeWord(text string) string {
	text = strings.ReplaceAll(text, "[", `\[`)
	return strings.ReplaceAll(text, "]", `\]`)
}

// EscapeID escapes a sentence id. The pipe separates id and sentence on the
// wire and is replaced by an underscore.
func EscapeID(id string) string {
	return EscapeWord(strings.ReplaceAll(id, "|", "_"))
}

// FormatFolia renders a lexical assignment of lemma and part-of-speech tag.
// An empty word renders as nothing.
func FormatFolia(lemma, pos, word string) string {
	if word == "" {
		return ""
	}
	return fmt.Sprintf("[ @folia %s %s %s ]", lemma, pos, word)
}

// FormatAddLex renders an instruction to treat word as correction.
func FormatAddLex(correction, word string) string {
	return fmt.Sprintf("[ @add_lex %s %s ]", EscapeWord(correction), EscapeWord(word))
}
