// Package tokenize splits running Dutch text into sentences of
// space-separated tokens, the input form the Alpino parser expects.
package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Abbreviations that keep their final period.
var abbreviations = map[string]bool{
	"bijv.": true, "bv.": true, "blz.": true, "ca.": true, "dhr.": true,
	"dr.": true, "enz.": true, "etc.": true, "evt.": true, "ir.": true,
	"jl.": true, "mevr.": true, "mr.": true, "mw.": true, "nl.": true,
	"nr.": true, "o.a.": true, "prof.": true, "resp.": true, "st.": true,
	"vs.": true, "zgn.": true,
}

// Elided articles and pronouns written with a leading apostrophe.
var elisions = map[string]bool{
	"'s": true, "'t": true, "'n": true, "'k": true, "'m": true, "'r": true,
}

const (
	leading  = "\"'([{‘“«¿¡"
	trailing = "\"')]},;:!?.’”»…"
	closing  = "\"')]}’”»"
)

// Sentences splits text into sentences. Each sentence is returned as its
// tokens joined by single spaces.
func Sentences(text string) []string {
	var (
		sentences []string
		current   []string
	)
	flush := func() {
		if len(current) > 0 {
			sentences = append(sentences, strings.Join(current, " "))
			current = nil
		}
	}

	for _, field := range strings.Fields(text) {
		tokens := splitField(field)
		current = append(current, tokens...)
		if endsSentence(tokens) {
			flush()
		}
	}
	flush()
	return sentences
}

// endsSentence reports whether the tokens of a field end in a terminal mark,
// optionally followed by closing quotes or brackets.
func endsSentence(tokens []string) bool {
	for i := len(tokens) - 1; i >= 0; i-- {
		switch {
		case IsTerminal(tokens[i]):
			return true
		case !isClosing(tokens[i]):
			return false
		}
	}
	return false
}

// Tokens splits text into tokens, separating punctuation from words.
func Tokens(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(text) {
		tokens = append(tokens, splitField(field)...)
	}
	return tokens
}

func splitField(field string) []string {
	if elisions[strings.ToLower(field)] || abbreviations[strings.ToLower(field)] {
		return []string{field}
	}

	var head, tail []string
	for field != "" {
		r, size := utf8.DecodeRuneInString(field)
		if !strings.ContainsRune(leading, r) || elisions[strings.ToLower(field)] {
			break
		}
		head = append(head, field[:size])
		field = field[size:]
	}
	for field != "" {
		if abbreviations[strings.ToLower(field)] || isInitialism(field) {
			break
		}
		if strings.HasSuffix(field, "...") {
			tail = append([]string{"..."}, tail...)
			field = field[:len(field)-3]
			continue
		}
		r, size := utf8.DecodeLastRuneInString(field)
		if !strings.ContainsRune(trailing, r) {
			break
		}
		// repeated marks such as ?! stay together
		mark := field[len(field)-size:]
		field = field[:len(field)-size]
		if len(tail) > 0 && IsTerminal(mark) && IsTerminal(tail[0]) && !strings.ContainsAny(tail[0], closing) {
			tail[0] = mark + tail[0]
			continue
		}
		tail = append([]string{mark}, tail...)
	}

	out := head
	if field != "" {
		out = append(out, field)
	}
	return append(out, tail...)
}

// isInitialism reports tokens like "d.w.z." and "U.S.A." that contain
// periods between letters.
func isInitialism(s string) bool {
	if !strings.HasSuffix(s, ".") || strings.Count(s, ".") < 2 {
		return false
	}
	for _, part := range strings.Split(strings.TrimSuffix(s, "."), ".") {
		if part == "" || utf8.RuneCountInString(part) > 3 {
			return false
		}
		for _, r := range part {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

// IsTerminal reports whether tok is a sentence ending mark.
func IsTerminal(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r != '.' && r != '!' && r != '?' && r != '…' {
			return false
		}
	}
	return true
}

func isClosing(tok string) bool {
	for _, r := range tok {
		if !strings.ContainsRune(closing, r) {
			return false
		}
	}
	return tok != ""
}
