package core

import (
	"strings"
)

// DefaultHeaderLength skips a leading "Subject:" marker and the space after it
const DefaultHeaderLength = 9

// Tokenizer turns raw document text into a set of unique tokens
type Tokenizer struct {
	headerLength int
	keepEmpty    bool
}

// NewTokenizer creates a tokenizer that drops the first headerLength
// characters of every document. Empty tokens produced by adjacent spaces are
// kept only when keepEmpty is set.
func NewTokenizer(headerLength int, keepEmpty bool) *Tokenizer {
	if headerLength < 0 {
		headerLength = 0
	}
	return &Tokenizer{
		headerLength: headerLength,
		keepEmpty:    keepEmpty,
	}
}

// lineEndings maps CRLF and lone CR to LF
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Tokenize returns the case-sensitive token set of text. Line endings are
// normalized to LF before the header is stripped, so a CRLF counts as one
// character.
func (t *Tokenizer) Tokenize(text string) TokenSet {
	text = lineEndings.Replace(text)
	text = t.stripHeader(text)
	text = strings.ReplaceAll(text, "\n", " ")

	tokens := make(TokenSet)
	for _, token := range strings.Split(text, " ") {
		if token == "" && !t.keepEmpty {
			continue
		}
		tokens[token] = struct{}{}
	}
	return tokens
}

// stripHeader removes the first headerLength characters, counted in runes
func (t *Tokenizer) stripHeader(text string) string {
	n := 0
	for i := range text {
		if n == t.headerLength {
			return text[i:]
		}
		n++
	}
	return ""
}
