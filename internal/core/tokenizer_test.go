package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tok := NewTokenizer(DefaultHeaderLength, false)

	tests := []struct {
		name string
		text string
		want TokenSet
	}{
		{"single line", "Subject: hello world hello", NewTokenSet("hello", "world")},
		{"line breaks", "Subject: meet\r\nme\nnow", NewTokenSet("meet", "me", "now")},
		{"case sensitive", "Subject: Money money", NewTokenSet("Money", "money")},
		{"adjacent spaces", "Subject: a  b\n\nc", NewTokenSet("a", "b", "c")},
		{"header longer than content", "Subject:", NewTokenSet()},
		{"header only", "Subject: ", NewTokenSet()},
		{"lone carriage return", "Subject: a\rb", NewTokenSet("a", "b")},
		{"crlf inside header", "Subj:\r\n1234 body", NewTokenSet("4", "body")},
		{"multibyte header", "Sübject: x", NewTokenSet("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tok.Tokenize(tt.text))
		})
	}
}

func TestTokenizeKeepEmpty(t *testing.T) {
	tok := NewTokenizer(DefaultHeaderLength, true)
	assert.Equal(t, NewTokenSet("a", "", "b"), tok.Tokenize("Subject: a  b"))
}

func TestTokenizeNoHeader(t *testing.T) {
	tok := NewTokenizer(0, false)
	assert.Equal(t, NewTokenSet("Subject:", "hi"), tok.Tokenize("Subject: hi"))

	negative := NewTokenizer(-3, false)
	assert.Equal(t, NewTokenSet("hi"), negative.Tokenize("hi"))
}
