package transform

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

type token struct {
	Type  css.TokenType
	Text  string
	Start int
}

func (t token) End() int {
	return t.Start + len(t.Text)
}

func (t token) is(tt css.TokenType, text string) bool {
	return t.Type == tt && strings.EqualFold(t.Text, text)
}

func (t token) blank() bool {
	return t.Type == css.WhitespaceToken || t.Type == css.CommentToken
}

// tokenize splits code into contiguous tokens carrying their byte offsets.
func tokenize(code string) []token {
	l := css.NewLexer(parse.NewInputString(code))
	var out []token
	pos := 0
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			return out
		}
		out = append(out, token{Type: tt, Text: string(data), Start: pos})
		pos += len(data)
	}
}

// nextSolid returns the index of the first non-blank token at or after i, or len(toks).
func nextSolid(toks []token, i int) int {
	for i < len(toks) && toks[i].blank() {
		i++
	}
	return i
}

// unquote strips matching quotes from a string token.
func unquote(s string) (string, string) {
	if n := len(s); n >= 2 && (s[0] == '"' || s[0] == '\'') && s[n-1] == s[0] {
		return s[1 : n-1], s[:1]
	}
	return s, ""
}
