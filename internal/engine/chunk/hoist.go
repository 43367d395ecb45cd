package chunk

import (
	"strings"

	"go.trai.ch/sheen/internal/core/sourcemap"
)

type scanState int

const (
	stateDefault scanState = iota
	stateString
	stateComment
)

// atRule is a top level @import or @charset rule, including its semicolon.
type atRule struct {
	name       string
	start, end int
}

// scanAtRules finds the top level @import and @charset rules of code.
// Rules inside comments, strings or blocks are ignored.
func scanAtRules(code string) []atRule {
	var rules []atRule
	state := stateDefault
	var quote byte
	depth := 0
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch state {
		case stateComment:
			if c == '*' && i+1 < len(code) && code[i+1] == '/' {
				state = stateDefault
				i++
			}
		case stateString:
			switch c {
			case '\\':
				i++
			case quote, '\n':
				state = stateDefault
			}
		default:
			switch c {
			case '/':
				if i+1 < len(code) && code[i+1] == '*' {
					state = stateComment
					i++
				}
			case '"', '\'':
				state, quote = stateString, c
			case '{':
				depth++
			case '}':
				if depth > 0 {
					depth--
				}
			case '@':
				if depth != 0 {
					continue
				}
				name := atKeyword(code[i:])
				if name != "@import" && name != "@charset" {
					continue
				}
				end := ruleEnd(code, i+len(name))
				rules = append(rules, atRule{name: name, start: i, end: end})
				i = end - 1
			}
		}
	}
	return rules
}

func atKeyword(s string) string {
	for _, name := range []string{"@import", "@charset"} {
		if len(s) < len(name) || !strings.EqualFold(s[:len(name)], name) {
			continue
		}
		if len(s) == len(name) || !isNameByte(s[len(name)]) {
			return name
		}
	}
	return ""
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// ruleEnd returns the offset just past the semicolon ending the rule whose
// prelude starts at i. Semicolons in strings, comments and parentheses do not count.
func ruleEnd(code string, i int) int {
	state := stateDefault
	var quote byte
	parens := 0
	for ; i < len(code); i++ {
		c := code[i]
		switch state {
		case stateComment:
			if c == '*' && i+1 < len(code) && code[i+1] == '/' {
				state = stateDefault
				i++
			}
		case stateString:
			switch c {
			case '\\':
				i++
			case quote, '\n':
				state = stateDefault
			}
		default:
			switch c {
			case '/':
				if i+1 < len(code) && code[i+1] == '*' {
					state = stateComment
					i++
				}
			case '"', '\'':
				state, quote = stateString, c
			case '(':
				parens++
			case ')':
				if parens > 0 {
					parens--
				}
			case ';':
				if parens == 0 {
					return i + 1
				}
			}
		}
	}
	return len(code)
}

// hoistAtRules moves every top level @import to the head of code in order,
// and the first @charset before them. Later @charset rules are dropped.
func hoistAtRules(code string) string {
	if !strings.Contains(code, "@import") && !strings.Contains(code, "@charset") {
		return code
	}
	rules := scanAtRules(code)
	if len(rules) == 0 {
		return code
	}
	ed := sourcemap.NewEditor(code)
	charset := false
	for _, r := range rules {
		ed.Remove(r.start, r.end)
		switch r.name {
		case "@import":
			ed.Insert(0, code[r.start:r.end])
		case "@charset":
			if !charset {
				ed.Prepend(code[r.start:r.end])
				charset = true
			}
		}
	}
	return ed.String()
}
