package domain

import (
	"bytes"
	"encoding/json"
	"regexp"
	"slices"
	"strings"
)

var identifierRE = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true, "function": true,
	"if": true, "import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true, "with": true,
	"yield": true, "let": true, "static": true, "await": true, "implements": true,
	"interface": true, "package": true, "private": true, "protected": true, "public": true,
}

// ModulesToESM renders a class mapping as an ES module with named exports for
// every key that is a valid identifier and a default export holding the whole map.
func ModulesToESM(modules map[string]string) string {
	keys := make([]string, 0, len(modules))
	for k := range modules {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, k := range keys {
		if !identifierRE.MatchString(k) || reservedWords[k] {
			continue
		}
		b.WriteString("export const ")
		b.WriteString(k)
		b.WriteString(" = ")
		b.WriteString(jsString(modules[k]))
		b.WriteString(";\n")
	}
	b.WriteString("export default {\n")
	for i, k := range keys {
		b.WriteString("\t")
		b.WriteString(jsString(k))
		b.WriteString(": ")
		b.WriteString(jsString(modules[k]))
		if i < len(keys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("};\n")
	return b.String()
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
