package preprocess

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"go.trai.ch/sheen/internal/core/domain"
)

// RebaseURLs rewrites relative url() references in content, read from file,
// so that they stay valid once content is inlined into rootFile.
func RebaseURLs(file, rootFile, content string, alias []domain.Alias) string {
	fileDir := filepath.Dir(file)
	rootDir := filepath.Dir(rootFile)
	if fileDir == rootDir || !strings.Contains(strings.ToLower(content), "url(") {
		return content
	}
	relDir, err := filepath.Rel(rootDir, fileDir)
	if err != nil {
		return content
	}
	relDir = filepath.ToSlash(relDir)

	var b strings.Builder
	b.Grow(len(content))
	changed := false

	lexer := css.NewLexer(parse.NewInputString(content))
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		if tt == css.URLToken {
			if rebased, ok := rebaseURLToken(string(data), relDir, alias); ok {
				b.WriteString(rebased)
				changed = true
				continue
			}
		}
		b.Write(data)
	}
	if !changed {
		return content
	}
	return b.String()
}

func rebaseURLToken(token, relDir string, alias []domain.Alias) (string, bool) {
	raw, quote, ok := UnwrapURL(token)
	if !ok || !shouldRebase(raw, alias) {
		return "", false
	}
	rebased := path.Join(relDir, raw)
	return "url(" + quote + rebased + quote + ")", true
}

func shouldRebase(raw string, alias []domain.Alias) bool {
	if raw == "" || domain.IsExternalURL(raw) || domain.IsDataURL(raw) {
		return false
	}
	switch raw[0] {
	case '/', '#', '$', '@', '~':
		return false
	}
	if strings.HasPrefix(raw, "var(") {
		return false
	}
	for _, a := range alias {
		if raw == a.Find || strings.HasPrefix(raw, a.Find+"/") {
			return false
		}
	}
	return true
}

// UnwrapURL returns the inner value of a url() token and the quote it was written with.
func UnwrapURL(token string) (string, string, bool) {
	if len(token) < 5 || !strings.EqualFold(token[:4], "url(") || token[len(token)-1] != ')' {
		return "", "", false
	}
	inner := strings.TrimSpace(token[4 : len(token)-1])
	if n := len(inner); n >= 2 && (inner[0] == '"' || inner[0] == '\'') && inner[n-1] == inner[0] {
		return inner[1 : n-1], inner[:1], true
	}
	return inner, "", true
}
