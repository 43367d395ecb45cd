package transform

import (
	"context"
	"strings"

	"github.com/tdewolff/parse/v2/css"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/sourcemap"
	"go.trai.ch/sheen/internal/engine/preprocess"
)

// URLReplacer maps a url() value, referenced from importer, to its final url.
type URLReplacer func(url, importer string) (string, error)

// URLPlugin rewrites url() and image-set() references outside of @import preludes.
type URLPlugin struct {
	replace URLReplacer
}

// NewURLPlugin creates a URLPlugin.
func NewURLPlugin(replace URLReplacer) *URLPlugin {
	return &URLPlugin{replace: replace}
}

// Name implements Plugin.
func (p *URLPlugin) Name() string {
	return "url-rewrite"
}

// Transform implements Plugin.
func (p *URLPlugin) Transform(_ context.Context, st *State) error {
	if !hasURLs(st.Code) {
		return nil
	}
	ed := sourcemap.NewEditor(st.Code)
	toks := tokenize(st.Code)
	imageSet := 0
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.is(css.AtKeywordToken, "@import"):
			for i < len(toks) && toks[i].Type != css.SemicolonToken {
				i++
			}
		case t.Type == css.URLToken:
			raw, quote, ok := preprocess.UnwrapURL(t.Text)
			if !ok {
				continue
			}
			if err := p.rewrite(ed, st.File, t, raw, func(u string) string {
				return "url(" + quote + u + quote + ")"
			}); err != nil {
				return err
			}
		case t.is(css.FunctionToken, "url("):
			j := nextSolid(toks, i+1)
			if j < len(toks) && toks[j].Type == css.StringToken {
				if err := p.rewriteString(ed, st.File, toks[j]); err != nil {
					return err
				}
				i = j
			}
		case t.Type == css.FunctionToken && isImageSet(t.Text):
			imageSet = 1
			for i++; i < len(toks) && imageSet > 0; i++ {
				switch toks[i].Type {
				case css.FunctionToken, css.LeftParenthesisToken:
					imageSet++
				case css.RightParenthesisToken:
					imageSet--
				case css.StringToken:
					if err := p.rewriteString(ed, st.File, toks[i]); err != nil {
						return err
					}
				case css.URLToken:
					raw, quote, ok := preprocess.UnwrapURL(toks[i].Text)
					if !ok {
						continue
					}
					if err := p.rewrite(ed, st.File, toks[i], raw, func(u string) string {
						return "url(" + quote + u + quote + ")"
					}); err != nil {
						return err
					}
				}
			}
			i--
		}
	}
	st.Commit(ed)
	return nil
}

func (p *URLPlugin) rewriteString(ed *sourcemap.Editor, importer string, t token) error {
	raw, quote := unquote(t.Text)
	return p.rewrite(ed, importer, t, raw, func(u string) string {
		return quote + u + quote
	})
}

func (p *URLPlugin) rewrite(ed *sourcemap.Editor, importer string, t token, raw string, wrap func(string) string) error {
	if skipURL(raw) {
		return nil
	}
	replaced, err := p.replace(raw, importer)
	if err != nil {
		return err
	}
	if replaced == raw {
		return nil
	}
	ed.Replace(t.Start, t.End(), wrap(replaced))
	return nil
}

func hasURLs(code string) bool {
	lower := strings.ToLower(code)
	return strings.Contains(lower, "url(") || strings.Contains(lower, "image-set(")
}

func isImageSet(fn string) bool {
	return strings.HasSuffix(strings.ToLower(fn), "image-set(")
}

func skipURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" ||
		domain.IsExternalURL(raw) ||
		domain.IsDataURL(raw) ||
		strings.HasPrefix(raw, "#") ||
		strings.HasPrefix(raw, "var(")
}
