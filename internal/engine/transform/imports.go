package transform

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/tdewolff/parse/v2/css"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/core/sourcemap"
	"go.trai.ch/sheen/internal/engine/preprocess"
)

var globIgnore = []string{"node_modules"}

// ImportPlugin inlines @import rules. Each (file, media) pair is inlined once per unit.
type ImportPlugin struct {
	resolver ports.Resolver
	globber  ports.Globber
	load     domain.LoadFunc
}

// NewImportPlugin creates an ImportPlugin. load reads an imported file on behalf of the unit.
func NewImportPlugin(resolver ports.Resolver, globber ports.Globber, load domain.LoadFunc) *ImportPlugin {
	return &ImportPlugin{resolver: resolver, globber: globber, load: load}
}

// Name implements Plugin.
func (p *ImportPlugin) Name() string {
	return "import-inline"
}

// Transform implements Plugin.
func (p *ImportPlugin) Transform(ctx context.Context, st *State) error {
	ed := sourcemap.NewEditor(st.Code)
	visited := map[string]bool{}
	if err := p.expand(ctx, st, ed, st.File, visited); err != nil {
		return err
	}
	st.Commit(ed)
	return nil
}

// importRule is a top level @import and the byte range it covers.
type importRule struct {
	start, end int
	spec       string
	media      string
}

func findImports(toks []token) []importRule {
	var rules []importRule
	depth := 0
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.Type {
		case css.LeftBraceToken:
			depth++
			continue
		case css.RightBraceToken:
			depth--
			continue
		}
		if depth != 0 || !t.is(css.AtKeywordToken, "@import") {
			continue
		}

		rule := importRule{start: t.Start, end: t.End()}
		j := nextSolid(toks, i+1)
		if j < len(toks) {
			switch {
			case toks[j].Type == css.URLToken:
				rule.spec, _, _ = preprocess.UnwrapURL(toks[j].Text)
			case toks[j].Type == css.StringToken:
				rule.spec, _ = unquote(toks[j].Text)
			case toks[j].is(css.FunctionToken, "url("):
				if k := nextSolid(toks, j+1); k < len(toks) && toks[k].Type == css.StringToken {
					rule.spec, _ = unquote(toks[k].Text)
					j = k
					if k = nextSolid(toks, k+1); k < len(toks) && toks[k].Type == css.RightParenthesisToken {
						j = k
					}
				}
			}
		}

		var media strings.Builder
		k := j + 1
		for ; k < len(toks) && toks[k].Type != css.SemicolonToken; k++ {
			media.WriteString(toks[k].Text)
		}
		if k < len(toks) {
			rule.end = toks[k].End()
		} else if len(toks) > 0 {
			rule.end = toks[len(toks)-1].End()
		}
		rule.media = strings.TrimSpace(media.String())
		rules = append(rules, rule)
		i = k
	}
	return rules
}

func (p *ImportPlugin) expand(ctx context.Context, st *State, ed *sourcemap.Editor, importer string, visited map[string]bool) error {
	for _, rule := range findImports(tokenize(ed.Original())) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rule.spec == "" || domain.IsExternalURL(rule.spec) || domain.IsDataURL(rule.spec) {
			continue
		}

		spec, _ := domain.SplitPostfix(rule.spec)
		var files []string
		if isGlob(spec) {
			dir, glob := splitGlob(spec)
			base := filepath.Join(filepath.Dir(importer), filepath.FromSlash(dir))
			matches, err := p.globber.Glob(base, glob, globIgnore)
			if err != nil {
				return err
			}
			st.DirDependency(p.Name(), base, glob)
			if len(matches) == 0 {
				continue
			}
			files = matches
		} else {
			resolved, ok := p.resolver.Resolve(spec, importer)
			if !ok {
				continue
			}
			files = []string{domain.CleanURL(resolved)}
		}

		var out strings.Builder
		for _, file := range files {
			key := file + "\x00" + rule.media
			if visited[key] {
				continue
			}
			visited[key] = true
			st.Dependency(p.Name(), file)

			content, err := p.load(file, st.File)
			if err != nil {
				return err
			}
			nested := sourcemap.NewEditor(content)
			if err := p.expand(ctx, st, nested, file, visited); err != nil {
				return err
			}
			text := strings.TrimRight(nested.String(), "\n")
			if rule.media != "" {
				text = "@media " + rule.media + " {\n" + text + "\n}"
			}
			if out.Len() > 0 {
				out.WriteString("\n")
			}
			out.WriteString(text)
		}
		ed.Replace(rule.start, rule.end, out.String())
	}
	return nil
}

func isGlob(spec string) bool {
	return strings.ContainsAny(spec, "*[{")
}

// splitGlob splits a glob specifier into its static directory and the pattern below it.
func splitGlob(spec string) (string, string) {
	parts := strings.Split(spec, "/")
	for i, part := range parts {
		if isGlob(part) {
			dir := strings.Join(parts[:i], "/")
			if dir == "" {
				dir = "."
			}
			return path.Clean(dir), strings.Join(parts[i:], "/")
		}
	}
	return path.Dir(spec), path.Base(spec)
}
