package transform

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/tdewolff/parse/v2/css"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/sourcemap"
)

const defaultHashLength = 8

var (
	hashPlaceholderRE = regexp.MustCompile(`\[hash(?::(\d+))?\]`)
	invalidClassRE    = regexp.MustCompile(`[^\w-]`)
	dashesRE          = regexp.MustCompile(`-+(\w)`)
	vendorPrefixRE    = regexp.MustCompile(`^-\w+-`)
)

type blockKind int

const (
	blockRules blockKind = iota
	blockDeclarations
	blockKeyframes
)

var ruleAtRules = map[string]bool{
	"@media":          true,
	"@supports":       true,
	"@layer":          true,
	"@container":      true,
	"@document":       true,
	"@-moz-document":  true,
	"@scope":          true,
	"@starting-style": true,
}

func isKeyframes(at string) bool {
	at = strings.ToLower(at)
	return at == "@keyframes" || strings.HasPrefix(at, "@-") && strings.HasSuffix(at, "-keyframes")
}

// ScopePlugin rewrites class and keyframes names of a CSS Modules unit into scoped names.
type ScopePlugin struct {
	opts *domain.ModulesOptions
	root string
}

// NewScopePlugin creates a ScopePlugin. Relative paths in the hash input are taken from root.
func NewScopePlugin(opts *domain.ModulesOptions, root string) *ScopePlugin {
	if opts == nil {
		opts = &domain.ModulesOptions{}
	}
	return &ScopePlugin{opts: opts, root: root}
}

// Name implements Plugin.
func (p *ScopePlugin) Name() string {
	return "scope"
}

type scopeRun struct {
	p         *ScopePlugin
	file      string
	local     bool
	names     map[string]string
	order     []string
	keyframes map[string]bool
}

// Transform implements Plugin.
func (p *ScopePlugin) Transform(_ context.Context, st *State) error {
	run := &scopeRun{
		p:         p,
		file:      st.File,
		local:     p.defaultLocal(st.File),
		names:     make(map[string]string),
		keyframes: make(map[string]bool),
	}
	toks := tokenize(st.Code)
	run.collectKeyframes(toks)

	ed := sourcemap.NewEditor(st.Code)
	kinds := []blockKind{blockRules}
	var stmt []token
	for _, t := range toks {
		parent := kinds[len(kinds)-1]
		switch t.Type {
		case css.LeftBraceToken:
			kinds = append(kinds, run.openBlock(ed, stmt, parent))
			stmt = stmt[:0]
		case css.SemicolonToken:
			if parent != blockRules {
				run.declaration(ed, stmt)
			}
			stmt = stmt[:0]
		case css.RightBraceToken:
			if parent != blockRules {
				run.declaration(ed, stmt)
			}
			if len(kinds) > 1 {
				kinds = kinds[:len(kinds)-1]
			}
			stmt = stmt[:0]
		default:
			stmt = append(stmt, t)
		}
	}
	st.Commit(ed)

	st.Modules = run.exports()
	return nil
}

func (p *ScopePlugin) defaultLocal(file string) bool {
	if strings.EqualFold(p.opts.ScopeBehaviour, "global") {
		return false
	}
	for _, pattern := range p.opts.GlobalModulePaths {
		if re, err := regexp.Compile(pattern); err == nil && re.MatchString(filepath.ToSlash(file)) {
			return false
		}
	}
	return true
}

func (r *scopeRun) collectKeyframes(toks []token) {
	for i, t := range toks {
		if t.Type != css.AtKeywordToken || !isKeyframes(t.Text) {
			continue
		}
		if j := nextSolid(toks, i+1); j < len(toks) && toks[j].Type == css.IdentToken && r.local {
			r.keyframes[toks[j].Text] = true
		}
	}
}

func (r *scopeRun) openBlock(ed *sourcemap.Editor, stmt []token, parent blockKind) blockKind {
	first := nextSolid(stmt, 0)
	if first < len(stmt) && stmt[first].Type == css.AtKeywordToken {
		at := strings.ToLower(stmt[first].Text)
		switch {
		case isKeyframes(at):
			if j := nextSolid(stmt, first+1); j < len(stmt) && r.keyframes[stmt[j].Text] {
				ed.Replace(stmt[j].Start, stmt[j].End(), r.scoped(stmt[j].Text))
			}
			return blockKeyframes
		case ruleAtRules[at]:
			return blockRules
		default:
			return blockDeclarations
		}
	}
	if parent == blockKeyframes {
		return blockDeclarations
	}
	r.selector(ed, stmt)
	return blockDeclarations
}

type scopeFrame struct {
	local   bool
	wrapper bool
}

// selector scopes the class names of a selector list and unwraps :global and :local.
func (r *scopeRun) selector(ed *sourcemap.Editor, toks []token) {
	local := r.local
	var frames []scopeFrame
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.Type {
		case css.CommaToken:
			if len(frames) == 0 {
				local = r.local
			}
		case css.ColonToken:
			if i+1 >= len(toks) {
				continue
			}
			next := toks[i+1]
			switch {
			case next.is(css.FunctionToken, "global(") || next.is(css.FunctionToken, "local("):
				frames = append(frames, scopeFrame{local: local, wrapper: true})
				local = next.is(css.FunctionToken, "local(")
				ed.Remove(t.Start, next.End())
				i++
			case next.is(css.IdentToken, "global") || next.is(css.IdentToken, "local"):
				local = next.is(css.IdentToken, "local")
				end := next.End()
				i++
				if i+1 < len(toks) && toks[i+1].Type == css.WhitespaceToken {
					end = toks[i+1].End()
					i++
				}
				ed.Remove(t.Start, end)
			}
		case css.FunctionToken, css.LeftParenthesisToken:
			frames = append(frames, scopeFrame{local: local})
		case css.RightParenthesisToken:
			if len(frames) == 0 {
				continue
			}
			f := frames[len(frames)-1]
			frames = frames[:len(frames)-1]
			if f.wrapper {
				ed.Remove(t.Start, t.End())
			}
			local = f.local
		case css.DelimToken:
			if t.Text == "." && local && i+1 < len(toks) && toks[i+1].Type == css.IdentToken {
				ed.Replace(toks[i+1].Start, toks[i+1].End(), r.scoped(toks[i+1].Text))
				i++
			}
		}
	}
}

// declaration rewrites keyframes references of animation declarations.
func (r *scopeRun) declaration(ed *sourcemap.Editor, toks []token) {
	if len(r.keyframes) == 0 {
		return
	}
	i := nextSolid(toks, 0)
	if i >= len(toks) || toks[i].Type != css.IdentToken {
		return
	}
	prop := vendorPrefixRE.ReplaceAllString(strings.ToLower(toks[i].Text), "")
	if prop != "animation" && prop != "animation-name" {
		return
	}
	for _, t := range toks[i+1:] {
		if t.Type == css.IdentToken && r.keyframes[t.Text] {
			ed.Replace(t.Start, t.End(), r.scoped(t.Text))
		}
	}
}

func (r *scopeRun) scoped(local string) string {
	if s, ok := r.names[local]; ok {
		return s
	}
	pattern := r.p.opts.GenerateScopedName
	if pattern == "" {
		pattern = domain.DefaultScopedName
	}
	rel, err := filepath.Rel(r.p.root, r.file)
	if err != nil {
		rel = r.file
	}
	sum := strconv.FormatUint(xxhash.Sum64String(r.p.opts.HashPrefix+filepath.ToSlash(rel)+"\x00"+local), 36)

	name := strings.ReplaceAll(pattern, "[name]", invalidClassRE.ReplaceAllString(domain.ModuleName(r.file), "-"))
	name = strings.ReplaceAll(name, "[local]", local)
	name = hashPlaceholderRE.ReplaceAllStringFunc(name, func(m string) string {
		n := defaultHashLength
		if sub := hashPlaceholderRE.FindStringSubmatch(m); sub[1] != "" {
			n, _ = strconv.Atoi(sub[1])
		}
		return sum[:min(n, len(sum))]
	})

	r.names[local] = name
	r.order = append(r.order, local)
	return name
}

// exports applies the locals convention to the collected names.
func (r *scopeRun) exports() map[string]string {
	out := make(map[string]string, len(r.names))
	for _, local := range r.order {
		scoped := r.names[local]
		switch r.p.opts.LocalsConvention {
		case "camelCase":
			out[local] = scoped
			out[camelCase(local)] = scoped
		case "camelCaseOnly":
			out[camelCase(local)] = scoped
		case "dashes":
			out[local] = scoped
			out[dashesCamelCase(local)] = scoped
		case "dashesOnly":
			out[dashesCamelCase(local)] = scoped
		default:
			out[local] = scoped
		}
	}
	return out
}

func camelCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, p := range parts {
		if i == 0 {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

func dashesCamelCase(s string) string {
	return dashesRE.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ToUpper(m[len(m)-1:])
	})
}
