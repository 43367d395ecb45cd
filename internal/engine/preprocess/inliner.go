package preprocess

import (
	"regexp"
	"strings"

	"go.trai.ch/sheen/internal/core/domain"
)

var importRE = regexp.MustCompile(`(?m)^([ \t]*)@(import|require)[ \t]*(\([^)]*\))?[ \t]*(?:url\()?[ \t]*(['"])([^'"\n]+)['"][ \t]*\)?([^;\n]*);?[ \t]*$`)

// Inliner replaces import statements with the content of the imported file.
// Each file is inlined once per compilation. Imports that cannot be resolved are left
// for the compiler to report; option-qualified imports are rewritten to the resolved path.
type Inliner struct {
	// Directives lists the at-rule names treated as imports.
	Directives []string
}

type inlineState struct {
	req     domain.PreprocessRequest
	root    string
	visited map[string]bool
	deps    []string
}

// Inline expands the imports of req.Source and returns the expanded text and the
// absolute paths of every inlined file.
func (in Inliner) Inline(req domain.PreprocessRequest) (string, []string, error) {
	st := &inlineState{
		req:     req,
		root:    req.Options.Filename,
		visited: map[string]bool{req.Options.Filename: true},
	}
	code, err := in.expand(st, req.Source, req.Options.Filename)
	if err != nil {
		return "", st.deps, err
	}
	return code, st.deps, nil
}

func (in Inliner) expand(st *inlineState, source, importer string) (string, error) {
	var firstErr error
	out := importRE.ReplaceAllStringFunc(source, func(stmt string) string {
		if firstErr != nil {
			return stmt
		}
		m := importRE.FindStringSubmatch(stmt)
		indent, directive, options, quote, spec, media := m[1], m[2], m[3], m[4], m[5], strings.TrimSpace(m[6])
		if !in.handles(directive) || domain.IsExternalURL(spec) || domain.IsDataURL(spec) {
			return stmt
		}

		resolved, ok := st.req.Resolve(spec, importer)
		if !ok {
			return stmt
		}
		resolved = domain.CleanURL(resolved)
		if options != "" || media != "" || strings.HasSuffix(resolved, ".css") {
			st.addDep(resolved)
			return strings.Replace(stmt, quote+spec+quote, quote+resolved+quote, 1)
		}
		if st.visited[resolved] {
			return ""
		}
		st.visited[resolved] = true
		st.addDep(resolved)

		content, err := st.req.Load(resolved, st.root)
		if err != nil {
			firstErr = err
			return stmt
		}
		expanded, err := in.expand(st, content, resolved)
		if err != nil {
			firstErr = err
			return stmt
		}
		return indentLines(expanded, indent)
	})
	return out, firstErr
}

func (in Inliner) handles(directive string) bool {
	for _, d := range in.Directives {
		if d == directive {
			return true
		}
	}
	return false
}

func (st *inlineState) addDep(file string) {
	for _, d := range st.deps {
		if d == file {
			return
		}
	}
	st.deps = append(st.deps, file)
}

// indentLines prefixes every non-empty line of s with indent.
func indentLines(s, indent string) string {
	s = strings.TrimRight(s, "\n")
	if indent == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = indent + l
		}
	}
	return strings.Join(lines, "\n")
}
