// Package stylus compiles stylus units with the stylus command line compiler.
package stylus

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/core/sourcemap"
	"go.trai.ch/sheen/internal/engine/preprocess"
)

const binaryName = "stylus"

var (
	_ ports.PreprocessorProvider = (*Provider)(nil)
	_ ports.Preprocessor         = (*Compiler)(nil)

	errorPositionRE = regexp.MustCompile(`:(\d+):(\d+)`)
	inliner         = preprocess.Inliner{Directives: []string{"import", "require"}}
)

// Provider locates the stylus binary on first use.
type Provider struct {
	runner ports.CommandRunner
}

// NewProvider creates a new Provider.
func NewProvider(runner ports.CommandRunner) *Provider {
	return &Provider{runner: runner}
}

// Family implements ports.PreprocessorProvider.
func (p *Provider) Family() domain.Family {
	return domain.FamilyStylus
}

// Load implements ports.PreprocessorProvider.
func (p *Provider) Load(root string) (ports.Preprocessor, error) {
	bin, err := p.runner.LookPath(root, binaryName)
	if err != nil {
		return nil, preprocess.NotFound(binaryName, filepath.Join(root, "node_modules", ".bin"), err)
	}
	return &Compiler{runner: p.runner, bin: bin}, nil
}

// Compiler runs stylus over standard input with imports already inlined.
type Compiler struct {
	runner ports.CommandRunner
	bin    string
}

// Compile implements ports.Preprocessor.
func (c *Compiler) Compile(ctx context.Context, req domain.PreprocessRequest) domain.PreprocessResult {
	filename := req.Options.Filename
	code, deps, err := inliner.Inline(req)
	if err != nil {
		return domain.PreprocessResult{Errors: []error{err}, Deps: deps}
	}

	args := []string{"--print"}
	for _, p := range req.Options.Paths {
		args = append(args, "--include", p)
	}
	for _, imp := range req.Options.Imports {
		if req.Resolve != nil {
			if resolved, ok := req.Resolve(imp, filename); ok {
				imp = domain.CleanURL(resolved)
				deps = appendUnique(deps, imp)
			}
		}
		args = append(args, "--import", imp)
	}
	if req.Options.EnableSourcemap {
		args = append(args, "--sourcemap-inline")
	}

	out, err := c.runner.Run(ctx, ports.Command{
		Path:  c.bin,
		Args:  args,
		Stdin: code,
		Dir:   filepath.Dir(filename),
	})
	if err != nil {
		return domain.PreprocessResult{Errors: []error{compileError(err, code, filename)}, Deps: deps}
	}

	css, m := preprocess.ExtractInlineSourceMap(out)
	if m != nil {
		m = formatSourceMap(m, filename)
	}
	return domain.PreprocessResult{Code: css, Map: m, Deps: deps}
}

// formatSourceMap points stdin sources at filename and makes relative sources absolute.
func formatSourceMap(m *sourcemap.Map, filename string) *sourcemap.Map {
	out := m.Clone()
	dir := filepath.Dir(filename)
	for i, src := range out.Sources {
		switch {
		case src == "" || src == "stdin" || src == "-":
			out.Sources[i] = filename
		case !filepath.IsAbs(src):
			out.Sources[i] = filepath.Join(dir, filepath.FromSlash(src))
		}
	}
	out.SourceRoot = ""
	return out
}

// compileError turns stylus output such as "Error: stdin:3:5" into a CompileError.
func compileError(err error, code, filename string) error {
	msg := err.Error()
	ce := &domain.CompileError{File: filename}
	lines := strings.Split(msg, "\n")
	ce.Message = strings.TrimSpace(msg)
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" && !strings.HasPrefix(l, "at ") {
			ce.Message = l
			break
		}
	}
	if m := errorPositionRE.FindStringSubmatch(lines[0]); m != nil {
		ce.Line, _ = strconv.Atoi(m[1])
		ce.Column, _ = strconv.Atoi(m[2])
		ce.Frame = domain.CodeFrame(code, ce.Line, ce.Column)
	}
	return ce
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
