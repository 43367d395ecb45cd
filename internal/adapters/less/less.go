// Package less compiles less units with the lessc command line compiler.
package less

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/engine/preprocess"
)

const binaryName = "lessc"

var (
	_ ports.PreprocessorProvider = (*Provider)(nil)
	_ ports.Preprocessor         = (*Compiler)(nil)

	errorPositionRE = regexp.MustCompile(`line (\d+), column (\d+)`)
	inliner         = preprocess.Inliner{Directives: []string{"import"}}
)

// Provider locates lessc on first use.
type Provider struct {
	runner ports.CommandRunner
}

// NewProvider creates a new Provider.
func NewProvider(runner ports.CommandRunner) *Provider {
	return &Provider{runner: runner}
}

// Family implements ports.PreprocessorProvider.
func (p *Provider) Family() domain.Family {
	return domain.FamilyLess
}

// Load implements ports.PreprocessorProvider.
func (p *Provider) Load(root string) (ports.Preprocessor, error) {
	bin, err := p.runner.LookPath(root, binaryName)
	if err != nil {
		return nil, preprocess.NotFound(binaryName, filepath.Join(root, "node_modules", ".bin"), err)
	}
	return &Compiler{runner: p.runner, bin: bin}, nil
}

// Compiler runs lessc over standard input with imports already inlined.
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

	args := []string{"--no-color"}
	if len(req.Options.Paths) > 0 {
		args = append(args, "--include-path="+strings.Join(req.Options.Paths, string(os.PathListSeparator)))
	}
	if req.Options.EnableSourcemap {
		args = append(args, "--source-map-map-inline", "--source-map-include-source")
	}
	args = append(args, "-")

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
		for i, src := range m.Sources {
			if src == "-" || src == "input" || src == "" {
				m.Sources[i] = filename
			}
		}
	}
	return domain.PreprocessResult{Code: css, Map: m, Deps: deps}
}

// compileError turns lessc output such as
// "ParseError: Unrecognised input in - on line 3, column 5:" into a CompileError.
func compileError(err error, code, filename string) error {
	msg := err.Error()
	first, _, _ := strings.Cut(msg, "\n")
	ce := &domain.CompileError{Message: strings.TrimSuffix(first, ":"), File: filename}
	if m := errorPositionRE.FindStringSubmatch(msg); m != nil {
		ce.Line, _ = strconv.Atoi(m[1])
		ce.Column, _ = strconv.Atoi(m[2])
		ce.Frame = domain.CodeFrame(code, ce.Line, ce.Column)
	}
	return ce
}
