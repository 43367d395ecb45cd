// Package sass compiles sass and scss units with the Dart Sass embedded compiler.
package sass

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bep/godartsass/v2"
	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/core/sourcemap"
	"go.trai.ch/sheen/internal/engine/preprocess"
)

const binaryName = "sass"

var (
	_ ports.PreprocessorProvider = (*Provider)(nil)
	_ ports.Preprocessor         = (*Compiler)(nil)
)

// Transpiler executes a single Dart Sass compilation.
type Transpiler interface {
	Execute(args godartsass.Args) (godartsass.Result, error)
}

// Provider starts the Dart Sass embedded compiler on first use.
type Provider struct {
	runner ports.CommandRunner
	logger ports.Logger

	mu         sync.Mutex
	transpiler *godartsass.Transpiler
}

// NewProvider creates a new Provider.
func NewProvider(runner ports.CommandRunner, logger ports.Logger) *Provider {
	return &Provider{runner: runner, logger: logger}
}

// Family implements ports.PreprocessorProvider.
func (p *Provider) Family() domain.Family {
	return domain.FamilySass
}

// Load locates the sass binary and starts the embedded compiler.
func (p *Provider) Load(root string) (ports.Preprocessor, error) {
	bin, err := p.runner.LookPath(root, binaryName)
	if err != nil {
		return nil, preprocess.NotFound(binaryName, filepath.Join(root, "node_modules", ".bin"), err)
	}

	t, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: bin,
		LogEventHandler:          p.logEvent,
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to start dart sass"), "path", bin)
	}

	p.mu.Lock()
	p.transpiler = t
	p.mu.Unlock()
	return NewCompiler(t), nil
}

// Close shuts the embedded compiler down if it was started.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.transpiler == nil {
		return nil
	}
	err := p.transpiler.Close()
	p.transpiler = nil
	if err != nil && !errors.Is(err, godartsass.ErrShutdown) {
		return zerr.Wrap(err, "failed to stop dart sass")
	}
	return nil
}

func (p *Provider) logEvent(e godartsass.LogEvent) {
	switch e.Type {
	case godartsass.LogEventTypeWarning:
		p.logger.Warn(e.Message)
	case godartsass.LogEventTypeDeprecated:
		p.logger.Debug("[" + e.DeprecationType + "] " + e.Message)
	case godartsass.LogEventTypeDebug:
		p.logger.Debug(e.Message)
	}
}

// Compiler compiles sass units through a Transpiler.
type Compiler struct {
	transpiler Transpiler
}

// NewCompiler creates a Compiler.
func NewCompiler(t Transpiler) *Compiler {
	return &Compiler{transpiler: t}
}

// Compile implements ports.Preprocessor.
func (c *Compiler) Compile(ctx context.Context, req domain.PreprocessRequest) domain.PreprocessResult {
	if err := ctx.Err(); err != nil {
		return domain.PreprocessResult{Errors: []error{err}}
	}

	syntax := godartsass.SourceSyntaxSCSS
	if req.Options.IndentedSyntax {
		syntax = godartsass.SourceSyntaxSASS
	}
	resolver := &importResolver{req: req}

	out, err := c.transpiler.Execute(godartsass.Args{
		Source:                  req.Source,
		URL:                     fileURL(req.Options.Filename),
		SourceSyntax:            syntax,
		OutputStyle:             godartsass.OutputStyleExpanded,
		EnableSourceMap:         req.Options.EnableSourcemap,
		SourceMapIncludeSources: req.Options.EnableSourcemap,
		ImportResolver:          resolver,
		IncludePaths:            req.Options.IncludePaths,
	})
	if err != nil {
		return domain.PreprocessResult{Errors: []error{compileError(err, req)}, Deps: resolver.deps}
	}

	res := domain.PreprocessResult{Code: out.CSS, Deps: resolver.deps}
	if req.Options.EnableSourcemap && out.SourceMap != "" {
		m, err := sourcemap.Parse([]byte(out.SourceMap))
		if err != nil {
			return domain.PreprocessResult{Errors: []error{err}, Deps: resolver.deps}
		}
		for i, src := range m.Sources {
			m.Sources[i] = pathFromURL(src)
		}
		res.Map = m
	}
	return res
}

// importResolver resolves nested imports with the sass resolver and records every loaded file.
type importResolver struct {
	req  domain.PreprocessRequest
	deps []string
}

func (r *importResolver) CanonicalizeURL(u string) (string, error) {
	spec := u
	if strings.HasPrefix(u, "file:") {
		spec = pathFromURL(u)
	}
	resolved, ok := r.req.Resolve(spec, r.req.Options.Filename)
	if !ok {
		return "", nil
	}
	return fileURL(domain.CleanURL(resolved)), nil
}

func (r *importResolver) Load(canonicalizedURL string) (godartsass.Import, error) {
	file := pathFromURL(canonicalizedURL)
	content, err := r.req.Load(file, r.req.Options.Filename)
	if err != nil {
		return godartsass.Import{}, err
	}
	r.deps = append(r.deps, file)

	syntax := godartsass.SourceSyntaxSCSS
	switch filepath.Ext(file) {
	case ".sass":
		syntax = godartsass.SourceSyntaxSASS
	case ".css":
		syntax = godartsass.SourceSyntaxCSS
	}
	return godartsass.Import{Content: content, SourceSyntax: syntax}, nil
}

func compileError(err error, req domain.PreprocessRequest) error {
	var serr godartsass.SassError
	if !errors.As(err, &serr) {
		return &domain.CompileError{Message: err.Error(), File: req.Options.Filename}
	}

	file := req.Options.Filename
	source := req.Source
	if serr.Span.Url != "" {
		if p := pathFromURL(serr.Span.Url); p != file {
			file = p
			data, readErr := os.ReadFile(p) //nolint:gosec // path reported by the compiler
			if readErr != nil {
				return &domain.CompileError{Message: serr.Message, File: file}
			}
			source = string(data)
		}
	}
	line, column := preprocess.LineColumn(source, serr.Span.Start.Offset)
	return &domain.CompileError{
		Message: serr.Message,
		File:    file,
		Line:    line,
		Column:  column,
		Frame:   domain.CodeFrame(source, line, column),
	}
}

func fileURL(p string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
}

func pathFromURL(u string) string {
	if !strings.HasPrefix(u, "file:") {
		return u
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return strings.TrimPrefix(u, "file://")
	}
	return filepath.FromSlash(parsed.Path)
}
