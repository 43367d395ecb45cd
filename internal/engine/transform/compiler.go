// Package transform turns the canonical CSS of a style unit into its final text:
// @import inlining, CSS Modules scoping, configured plugins and url() rewriting.
package transform

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/core/sourcemap"
	"go.trai.ch/sheen/internal/engine/preprocess"
	"go.trai.ch/sheen/internal/engine/session"
)

// Compiler compiles style units of one session.
type Compiler struct {
	sess    *session.Session
	runner  *preprocess.Runner
	loader  ports.ConfigLoader
	globber ports.Globber
	logger  ports.Logger
	replace URLReplacer
	server  ports.DevServer
}

// NewCompiler creates a Compiler. A nil replace leaves url() references untouched.
func NewCompiler(
	sess *session.Session,
	runner *preprocess.Runner,
	loader ports.ConfigLoader,
	globber ports.Globber,
	logger ports.Logger,
	replace URLReplacer,
) *Compiler {
	return &Compiler{
		sess:    sess,
		runner:  runner,
		loader:  loader,
		globber: globber,
		logger:  logger,
		replace: replace,
	}
}

// SetDevServer attaches the watch-mode host. It must be called before the first Compile.
func (c *Compiler) SetDevServer(server ports.DevServer) {
	c.server = server
}

// Compile turns code, the text of unit id, into its final CSS.
func (c *Compiler) Compile(ctx context.Context, id, code string) (*domain.CSSResult, error) {
	cfg := c.sess.Config
	postcss, err := c.sess.PostcssConfig(c.loader)
	if err != nil {
		return nil, err
	}

	dialect := domain.DialectOf(id)
	scoped := domain.IsScopedModuleRequest(id, cfg.CSS.Modules)
	if dialect == domain.DialectCSS && postcss == nil && !scoped && !hasImports(code) && !hasURLs(code) {
		return &domain.CSSResult{Code: code}, nil
	}

	file := domain.CleanURL(id)
	deps := newDepSet(file)

	out, err := c.runner.Run(ctx, id, code)
	if err != nil {
		return nil, err
	}
	deps.add(out.Deps...)

	plugins, err := c.plugins(out.Code, scoped, postcss)
	if err != nil {
		return nil, err
	}
	st := NewState(id, out.Code, cfg.CSS.DevSourcemap)
	if err := Run(ctx, st, plugins); err != nil {
		return nil, err
	}

	for _, msg := range st.Messages {
		switch msg.Type {
		case domain.MessageDependency:
			deps.add(msg.File)
		case domain.MessageDirDependency:
			base := filepath.FromSlash(msg.Dir)
			if !filepath.IsAbs(base) {
				base = filepath.Join(filepath.Dir(file), base)
			}
			files, err := c.globber.Glob(base, msg.Glob, globIgnore)
			if err != nil {
				return nil, err
			}
			deps.add(files...)
			if c.server != nil {
				c.server.WatchGlob(id, base, path.Join(filepath.ToSlash(base), msg.Glob))
			}
		case domain.MessageWarning:
			c.warn(file, out.Code, msg)
		}
	}

	if scoped && cfg.CSS.Modules != nil && cfg.CSS.Modules.OnModules != nil {
		cfg.CSS.Modules.OnModules(id, st.Modules)
	}

	res := &domain.CSSResult{
		Code:    st.Code,
		Modules: st.Modules,
		Deps:    deps.list,
	}
	if !cfg.CSS.DevSourcemap {
		res.Map = sourcemap.Empty()
		return res, nil
	}
	res.Map = sourcemap.Combine(FormatSourceMap(st.Map(), file), out.Map)
	return res, nil
}

func (c *Compiler) plugins(code string, scoped bool, postcss *domain.PostcssConfig) ([]Plugin, error) {
	cfg := c.sess.Config
	var plugins []Plugin
	if hasImports(code) {
		resolver, err := c.sess.Resolvers.CSS()
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, NewImportPlugin(resolver, c.globber, c.runner.Load))
	}
	if scoped {
		plugins = append(plugins, NewScopePlugin(cfg.CSS.Modules, cfg.Root))
	}
	if postcss != nil {
		for _, spec := range postcss.Plugins {
			p, err := NewConfigPlugin(spec)
			if err != nil {
				return nil, err
			}
			plugins = append(plugins, p)
		}
	}
	if c.replace != nil {
		plugins = append(plugins, NewURLPlugin(c.replace))
	}
	return plugins, nil
}

func (c *Compiler) warn(file, code string, msg domain.Message) {
	text := fmt.Sprintf("[%s] %s", msg.Plugin, msg.Text)
	if msg.Line > 0 {
		text = fmt.Sprintf("%s (%s:%d:%d)", text, file, msg.Line, msg.Column)
		if frame := domain.CodeFrame(code, msg.Line, msg.Column); frame != "" {
			text += "\n" + frame
		}
	}
	c.logger.Warn(text)
}

// FormatSourceMap makes the sources of m absolute relative to the directory of file.
// Virtual sources such as "<input css 1>" are prefixed with a NUL byte.
func FormatSourceMap(m *sourcemap.Map, file string) *sourcemap.Map {
	if m == nil {
		return nil
	}
	out := m.Clone()
	dir := filepath.Dir(file)
	for i, src := range out.Sources {
		switch {
		case strings.HasPrefix(src, "<"):
			out.Sources[i] = "\x00" + src
		case src == "":
			out.Sources[i] = file
		case !filepath.IsAbs(src):
			out.Sources[i] = filepath.Join(dir, filepath.FromSlash(src))
		}
	}
	out.SourceRoot = ""
	return out
}

func hasImports(code string) bool {
	return strings.Contains(code, "@import")
}

// depSet keeps dependency files in insertion order without duplicates.
type depSet struct {
	seen map[string]bool
	list []string
}

func newDepSet(exclude string) *depSet {
	return &depSet{seen: map[string]bool{exclude: true}}
}

func (d *depSet) add(files ...string) {
	for _, f := range files {
		if f == "" || d.seen[f] {
			continue
		}
		d.seen[f] = true
		d.list = append(d.list, f)
	}
}
