// Package plugin hosts the style pipeline behind bundler-shaped hooks.
package plugin

import (
	"context"
	"strings"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/core/sourcemap"
	"go.trai.ch/sheen/internal/engine/preprocess"
	"go.trai.ch/sheen/internal/engine/session"
	"go.trai.ch/sheen/internal/engine/transform"
)

// TransformResult is the output of a transform hook.
type TransformResult struct {
	Code string
	Map  *sourcemap.Map
	Deps []string
}

// CSSPlugin compiles style units to CSS.
type CSSPlugin struct {
	sess     *session.Session
	compiler *transform.Compiler
}

// NewCSSPlugin creates the css plugin of a session.
func NewCSSPlugin(
	sess *session.Session,
	router *preprocess.Router,
	loader ports.ConfigLoader,
	globber ports.Globber,
	logger ports.Logger,
) *CSSPlugin {
	p := &CSSPlugin{sess: sess}
	runner := preprocess.NewRunner(router, sess.Config, sess.Resolvers.ForFamily)
	p.compiler = transform.NewCompiler(sess, runner, loader, globber, logger, p.replaceURL)
	return p
}

// Name returns the plugin name.
func (p *CSSPlugin) Name() string {
	return "sheen:css"
}

// BuildStart resets the per-build state of the session.
func (p *CSSPlugin) BuildStart() {
	p.sess.Reset()
}

// ConfigureServer attaches the watch-mode host.
func (p *CSSPlugin) ConfigureServer(server ports.DevServer) {
	p.compiler.SetDevServer(server)
}

// Transform compiles a style unit. Other modules yield nil.
func (p *CSSPlugin) Transform(ctx context.Context, id, code string) (*TransformResult, error) {
	if !domain.IsStyleRequest(id) || domain.IsCommonJSProxy(id) {
		return nil, nil
	}
	res, err := p.compiler.Compile(ctx, id, code)
	if err != nil {
		return nil, err
	}
	if res.Modules != nil {
		p.sess.SetModules(id, res.Modules)
	}
	return &TransformResult{Code: res.Code, Map: res.Map, Deps: res.Deps}, nil
}

// replaceURL turns a url() reference into an inline data url or an asset placeholder.
// References that do not resolve are returned as written.
func (p *CSSPlugin) replaceURL(url, importer string) (string, error) {
	spec := url
	if strings.HasPrefix(spec, "/") && !strings.HasPrefix(spec, "//") {
		spec = "@" + spec
	}
	resolver, err := p.sess.Resolvers.URL()
	if err != nil {
		return "", err
	}
	resolved, ok := resolver.Resolve(spec, importer)
	if !ok {
		return url, nil
	}

	file, postfix := domain.SplitPostfix(resolved)
	data, hash, err := p.sess.Assets.Read(file)
	if err != nil {
		return "", err
	}
	limit := p.sess.Config.Build.AssetsInlineLimit
	if len(data) < limit && postfix == "" {
		return session.DataURL(file, data), nil
	}
	p.sess.Assets.Register(file, data, hash)
	return session.Placeholder(hash, postfix), nil
}

// Restore reinstates a unit compiled by an earlier build: its class mapping and
// the assets its text references.
func (p *CSSPlugin) Restore(rec *domain.UnitRecord) error {
	if rec.Modules != nil {
		p.sess.SetModules(rec.ID, rec.Modules)
	}
	for _, file := range rec.Assets {
		data, hash, err := p.sess.Assets.Read(file)
		if err != nil {
			return err
		}
		p.sess.Assets.Register(file, data, hash)
	}
	return nil
}

// Modules returns the class mapping recorded for a scoped unit in this build.
func (p *CSSPlugin) Modules(id string) (map[string]string, bool) {
	return p.sess.Modules(id)
}
