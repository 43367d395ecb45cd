package plugin

import (
	"context"
	"slices"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/engine/chunk"
	"go.trai.ch/sheen/internal/engine/session"
)

// CSSPostPlugin records compiled styles and emits them as chunks.
type CSSPostPlugin struct {
	sess       *session.Session
	aggregator *chunk.Aggregator
}

// NewCSSPostPlugin creates the css-post plugin of a session.
func NewCSSPostPlugin(sess *session.Session, aggregator *chunk.Aggregator) *CSSPostPlugin {
	return &CSSPostPlugin{sess: sess, aggregator: aggregator}
}

// Name returns the plugin name.
func (p *CSSPostPlugin) Name() string {
	return "sheen:css-post"
}

// BuildStart is a no-op; the css plugin resets the shared session state.
func (p *CSSPostPlugin) BuildStart() {}

// Transform records the compiled text of a style unit and returns the
// script code standing in for it: the class mapping of scoped units, empty otherwise.
func (p *CSSPostPlugin) Transform(id, css string) (string, bool) {
	if !domain.IsStyleRequest(id) || domain.IsCommonJSProxy(id) {
		return "", false
	}
	p.sess.SetStyle(id, css)
	if modules, ok := p.sess.Modules(id); ok {
		return domain.ModulesToESM(modules), true
	}
	return "", true
}

// GenerateBundle emits the stylesheet chunks and the assets they reference.
func (p *CSSPostPlugin) GenerateBundle(ctx context.Context, bundle ports.Bundle) ([]chunk.Output, error) {
	return p.aggregator.Generate(ctx, bundle)
}

// ReferencedAssets returns the source files of the assets referenced by css.
func (p *CSSPostPlugin) ReferencedAssets(css string) []string {
	var files []string
	for _, m := range session.PlaceholderRE.FindAllStringSubmatch(css, -1) {
		if asset, ok := p.sess.Assets.Get(m[1]); ok && !slices.Contains(files, asset.Source) {
			files = append(files, asset.Source)
		}
	}
	return files
}
