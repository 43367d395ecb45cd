// Package chunk groups compiled style units into output stylesheets.
package chunk

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/engine/session"
)

// Output is an emitted stylesheet.
type Output struct {
	Name    string
	UnitIDs []string
	Size    int
}

// Aggregator builds and emits the stylesheet chunks of a bundle.
type Aggregator struct {
	sess      *session.Session
	minifier  ports.Minifier
	globber   ports.Globber
	logger    ports.Logger
	telemetry ports.Telemetry
}

// NewAggregator creates an Aggregator.
func NewAggregator(
	sess *session.Session,
	minifier ports.Minifier,
	globber ports.Globber,
	logger ports.Logger,
	telemetry ports.Telemetry,
) *Aggregator {
	return &Aggregator{
		sess:      sess,
		minifier:  minifier,
		globber:   globber,
		logger:    logger,
		telemetry: telemetry,
	}
}

// Generate assigns style units to chunks and emits one stylesheet per chunk,
// followed by every registered asset. It must run after all units are transformed.
func (a *Aggregator) Generate(ctx context.Context, bundle ports.Bundle) ([]Output, error) {
	for _, id := range bundle.ModuleIDs() {
		name, ok := a.chunkName(id)
		if !ok {
			continue
		}
		a.sess.AddChunk(name, collect(bundle, id))
	}

	chunks := a.sess.Chunks()
	outputs := make([]Output, 0, len(chunks))
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}
		code, err := a.render(ctx, c)
		if err != nil {
			return outputs, err
		}
		if err := bundle.EmitFile(c.Name, []byte(code)); err != nil {
			return outputs, err
		}
		outputs = append(outputs, Output{Name: c.Name, UnitIDs: c.UnitIDs, Size: len(code)})
	}

	for _, asset := range a.sess.Assets.All() {
		if err := bundle.EmitFile(asset.Name, asset.Data); err != nil {
			return outputs, err
		}
	}
	return outputs, nil
}

func (a *Aggregator) render(ctx context.Context, c session.Chunk) (code string, err error) {
	_, vertex := a.telemetry.Record(ctx, c.Name, ports.WithGroup("chunks"))
	defer func() { vertex.Complete(err) }()

	parts := make([]string, 0, len(c.UnitIDs))
	for _, id := range c.UnitIDs {
		if text, ok := a.sess.Style(id); ok {
			parts = append(parts, text)
		}
	}
	code = strings.Join(parts, "\n")

	code, err = a.resolveAssets(c.Name, code)
	if err != nil {
		return "", err
	}
	code = hoistAtRules(code)

	cfg := a.sess.Config
	if cfg.Build.Minify {
		var res ports.MinifyResult
		res, err = a.minifier.Minify(code, c.Name, cfg.Build.CSSTarget)
		if err != nil {
			return "", err
		}
		for _, w := range res.Warnings {
			a.logger.Warn("warnings when minifying css:\n" + w)
			vertex.Log(domain.LogLevelWarn, w)
		}
		code = res.Code
	}
	return a.appendImports(c.Name, code), nil
}

// chunkName returns the stylesheet emitted for module id, if a chunk rule matches it.
func (a *Aggregator) chunkName(id string) (string, bool) {
	cfg := a.sess.Config
	if len(cfg.Chunks) == 0 {
		return "", false
	}
	rel := domain.CleanURL(id)
	if r, err := filepath.Rel(cfg.Root, rel); err == nil && !strings.HasPrefix(r, "..") {
		rel = r
	}
	rel = filepath.ToSlash(rel)
	for _, rule := range cfg.Chunks {
		if a.globber.Match(rule.Match, rel) {
			return domain.ChunkFileName(rule.CSS, rel), true
		}
	}
	return "", false
}

// resolveAssets replaces asset placeholders with paths relative to the chunk.
func (a *Aggregator) resolveAssets(chunkName, code string) (string, error) {
	if !strings.Contains(code, "__SHEEN_ASSET__") {
		return code, nil
	}
	dir := path.Dir(chunkName)
	var missing error
	out := session.PlaceholderRE.ReplaceAllStringFunc(code, func(m string) string {
		sub := session.PlaceholderRE.FindStringSubmatch(m)
		asset, ok := a.sess.Assets.Get(sub[1])
		if !ok {
			if missing == nil {
				missing = zerr.With(zerr.Wrap(domain.ErrAssetNotFound, "unknown asset placeholder"), "hash", sub[1])
			}
			return m
		}
		rel, err := filepath.Rel(filepath.FromSlash(dir), filepath.FromSlash(asset.Name))
		if err != nil {
			rel = asset.Name
		}
		return filepath.ToSlash(rel) + sub[2]
	})
	if missing != nil {
		return "", zerr.With(missing, "chunk", chunkName)
	}
	return out, nil
}

// appendImports adds the configured @import rules to chunks matching their rule.
// The rules go after a leading @charset and before everything else.
func (a *Aggregator) appendImports(chunkName, code string) string {
	var imports strings.Builder
	for _, rule := range a.sess.Config.Build.AppendImports {
		if a.globber.Match(rule.Match, chunkName) {
			imports.WriteString(`@import "` + rule.Import + `";` + "\n")
		}
	}
	if imports.Len() == 0 {
		return code
	}
	head := ""
	if rules := scanAtRules(code); len(rules) > 0 && rules[0].name == "@charset" && rules[0].start == 0 {
		head, code = code[:rules[0].end], code[rules[0].end:]
	}
	return head + imports.String() + code
}

// collect returns the style units reachable from entry in depth-first order.
// Style units are leaves and the route manifest subtree is skipped.
func collect(bundle ports.Bundle, entry string) []string {
	var ids []string
	visited := map[string]bool{}
	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		if domain.IsStyleRequest(id) && !domain.IsCommonJSProxy(id) {
			ids = append(ids, id)
			return
		}
		if strings.HasSuffix(domain.CleanURL(id), domain.ManifestModuleSuffix) {
			return
		}
		for _, imported := range bundle.ImportedIDs(id) {
			visit(imported)
		}
	}
	visit(entry)
	return ids
}
