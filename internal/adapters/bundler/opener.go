package bundler

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
)

var (
	_ ports.BundleOpener = (*Opener)(nil)

	scriptExtensions = []string{".js", ".ts", ".mjs", ".jsx", ".tsx", ".vue", ".nvue", ".json"}
)

// Opener scans a project from its entries and builds the module graph.
type Opener struct {
	resolvers ports.ResolverFactory
	logger    ports.Logger
}

// NewOpener creates a new Opener.
func NewOpener(resolvers ports.ResolverFactory, logger ports.Logger) *Opener {
	return &Opener{resolvers: resolvers, logger: logger}
}

type scan struct {
	ctx          context.Context
	cfg          *domain.Config
	bundle       *Bundle
	resolver     ports.Resolver
	manifestFile string
	manifestID   string
	logger       ports.Logger
}

// Open implements ports.BundleOpener.
func (o *Opener) Open(ctx context.Context, cfg *domain.Config) (ports.Bundle, error) {
	resolver, err := o.resolvers.NewResolver(ports.ResolveOptions{
		Root:       cfg.Root,
		Extensions: scriptExtensions,
		MainFields: []string{"module", "main"},
		TryIndex:   true,
		Alias:      cfg.Alias,
	})
	if err != nil {
		return nil, err
	}

	s := &scan{
		ctx:      ctx,
		cfg:      cfg,
		bundle:   newBundle(cfg.OutDir),
		resolver: resolver,
		logger:   o.logger,
	}
	if cfg.Manifest != "" {
		s.manifestFile = cfg.Manifest
		s.manifestID = strings.TrimSuffix(cfg.Manifest, ".json") + ".json.js"
	}

	var entries []string
	for _, e := range cfg.Entries {
		file := e
		if !filepath.IsAbs(file) {
			file = filepath.Join(cfg.Root, file)
		}
		if _, err := os.Stat(file); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "entry not found"), "entry", e)
		}
		entries = append(entries, file)
		if err := s.visit(file); err != nil {
			return nil, err
		}
	}

	// The route manifest is implicitly imported by the first entry.
	if s.manifestID != "" && len(entries) > 0 && !s.bundle.graph.Has(s.manifestID) {
		if err := s.visit(s.manifestID); err != nil {
			return nil, err
		}
		if err := s.bundle.graph.AddImport(entries[0], s.manifestID); err != nil {
			return nil, err
		}
	}

	o.logger.Debug("scanned " + filepath.Base(cfg.Root) + ": " + strconv.Itoa(s.bundle.graph.Len()) + " modules")
	return s.bundle, nil
}

func (s *scan) visit(id string) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if s.bundle.graph.Has(id) {
		return nil
	}
	if err := s.bundle.graph.AddModule(id); err != nil {
		return err
	}

	var (
		code    string
		virtual []styleBlock
	)
	switch {
	case domain.IsStyleRequest(id) || domain.IsCommonJSProxy(id):
		return nil
	case id == s.manifestID:
		pages, err := readManifest(s.manifestFile)
		if err != nil {
			return err
		}
		code = manifestModule(pages)
		s.bundle.virtual[id] = code
	default:
		file := domain.CleanURL(id)
		ext := filepath.Ext(file)
		if ext == ".json" || !isScript(ext) {
			return nil
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to read module"), "module_id", id)
		}
		code = string(data)
		if ext == ".vue" || ext == ".nvue" {
			code, virtual = splitComponent(file, code)
		}
	}

	importer := domain.CleanURL(id)
	if id == s.manifestID {
		importer = s.manifestFile
	}
	for _, spec := range scanImports(code) {
		dep, ok := s.resolve(spec, importer)
		if !ok {
			continue
		}
		if err := s.visit(dep); err != nil {
			return err
		}
		if err := s.bundle.graph.AddImport(id, dep); err != nil {
			return err
		}
	}
	for _, block := range virtual {
		s.bundle.virtual[block.ID] = block.Content
		if err := s.visit(block.ID); err != nil {
			return err
		}
		if err := s.bundle.graph.AddImport(id, block.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *scan) resolve(spec, importer string) (string, bool) {
	if domain.IsExternalURL(spec) {
		return "", false
	}
	resolved, ok := s.resolver.Resolve(spec, importer)
	if !ok {
		s.logger.Debug("unresolved import " + spec + " from " + importer)
		return "", false
	}
	if s.manifestFile != "" && domain.CleanURL(resolved) == s.manifestFile {
		return s.manifestID, true
	}
	if strings.Contains(resolved, string(filepath.Separator)+"node_modules"+string(filepath.Separator)) &&
		!domain.IsStyleRequest(resolved) {
		return "", false
	}
	return resolved, true
}

func isScript(ext string) bool {
	for _, e := range scriptExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
