package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
)

const defaultResolveCacheSize = 4096

var (
	_ ports.Resolver        = (*ModuleResolver)(nil)
	_ ports.ResolverFactory = (*ResolverFactory)(nil)
)

// ResolverFactory builds memoizing module resolvers.
type ResolverFactory struct {
	cacheSize int
}

// NewResolverFactory creates a new ResolverFactory.
func NewResolverFactory() *ResolverFactory {
	return &ResolverFactory{cacheSize: defaultResolveCacheSize}
}

// NewResolver creates a resolver for the given options.
func (f *ResolverFactory) NewResolver(opts ports.ResolveOptions) (ports.Resolver, error) {
	return NewModuleResolver(opts, f.cacheSize)
}

type resolution struct {
	path string
	ok   bool
}

// ModuleResolver resolves import specifiers the way a node-style bundler does:
// aliases first, then relative and absolute paths, then packages under node_modules.
type ModuleResolver struct {
	opts  ports.ResolveOptions
	cache *lru.Cache[string, resolution]
}

// NewModuleResolver creates a ModuleResolver memoizing up to cacheSize lookups.
func NewModuleResolver(opts ports.ResolveOptions, cacheSize int) (*ModuleResolver, error) {
	cache, err := lru.New[string, resolution](cacheSize)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create resolve cache")
	}
	return &ModuleResolver{opts: opts, cache: cache}, nil
}

// Resolve resolves specifier as imported from the file importer.
// The query or hash suffix of specifier is preserved on the result.
func (r *ModuleResolver) Resolve(specifier, importer string) (string, bool) {
	if specifier == "" || domain.IsExternalURL(specifier) || domain.IsDataURL(specifier) {
		return "", false
	}

	dir := filepath.Dir(importer)
	key := dir + "\x00" + specifier
	if res, ok := r.cache.Get(key); ok {
		return res.path, res.ok
	}

	p, postfix := domain.SplitPostfix(specifier)
	resolved, ok := r.resolvePath(p, dir)
	if ok {
		resolved += postfix
	}
	r.cache.Add(key, resolution{path: resolved, ok: ok})
	return resolved, ok
}

func (r *ModuleResolver) resolvePath(spec, dir string) (string, bool) {
	spec = r.applyAlias(spec)
	spec = strings.TrimPrefix(spec, "~")

	if filepath.IsAbs(spec) {
		if p, ok := r.tryFile(spec); ok {
			return p, true
		}
		return r.tryFile(filepath.Join(r.opts.Root, spec))
	}

	if isRelative(spec) {
		return r.tryFile(filepath.Join(dir, spec))
	}

	if r.opts.PreferRelative {
		if p, ok := r.tryFile(filepath.Join(dir, spec)); ok {
			return p, true
		}
	}
	return r.resolvePackage(spec, dir)
}

func (r *ModuleResolver) applyAlias(spec string) string {
	for _, a := range r.opts.Alias {
		if spec == a.Find {
			return a.Replacement
		}
		if rest, ok := strings.CutPrefix(spec, a.Find+"/"); ok {
			return filepath.Join(a.Replacement, rest)
		}
	}
	return spec
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." ||
		strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// resolvePackage looks up a bare specifier in node_modules directories
// from dir up to the file system root.
func (r *ModuleResolver) resolvePackage(spec, dir string) (string, bool) {
	name, sub := splitPackage(spec)
	for cur := dir; ; {
		pkgDir := filepath.Join(cur, "node_modules", name)
		if isDir(pkgDir) {
			if sub != "" {
				return r.tryFile(filepath.Join(pkgDir, sub))
			}
			if p, ok := r.resolvePackageEntry(pkgDir); ok {
				return p, true
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", false
		}
		cur = parent
	}
}

func (r *ModuleResolver) resolvePackageEntry(pkgDir string) (string, bool) {
	manifest := readPackageManifest(filepath.Join(pkgDir, "package.json"))
	for _, field := range r.opts.MainFields {
		entry, ok := manifest[field].(string)
		if !ok || entry == "" {
			continue
		}
		if p, ok := r.tryFile(filepath.Join(pkgDir, entry)); ok {
			return p, true
		}
	}
	return r.tryIndex(pkgDir)
}

func splitPackage(spec string) (string, string) {
	parts := strings.SplitN(spec, "/", 3)
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 {
		name := parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			return name, parts[2]
		}
		return name, ""
	}
	name, sub, _ := strings.Cut(spec, "/")
	return name, sub
}

// tryFile probes p as given, with each configured extension, with the
// partial prefix and finally as a directory index.
func (r *ModuleResolver) tryFile(p string) (string, bool) {
	if isFile(p) {
		return p, true
	}
	for _, ext := range r.opts.Extensions {
		if isFile(p + ext) {
			return p + ext, true
		}
	}
	if r.opts.TryPrefix != "" {
		prefixed := filepath.Join(filepath.Dir(p), r.opts.TryPrefix+filepath.Base(p))
		if isFile(prefixed) {
			return prefixed, true
		}
		for _, ext := range r.opts.Extensions {
			if isFile(prefixed + ext) {
				return prefixed + ext, true
			}
		}
	}
	if r.opts.TryIndex && isDir(p) {
		return r.tryIndex(p)
	}
	return "", false
}

func (r *ModuleResolver) tryIndex(dir string) (string, bool) {
	if !r.opts.TryIndex {
		return "", false
	}
	names := []string{"index"}
	if r.opts.TryPrefix != "" {
		names = append(names, r.opts.TryPrefix+"index")
	}
	for _, name := range names {
		for _, ext := range r.opts.Extensions {
			candidate := filepath.Join(dir, name+ext)
			if isFile(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func readPackageManifest(path string) map[string]any {
	data, err := os.ReadFile(path) //nolint:gosec // Path is derived from node_modules lookup
	if err != nil {
		return nil
	}
	var manifest map[string]any
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil
	}
	return manifest
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
