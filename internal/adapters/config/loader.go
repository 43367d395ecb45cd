// Package config provides the configuration loader for sheen.
package config

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
)

const (
	// DefaultFilename is the configuration file looked up in the working directory.
	DefaultFilename = "sheen.yaml"

	envPlatform  = "SHEEN_PLATFORM"
	envSourcemap = "SHEEN_SOURCEMAP"
	envMinify    = "SHEEN_MINIFY"

	defaultOutDir    = "dist"
	defaultCSSTarget = "chrome61"
	defaultCacheFile = ".sheen/units.json"
)

// PostcssConfigFiles are the file names searched for a transform chain configuration, in order.
var PostcssConfigFiles = []string{
	"postcss.config.yaml",
	"postcss.config.yml",
	".postcssrc.yaml",
	".postcssrc.yml",
	".postcssrc",
}

var defaultChunks = []domain.ChunkRule{
	{Match: "main.{js,ts}", CSS: "app.css"},
	{Match: "pages/**/*.{vue,nvue}", CSS: "[dir]/[name].css"},
}

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
	logger   ports.Logger
}

// NewLoader creates a new FileConfigLoader reading DefaultFilename.
func NewLoader(logger ports.Logger) *FileConfigLoader {
	return &FileConfigLoader{
		Filename: DefaultFilename,
		logger:   logger,
	}
}

// Load reads the configuration from the working directory.
// An empty file selects the default file name, which may be absent.
func (l *FileConfigLoader) Load(cwd, file string) (*domain.Config, error) {
	optional := file == ""
	if optional {
		file = l.Filename
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(cwd, file)
	}

	var sheenfile Sheenfile
	data, err := os.ReadFile(file) //nolint:gosec // path is provided by user
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &sheenfile); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to parse config file"), "path", file)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
		l.logger.Debug("no " + l.Filename + " found, using defaults")
	default:
		return nil, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", file)
	}

	env, err := l.environment(filepath.Dir(file))
	if err != nil {
		return nil, err
	}
	return build(filepath.Dir(file), &sheenfile, env)
}

// environment reads .env next to the config file and overlays the process environment.
func (l *FileConfigLoader) environment(dir string) (map[string]string, error) {
	env, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(err, "failed to read .env"), "dir", dir)
		}
		env = map[string]string{}
	}
	for _, key := range []string{envPlatform, envSourcemap, envMinify} {
		if v := os.Getenv(key); v != "" {
			env[key] = v
		}
	}
	return env, nil
}

func build(dir string, f *Sheenfile, env map[string]string) (*domain.Config, error) {
	if f.Version != "" && f.Version != "1" {
		return nil, invalid("unsupported config version", "version", f.Version)
	}

	root := absJoin(dir, f.Root)
	cfg := &domain.Config{
		Root:        root,
		OutDir:      absJoin(root, valueOr(f.OutDir, defaultOutDir)),
		Platform:    f.Platform,
		Defines:     f.Defines,
		Nvue:        f.Nvue,
		Entries:     f.Entries,
		Chunks:      defaultChunks,
		CachePath:   absJoin(root, valueOr(f.Cache, defaultCacheFile)),
		Parallelism: f.Parallelism,
	}
	if len(cfg.Entries) == 0 {
		cfg.Entries = []string{"main.js"}
	}
	if f.Manifest != "" {
		cfg.Manifest = absJoin(root, f.Manifest)
	} else if _, err := os.Stat(filepath.Join(root, "pages.json")); err == nil {
		cfg.Manifest = filepath.Join(root, "pages.json")
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.NumCPU()
	}

	if len(f.Chunks) > 0 {
		cfg.Chunks = make([]domain.ChunkRule, 0, len(f.Chunks))
		for _, c := range f.Chunks {
			if c.Match == "" || c.CSS == "" {
				return nil, invalid("chunk rule needs match and css", "match", c.Match)
			}
			if !doublestar.ValidatePattern(c.Match) {
				return nil, invalid("invalid chunk match pattern", "match", c.Match)
			}
			cfg.Chunks = append(cfg.Chunks, domain.ChunkRule{Match: c.Match, CSS: c.CSS})
		}
	}

	cfg.Alias = buildAlias(root, f.Resolve.Alias)

	css, err := buildCSS(root, &f.CSS)
	if err != nil {
		return nil, err
	}
	cfg.CSS = *css

	cfg.Build = domain.BuildOptions{
		Minify:            f.Build.Minify == nil || *f.Build.Minify,
		CSSTarget:         valueOr(f.Build.CSSTarget, defaultCSSTarget),
		AssetsDir:         valueOr(f.Build.AssetsDir, domain.DefaultAssetsDir),
		AssetsInlineLimit: domain.DefaultAssetsInlineLimit,
	}
	if f.Build.AssetsInlineLimit != nil {
		cfg.Build.AssetsInlineLimit = *f.Build.AssetsInlineLimit
	}
	for _, a := range f.Build.AppendImports {
		if a.Match == "" || a.Import == "" {
			return nil, invalid("appendImports rule needs match and import", "match", a.Match)
		}
		cfg.Build.AppendImports = append(cfg.Build.AppendImports, domain.AppendImportRule{Match: a.Match, Import: a.Import})
	}

	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildCSS(root string, c *CSSDTO) (*domain.CSSOptions, error) {
	opts := &domain.CSSOptions{
		DevSourcemap: c.DevSourcemap,
		Postcss:      domain.PostcssOption{SearchPath: c.Postcss.SearchPath},
		Modules: &domain.ModulesOptions{
			Disabled:           c.Modules.Disabled,
			ScopeBehaviour:     valueOr(c.Modules.ScopeBehaviour, "local"),
			GlobalModulePaths:  c.Modules.GlobalModulePaths,
			GenerateScopedName: valueOr(c.Modules.GenerateScopedName, domain.DefaultScopedName),
			HashPrefix:         c.Modules.HashPrefix,
			LocalsConvention:   c.Modules.LocalsConvention,
		},
	}
	switch opts.Modules.ScopeBehaviour {
	case "local", "global":
	default:
		return nil, invalid("invalid modules.scopeBehaviour", "scopeBehaviour", opts.Modules.ScopeBehaviour)
	}
	switch opts.Modules.LocalsConvention {
	case "", "camelCase", "camelCaseOnly", "dashes", "dashesOnly":
	default:
		return nil, invalid("invalid modules.localsConvention", "localsConvention", opts.Modules.LocalsConvention)
	}

	if c.Postcss.Inline != nil {
		opts.Postcss.Inline = toPostcssConfig("", c.Postcss.Inline)
	} else if opts.Postcss.SearchPath != "" {
		opts.Postcss.SearchPath = absJoin(root, opts.Postcss.SearchPath)
	}

	if len(c.PreprocessorOptions) > 0 {
		opts.PreprocessorOptions = make(map[domain.Family]domain.PreprocessorOptions)
	}
	for _, lang := range slices.Sorted(maps.Keys(c.PreprocessorOptions)) {
		dialect := domain.Dialect(lang)
		if !dialect.IsPreprocessed() {
			return nil, invalid("unknown preprocessor dialect", "dialect", lang)
		}
		dto := c.PreprocessorOptions[lang]
		opts.PreprocessorOptions[dialect.Family()] = domain.PreprocessorOptions{
			AdditionalData: dto.AdditionalData,
			IncludePaths:   absJoinAll(root, dto.IncludePaths),
			Paths:          absJoinAll(root, dto.Paths),
			Imports:        dto.Imports,
			IndentedSyntax: dto.IndentedSyntax,
		}
	}
	return opts, nil
}

// buildAlias returns the configured aliases, longest first, followed by the default @ alias.
func buildAlias(root string, alias map[string]string) []domain.Alias {
	out := make([]domain.Alias, 0, len(alias)+1)
	for find, replacement := range alias {
		out = append(out, domain.Alias{Find: find, Replacement: absJoin(root, replacement)})
	}
	slices.SortFunc(out, func(a, b domain.Alias) int {
		if d := len(b.Find) - len(a.Find); d != 0 {
			return d
		}
		return strings.Compare(a.Find, b.Find)
	})
	if _, ok := alias["@"]; !ok {
		out = append(out, domain.Alias{Find: "@", Replacement: root})
	}
	return out
}

func applyEnv(cfg *domain.Config, env map[string]string) error {
	if v := env[envPlatform]; v != "" {
		cfg.Platform = v
	}
	if v := env[envSourcemap]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return invalid("invalid boolean", envSourcemap, v)
		}
		cfg.CSS.DevSourcemap = b
	}
	if v := env[envMinify]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return invalid("invalid boolean", envMinify, v)
		}
		cfg.Build.Minify = b
	}
	return nil
}

// LoadPostcssConfig resolves the transform chain configuration.
// It returns nil, nil when no configuration exists.
func (l *FileConfigLoader) LoadPostcssConfig(opt domain.PostcssOption, root string) (*domain.PostcssConfig, error) {
	if opt.Inline != nil {
		if err := validatePlugins(opt.Inline.Plugins); err != nil {
			return nil, postcssError("inline", err)
		}
		return opt.Inline, nil
	}

	searchPath := valueOr(opt.SearchPath, root)
	for _, name := range PostcssConfigFiles {
		path := filepath.Join(searchPath, name)
		data, err := os.ReadFile(path) //nolint:gosec // path is derived from the configured search path
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, postcssError(searchPath, err)
		}

		var file PostcssFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, postcssError(searchPath, err)
		}
		cfg := toPostcssConfig(path, &file)
		if err := validatePlugins(cfg.Plugins); err != nil {
			return nil, postcssError(searchPath, err)
		}
		l.logger.Debug("using postcss config " + path)
		return cfg, nil
	}
	return nil, nil
}

func validatePlugins(plugins []domain.PluginSpec) error {
	for _, p := range plugins {
		if !domain.IsKnownPlugin(p.Name) {
			return zerr.With(zerr.Wrap(domain.ErrUnknownPlugin, "plugin not registered"), "plugin", p.Name)
		}
	}
	return nil
}

func postcssError(searchPath string, cause error) error {
	err := zerr.Wrap(domain.ErrPostcssConfig, "Failed to load PostCSS config (searchPath: "+searchPath+")")
	return zerr.With(err, "cause", cause.Error())
}

func toPostcssConfig(path string, f *PostcssFile) *domain.PostcssConfig {
	cfg := &domain.PostcssConfig{Path: path}
	for _, p := range f.Plugins {
		cfg.Plugins = append(cfg.Plugins, domain.PluginSpec{Name: p.Name, Options: p.Options})
	}
	return cfg
}

func invalid(msg, key string, value any) error {
	return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, msg), key, value)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func absJoin(base, p string) string {
	if p == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func absJoinAll(base string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = absJoin(base, p)
	}
	return out
}
