package domain

import (
	"path"
	"strings"
)

const (
	// DefaultAssetsDir is the directory emitted assets are written under.
	DefaultAssetsDir = "assets"

	// DefaultAssetsInlineLimit is the byte size under which assets become data urls.
	DefaultAssetsInlineLimit = 4096

	// DefaultScopedName is the pattern used to build scoped class names.
	DefaultScopedName = "_[local]_[hash:5]"

	// ManifestModuleSuffix marks the generated route manifest module.
	ManifestModuleSuffix = "pages.json.js"
)

// Config is the resolved build configuration.
type Config struct {
	Root        string
	OutDir      string
	Platform    string
	Defines     []string
	Nvue        bool
	Entries     []string
	Manifest    string
	Chunks      []ChunkRule
	Alias       []Alias
	CSS         CSSOptions
	Build       BuildOptions
	CachePath   string
	Parallelism int
}

// Alias maps an import prefix to a replacement path.
type Alias struct {
	Find        string
	Replacement string
}

// ChunkRule assigns a stylesheet file name to modules whose root-relative path matches Match.
// CSS may contain the [dir] and [name] placeholders.
type ChunkRule struct {
	Match string
	CSS   string
}

// CSSOptions holds style-specific options.
type CSSOptions struct {
	Modules             *ModulesOptions
	PreprocessorOptions map[Family]PreprocessorOptions
	Postcss             PostcssOption
	DevSourcemap        bool
}

// ModulesOptions configures CSS Modules scoping.
type ModulesOptions struct {
	Disabled           bool
	ScopeBehaviour     string
	GlobalModulePaths  []string
	GenerateScopedName string
	HashPrefix         string
	LocalsConvention   string

	// OnModules receives every produced class mapping.
	OnModules func(id string, modules map[string]string)
}

// PreprocessorOptions is the user-supplied option set for one dialect family.
type PreprocessorOptions struct {
	AdditionalData string
	IncludePaths   []string
	Paths          []string
	Imports        []string
	IndentedSyntax bool

	// AdditionalDataFunc replaces the source when set.
	AdditionalDataFunc func(source, filename string) (string, error)
}

// PostcssOption selects where the transform chain configuration comes from.
// Inline wins over SearchPath; an empty SearchPath means the project root.
type PostcssOption struct {
	Inline     *PostcssConfig
	SearchPath string
}

// PostcssConfig is a resolved transform chain configuration.
type PostcssConfig struct {
	Path    string
	Plugins []PluginSpec
}

// PluginSpec names a registered transform plugin and its options.
type PluginSpec struct {
	Name    string
	Options map[string]any
}

// BuildOptions holds output options.
type BuildOptions struct {
	Minify            bool
	CSSTarget         string
	AssetsDir         string
	AssetsInlineLimit int
	AppendImports     []AppendImportRule
}

// AppendImportRule appends an @import of Import to chunk files matching Match.
// The import is added after minification.
type AppendImportRule struct {
	Match  string
	Import string
}

// KnownPlugins lists the transform plugins a configuration may reference.
var KnownPlugins = []string{"strip-comments", "unit-transform"}

// IsKnownPlugin reports whether name is a registered transform plugin.
func IsKnownPlugin(name string) bool {
	for _, p := range KnownPlugins {
		if p == name {
			return true
		}
	}
	return false
}

// PreprocessorOptionsFor returns the configured options for the dialect family.
func (c *Config) PreprocessorOptionsFor(f Family) PreprocessorOptions {
	if c.CSS.PreprocessorOptions == nil {
		return PreprocessorOptions{}
	}
	return c.CSS.PreprocessorOptions[f]
}

// IsDefined reports whether a conditional compilation name is active for this build.
func (c *Config) IsDefined(name string) bool {
	platform := strings.ToUpper(c.Platform)
	name = strings.ToUpper(strings.TrimSpace(name))
	if platform != "" && (name == platform || strings.HasPrefix(platform, name+"-")) {
		return true
	}
	if c.Nvue && (name == "APP-NVUE" || name == "APP-PLUS-NVUE") {
		return true
	}
	for _, d := range c.Defines {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

// ChunkFileName renders a chunk rule template for a root-relative module path.
func ChunkFileName(template, rel string) string {
	rel = CleanURL(rel)
	dir := path.Dir(rel)
	name := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	out := strings.ReplaceAll(template, "[name]", name)
	out = strings.ReplaceAll(out, "[dir]", dir)
	return path.Clean(out)
}
