package config

import (
	"gopkg.in/yaml.v3"
)

// Sheenfile represents the structure of the sheen.yaml configuration file.
type Sheenfile struct {
	Version     string     `yaml:"version"`
	Root        string     `yaml:"root"`
	OutDir      string     `yaml:"outDir"`
	Platform    string     `yaml:"platform"`
	Defines     []string   `yaml:"defines"`
	Nvue        bool       `yaml:"nvue"`
	Entries     []string   `yaml:"entries"`
	Manifest    string     `yaml:"manifest"`
	Chunks      []ChunkDTO `yaml:"chunks"`
	Resolve     ResolveDTO `yaml:"resolve"`
	CSS         CSSDTO     `yaml:"css"`
	Build       BuildDTO   `yaml:"build"`
	Cache       string     `yaml:"cache"`
	Parallelism int        `yaml:"parallelism"`
}

// ChunkDTO maps entry modules to a stylesheet file name.
type ChunkDTO struct {
	Match string `yaml:"match"`
	CSS   string `yaml:"css"`
}

// ResolveDTO holds module resolution options.
type ResolveDTO struct {
	Alias map[string]string `yaml:"alias"`
}

// CSSDTO holds the css section.
type CSSDTO struct {
	Modules             ModulesDTO                 `yaml:"modules"`
	PreprocessorOptions map[string]PreprocessorDTO `yaml:"preprocessorOptions"`
	Postcss             PostcssDTO                 `yaml:"postcss"`
	DevSourcemap        bool                       `yaml:"devSourcemap"`
}

// ModulesDTO accepts either `false` or a mapping of CSS Modules options.
type ModulesDTO struct {
	Disabled           bool     `yaml:"-"`
	ScopeBehaviour     string   `yaml:"scopeBehaviour"`
	GlobalModulePaths  []string `yaml:"globalModulePaths"`
	GenerateScopedName string   `yaml:"generateScopedName"`
	HashPrefix         string   `yaml:"hashPrefix"`
	LocalsConvention   string   `yaml:"localsConvention"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *ModulesDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var enabled bool
		if err := node.Decode(&enabled); err != nil {
			return err
		}
		*m = ModulesDTO{Disabled: !enabled}
		return nil
	}
	type plain ModulesDTO
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*m = ModulesDTO(p)
	return nil
}

// PreprocessorDTO holds the options of one preprocessor dialect.
type PreprocessorDTO struct {
	AdditionalData string   `yaml:"additionalData"`
	IncludePaths   []string `yaml:"includePaths"`
	Paths          []string `yaml:"paths"`
	Imports        []string `yaml:"imports"`
	IndentedSyntax bool     `yaml:"indentedSyntax"`
}

// PostcssDTO accepts either a search path string or an inline plugin configuration.
type PostcssDTO struct {
	SearchPath string
	Inline     *PostcssFile
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *PostcssDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&p.SearchPath)
	}
	p.Inline = &PostcssFile{}
	return node.Decode(p.Inline)
}

// PostcssFile is the structure of a transform chain configuration file.
type PostcssFile struct {
	Plugins PluginsDTO `yaml:"plugins"`
}

// PluginDTO names a plugin and its options.
type PluginDTO struct {
	Name    string         `yaml:"name"`
	Options map[string]any `yaml:"options"`
}

// PluginsDTO accepts a sequence of PluginDTO or an ordered mapping of name to options.
type PluginsDTO []PluginDTO

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *PluginsDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var list []PluginDTO
		if err := node.Decode(&list); err != nil {
			return err
		}
		*p = list
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return &yaml.TypeError{Errors: []string{"plugins must be a list or a mapping"}}
	}
	list := make([]PluginDTO, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		plugin := PluginDTO{Name: node.Content[i].Value}
		if err := node.Content[i+1].Decode(&plugin.Options); err != nil {
			return err
		}
		list = append(list, plugin)
	}
	*p = list
	return nil
}

// BuildDTO holds output options.
type BuildDTO struct {
	Minify            *bool             `yaml:"minify"`
	CSSTarget         string            `yaml:"cssTarget"`
	AssetsDir         string            `yaml:"assetsDir"`
	AssetsInlineLimit *int              `yaml:"assetsInlineLimit"`
	AppendImports     []AppendImportDTO `yaml:"appendImports"`
}

// AppendImportDTO appends an @import to matching chunk files.
type AppendImportDTO struct {
	Match  string `yaml:"match"`
	Import string `yaml:"import"`
}
