package preprocess

import (
	"path/filepath"

	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/sourcemap"
)

// MergeOptions builds the preprocessor options for a unit from the
// dialect defaults and the configured per-dialect options.
func MergeOptions(id string, d domain.Dialect, cfg *domain.Config) domain.PreprocessOptions {
	user := cfg.PreprocessorOptionsFor(d.Family())
	nodeModules := filepath.Join(cfg.Root, "node_modules")

	opts := domain.PreprocessOptions{
		Filename:        domain.CleanURL(id),
		Alias:           cfg.Alias,
		Imports:         user.Imports,
		EnableSourcemap: cfg.CSS.DevSourcemap,
	}
	switch d.Family() {
	case domain.FamilySass:
		opts.IncludePaths = append([]string{nodeModules}, user.IncludePaths...)
		opts.IndentedSyntax = d == domain.DialectSass || user.IndentedSyntax
	case domain.FamilyLess, domain.FamilyStylus:
		opts.Paths = append([]string{nodeModules}, user.Paths...)
	case domain.FamilyPlain:
	}
	return opts
}

// GetSource prepends the configured additional data to source.
// When enableSourcemap is set, the returned map points the shifted lines back at source.
// A function-valued additional data replaces the source and yields no map.
func GetSource(
	source, filename string,
	d domain.Dialect,
	user domain.PreprocessorOptions,
	enableSourcemap bool,
) (string, *sourcemap.Map, error) {
	if user.AdditionalDataFunc != nil {
		code, err := user.AdditionalDataFunc(source, filename)
		if err != nil {
			return "", nil, zerr.With(zerr.Wrap(err, "additionalData failed"), "file", filename)
		}
		return code, nil, nil
	}
	if user.AdditionalData == "" {
		return source, nil, nil
	}

	prefix := user.AdditionalData + d.AdditionalDataSeparator()
	if !enableSourcemap {
		return prefix + source, nil, nil
	}
	ed := sourcemap.NewEditor(source)
	ed.Prepend(prefix)
	return ed.String(), ed.Map(filename, true), nil
}
