package app

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"go.trai.ch/sheen/internal/build"
	"go.trai.ch/sheen/internal/core/domain"
)

// CacheSalt digests the settings that change compiled output without changing
// any source file, so cached units are dropped when one of them changes.
func CacheSalt(cfg *domain.Config, postcss *domain.PostcssConfig) string {
	d := xxhash.New()
	write := func(parts ...any) {
		for _, p := range parts {
			_, _ = fmt.Fprint(d, p)
			_, _ = d.WriteString("\x00")
		}
	}

	write(build.Version, cfg.Root, cfg.Platform, cfg.Defines, cfg.Nvue, cfg.CSS.DevSourcemap)
	for _, a := range cfg.Alias {
		write(a.Find, a.Replacement)
	}
	if m := cfg.CSS.Modules; m != nil {
		write(m.Disabled, m.ScopeBehaviour, m.GlobalModulePaths, m.GenerateScopedName, m.HashPrefix, m.LocalsConvention)
	}
	for _, f := range slices.Sorted(maps.Keys(cfg.CSS.PreprocessorOptions)) {
		o := cfg.CSS.PreprocessorOptions[f]
		write(f, o.AdditionalData, o.AdditionalDataFunc != nil, o.IncludePaths, o.Paths, o.Imports, o.IndentedSyntax)
	}
	if postcss != nil {
		write(postcss.Path)
		for _, p := range postcss.Plugins {
			write(p.Name, p.Options)
		}
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
