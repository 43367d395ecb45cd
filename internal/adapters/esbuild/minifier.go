// Package esbuild minifies stylesheets with the esbuild transform API.
package esbuild

import (
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
)

var (
	_ ports.Minifier = (*Minifier)(nil)

	engineRE = regexp.MustCompile(`^([a-z]+)(\d+(?:\.\d+)*)$`)

	engines = map[string]api.EngineName{
		"chrome":  api.EngineChrome,
		"edge":    api.EngineEdge,
		"firefox": api.EngineFirefox,
		"hermes":  api.EngineHermes,
		"ie":      api.EngineIE,
		"ios":     api.EngineIOS,
		"node":    api.EngineNode,
		"opera":   api.EngineOpera,
		"rhino":   api.EngineRhino,
		"safari":  api.EngineSafari,
	}

	targets = map[string]api.Target{
		"esnext": api.ESNext,
		"es5":    api.ES5,
		"es2015": api.ES2015,
		"es2016": api.ES2016,
		"es2017": api.ES2017,
		"es2018": api.ES2018,
		"es2019": api.ES2019,
		"es2020": api.ES2020,
		"es2021": api.ES2021,
		"es2022": api.ES2022,
	}
)

// Minifier implements ports.Minifier.
type Minifier struct{}

// NewMinifier creates a new Minifier.
func NewMinifier() *Minifier {
	return &Minifier{}
}

// Minify implements ports.Minifier.
func (m *Minifier) Minify(code, filename, target string) (ports.MinifyResult, error) {
	opts := api.TransformOptions{
		Loader:           api.LoaderCSS,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		Sourcefile:       filename,
		LogLevel:         api.LogLevelSilent,
	}
	if err := applyTarget(&opts, target); err != nil {
		return ports.MinifyResult{}, err
	}

	res := api.Transform(code, opts)

	warnings := api.FormatMessages(res.Warnings, api.FormatMessagesOptions{Kind: api.WarningMessage})
	for i, w := range warnings {
		warnings[i] = strings.TrimSpace(w)
	}

	if len(res.Errors) > 0 {
		first := res.Errors[0]
		err := zerr.With(zerr.Wrap(domain.ErrMinifyFailed, first.Text), "file", filename)
		if loc := first.Location; loc != nil {
			err = zerr.With(err, "frame", domain.CodeFrame(code, loc.Line, loc.Column+1))
			err = zerr.With(err, "line", loc.Line)
		}
		return ports.MinifyResult{Warnings: warnings}, err
	}

	return ports.MinifyResult{Code: string(res.Code), Warnings: warnings}, nil
}

// applyTarget parses a comma separated browser target list such as "chrome61,safari11".
func applyTarget(opts *api.TransformOptions, target string) error {
	for _, part := range strings.Split(target, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if t, ok := targets[part]; ok {
			opts.Target = t
			continue
		}
		sub := engineRE.FindStringSubmatch(part)
		if sub == nil {
			return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "invalid css target"), "target", part)
		}
		name, ok := engines[sub[1]]
		if !ok {
			return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "unknown css target engine"), "target", part)
		}
		opts.Engines = append(opts.Engines, api.Engine{Name: name, Version: sub[2]})
	}
	return nil
}
