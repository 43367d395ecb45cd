package preprocess

import (
	"context"
	"os"

	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/core/sourcemap"
)

// ResolverFunc returns the resolver of a dialect family.
type ResolverFunc func(domain.Family) (ports.Resolver, error)

// Output is the canonical CSS produced for a unit by its preprocessor.
type Output struct {
	Code string
	Map  *sourcemap.Map
	Deps []string
}

// Runner compiles preprocessed style units to CSS.
type Runner struct {
	router    *Router
	cfg       *domain.Config
	resolvers ResolverFunc
}

// NewRunner creates a Runner.
func NewRunner(router *Router, cfg *domain.Config, resolvers ResolverFunc) *Runner {
	return &Runner{router: router, cfg: cfg, resolvers: resolvers}
}

// Run compiles source, the text of unit id, with the preprocessor of its dialect.
// Configuration failures and the first compile error are returned as errors.
func (r *Runner) Run(ctx context.Context, id, source string) (*Output, error) {
	d := domain.DialectOf(id)
	pp, err := r.router.Preprocessor(d, r.cfg.Root)
	if err != nil {
		return nil, err
	}
	if pp == nil {
		return &Output{Code: source}, nil
	}

	opts := MergeOptions(id, d, r.cfg)
	code, additional, err := GetSource(source, opts.Filename, d, r.cfg.PreprocessorOptionsFor(d.Family()), opts.EnableSourcemap)
	if err != nil {
		return nil, err
	}
	resolver, err := r.resolvers(d.Family())
	if err != nil {
		return nil, err
	}

	res := pp.Compile(ctx, domain.PreprocessRequest{
		Dialect: d,
		Source:  code,
		Root:    r.cfg.Root,
		Options: opts,
		Resolve: resolver.Resolve,
		Load:    r.Load,
	})
	if len(res.Errors) > 0 {
		return nil, res.Errors[0]
	}

	out := &Output{Code: res.Code}
	for _, dep := range res.Deps {
		if dep != opts.Filename {
			out.Deps = append(out.Deps, dep)
		}
	}
	if opts.EnableSourcemap {
		out.Map = sourcemap.Combine(res.Map, res.AdditionalMap, additional)
	}
	return out, nil
}

// Load reads an imported file on behalf of rootFile, evaluating conditional
// compilation directives and rebasing its url() references.
func (r *Runner) Load(file, rootFile string) (string, error) {
	data, err := os.ReadFile(file) //nolint:gosec // file was produced by the resolver
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to read import"), "file", file)
	}
	content := ExpandConditionals(string(data), r.cfg.IsDefined)
	return RebaseURLs(file, rootFile, content, r.cfg.Alias), nil
}
