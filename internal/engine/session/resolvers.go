package session

import (
	"sync"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
)

type lazyResolver struct {
	once     sync.Once
	opts     ports.ResolveOptions
	resolver ports.Resolver
	err      error
}

func (l *lazyResolver) get(factory ports.ResolverFactory) (ports.Resolver, error) {
	l.once.Do(func() {
		l.resolver, l.err = factory.NewResolver(l.opts)
	})
	return l.resolver, l.err
}

// Resolvers builds the per-family resolvers on first use.
type Resolvers struct {
	factory ports.ResolverFactory
	css     lazyResolver
	sass    lazyResolver
	less    lazyResolver
	url     lazyResolver
}

// NewResolvers creates the resolver set for cfg.
func NewResolvers(factory ports.ResolverFactory, cfg *domain.Config) *Resolvers {
	base := func(exts, fields []string, tryIndex bool, prefix string) ports.ResolveOptions {
		return ports.ResolveOptions{
			Root:           cfg.Root,
			Extensions:     exts,
			MainFields:     fields,
			TryIndex:       tryIndex,
			TryPrefix:      prefix,
			PreferRelative: true,
			Alias:          cfg.Alias,
		}
	}
	return &Resolvers{
		factory: factory,
		css:     lazyResolver{opts: base([]string{".css"}, []string{"style"}, false, "")},
		sass:    lazyResolver{opts: base([]string{".scss", ".sass", ".css"}, []string{"sass", "style"}, true, "_")},
		less:    lazyResolver{opts: base([]string{".less", ".styl", ".css"}, []string{"less", "style"}, false, "")},
		url:     lazyResolver{opts: base(nil, nil, false, "")},
	}
}

// CSS returns the resolver for plain stylesheet imports.
func (r *Resolvers) CSS() (ports.Resolver, error) {
	return r.css.get(r.factory)
}

// URL returns the resolver for url() references.
func (r *Resolvers) URL() (ports.Resolver, error) {
	return r.url.get(r.factory)
}

// ForFamily returns the resolver used by the compiler of a dialect family.
// Stylus shares the less resolver.
func (r *Resolvers) ForFamily(f domain.Family) (ports.Resolver, error) {
	switch f {
	case domain.FamilySass:
		return r.sass.get(r.factory)
	case domain.FamilyLess, domain.FamilyStylus:
		return r.less.get(r.factory)
	case domain.FamilyPlain:
		return r.CSS()
	default:
		return r.CSS()
	}
}
