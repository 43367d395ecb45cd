package ports

import "go.trai.ch/sheen/internal/core/domain"

// ResolveOptions configures a module resolver.
type ResolveOptions struct {
	Root           string
	Extensions     []string
	MainFields     []string
	TryIndex       bool
	TryPrefix      string
	PreferRelative bool
	Alias          []domain.Alias
}

// Resolver maps an import specifier to an absolute file path.
//
//go:generate mockgen -destination=mocks/resolver_mock.go -package=mocks -source=resolver.go
type Resolver interface {
	// Resolve resolves specifier as imported from importer.
	// The query or hash suffix of specifier is preserved on the result.
	Resolve(specifier, importer string) (string, bool)
}

// ResolverFactory builds resolvers.
type ResolverFactory interface {
	NewResolver(opts ResolveOptions) (Resolver, error)
}
