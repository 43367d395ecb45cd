// Package preprocess routes style units to the compiler of their dialect
// and holds the helpers shared by the preprocessor adapters.
package preprocess

import (
	"sync"

	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
)

type slot struct {
	once     sync.Once
	provider ports.PreprocessorProvider
	pp       ports.Preprocessor
	err      error
}

// Router maps dialect families to their preprocessor.
// Each compiler is loaded on first use and reused afterwards.
type Router struct {
	slots map[domain.Family]*slot
}

// NewRouter creates a Router serving the given providers.
func NewRouter(providers ...ports.PreprocessorProvider) *Router {
	r := &Router{slots: make(map[domain.Family]*slot, len(providers))}
	for _, p := range providers {
		r.slots[p.Family()] = &slot{provider: p}
	}
	return r
}

// Preprocessor returns the preprocessor for the dialect.
// Plain dialects have none and yield nil, nil.
func (r *Router) Preprocessor(d domain.Dialect, root string) (ports.Preprocessor, error) {
	family := d.Family()
	if family == domain.FamilyPlain {
		return nil, nil
	}
	s, ok := r.slots[family]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedDialect, "no preprocessor registered"), "dialect", string(d))
	}
	s.once.Do(func() {
		s.pp, s.err = s.provider.Load(root)
	})
	return s.pp, s.err
}
