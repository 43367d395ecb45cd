package domain

import (
	"iter"

	"go.trai.ch/zerr"
)

// Module is a node of the bundler module graph.
type Module struct {
	ID      InternedString
	Imports []InternedString
}

// ModuleGraph is the import graph of a bundle. Cycles are allowed.
type ModuleGraph struct {
	modules map[InternedString]*Module
	order   []InternedString
}

// NewModuleGraph creates an empty ModuleGraph.
func NewModuleGraph() *ModuleGraph {
	return &ModuleGraph{
		modules: make(map[InternedString]*Module),
	}
}

// AddModule adds a module to the graph.
// It returns an error if a module with the same id already exists.
func (g *ModuleGraph) AddModule(id string) error {
	key := NewInternedString(id)
	if _, exists := g.modules[key]; exists {
		return zerr.With(zerr.Wrap(ErrModuleAlreadyExists, "failed to add module"), "module_id", id)
	}
	g.modules[key] = &Module{ID: key}
	g.order = append(g.order, key)
	return nil
}

// Has reports whether id is part of the graph.
func (g *ModuleGraph) Has(id string) bool {
	_, ok := g.modules[NewInternedString(id)]
	return ok
}

// AddImport records that from imports to. Both modules must exist.
func (g *ModuleGraph) AddImport(from, to string) error {
	src, ok := g.modules[NewInternedString(from)]
	if !ok {
		return zerr.With(zerr.Wrap(ErrModuleNotFound, "unknown importer"), "module_id", from)
	}
	dst := NewInternedString(to)
	if _, ok := g.modules[dst]; !ok {
		return zerr.With(zerr.Wrap(ErrModuleNotFound, "unknown import"), "module_id", to)
	}
	for _, existing := range src.Imports {
		if existing == dst {
			return nil
		}
	}
	src.Imports = append(src.Imports, dst)
	return nil
}

// Imports returns the ids imported by id, in import order.
func (g *ModuleGraph) Imports(id string) []string {
	m, ok := g.modules[NewInternedString(id)]
	if !ok {
		return nil
	}
	out := make([]string, len(m.Imports))
	for i, imp := range m.Imports {
		out[i] = imp.String()
	}
	return out
}

// Len returns the number of modules.
func (g *ModuleGraph) Len() int {
	return len(g.modules)
}

// Walk yields modules in insertion order.
func (g *ModuleGraph) Walk() iter.Seq[Module] {
	return func(yield func(Module) bool) {
		for _, id := range g.order {
			if !yield(*g.modules[id]) {
				return
			}
		}
	}
}
