// Package bundler provides a file system implementation of the bundler module graph.
package bundler

import (
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
)

var _ ports.Bundle = (*Bundle)(nil)

// Bundle is the module graph of a project scanned from disk.
type Bundle struct {
	outDir  string
	graph   *domain.ModuleGraph
	virtual map[string]string

	mu      sync.Mutex
	code    map[string]string
	emitted []string
}

func newBundle(outDir string) *Bundle {
	return &Bundle{
		outDir:  outDir,
		graph:   domain.NewModuleGraph(),
		virtual: make(map[string]string),
		code:    make(map[string]string),
	}
}

// ModuleIDs implements ports.Bundle.
func (b *Bundle) ModuleIDs() []string {
	ids := make([]string, 0, b.graph.Len())
	for m := range b.graph.Walk() {
		ids = append(ids, m.ID.String())
	}
	return ids
}

// ImportedIDs implements ports.Bundle.
func (b *Bundle) ImportedIDs(id string) []string {
	return b.graph.Imports(id)
}

// Load implements ports.Bundle. Virtual modules are served from memory.
func (b *Bundle) Load(id string) (string, error) {
	if src, ok := b.virtual[id]; ok {
		return src, nil
	}
	data, err := os.ReadFile(domain.CleanURL(id))
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to load module"), "module_id", id)
	}
	return string(data), nil
}

// SetModuleCode implements ports.Bundle.
func (b *Bundle) SetModuleCode(id, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.code[id] = code
}

// ModuleCode returns the script code set for id.
func (b *Bundle) ModuleCode(id string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	code, ok := b.code[id]
	return code, ok
}

// EmitFile implements ports.Bundle. Files are written under the output directory.
func (b *Bundle) EmitFile(name string, data []byte) error {
	target := filepath.Join(b.outDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create output directory"), "file", target)
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write output file"), "file", target)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !slices.Contains(b.emitted, name) {
		b.emitted = append(b.emitted, name)
	}
	return nil
}

// Emitted returns the sorted names of every emitted file.
func (b *Bundle) Emitted() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := slices.Clone(b.emitted)
	slices.Sort(out)
	return out
}
