package ports

import (
	"context"

	"go.trai.ch/sheen/internal/core/domain"
)

// Bundle is the module graph and emission surface of the host bundler.
//
//go:generate mockgen -source=bundle.go -destination=mocks/mock_bundle.go -package=mocks
type Bundle interface {
	// ModuleIDs returns every module id in graph order.
	ModuleIDs() []string

	// ImportedIDs returns the ids statically imported by id.
	ImportedIDs(id string) []string

	// Load returns the source text of a module.
	Load(id string) (string, error)

	// SetModuleCode replaces the script code of a module.
	SetModuleCode(id, code string)

	// EmitFile writes an output asset relative to the output directory.
	EmitFile(name string, data []byte) error
}

// BundleOpener opens the module graph of a project.
type BundleOpener interface {
	Open(ctx context.Context, cfg *domain.Config) (Bundle, error)
}
