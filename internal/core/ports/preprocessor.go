package ports

import (
	"context"

	"go.trai.ch/sheen/internal/core/domain"
)

// Preprocessor compiles one dialect family to CSS.
//
//go:generate mockgen -source=preprocessor.go -destination=mocks/mock_preprocessor.go -package=mocks
type Preprocessor interface {
	// Compile compiles the request. Compile errors are returned in the result.
	Compile(ctx context.Context, req domain.PreprocessRequest) domain.PreprocessResult
}

// PreprocessorProvider lazily loads the compiler of a dialect family.
type PreprocessorProvider interface {
	// Family returns the dialect family served by the provider.
	Family() domain.Family

	// Load locates the compiler, searching root first.
	// It fails with domain.ErrPreprocessorNotFound when the compiler is missing.
	Load(root string) (Preprocessor, error)
}
