// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/sheen/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file from the given working directory.
	// An empty file name selects the default file name.
	Load(cwd, file string) (*domain.Config, error)

	// LoadPostcssConfig resolves the transform chain configuration.
	// It returns nil, nil when no configuration exists.
	LoadPostcssConfig(opt domain.PostcssOption, root string) (*domain.PostcssConfig, error)
}
