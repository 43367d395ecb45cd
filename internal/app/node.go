package app

import (
	"context"

	"github.com/grindlemire/graft"

	"go.trai.ch/sheen/internal/adapters/bundler"            //nolint:depguard // Wired in app layer
	"go.trai.ch/sheen/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/sheen/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/sheen/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/sheen/internal/adapters/watcher"            //nolint:depguard // Wired in app layer
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger *logger.Logger
}

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			bundler.NodeID,
			scheduler.NodeID,
			logger.NodeID,
			progrock.NodeID,
			watcher.RegistryNodeID,
			watcher.FactoryNodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[*logger.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	opener, err := graft.Dep[ports.BundleOpener](ctx)
	if err != nil {
		return nil, err
	}

	factory, err := graft.Dep[*scheduler.Factory](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[*logger.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	registry, err := graft.Dep[*watcher.GlobRegistry](ctx)
	if err != nil {
		return nil, err
	}

	newWatcher, err := graft.Dep[watcher.NewFunc](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, opener, factory, log, telemetry, registry, newWatcher), nil
}
