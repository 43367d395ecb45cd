package watcher

import (
	"context"

	"github.com/grindlemire/graft"

	"go.trai.ch/sheen/internal/adapters/fs"
	"go.trai.ch/sheen/internal/adapters/logger"
	"go.trai.ch/sheen/internal/core/ports"
)

const (
	// RegistryNodeID is the unique identifier for the glob registry Graft node.
	RegistryNodeID graft.ID = "adapter.glob_registry"
	// FactoryNodeID is the unique identifier for the watcher factory Graft node.
	FactoryNodeID graft.ID = "adapter.watcher_factory"
)

// NewFunc creates a watcher. Each watch session needs its own watcher.
type NewFunc func(extraSkips ...string) (ports.Watcher, error)

func init() {
	graft.Register(graft.Node[*GlobRegistry]{
		ID:        RegistryNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.GlobberNodeID},
		Run: func(ctx context.Context) (*GlobRegistry, error) {
			globber, err := graft.Dep[ports.Globber](ctx)
			if err != nil {
				return nil, err
			}
			return NewGlobRegistry(globber), nil
		},
	})

	graft.Register(graft.Node[NewFunc]{
		ID:        FactoryNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (NewFunc, error) {
			log, err := graft.Dep[*logger.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return func(extraSkips ...string) (ports.Watcher, error) {
				return NewWatcher(log, extraSkips...)
			}, nil
		},
	})
}
