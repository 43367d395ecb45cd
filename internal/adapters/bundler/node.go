package bundler

import (
	"context"

	"github.com/grindlemire/graft"

	"go.trai.ch/sheen/internal/adapters/fs"
	"go.trai.ch/sheen/internal/adapters/logger"
	"go.trai.ch/sheen/internal/core/ports"
)

// NodeID is the unique identifier for the bundle opener Graft node.
const NodeID graft.ID = "adapter.bundler"

func init() {
	graft.Register(graft.Node[ports.BundleOpener]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.ResolverNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.BundleOpener, error) {
			resolvers, err := graft.Dep[ports.ResolverFactory](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[*logger.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewOpener(resolvers, log), nil
		},
	})
}
