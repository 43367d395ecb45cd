package less

import (
	"context"

	"github.com/grindlemire/graft"

	"go.trai.ch/sheen/internal/adapters/shell"
	"go.trai.ch/sheen/internal/core/ports"
)

// NodeID is the unique identifier for the less provider Graft node.
const NodeID graft.ID = "adapter.preprocessor.less"

func init() {
	graft.Register(graft.Node[*Provider]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (*Provider, error) {
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			return NewProvider(runner), nil
		},
	})
}
