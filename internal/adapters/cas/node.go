package cas

import (
	"context"

	"github.com/grindlemire/graft"

	"go.trai.ch/sheen/internal/core/ports"
)

// NodeID is the unique identifier for the unit store factory Graft node.
const NodeID graft.ID = "adapter.unit_store"

func init() {
	graft.Register(graft.Node[ports.UnitStoreFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.UnitStoreFactory, error) {
			return NewFactory(), nil
		},
	})
}
