package scheduler

import (
	"context"

	"github.com/grindlemire/graft"

	"go.trai.ch/sheen/internal/adapters/cas"                //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sheen/internal/adapters/config"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sheen/internal/adapters/esbuild"            //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sheen/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sheen/internal/adapters/less"               //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sheen/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sheen/internal/adapters/sass"               //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sheen/internal/adapters/stylus"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sheen/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/engine/preprocess"
)

// NodeID is the unique identifier for the scheduler factory Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			sass.NodeID,
			less.NodeID,
			stylus.NodeID,
			config.NodeID,
			fs.GlobberNodeID,
			fs.HasherNodeID,
			fs.ResolverNodeID,
			logger.NodeID,
			esbuild.NodeID,
			progrock.NodeID,
			cas.NodeID,
		},
		Run: func(ctx context.Context) (*Factory, error) {
			sassProvider, err := graft.Dep[*sass.Provider](ctx)
			if err != nil {
				return nil, err
			}
			lessProvider, err := graft.Dep[*less.Provider](ctx)
			if err != nil {
				return nil, err
			}
			stylusProvider, err := graft.Dep[*stylus.Provider](ctx)
			if err != nil {
				return nil, err
			}
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			globber, err := graft.Dep[ports.Globber](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			resolvers, err := graft.Dep[ports.ResolverFactory](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[*logger.Logger](ctx)
			if err != nil {
				return nil, err
			}
			minifier, err := graft.Dep[ports.Minifier](ctx)
			if err != nil {
				return nil, err
			}
			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			stores, err := graft.Dep[ports.UnitStoreFactory](ctx)
			if err != nil {
				return nil, err
			}

			return NewFactory(
				preprocess.NewRouter(sassProvider, lessProvider, stylusProvider),
				loader,
				globber,
				log,
				minifier,
				hasher,
				resolvers,
				tel,
				stores,
			), nil
		},
	})
}
