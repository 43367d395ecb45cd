package scheduler

import (
	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/engine/chunk"
	"go.trai.ch/sheen/internal/engine/plugin"
	"go.trai.ch/sheen/internal/engine/preprocess"
	"go.trai.ch/sheen/internal/engine/session"
)

// Options configures a Scheduler built by a Factory.
type Options struct {
	// NoCache disables the persistent unit cache.
	NoCache bool

	// Salt is mixed into every unit hash.
	Salt string

	// Telemetry replaces the factory's recorder for this scheduler.
	Telemetry ports.Telemetry
}

// Factory builds a Scheduler, its session and its plugins for a configuration.
type Factory struct {
	router    *preprocess.Router
	loader    ports.ConfigLoader
	globber   ports.Globber
	logger    ports.Logger
	minifier  ports.Minifier
	hasher    ports.Hasher
	resolvers ports.ResolverFactory
	telemetry ports.Telemetry
	stores    ports.UnitStoreFactory
}

// NewFactory creates a Factory.
func NewFactory(
	router *preprocess.Router,
	loader ports.ConfigLoader,
	globber ports.Globber,
	logger ports.Logger,
	minifier ports.Minifier,
	hasher ports.Hasher,
	resolvers ports.ResolverFactory,
	telemetry ports.Telemetry,
	stores ports.UnitStoreFactory,
) *Factory {
	return &Factory{
		router:    router,
		loader:    loader,
		globber:   globber,
		logger:    logger,
		minifier:  minifier,
		hasher:    hasher,
		resolvers: resolvers,
		telemetry: telemetry,
		stores:    stores,
	}
}

// New creates a Scheduler with a fresh session for cfg.
func (f *Factory) New(cfg *domain.Config, opts Options) (*Scheduler, error) {
	var store ports.UnitStore
	if !opts.NoCache && cfg.CachePath != "" {
		var err error
		if store, err = f.stores.Open(cfg.CachePath); err != nil {
			return nil, err
		}
	}

	telemetry := f.telemetry
	if opts.Telemetry != nil {
		telemetry = opts.Telemetry
	}

	sess := session.New(cfg, f.resolvers, f.hasher)
	css := plugin.NewCSSPlugin(sess, f.router, f.loader, f.globber, f.logger)
	aggregator := chunk.NewAggregator(sess, f.minifier, f.globber, f.logger, telemetry)
	post := plugin.NewCSSPostPlugin(sess, aggregator)
	return NewScheduler(css, post, f.hasher, store, telemetry, f.logger, opts.Salt), nil
}
