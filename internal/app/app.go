// Package app implements the application layer for sheen.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/adapters/watcher"
	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/engine/scheduler"
)

// App represents the main application logic.
type App struct {
	loader     ports.ConfigLoader
	opener     ports.BundleOpener
	factory    *scheduler.Factory
	logger     ports.Logger
	telemetry  ports.Telemetry
	registry   *watcher.GlobRegistry
	newWatcher watcher.NewFunc
	teaOptions []tea.ProgramOption
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	opener ports.BundleOpener,
	factory *scheduler.Factory,
	log ports.Logger,
	telemetry ports.Telemetry,
	registry *watcher.GlobRegistry,
	newWatcher watcher.NewFunc,
) *App {
	return &App{
		loader:     loader,
		opener:     opener,
		factory:    factory,
		logger:     log,
		telemetry:  telemetry,
		registry:   registry,
		newWatcher: newWatcher,
	}
}

// BuildOptions configures a build or a watch session.
type BuildOptions struct {
	// Dir is the working directory. It defaults to the process working directory.
	Dir string

	// ConfigFile overrides the configuration file name.
	ConfigFile string

	// NoCache disables the persistent unit cache.
	NoCache bool

	// Progress renders unit progress in the terminal while building.
	Progress bool
}

// Build runs one build and returns its report.
func (a *App) Build(ctx context.Context, opts BuildOptions) (*scheduler.Report, error) {
	defer func() {
		_ = a.telemetry.Close()
	}()

	if opts.Progress {
		return a.buildWithProgress(ctx, opts)
	}

	cfg, sched, err := a.prepare(opts, nil)
	if err != nil {
		return nil, err
	}
	return a.build(ctx, cfg, sched)
}

// prepare loads the configuration and creates the scheduler of a session.
// A nil telemetry keeps the one the factory was built with.
func (a *App) prepare(opts BuildOptions, telemetry ports.Telemetry) (*domain.Config, *scheduler.Scheduler, error) {
	dir := opts.Dir
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return nil, nil, zerr.Wrap(err, "failed to get working directory")
		}
	}

	cfg, err := a.loader.Load(dir, opts.ConfigFile)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}
	postcss, err := a.loader.LoadPostcssConfig(cfg.CSS.Postcss, cfg.Root)
	if err != nil {
		return nil, nil, err
	}

	sched, err := a.factory.New(cfg, scheduler.Options{
		NoCache:   opts.NoCache,
		Salt:      CacheSalt(cfg, postcss),
		Telemetry: telemetry,
	})
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to open unit cache")
	}
	return cfg, sched, nil
}

func (a *App) build(ctx context.Context, cfg *domain.Config, sched *scheduler.Scheduler) (*scheduler.Report, error) {
	bundle, err := a.opener.Open(ctx, cfg)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open bundle")
	}

	report, err := sched.Run(ctx, bundle, parallelism(cfg))
	if err != nil {
		return report, err
	}

	for _, c := range report.Chunks {
		a.logger.Info(fmt.Sprintf("%s  %s", filepath.Join(cfg.OutDir, c.Name), formatSize(c.Size)))
	}
	a.logger.Info(fmt.Sprintf("compiled %d style units in %s", len(report.Units), report.Duration.Round(time.Millisecond)))
	return report, nil
}

// parallelism returns the number of units transformed concurrently.
func parallelism(cfg *domain.Config) int {
	if cfg.Parallelism > 0 {
		return cfg.Parallelism
	}
	return runtime.NumCPU()
}

func formatSize(n int) string {
	const kib = 1024
	if n < kib {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.2f KiB", float64(n)/kib)
}

// isOutput reports whether path is written by the build itself.
func isOutput(cfg *domain.Config, path string) bool {
	if cfg.CachePath != "" && (path == cfg.CachePath || strings.HasPrefix(path, cfg.CachePath+".")) {
		return true
	}
	return cfg.OutDir != "" && (path == cfg.OutDir || strings.HasPrefix(path, cfg.OutDir+string(filepath.Separator)))
}
