package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.trai.ch/zerr"

	"go.trai.ch/sheen/internal/adapters/watcher"
	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/engine/scheduler"
)

// Watch builds once and rebuilds whenever a file under the project root changes,
// until ctx is cancelled. Build errors are logged and do not end the session.
func (a *App) Watch(ctx context.Context, opts BuildOptions) error {
	defer func() {
		_ = a.telemetry.Close()
	}()

	cfg, sched, err := a.prepare(opts, nil)
	if err != nil {
		return err
	}
	sched.ConfigureServer(a.registry)

	w, err := a.newWatcher(filepath.Base(cfg.OutDir))
	if err != nil {
		return err
	}
	defer func() {
		_ = w.Stop()
	}()
	if err := w.Start(ctx, cfg.Root); err != nil {
		return zerr.Wrap(err, "failed to start watcher")
	}

	// Units restored from the cache would not register their glob dependencies.
	sched.InvalidateAll()
	a.logBuildError(ctx, a.buildOnce(ctx, cfg, sched))

	changes := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		select {
		case changes <- paths:
		case <-ctx.Done():
		}
	})
	go func() {
		for event := range w.Events() {
			if !isOutput(cfg, event.Path) {
				debouncer.Add(event.Path)
			}
		}
	}()

	a.logger.Info("watching for changes in " + cfg.Root)
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			a.rebuild(ctx, cfg, sched, paths)
		}
	}
}

// rebuild runs a build after paths changed. Units whose glob dependencies match
// a changed path are recompiled even when their cached record is unchanged.
func (a *App) rebuild(ctx context.Context, cfg *domain.Config, sched *scheduler.Scheduler, paths []string) {
	if affected := a.registry.Affected(paths); len(affected) > 0 {
		for _, id := range affected {
			a.registry.Forget(id)
		}
		sched.Invalidate(affected...)
	}
	a.logger.Info(fmt.Sprintf("%d file(s) changed, rebuilding", len(paths)))
	a.logBuildError(ctx, a.buildOnce(ctx, cfg, sched))
}

func (a *App) buildOnce(ctx context.Context, cfg *domain.Config, sched *scheduler.Scheduler) error {
	_, err := a.build(ctx, cfg, sched)
	return err
}

func (a *App) logBuildError(ctx context.Context, err error) {
	if err != nil && ctx.Err() == nil {
		a.logger.Error(err)
	}
}
