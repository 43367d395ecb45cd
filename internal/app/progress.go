package app

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"go.trai.ch/sheen/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/sheen/internal/engine/scheduler"
	"go.trai.ch/sheen/internal/tui"
)

// WithTeaOptions sets extra options for the progress program.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = opts
	return a
}

// buildWithProgress runs one build while a terminal view renders its vertices.
// Quitting the view cancels the build.
func (a *App) buildWithProgress(ctx context.Context, opts BuildOptions) (*scheduler.Report, error) {
	stream := progrock.NewStream()
	rec := progrock.NewRecorder(stream)

	cfg, sched, err := a.prepare(opts, rec)
	if err != nil {
		_ = rec.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	programOpts := append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
	}, a.teaOptions...)
	program := tea.NewProgram(tui.NewModel(stream), programOpts...)

	var report *scheduler.Report
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		defer func() {
			_ = rec.Close()
		}()
		var err error
		report, err = a.build(gctx, cfg, sched)
		return err
	})

	err = g.Wait()
	return report, err
}
