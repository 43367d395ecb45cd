// Package scheduler drives a build: it transforms every style unit of a bundle
// with bounded parallelism and emits the chunks once all transforms are done.
package scheduler

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/engine/chunk"
	"go.trai.ch/sheen/internal/engine/plugin"
)

// UnitReport is the outcome of one style unit.
type UnitReport struct {
	ID     string
	Status domain.UnitStatus
	Deps   []string
	Err    error
}

// Report is the outcome of a build.
type Report struct {
	Units    []UnitReport
	Chunks   []chunk.Output
	Duration time.Duration
}

// Scheduler runs the style plugins over a bundle.
type Scheduler struct {
	css       *plugin.CSSPlugin
	post      *plugin.CSSPostPlugin
	hasher    ports.Hasher
	store     ports.UnitStore
	telemetry ports.Telemetry
	logger    ports.Logger
	salt      string

	mu         sync.RWMutex
	unitStatus map[string]domain.UnitStatus
	units      map[string]*UnitReport
	stale      map[string]bool
	staleAll   bool
}

// NewScheduler creates a Scheduler. A nil store disables the unit cache.
// The salt is mixed into every unit hash and changes whenever the build configuration does.
func NewScheduler(
	css *plugin.CSSPlugin,
	post *plugin.CSSPostPlugin,
	hasher ports.Hasher,
	store ports.UnitStore,
	telemetry ports.Telemetry,
	logger ports.Logger,
	salt string,
) *Scheduler {
	return &Scheduler{
		css:        css,
		post:       post,
		hasher:     hasher,
		store:      store,
		telemetry:  telemetry,
		logger:     logger,
		salt:       salt,
		unitStatus: make(map[string]domain.UnitStatus),
		units:      make(map[string]*UnitReport),
		stale:      make(map[string]bool),
	}
}

// Invalidate makes the next build recompile the units even when their cached
// record still matches, e.g. after a file matching one of their globs appeared.
func (s *Scheduler) Invalidate(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.stale[id] = true
	}
}

// InvalidateAll makes the next build recompile every unit.
func (s *Scheduler) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staleAll = true
}

func (s *Scheduler) takeStale(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	stale := s.staleAll || s.stale[id]
	delete(s.stale, id)
	return stale
}

// updateStatus updates the status of a unit.
func (s *Scheduler) updateStatus(id string, status domain.UnitStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unitStatus[id] = status
}

// getStatus retrieves the status of a unit.
func (s *Scheduler) getStatus(id string) domain.UnitStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unitStatus[id]
}

func (s *Scheduler) reset(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.unitStatus)
	clear(s.units)
	for _, id := range ids {
		s.unitStatus[id] = domain.UnitStatusPending
		s.units[id] = &UnitReport{ID: id}
	}
}

// Run performs one build over bundle. Compile errors of single units do not stop
// the other units, but fail the build before anything is emitted.
func (s *Scheduler) Run(ctx context.Context, bundle ports.Bundle, parallelism int) (*Report, error) {
	start := time.Now()
	s.css.BuildStart()
	s.post.BuildStart()

	ids := styleUnits(bundle)
	s.reset(ids)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallelism, 1))
	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			s.updateStatus(id, domain.UnitStatusRunning)
			err := s.executeUnitWithCache(gctx, bundle, id)
			return s.handleResult(id, err)
		})
	}
	err := g.Wait()
	s.mu.Lock()
	s.staleAll = false
	s.mu.Unlock()

	report := s.report(start)
	if err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	var errs error
	for _, u := range report.Units {
		errs = errors.Join(errs, u.Err)
	}
	if errs != nil {
		return report, zerr.With(zerr.Wrap(errors.Join(domain.ErrBuildFailed, errs), "build failed"), "failed_units", countFailed(report))
	}

	if s.store != nil {
		if err := s.store.Flush(); err != nil {
			s.logger.Warn("failed to persist unit cache: " + err.Error())
		}
	}

	report.Chunks, err = s.post.GenerateBundle(ctx, bundle)
	report.Duration = time.Since(start)
	return report, err
}

func (s *Scheduler) executeUnitWithCache(ctx context.Context, bundle ports.Bundle, id string) (err error) {
	ctx, vertex := s.telemetry.Record(ctx, id, ports.WithGroup("units"))
	defer func() { vertex.Complete(err) }()

	raw, err := bundle.Load(id)
	if err != nil {
		return err
	}

	if rec := s.checkCacheHit(id, raw); rec != nil {
		if err := s.css.Restore(rec); err == nil {
			s.finish(bundle, id, rec.Code, rec.Deps)
			s.updateStatus(id, domain.UnitStatusCached)
			vertex.Cached()
			return nil
		}
	}

	res, err := s.css.Transform(ctx, id, raw)
	if err != nil {
		return err
	}
	s.finish(bundle, id, res.Code, res.Deps)
	s.updateCache(id, raw, res.Code, res.Deps)
	return nil
}

// finish hands the compiled text to the css-post plugin and records the unit's deps.
func (s *Scheduler) finish(bundle ports.Bundle, id, code string, deps []string) {
	if moduleCode, ok := s.post.Transform(id, code); ok {
		bundle.SetModuleCode(id, moduleCode)
	}
	s.mu.Lock()
	s.units[id].Deps = deps
	s.mu.Unlock()
}

func (s *Scheduler) checkCacheHit(id, raw string) *domain.UnitRecord {
	if s.store == nil || s.takeStale(id) {
		return nil
	}
	rec, err := s.store.Get(id)
	if err != nil || rec == nil {
		return nil
	}
	hash, err := s.hasher.ComputeUnitHash(id, raw, slices.Concat(rec.Deps, rec.Assets), s.salt)
	if err != nil || hash != rec.InputHash {
		return nil
	}
	return rec
}

func (s *Scheduler) updateCache(id, raw, code string, deps []string) {
	if s.store == nil {
		return
	}
	assets := s.post.ReferencedAssets(code)
	hash, err := s.hasher.ComputeUnitHash(id, raw, slices.Concat(deps, assets), s.salt)
	if err != nil {
		s.logger.Debug("skipping unit cache for " + id + ": " + err.Error())
		return
	}
	modules, _ := s.css.Modules(id)
	rec := domain.UnitRecord{
		ID:        id,
		InputHash: hash,
		Code:      code,
		Modules:   modules,
		Deps:      deps,
		Assets:    assets,
		Timestamp: time.Now(),
	}
	if err := s.store.Put(rec); err != nil {
		s.logger.Warn("failed to store unit record: " + err.Error())
	}
}

// handleResult records the outcome of a unit. Only configuration errors are
// returned, which cancels the remaining units.
func (s *Scheduler) handleResult(id string, err error) error {
	if err == nil {
		if s.getStatus(id) != domain.UnitStatusCached {
			s.updateStatus(id, domain.UnitStatusCompleted)
		}
		return nil
	}
	s.updateStatus(id, domain.UnitStatusFailed)
	if isFatal(err) {
		return err
	}
	wrapped := zerr.With(zerr.Wrap(err, "unit transform failed"), "unit", id)
	s.logger.Error(wrapped)
	s.mu.Lock()
	s.units[id].Err = wrapped
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) report(start time.Time) *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := &Report{Duration: time.Since(start)}
	for _, id := range slices.Sorted(maps.Keys(s.units)) {
		u := *s.units[id]
		u.Status = s.unitStatus[id]
		r.Units = append(r.Units, u)
	}
	return r
}

func isFatal(err error) bool {
	for _, target := range []error{
		domain.ErrConfigInvalid,
		domain.ErrPostcssConfig,
		domain.ErrUnknownPlugin,
		domain.ErrPreprocessorNotFound,
		domain.ErrUnsupportedDialect,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func countFailed(r *Report) int {
	n := 0
	for _, u := range r.Units {
		if u.Status == domain.UnitStatusFailed {
			n++
		}
	}
	return n
}

// styleUnits returns the style unit ids of bundle in graph order.
func styleUnits(bundle ports.Bundle) []string {
	var ids []string
	for _, id := range bundle.ModuleIDs() {
		if domain.IsStyleRequest(id) && !domain.IsCommonJSProxy(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// ConfigureServer attaches the watch-mode host to the css plugin.
func (s *Scheduler) ConfigureServer(server ports.DevServer) {
	s.css.ConfigureServer(server)
}
