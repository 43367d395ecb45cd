package scheduler_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/sheen/internal/adapters/fs"
	"go.trai.ch/sheen/internal/adapters/telemetry"
	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/core/ports/mocks"
	"go.trai.ch/sheen/internal/engine/preprocess"
	"go.trai.ch/sheen/internal/engine/scheduler"
)

const (
	entry  = "/p/main.js"
	plain  = "/p/a.css"
	scoped = "/p/b.module.css"
	sassID = "/p/c.scss"
)

type harness struct {
	ctrl     *gomock.Controller
	cfg      *domain.Config
	bundle   *mocks.MockBundle
	loader   *mocks.MockConfigLoader
	logger   *mocks.MockLogger
	hasher   *mocks.MockHasher
	stores   *mocks.MockUnitStoreFactory
	mu       sync.Mutex
	modules  map[string]string
	emitted  map[string]string
	provider []ports.PreprocessorProvider
}

func newHarness(t *testing.T, sources map[string]string, order []string) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		ctrl: ctrl,
		cfg: &domain.Config{
			Root:   "/p",
			Chunks: []domain.ChunkRule{{Match: "main.js", CSS: "app.css"}},
			CSS: domain.CSSOptions{Modules: &domain.ModulesOptions{
				GenerateScopedName: "[local]_x",
			}},
		},
		bundle:  mocks.NewMockBundle(ctrl),
		loader:  mocks.NewMockConfigLoader(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
		hasher:  mocks.NewMockHasher(ctrl),
		stores:  mocks.NewMockUnitStoreFactory(ctrl),
		modules: map[string]string{},
		emitted: map[string]string{},
	}

	h.bundle.EXPECT().ModuleIDs().Return(order).AnyTimes()
	h.bundle.EXPECT().ImportedIDs(entry).Return(order[1:]).AnyTimes()
	h.bundle.EXPECT().ImportedIDs(gomock.Any()).Return(nil).AnyTimes()
	h.bundle.EXPECT().Load(gomock.Any()).DoAndReturn(func(id string) (string, error) {
		return sources[id], nil
	}).AnyTimes()
	h.bundle.EXPECT().SetModuleCode(gomock.Any(), gomock.Any()).Do(func(id, code string) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.modules[id] = code
	}).AnyTimes()
	return h
}

func (h *harness) expectEmit() {
	h.bundle.EXPECT().EmitFile(gomock.Any(), gomock.Any()).DoAndReturn(func(name string, data []byte) error {
		h.emitted[name] = string(data)
		return nil
	}).AnyTimes()
}

func (h *harness) scheduler(t *testing.T, opts scheduler.Options) *scheduler.Scheduler {
	t.Helper()
	f := scheduler.NewFactory(
		preprocess.NewRouter(h.provider...),
		h.loader,
		fs.NewGlobber(),
		h.logger,
		nil,
		h.hasher,
		fs.NewResolverFactory(),
		telemetry.NewNoOp(),
		h.stores,
	)
	s, err := f.New(h.cfg, opts)
	require.NoError(t, err)
	return s
}

func TestScheduler_Run_CompilesAndEmits(t *testing.T) {
	h := newHarness(t, map[string]string{
		plain:  ".a{}",
		scoped: ".b{}",
	}, []string{entry, plain, scoped})
	h.loader.EXPECT().LoadPostcssConfig(gomock.Any(), "/p").Return(nil, nil)
	h.expectEmit()

	s := h.scheduler(t, scheduler.Options{NoCache: true})
	report, err := s.Run(context.Background(), h.bundle, 4)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"app.css": ".a{}\n.b_x{}"}, h.emitted)
	assert.Equal(t, "", h.modules[plain])
	assert.Equal(t, domain.ModulesToESM(map[string]string{"b": "b_x"}), h.modules[scoped])

	require.Len(t, report.Chunks, 1)
	assert.Equal(t, []string{plain, scoped}, report.Chunks[0].UnitIDs)
	assert.Equal(t, map[string]domain.UnitStatus{
		plain:  domain.UnitStatusCompleted,
		scoped: domain.UnitStatusCompleted,
	}, s.GetUnitStatusMap())
}

func TestScheduler_Run_CompileErrorFailsBuild(t *testing.T) {
	h := newHarness(t, map[string]string{
		plain:  ".a{}",
		sassID: ".c{color:$missing}",
	}, []string{entry, plain, sassID})
	h.loader.EXPECT().LoadPostcssConfig(gomock.Any(), "/p").Return(nil, nil)
	h.logger.EXPECT().Error(gomock.Any())

	pp := mocks.NewMockPreprocessor(h.ctrl)
	pp.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(domain.PreprocessResult{
		Errors: []error{&domain.CompileError{Message: "Undefined variable", File: sassID, Line: 1, Column: 10}},
	})
	provider := mocks.NewMockPreprocessorProvider(h.ctrl)
	provider.EXPECT().Family().Return(domain.FamilySass)
	provider.EXPECT().Load("/p").Return(pp, nil)
	h.provider = []ports.PreprocessorProvider{provider}

	s := h.scheduler(t, scheduler.Options{NoCache: true})
	report, err := s.Run(context.Background(), h.bundle, 2)
	require.ErrorIs(t, err, domain.ErrBuildFailed)
	require.ErrorIs(t, err, domain.ErrCompileFailed)
	assert.Empty(t, h.emitted)

	require.Len(t, report.Units, 2)
	statuses := s.GetUnitStatusMap()
	assert.Equal(t, domain.UnitStatusCompleted, statuses[plain])
	assert.Equal(t, domain.UnitStatusFailed, statuses[sassID])
}

func TestScheduler_Run_FatalConfigError(t *testing.T) {
	h := newHarness(t, map[string]string{plain: ".a{}", scoped: ".b{}"}, []string{entry, plain, scoped})
	h.loader.EXPECT().LoadPostcssConfig(gomock.Any(), "/p").Return(nil, domain.ErrPostcssConfig)

	s := h.scheduler(t, scheduler.Options{NoCache: true})
	_, err := s.Run(context.Background(), h.bundle, 1)
	require.ErrorIs(t, err, domain.ErrPostcssConfig)
	assert.Empty(t, h.emitted)
}

func TestScheduler_Run_UnitCache(t *testing.T) {
	h := newHarness(t, map[string]string{plain: ".a{}", scoped: ".b{}"}, []string{entry, plain, scoped})
	h.cfg.CachePath = "/p/.sheen/cache.json"
	h.loader.EXPECT().LoadPostcssConfig(gomock.Any(), "/p").Return(nil, nil)
	h.expectEmit()

	store := mocks.NewMockUnitStore(h.ctrl)
	h.stores.EXPECT().Open("/p/.sheen/cache.json").Return(store, nil)

	cached := &domain.UnitRecord{
		ID:        scoped,
		InputHash: "hit",
		Code:      ".b_cached{}",
		Modules:   map[string]string{"b": "b_cached"},
	}
	store.EXPECT().Get(scoped).Return(cached, nil)
	h.hasher.EXPECT().ComputeUnitHash(scoped, ".b{}", gomock.Any(), "salt").Return("hit", nil)

	store.EXPECT().Get(plain).Return(nil, nil)
	h.hasher.EXPECT().ComputeUnitHash(plain, ".a{}", gomock.Any(), "salt").Return("fresh", nil)
	store.EXPECT().Put(gomock.Any()).DoAndReturn(func(rec domain.UnitRecord) error {
		assert.Equal(t, plain, rec.ID)
		assert.Equal(t, "fresh", rec.InputHash)
		assert.Equal(t, ".a{}", rec.Code)
		return nil
	})
	store.EXPECT().Flush().Return(nil)

	s := h.scheduler(t, scheduler.Options{Salt: "salt"})
	_, err := s.Run(context.Background(), h.bundle, 2)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"app.css": ".a{}\n.b_cached{}"}, h.emitted)
	assert.Equal(t, domain.ModulesToESM(cached.Modules), h.modules[scoped])
	assert.Equal(t, domain.UnitStatusCached, s.GetUnitStatusMap()[scoped])
	assert.Equal(t, domain.UnitStatusCompleted, s.GetUnitStatusMap()[plain])
}

func TestScheduler_Run_Cancelled(t *testing.T) {
	h := newHarness(t, map[string]string{plain: ".a{}"}, []string{entry, plain})
	h.loader.EXPECT().LoadPostcssConfig(gomock.Any(), "/p").Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := h.scheduler(t, scheduler.Options{NoCache: true})
	_, err := s.Run(ctx, h.bundle, 1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.emitted)
}

func TestScheduler_Invalidate_BypassesCache(t *testing.T) {
	h := newHarness(t, map[string]string{plain: ".a{}"}, []string{entry, plain})
	h.cfg.CachePath = "/p/.sheen/cache.json"
	h.loader.EXPECT().LoadPostcssConfig(gomock.Any(), "/p").Return(nil, nil)
	h.expectEmit()

	store := mocks.NewMockUnitStore(h.ctrl)
	h.stores.EXPECT().Open("/p/.sheen/cache.json").Return(store, nil)
	h.hasher.EXPECT().ComputeUnitHash(plain, ".a{}", gomock.Any(), "").Return("fresh", nil)
	store.EXPECT().Put(gomock.Any()).Return(nil)
	store.EXPECT().Flush().Return(nil)

	s := h.scheduler(t, scheduler.Options{})
	s.Invalidate(plain)
	_, err := s.Run(context.Background(), h.bundle, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.UnitStatusCompleted, s.GetUnitStatusMap()[plain])
}
