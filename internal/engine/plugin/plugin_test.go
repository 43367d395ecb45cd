package plugin_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/sheen/internal/adapters/fs"
	"go.trai.ch/sheen/internal/adapters/telemetry"
	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports/mocks"
	"go.trai.ch/sheen/internal/engine/chunk"
	"go.trai.ch/sheen/internal/engine/plugin"
	"go.trai.ch/sheen/internal/engine/preprocess"
	"go.trai.ch/sheen/internal/engine/session"
)

type fixture struct {
	root string
	sess *session.Session
	css  *plugin.CSSPlugin
	post *plugin.CSSPostPlugin
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	cfg := &domain.Config{
		Root:  root,
		Alias: []domain.Alias{{Find: "@", Replacement: root}},
		Build: domain.BuildOptions{AssetsInlineLimit: domain.DefaultAssetsInlineLimit},
	}
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().LoadPostcssConfig(gomock.Any(), root).Return(nil, nil).AnyTimes()

	sess := session.New(cfg, fs.NewResolverFactory(), fs.NewHasher(fs.NewWalker()))
	globber := fs.NewGlobber()
	logger := mocks.NewMockLogger(ctrl)
	aggregator := chunk.NewAggregator(sess, nil, globber, logger, telemetry.NewNoOp())
	return &fixture{
		root: root,
		sess: sess,
		css:  plugin.NewCSSPlugin(sess, preprocess.NewRouter(), loader, globber, logger),
		post: plugin.NewCSSPostPlugin(sess, aggregator),
	}
}

func (f *fixture) write(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(f.root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func TestCSSPlugin_Transform_SkipsNonStyleModules(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"/p/main.js", "/p/a.css?commonjs-proxy"} {
		res, err := f.css.Transform(context.Background(), id, "x")
		require.NoError(t, err)
		assert.Nil(t, res, id)
	}
	_, ok := f.post.Transform("/p/main.js", "x")
	assert.False(t, ok)
}

func TestCSSPlugin_Transform_ReplacesURLs(t *testing.T) {
	f := newFixture(t)
	small := f.write(t, "img/small.svg", []byte("<svg/>"))
	bigData := bytes.Repeat([]byte{'x'}, domain.DefaultAssetsInlineLimit+1)
	big := f.write(t, "img/big.png", bigData)
	id := f.write(t, "styles/a.css", nil)

	code := ".a{background:url(../img/small.svg)}\n" +
		".b{background:url(/img/big.png?v=1)}\n" +
		".c{background:url(./missing.png)}\n" +
		".d{background:url(../img/small.svg#frag)}"
	res, err := f.css.Transform(context.Background(), id, code)
	require.NoError(t, err)

	hash := fs.NewHasher(fs.NewWalker()).ComputeContentHash(bigData)[:8]
	assert.Contains(t, res.Code, ".a{background:url("+session.DataURL(small, []byte("<svg/>"))+")}")
	assert.Contains(t, res.Code, ".b{background:url("+session.Placeholder(hash, "?v=1")+")}")
	assert.Contains(t, res.Code, ".c{background:url(./missing.png)}")
	assert.NotContains(t, res.Code, "small.svg#frag")

	asset, ok := f.sess.Assets.Get(hash)
	require.True(t, ok)
	assert.Equal(t, big, asset.Source)
	assert.Equal(t, "assets/big."+hash+".png", asset.Name)

	moduleCode, ok := f.post.Transform(id, res.Code)
	require.True(t, ok)
	assert.Empty(t, moduleCode)
	text, ok := f.sess.Style(id)
	require.True(t, ok)
	assert.Equal(t, res.Code, text)

	assert.Equal(t, []string{big, small}, f.post.ReferencedAssets(res.Code+res.Code))
}

func TestCSSPlugin_ScopedModule(t *testing.T) {
	f := newFixture(t)
	f.sess.Config.CSS.Modules = &domain.ModulesOptions{GenerateScopedName: "[name]__[local]"}
	id := filepath.Join(f.root, "card.module.css")

	res, err := f.css.Transform(context.Background(), id, ".title{}")
	require.NoError(t, err)
	assert.Equal(t, ".card__title{}", res.Code)

	modules, ok := f.css.Modules(id)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"title": "card__title"}, modules)

	moduleCode, ok := f.post.Transform(id, res.Code)
	require.True(t, ok)
	assert.Equal(t, domain.ModulesToESM(modules), moduleCode)

	f.css.BuildStart()
	_, ok = f.css.Modules(id)
	assert.False(t, ok)
}

func TestCSSPlugin_Restore(t *testing.T) {
	f := newFixture(t)
	logo := f.write(t, "logo.png", []byte("logo"))
	rec := &domain.UnitRecord{
		ID:      "/p/a.module.css",
		Modules: map[string]string{"a": "_a_x"},
		Assets:  []string{logo},
	}
	require.NoError(t, f.css.Restore(rec))

	modules, ok := f.css.Modules(rec.ID)
	require.True(t, ok)
	assert.Equal(t, rec.Modules, modules)
	assert.Len(t, f.sess.Assets.All(), 1)

	rec.Assets = []string{filepath.Join(f.root, "gone.png")}
	require.Error(t, f.css.Restore(rec))
}
