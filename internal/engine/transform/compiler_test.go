package transform_test

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/sheen/internal/adapters/fs"
	"go.trai.ch/sheen/internal/adapters/watcher"
	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/core/ports/mocks"
	"go.trai.ch/sheen/internal/core/sourcemap"
	"go.trai.ch/sheen/internal/engine/preprocess"
	"go.trai.ch/sheen/internal/engine/session"
	"go.trai.ch/sheen/internal/engine/transform"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

type fixture struct {
	cfg      *domain.Config
	sess     *session.Session
	loader   *mocks.MockConfigLoader
	logger   *mocks.MockLogger
	compiler *transform.Compiler
}

func newFixture(t *testing.T, cfg *domain.Config, postcss *domain.PostcssConfig, replace transform.URLReplacer, providers ...ports.PreprocessorProvider) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().LoadPostcssConfig(gomock.Any(), cfg.Root).Return(postcss, nil).AnyTimes()
	logger := mocks.NewMockLogger(ctrl)

	sess := session.New(cfg, fs.NewResolverFactory(), fs.NewHasher(fs.NewWalker()))
	runner := preprocess.NewRunner(preprocess.NewRouter(providers...), cfg, sess.Resolvers.ForFamily)
	return &fixture{
		cfg:      cfg,
		sess:     sess,
		loader:   loader,
		logger:   logger,
		compiler: transform.NewCompiler(sess, runner, loader, fs.NewGlobber(), logger, replace),
	}
}

func TestCompile_PlainFastPath(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, &domain.Config{Root: dir}, nil, nil)

	code := ".a { color: red }\n.b{margin:0}"
	res, err := f.compiler.Compile(context.Background(), filepath.Join(dir, "a.css"), code)
	require.NoError(t, err)
	assert.Equal(t, code, res.Code)
	assert.Nil(t, res.Map)
	assert.Empty(t, res.Deps)
	assert.Empty(t, res.Modules)
}

func TestCompile_InlinesImportsOncePerMedia(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "styles", "base.css")
	writeFile(t, base, ".b{}\n")
	id := filepath.Join(dir, "main.css")
	f := newFixture(t, &domain.Config{Root: dir}, nil, nil)

	code := "@import \"./styles/base.css\";\n@import url(./styles/base.css) screen;\n@import './styles/base.css';\n@import \"https://cdn.example.com/x.css\";\n.m{}"
	res, err := f.compiler.Compile(context.Background(), id, code)
	require.NoError(t, err)
	assert.Equal(t, ".b{}\n@media screen {\n.b{}\n}\n\n@import \"https://cdn.example.com/x.css\";\n.m{}", res.Code)
	assert.Equal(t, []string{base}, res.Deps)
}

func TestCompile_NestedImportIsRebased(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lib", "theme", "vars.css"), ".v{background:url(./bg.png)}")
	writeFile(t, filepath.Join(dir, "lib", "index.css"), "@import \"./theme/vars.css\";")
	id := filepath.Join(dir, "pages", "home", "home.css")
	f := newFixture(t, &domain.Config{Root: dir}, nil, nil)

	res, err := f.compiler.Compile(context.Background(), id, "@import \"../../lib/index.css\";")
	require.NoError(t, err)
	assert.Equal(t, ".v{background:url(../../lib/theme/bg.png)}", res.Code)
	assert.Equal(t, []string{
		filepath.Join(dir, "lib", "index.css"),
		filepath.Join(dir, "lib", "theme", "vars.css"),
	}, res.Deps)
}

func TestCompile_GlobImportRegistersDirDependency(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "parts", "a.css")
	b := filepath.Join(dir, "parts", "b.css")
	writeFile(t, a, ".a{}")
	writeFile(t, b, ".b{}")
	writeFile(t, filepath.Join(dir, "parts", "node_modules", "c.css"), ".c{}")
	id := filepath.Join(dir, "main.css")

	f := newFixture(t, &domain.Config{Root: dir}, nil, nil)
	server := mocks.NewMockDevServer(gomock.NewController(t))
	base := filepath.Join(dir, "parts")
	server.EXPECT().WatchGlob(id, base, path.Join(filepath.ToSlash(base), "*.css"))
	f.compiler.SetDevServer(server)

	res, err := f.compiler.Compile(context.Background(), id, "@import \"./parts/*.css\";\n.m{}")
	require.NoError(t, err)
	assert.Equal(t, ".a{}\n.b{}\n.m{}", res.Code)
	assert.Equal(t, []string{a, b}, res.Deps)
}

func TestCompile_GlobImportWatchInvalidatesUnit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "parts", "a.css"), ".a{}")
	id := filepath.Join(dir, "main.css")

	f := newFixture(t, &domain.Config{Root: dir}, nil, nil)
	registry := watcher.NewGlobRegistry(fs.NewGlobber())
	f.compiler.SetDevServer(registry)

	_, err := f.compiler.Compile(context.Background(), id, "@import \"./parts/*.css\";\n.m{}")
	require.NoError(t, err)

	assert.Equal(t, []string{id}, registry.Affected([]string{filepath.Join(dir, "parts", "new.css")}))
	assert.Empty(t, registry.Affected([]string{filepath.Join(dir, "parts", "deep", "x.css")}))
	assert.Empty(t, registry.Affected([]string{filepath.Join(dir, "other", "x.css")}))
}

func TestCompile_NestedGlobImportWatchesImporterDir(t *testing.T) {
	dir := t.TempDir()
	part := filepath.Join(dir, "lib", "parts", "a.css")
	writeFile(t, part, ".a{}")
	writeFile(t, filepath.Join(dir, "lib", "index.css"), "@import \"./parts/*.css\";")
	id := filepath.Join(dir, "main.css")

	f := newFixture(t, &domain.Config{Root: dir}, nil, nil)
	registry := watcher.NewGlobRegistry(fs.NewGlobber())
	f.compiler.SetDevServer(registry)

	res, err := f.compiler.Compile(context.Background(), id, "@import \"./lib/index.css\";\n.m{}")
	require.NoError(t, err)
	assert.Equal(t, ".a{}\n.m{}", res.Code)
	assert.Equal(t, []string{filepath.Join(dir, "lib", "index.css"), part}, res.Deps)

	assert.Equal(t, []string{id}, registry.Affected([]string{filepath.Join(dir, "lib", "parts", "b.css")}))
	assert.Empty(t, registry.Affected([]string{filepath.Join(dir, "parts", "b.css")}))
}

func TestCompile_ImportWithQuery(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.css")
	writeFile(t, a, ".a{}")
	f := newFixture(t, &domain.Config{Root: dir}, nil, nil)

	res, err := f.compiler.Compile(context.Background(), filepath.Join(dir, "main.css"), "@import \"./a.css?v=1\";\n.m{}")
	require.NoError(t, err)
	assert.Equal(t, ".a{}\n.m{}", res.Code)
	assert.Equal(t, []string{a}, res.Deps)
}

func TestCompile_UnmatchedImportsAreKept(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, &domain.Config{Root: dir}, nil, nil)

	code := "@import \"./none/*.css\";\n@import \"./missing.css?v=2\";\n.m{}"
	res, err := f.compiler.Compile(context.Background(), filepath.Join(dir, "main.css"), code)
	require.NoError(t, err)
	assert.Equal(t, code, res.Code)
	assert.Empty(t, res.Deps)
}

func TestCompile_ScopedModuleScopesImportedClasses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.css"), ".b{color:red}\n")
	cfg := &domain.Config{Root: dir, CSS: domain.CSSOptions{Modules: &domain.ModulesOptions{
		GenerateScopedName: "[local]_x",
	}}}
	f := newFixture(t, cfg, nil, nil)

	res, err := f.compiler.Compile(context.Background(), filepath.Join(dir, "a.module.css"), "@import \"./b.css\";\n.a{}")
	require.NoError(t, err)
	assert.Equal(t, ".b_x{color:red}\n.a_x{}", res.Code)
	assert.Equal(t, map[string]string{"a": "a_x", "b": "b_x"}, res.Modules)
}

func TestCompile_ScopedModule(t *testing.T) {
	dir := t.TempDir()
	id := filepath.Join(dir, "components", "card.module.css")
	var reported map[string]string
	cfg := &domain.Config{Root: dir, CSS: domain.CSSOptions{Modules: &domain.ModulesOptions{
		OnModules: func(gotID string, modules map[string]string) {
			assert.Equal(t, id, gotID)
			reported = modules
		},
	}}}
	f := newFixture(t, cfg, nil, nil)

	code := ".title{color:red}\n:global(.g) .title{}\n@keyframes spin{}\n.x{animation: spin 1s}"
	res, err := f.compiler.Compile(context.Background(), id, code)
	require.NoError(t, err)

	m := res.Modules
	require.Len(t, m, 3)
	assert.Equal(t, m, reported)
	assert.True(t, strings.HasPrefix(m["title"], "_title_"))
	assert.Len(t, m["title"], len("_title_")+5)
	assert.Equal(t,
		"."+m["title"]+"{color:red}\n.g ."+m["title"]+"{}\n@keyframes "+m["spin"]+"{}\n."+m["x"]+"{animation: "+m["spin"]+" 1s}",
		res.Code)

	again, err := f.compiler.Compile(context.Background(), id, code)
	require.NoError(t, err)
	assert.Equal(t, res.Modules, again.Modules)
}

func TestCompile_ScopedModule_Conventions(t *testing.T) {
	dir := t.TempDir()
	id := filepath.Join(dir, "a.module.css")
	cfg := &domain.Config{Root: dir, CSS: domain.CSSOptions{Modules: &domain.ModulesOptions{
		GenerateScopedName: "[name]__[local]",
		LocalsConvention:   "camelCaseOnly",
	}}}
	f := newFixture(t, cfg, nil, nil)

	res, err := f.compiler.Compile(context.Background(), id, ".main-title:hover, :local(.sub_title){}")
	require.NoError(t, err)
	assert.Equal(t, ".a__main-title:hover, .a__sub_title{}", res.Code)
	assert.Equal(t, map[string]string{"mainTitle": "a__main-title", "subTitle": "a__sub_title"}, res.Modules)
}

func TestCompile_ScopeBehaviourGlobal(t *testing.T) {
	dir := t.TempDir()
	cfg := &domain.Config{Root: dir, CSS: domain.CSSOptions{Modules: &domain.ModulesOptions{
		ScopeBehaviour:     "global",
		GenerateScopedName: "[local]-x",
	}}}
	f := newFixture(t, cfg, nil, nil)

	res, err := f.compiler.Compile(context.Background(), filepath.Join(dir, "a.module.css"), ".a{} :local(.b){}")
	require.NoError(t, err)
	assert.Equal(t, ".a{} .b-x{}", res.Code)
	assert.Equal(t, map[string]string{"b": "b-x"}, res.Modules)
}

func TestCompile_ModulesDisabled(t *testing.T) {
	dir := t.TempDir()
	cfg := &domain.Config{Root: dir, CSS: domain.CSSOptions{Modules: &domain.ModulesOptions{Disabled: true}}}
	f := newFixture(t, cfg, nil, nil)

	res, err := f.compiler.Compile(context.Background(), filepath.Join(dir, "a.module.css"), ".a{}")
	require.NoError(t, err)
	assert.Equal(t, ".a{}", res.Code)
	assert.Empty(t, res.Modules)
}

func TestCompile_RewritesURLs(t *testing.T) {
	dir := t.TempDir()
	id := filepath.Join(dir, "pages", "a.css")
	replace := func(url, importer string) (string, error) {
		assert.Equal(t, id, importer)
		return "/static/" + filepath.Base(url), nil
	}
	f := newFixture(t, &domain.Config{Root: dir}, nil, replace)

	code := ".a{background:url(./img.png)}\n" +
		".b{background:url('./b.png') , url(data:image/png;base64,AA)}\n" +
		".c{background-image:image-set(\"./c.png\" 1x, url(./d.png) 2x)}\n" +
		".d{mask:url(#m);background:url(https://cdn.example.com/e.png)}"
	res, err := f.compiler.Compile(context.Background(), id, code)
	require.NoError(t, err)
	assert.Equal(t,
		".a{background:url(/static/img.png)}\n"+
			".b{background:url('/static/b.png') , url(data:image/png;base64,AA)}\n"+
			".c{background-image:image-set(\"/static/c.png\" 1x, url(/static/d.png) 2x)}\n"+
			".d{mask:url(#m);background:url(https://cdn.example.com/e.png)}",
		res.Code)
}

func TestCompile_URLRewriteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	identity := func(url, _ string) (string, error) { return url, nil }
	f := newFixture(t, &domain.Config{Root: dir}, nil, identity)

	code := ".a{background:url( \"./img.png\" )}"
	res, err := f.compiler.Compile(context.Background(), filepath.Join(dir, "a.css"), code)
	require.NoError(t, err)
	assert.Equal(t, code, res.Code)
}

func TestCompile_ConfigPlugins(t *testing.T) {
	dir := t.TempDir()
	postcss := &domain.PostcssConfig{Plugins: []domain.PluginSpec{
		{Name: "strip-comments"},
		{Name: "unit-transform", Options: map[string]any{"ratio": 2}},
	}}
	f := newFixture(t, &domain.Config{Root: dir}, postcss, nil)

	res, err := f.compiler.Compile(context.Background(), filepath.Join(dir, "a.css"),
		"/*! keep */\n/* drop */.a{width:10px;height:1.5em;margin:-0.5PX}")
	require.NoError(t, err)
	assert.Equal(t, "/*! keep */\n.a{width:20rpx;height:1.5em;margin:-1rpx}", res.Code)
}

func TestCompile_UnknownPlugin(t *testing.T) {
	dir := t.TempDir()
	postcss := &domain.PostcssConfig{Plugins: []domain.PluginSpec{{Name: "autoprefixer"}}}
	f := newFixture(t, &domain.Config{Root: dir}, postcss, nil)

	_, err := f.compiler.Compile(context.Background(), filepath.Join(dir, "a.css"), ".a{}")
	require.ErrorIs(t, err, domain.ErrUnknownPlugin)
}

func TestCompile_SourceMaps(t *testing.T) {
	dir := t.TempDir()
	id := filepath.Join(dir, "a.css")
	replace := func(string, string) (string, error) { return "/x.png", nil }

	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, &domain.Config{Root: dir}, nil, replace)
		res, err := f.compiler.Compile(context.Background(), id, ".a{background:url(./a.png)}")
		require.NoError(t, err)
		require.NotNil(t, res.Map)
		assert.True(t, res.Map.IsEmpty())
		assert.Equal(t, 3, res.Map.Version)
	})

	t.Run("enabled", func(t *testing.T) {
		cfg := &domain.Config{Root: dir, CSS: domain.CSSOptions{DevSourcemap: true}}
		f := newFixture(t, cfg, nil, replace)
		res, err := f.compiler.Compile(context.Background(), id, ".a{background:url(./a.png)}")
		require.NoError(t, err)
		require.NotNil(t, res.Map)
		assert.False(t, res.Map.IsEmpty())
		assert.Equal(t, []string{id}, res.Map.Sources)
	})
}

func TestCompile_PreprocessorError(t *testing.T) {
	dir := t.TempDir()
	id := filepath.Join(dir, "a.scss")
	ctrl := gomock.NewController(t)

	pp := mocks.NewMockPreprocessor(ctrl)
	pp.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(domain.PreprocessResult{
		Errors: []error{&domain.CompileError{Message: "Undefined variable", File: id, Line: 1, Column: 5}},
	})
	provider := mocks.NewMockPreprocessorProvider(ctrl)
	provider.EXPECT().Family().Return(domain.FamilySass)
	provider.EXPECT().Load(dir).Return(pp, nil)

	f := newFixture(t, &domain.Config{Root: dir}, nil, nil, provider)
	_, err := f.compiler.Compile(context.Background(), id, ".a{color:$c}")
	require.ErrorIs(t, err, domain.ErrCompileFailed)
}

func TestCompile_PreprocessedDeps(t *testing.T) {
	dir := t.TempDir()
	id := filepath.Join(dir, "a.scss")
	partial := filepath.Join(dir, "_vars.scss")
	ctrl := gomock.NewController(t)

	pp := mocks.NewMockPreprocessor(ctrl)
	pp.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(domain.PreprocessResult{
		Code: ".a{color:red}",
		Deps: []string{id, partial, partial},
	})
	provider := mocks.NewMockPreprocessorProvider(ctrl)
	provider.EXPECT().Family().Return(domain.FamilySass)
	provider.EXPECT().Load(dir).Return(pp, nil)

	f := newFixture(t, &domain.Config{Root: dir}, nil, nil, provider)
	res, err := f.compiler.Compile(context.Background(), id, "@use 'vars';\n.a{color:$c}")
	require.NoError(t, err)
	assert.Equal(t, ".a{color:red}", res.Code)
	assert.Equal(t, []string{partial}, res.Deps)
}

func TestFormatSourceMap(t *testing.T) {
	m := &sourcemap.Map{
		Version:    3,
		SourceRoot: "root",
		Sources:    []string{"", "../lib/b.css", "/abs/c.css", "<input css 1>"},
	}
	out := transform.FormatSourceMap(m, "/p/src/a.css")
	assert.Equal(t, []string{"/p/src/a.css", "/p/lib/b.css", "/abs/c.css", "\x00<input css 1>"}, out.Sources)
	assert.Empty(t, out.SourceRoot)
	assert.Equal(t, "root", m.SourceRoot)
	assert.Nil(t, transform.FormatSourceMap(nil, "/p/a.css"))
}
