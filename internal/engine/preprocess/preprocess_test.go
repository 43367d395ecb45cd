package preprocess_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"

	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
	"go.trai.ch/sheen/internal/core/ports/mocks"
	"go.trai.ch/sheen/internal/core/sourcemap"
	"go.trai.ch/sheen/internal/engine/preprocess"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRouter_LoadsOncePerFamily(t *testing.T) {
	ctrl := gomock.NewController(t)
	pp := mocks.NewMockPreprocessor(ctrl)
	provider := mocks.NewMockPreprocessorProvider(ctrl)
	provider.EXPECT().Family().Return(domain.FamilySass)
	provider.EXPECT().Load("/root").Return(pp, nil).Times(1)

	router := preprocess.NewRouter(provider)

	got, err := router.Preprocessor(domain.DialectSCSS, "/root")
	require.NoError(t, err)
	assert.Same(t, pp, got)

	got, err = router.Preprocessor(domain.DialectSass, "/root")
	require.NoError(t, err)
	assert.Same(t, pp, got)
}

func TestRouter_PlainAndUnsupported(t *testing.T) {
	router := preprocess.NewRouter()

	pp, err := router.Preprocessor(domain.DialectCSS, "/root")
	require.NoError(t, err)
	assert.Nil(t, pp)

	_, err = router.Preprocessor(domain.DialectLess, "/root")
	assert.ErrorIs(t, err, domain.ErrUnsupportedDialect)
}

func TestRouter_LoadFailureIsSticky(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockPreprocessorProvider(ctrl)
	provider.EXPECT().Family().Return(domain.FamilyLess)
	provider.EXPECT().Load(gomock.Any()).Return(nil, zerr.Wrap(domain.ErrPreprocessorNotFound, "less")).Times(1)

	router := preprocess.NewRouter(provider)
	for range 2 {
		_, err := router.Preprocessor(domain.DialectLess, "/root")
		assert.ErrorIs(t, err, domain.ErrPreprocessorNotFound)
	}
}

func TestMergeOptions(t *testing.T) {
	cfg := &domain.Config{
		Root:  "/p",
		Alias: []domain.Alias{{Find: "@", Replacement: "/p"}},
		CSS: domain.CSSOptions{
			DevSourcemap: true,
			PreprocessorOptions: map[domain.Family]domain.PreprocessorOptions{
				domain.FamilySass:   {IncludePaths: []string{"/p/styles"}},
				domain.FamilyStylus: {Imports: []string{"nib"}},
			},
		},
	}

	sass := preprocess.MergeOptions("/p/a.sass?vue&type=style", domain.DialectSass, cfg)
	assert.Equal(t, "/p/a.sass", sass.Filename)
	assert.Equal(t, []string{"/p/node_modules", "/p/styles"}, sass.IncludePaths)
	assert.True(t, sass.IndentedSyntax)
	assert.True(t, sass.EnableSourcemap)
	assert.Equal(t, cfg.Alias, sass.Alias)

	scss := preprocess.MergeOptions("/p/a.scss", domain.DialectSCSS, cfg)
	assert.False(t, scss.IndentedSyntax)

	styl := preprocess.MergeOptions("/p/a.styl", domain.DialectStyl, cfg)
	assert.Equal(t, []string{"/p/node_modules"}, styl.Paths)
	assert.Equal(t, []string{"nib"}, styl.Imports)
	assert.Empty(t, styl.IncludePaths)
}

func TestGetSource(t *testing.T) {
	code, m, err := preprocess.GetSource("a{}", "/a.scss", domain.DialectSCSS, domain.PreprocessorOptions{}, true)
	require.NoError(t, err)
	assert.Equal(t, "a{}", code)
	assert.Nil(t, m)

	user := domain.PreprocessorOptions{AdditionalData: "$c: red;\n"}
	code, m, err = preprocess.GetSource("a{color:$c}", "/a.scss", domain.DialectSCSS, user, false)
	require.NoError(t, err)
	assert.Equal(t, "$c: red;\na{color:$c}", code)
	assert.Nil(t, m)

	code, m, err = preprocess.GetSource("a\n  color c", "/a.styl", domain.DialectStyl, domain.PreprocessorOptions{AdditionalData: "c = red"}, true)
	require.NoError(t, err)
	assert.Equal(t, "c = red\na\n  color c", code)
	require.NotNil(t, m)
	lines, err := m.Decode()
	require.NoError(t, err)
	require.Len(t, lines, 3)
	require.NotEmpty(t, lines[1])
	assert.Equal(t, 0, lines[1][0].Line, "second generated line maps to the first source line")
	assert.Equal(t, []string{"/a.styl"}, m.Sources)
}

func TestGetSource_Func(t *testing.T) {
	user := domain.PreprocessorOptions{
		AdditionalDataFunc: func(source, filename string) (string, error) {
			return "// " + filename + "\n" + strings.ToUpper(source), nil
		},
	}
	code, m, err := preprocess.GetSource("a{}", "/a.less", domain.DialectLess, user, true)
	require.NoError(t, err)
	assert.Equal(t, "// /a.less\nA{}", code)
	assert.Nil(t, m)

	user.AdditionalDataFunc = func(string, string) (string, error) { return "", os.ErrInvalid }
	_, _, err = preprocess.GetSource("a{}", "/a.less", domain.DialectLess, user, true)
	assert.ErrorIs(t, err, os.ErrInvalid)
}

func TestExpandConditionals(t *testing.T) {
	cfg := &domain.Config{Platform: "mp-weixin", Defines: []string{"DEBUG"}}
	source := strings.Join([]string{
		".a{}",
		"/* #ifdef H5 */",
		".h5{}",
		"/* #endif */",
		"/* #ifdef MP || H5 */",
		".mp{}",
		"/* #ifndef DEBUG */",
		".release{}",
		"/* #endif */",
		"/* #endif */",
		"// #ifdef MP-WEIXIN && DEBUG",
		".both{}",
		"// #endif",
	}, "\n")

	got := preprocess.ExpandConditionals(source, cfg.IsDefined)
	assert.Equal(t, strings.Join([]string{
		".a{}", "", "", "", "", ".mp{}", "", "", "", "", "", ".both{}", "",
	}, "\n"), got)
	assert.Equal(t, strings.Count(source, "\n"), strings.Count(got, "\n"))

	noDirectives := "/* #ifdef H5 */ never closed"
	assert.Equal(t, noDirectives, preprocess.ExpandConditionals(noDirectives, cfg.IsDefined))
}

func TestRebaseURLs(t *testing.T) {
	alias := []domain.Alias{{Find: "@", Replacement: "/p"}}
	content := `.a{background:url(../img/a.png)}
.b{background:url("./b.png")}
.c{background:url('/abs.png')}
.d{background:url(@/static/d.png)}
.e{background:url(data:image/png;base64,AA)}
.f{background:url(https://cdn/x.png)}
.g{background:url(#frag)}`

	got := preprocess.RebaseURLs("/p/styles/theme/dark.scss", "/p/pages/index.scss", content, alias)
	assert.Equal(t, `.a{background:url(../styles/img/a.png)}
.b{background:url("../styles/theme/b.png")}
.c{background:url('/abs.png')}
.d{background:url(@/static/d.png)}
.e{background:url(data:image/png;base64,AA)}
.f{background:url(https://cdn/x.png)}
.g{background:url(#frag)}`, got)
}

func TestRebaseURLs_TwoDirectoriesAway(t *testing.T) {
	got := preprocess.RebaseURLs("/p/a/b/_part.scss", "/p/main.scss", ".x{background:url(./icon.svg)}", nil)
	assert.Equal(t, ".x{background:url(a/b/icon.svg)}", got)
}

func TestRebaseURLs_SkipsSameDirAndNoURL(t *testing.T) {
	content := ".x{background:url(./icon.svg)}"
	assert.Equal(t, content, preprocess.RebaseURLs("/p/_part.scss", "/p/main.scss", content, nil))
	assert.Equal(t, ".x{}", preprocess.RebaseURLs("/p/a/_part.scss", "/p/main.scss", ".x{}", nil))
}

func TestUnwrapURL(t *testing.T) {
	v, q, ok := preprocess.UnwrapURL(`url( "a b.png" )`)
	require.True(t, ok)
	assert.Equal(t, "a b.png", v)
	assert.Equal(t, `"`, q)

	v, q, ok = preprocess.UnwrapURL(`URL(x.png)`)
	require.True(t, ok)
	assert.Equal(t, "x.png", v)
	assert.Empty(t, q)

	_, _, ok = preprocess.UnwrapURL("foo(x)")
	assert.False(t, ok)
}

func TestExtractInlineSourceMap(t *testing.T) {
	code := ".a {\n  color: red;\n}\n/*# sourceMappingURL=data:application/json;base64,eyJ2ZXJzaW9uIjozLCJzb3VyY2VzIjpbImEubGVzcyJdLCJuYW1lcyI6W10sIm1hcHBpbmdzIjoiQUFBQSJ9 */"
	stripped, m := preprocess.ExtractInlineSourceMap(code)
	assert.Equal(t, ".a {\n  color: red;\n}\n", stripped)
	require.NotNil(t, m)
	assert.Equal(t, []string{"a.less"}, m.Sources)
	assert.Equal(t, "AAAA", m.Mappings)

	stripped, m = preprocess.ExtractInlineSourceMap(".a{}")
	assert.Equal(t, ".a{}", stripped)
	assert.Nil(t, m)
}

func TestInliner_Inline(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "vars.less"), "@c: red;\n@import \"mixins\";")
	writeFile(t, filepath.Join(dir, "mixins.less"), ".m(){}")
	writeFile(t, filepath.Join(dir, "ref.less"), ".r{}")
	main := filepath.Join(dir, "main.less")

	resolve := func(spec, importer string) (string, bool) {
		p := filepath.Join(filepath.Dir(importer), spec)
		if filepath.Ext(p) == "" {
			p += ".less"
		}
		if _, err := os.Stat(p); err != nil {
			return "", false
		}
		return p, true
	}
	load := func(file, _ string) (string, error) {
		data, err := os.ReadFile(file)
		return string(data), err
	}

	in := preprocess.Inliner{Directives: []string{"import"}}
	code, deps, err := in.Inline(domain.PreprocessRequest{
		Source: strings.Join([]string{
			`@import "vars";`,
			`@import (reference) "ref";`,
			`@import "vars";`,
			`@import "missing";`,
			`@import url("https://cdn/x.css");`,
			`.a{color:@c}`,
		}, "\n"),
		Options: domain.PreprocessOptions{Filename: main},
		Resolve: resolve,
		Load:    load,
	})
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"@c: red;",
		".m(){}",
		`@import (reference) "` + filepath.Join(dir, "ref.less") + `";`,
		"",
		`@import "missing";`,
		`@import url("https://cdn/x.css");`,
		`.a{color:@c}`,
	}, "\n"), code)
	assert.Equal(t, []string{
		filepath.Join(dir, "vars.less"),
		filepath.Join(dir, "mixins.less"),
		filepath.Join(dir, "ref.less"),
	}, deps)
}

func TestInliner_LoadError(t *testing.T) {
	in := preprocess.Inliner{Directives: []string{"import", "require"}}
	_, _, err := in.Inline(domain.PreprocessRequest{
		Source:  `@require "x"`,
		Options: domain.PreprocessOptions{Filename: "/p/a.styl"},
		Resolve: func(string, string) (string, bool) { return "/p/x.styl", true },
		Load:    func(string, string) (string, error) { return "", os.ErrPermission },
	})
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	partial := filepath.Join(dir, "styles", "_vars.scss")
	writeFile(t, partial, "/* #ifdef H5 */\n$c: blue;\n/* #endif */\n.p{background:url(./p.png)}")
	id := filepath.Join(dir, "pages", "index.scss")

	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)
	resolver.EXPECT().Resolve("../styles/vars", id).Return(partial, true)

	pp := mocks.NewMockPreprocessor(ctrl)
	pp.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req domain.PreprocessRequest) domain.PreprocessResult {
			assert.Equal(t, "$c: red;\n@import '../styles/vars';", req.Source)
			assert.Equal(t, id, req.Options.Filename)
			resolved, ok := req.Resolve("../styles/vars", id)
			require.True(t, ok)
			content, err := req.Load(resolved, id)
			require.NoError(t, err)
			assert.Equal(t, "\n\n\n.p{background:url(../styles/p.png)}", content)
			return domain.PreprocessResult{Code: ".p{}", Deps: []string{id, resolved}}
		})
	provider := mocks.NewMockPreprocessorProvider(ctrl)
	provider.EXPECT().Family().Return(domain.FamilySass)
	provider.EXPECT().Load(dir).Return(pp, nil)

	cfg := &domain.Config{
		Root:     dir,
		Platform: "mp-weixin",
		CSS: domain.CSSOptions{PreprocessorOptions: map[domain.Family]domain.PreprocessorOptions{
			domain.FamilySass: {AdditionalData: "$c: red;\n"},
		}},
	}
	runner := preprocess.NewRunner(preprocess.NewRouter(provider), cfg, func(f domain.Family) (ports.Resolver, error) {
		assert.Equal(t, domain.FamilySass, f)
		return resolver, nil
	})

	out, err := runner.Run(context.Background(), id, "@import '../styles/vars';")
	require.NoError(t, err)
	assert.Equal(t, ".p{}", out.Code)
	assert.Equal(t, []string{partial}, out.Deps)
	assert.Nil(t, out.Map)
}

func TestRunner_Run_CompileError(t *testing.T) {
	ctrl := gomock.NewController(t)
	pp := mocks.NewMockPreprocessor(ctrl)
	compileErr := &domain.CompileError{Message: "Undefined variable", File: "/p/a.less", Line: 1, Column: 3}
	pp.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(domain.PreprocessResult{Errors: []error{compileErr}})
	provider := mocks.NewMockPreprocessorProvider(ctrl)
	provider.EXPECT().Family().Return(domain.FamilyLess)
	provider.EXPECT().Load(gomock.Any()).Return(pp, nil)

	runner := preprocess.NewRunner(preprocess.NewRouter(provider), &domain.Config{Root: "/p"}, func(domain.Family) (ports.Resolver, error) {
		return mocks.NewMockResolver(ctrl), nil
	})
	_, err := runner.Run(context.Background(), "/p/a.less", "a{color:@x}")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCompileFailed)
}

func TestRunner_Run_CombinesMaps(t *testing.T) {
	ctrl := gomock.NewController(t)
	pp := mocks.NewMockPreprocessor(ctrl)
	pp.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req domain.PreprocessRequest) domain.PreprocessResult {
			return domain.PreprocessResult{
				Code: ".a {\n  color: red;\n}\n",
				Map: &sourcemap.Map{
					Version:  3,
					Sources:  []string{req.Options.Filename},
					Mappings: "AACA;AACA",
				},
			}
		})
	provider := mocks.NewMockPreprocessorProvider(ctrl)
	provider.EXPECT().Family().Return(domain.FamilySass)
	provider.EXPECT().Load(gomock.Any()).Return(pp, nil)

	cfg := &domain.Config{
		Root: "/p",
		CSS: domain.CSSOptions{
			DevSourcemap: true,
			PreprocessorOptions: map[domain.Family]domain.PreprocessorOptions{
				domain.FamilySass: {AdditionalData: "$c: red;\n"},
			},
		},
	}
	runner := preprocess.NewRunner(preprocess.NewRouter(provider), cfg, func(domain.Family) (ports.Resolver, error) {
		return mocks.NewMockResolver(ctrl), nil
	})
	out, err := runner.Run(context.Background(), "/p/a.scss", ".a{color:$c}")
	require.NoError(t, err)
	require.NotNil(t, out.Map)

	lines, err := out.Map.Decode()
	require.NoError(t, err)
	require.NotEmpty(t, lines[0])
	assert.Equal(t, 0, lines[0][0].Line, "the shifted line maps back to the first source line")
}
