package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/sheen/internal/adapters/fs"
	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
)

func newSassResolver(t *testing.T, root string) ports.Resolver {
	t.Helper()
	r, err := fs.NewResolverFactory().NewResolver(ports.ResolveOptions{
		Root:           root,
		Extensions:     []string{".scss", ".sass", ".css"},
		MainFields:     []string{"sass", "style"},
		TryIndex:       true,
		TryPrefix:      "_",
		PreferRelative: true,
		Alias:          []domain.Alias{{Find: "@", Replacement: root}},
	})
	require.NoError(t, err)
	return r
}

func TestModuleResolver_Relative(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "_vars.scss"), "")
	writeFile(t, filepath.Join(root, "src", "theme", "_index.scss"), "")
	importer := filepath.Join(root, "src", "app.scss")

	r := newSassResolver(t, root)

	got, ok := r.Resolve("./vars", importer)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "src", "_vars.scss"), got)

	got, ok = r.Resolve("vars", importer)
	require.True(t, ok, "preferRelative resolves bare names next to the importer")
	assert.Equal(t, filepath.Join(root, "src", "_vars.scss"), got)

	got, ok = r.Resolve("./theme", importer)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "src", "theme", "_index.scss"), got)

	_, ok = r.Resolve("./missing", importer)
	assert.False(t, ok)
}

func TestModuleResolver_AliasAndPostfix(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "static", "logo.png"), "")

	r := newSassResolver(t, root)

	got, ok := r.Resolve("@/static/logo.png?inline#x", filepath.Join(root, "pages", "a.scss"))
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "static", "logo.png")+"?inline#x", got)

	got, ok = r.Resolve("/static/logo.png", filepath.Join(root, "pages", "a.scss"))
	require.True(t, ok, "root-absolute paths fall back to the project root")
	assert.Equal(t, filepath.Join(root, "static", "logo.png"), got)
}

func TestModuleResolver_Package(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "node_modules", "theme", "package.json"), `{"sass":"lib/main.scss","main":"index.js"}`)
	writeFile(t, filepath.Join(root, "node_modules", "theme", "lib", "main.scss"), "")
	writeFile(t, filepath.Join(root, "node_modules", "@scope", "ui", "src", "_button.scss"), "")
	importer := filepath.Join(root, "src", "deep", "app.scss")

	r := newSassResolver(t, root)

	got, ok := r.Resolve("theme", importer)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "node_modules", "theme", "lib", "main.scss"), got)

	got, ok = r.Resolve("~@scope/ui/src/button", importer)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "node_modules", "@scope", "ui", "src", "_button.scss"), got)

	_, ok = r.Resolve("nope", importer)
	assert.False(t, ok)
}

func TestModuleResolver_External(t *testing.T) {
	r := newSassResolver(t, t.TempDir())
	for _, spec := range []string{"", "https://cdn/x.css", "//cdn/x.css", "data:image/png;base64,AA"} {
		_, ok := r.Resolve(spec, "/a.scss")
		assert.False(t, ok, spec)
	}
}

func TestModuleResolver_Memoizes(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "a.css")
	writeFile(t, target, "")

	r, err := fs.NewModuleResolver(ports.ResolveOptions{Root: root}, 8)
	require.NoError(t, err)

	got, ok := r.Resolve("./a.css", filepath.Join(root, "x.css"))
	require.True(t, ok)
	assert.Equal(t, target, got)

	require.NoError(t, os.Remove(target))
	got, ok = r.Resolve("./a.css", filepath.Join(root, "x.css"))
	assert.True(t, ok, "cached lookups do not touch the file system")
	assert.Equal(t, target, got)
}
