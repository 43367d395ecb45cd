package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/sheen/internal/adapters/cas"
	"go.trai.ch/sheen/internal/core/domain"
)

func TestStore_PutAndGet(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "units.json"))
	require.NoError(t, err)

	rec := domain.UnitRecord{
		ID:        "/src/app.scss",
		InputHash: "abc",
		Code:      ".a{color:red}",
		Deps:      []string{"/src/_vars.scss"},
		Timestamp: time.Now(),
	}
	require.NoError(t, store.Put(rec))

	got, err := store.Get("/src/app.scss")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Code, got.Code)
	assert.Equal(t, rec.Deps, got.Deps)

	missing, err := store.Get("/src/other.scss")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_PutRequiresID(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "units.json"))
	require.NoError(t, err)
	require.Error(t, store.Put(domain.UnitRecord{Code: "a{}"}))
}

func TestStore_Persistence(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "cache", "units.json")

	store1, err := cas.NewStore(storePath)
	require.NoError(t, err)
	require.NoError(t, store1.Put(domain.UnitRecord{
		ID:        "/a.css",
		InputHash: "h1",
		Modules:   map[string]string{"btn": "_btn_1a2b3"},
	}))

	_, err = os.Stat(storePath)
	assert.True(t, os.IsNotExist(err), "Put must not write to disk")

	require.NoError(t, store1.Flush())

	store2, err := cas.NewStore(storePath)
	require.NoError(t, err)
	got, err := store2.Get("/a.css")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "h1", got.InputHash)
	assert.Equal(t, "_btn_1a2b3", got.Modules["btn"])
}

func TestStore_FlushWithoutChanges(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "units.json")
	store, err := cas.NewStore(storePath)
	require.NoError(t, err)

	require.NoError(t, store.Flush())
	_, err = os.Stat(storePath)
	assert.True(t, os.IsNotExist(err))
}

func TestNewStore_CorruptFile(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "units.json")
	require.NoError(t, os.WriteFile(storePath, []byte("{not json"), 0o600))

	_, err := cas.NewStore(storePath)
	require.Error(t, err)
}

func TestNewStore_EmptyFile(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "units.json")
	require.NoError(t, os.WriteFile(storePath, nil, 0o600))

	store, err := cas.NewStore(storePath)
	require.NoError(t, err)
	got, err := store.Get("x")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFactory_Open(t *testing.T) {
	store, err := cas.NewFactory().Open(filepath.Join(t.TempDir(), "units.json"))
	require.NoError(t, err)
	require.NotNil(t, store)
}
