package artifact

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cancerdetect/db"
)

func TestImportCopiesFilesIntoStore(t *testing.T) {
	store, err := db.Open("sqlite3", filepath.Join(t.TempDir(), "artifacts.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	src := fixtureSource(t)
	bundle, err := Import(ctx, src, store)
	require.NoError(t, err)
	assert.Equal(t, 30, bundle.Features.Len())

	rows, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "feature_names", rows[0].Name)

	loaded, err := Load(ctx, &StoreSource{Store: store})
	require.NoError(t, err)
	assert.Equal(t, bundle.Features.Names(), loaded.Features.Names())
}

func TestImportRejectsInconsistentSet(t *testing.T) {
	store, err := db.Open("sqlite3", filepath.Join(t.TempDir(), "artifacts.db"))
	require.NoError(t, err)
	defer store.Close()

	src := fixtureSource(t)
	require.NoError(t, os.WriteFile(src.Path(KindFeatures), []byte(`["a","b"]`), 0o600))

	ctx := context.Background()
	_, err = Import(ctx, src, store)
	require.Error(t, err)

	rows, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// changingSource serves the fixture on the first read of each kind and
// corrupt bytes on any later read.
type changingSource struct {
	inner Source
	mu    sync.Mutex
	reads map[Kind]int
}

func (s *changingSource) Read(ctx context.Context, kind Kind) ([]byte, error) {
	s.mu.Lock()
	s.reads[kind]++
	n := s.reads[kind]
	s.mu.Unlock()
	if n > 1 {
		return []byte("corrupt"), nil
	}
	return s.inner.Read(ctx, kind)
}

func TestImportStoresTheValidatedBytes(t *testing.T) {
	store, err := db.Open("sqlite3", filepath.Join(t.TempDir(), "artifacts.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	fixture := fixtureSource(t)
	src := &changingSource{inner: fixture, reads: make(map[Kind]int)}
	_, err = Import(ctx, src, store)
	require.NoError(t, err)

	for _, kind := range Kinds {
		assert.Equal(t, 1, src.reads[kind], "%s read once", kind)
		want, err := fixture.Read(ctx, kind)
		require.NoError(t, err)
		got, err := store.Get(ctx, string(kind))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = Load(ctx, &StoreSource{Store: store})
	assert.NoError(t, err)
}
