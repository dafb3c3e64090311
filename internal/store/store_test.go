package store_test

import (
	"path/filepath"
	"testing"

	"github.com/koskimas/typeshift/internal/store"
	assert "github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openSQLite(t *testing.T) *store.SQLite {
	s, err := store.Open(filepath.Join(t.TempDir(), "typeshift.db"), zap.NewNop().Sugar())
	assert.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testContentCache(t *testing.T, c store.ContentCache) {
	_, ok, err := c.Get("last:zod")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, c.Set("last:zod", "a"))
	assert.NoError(t, c.Set("last:zod", "b"))

	v, ok, err := c.Get("last:zod")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func testSettingsStore(t *testing.T, s store.SettingsStore) {
	v, err := s.EnsureDefault("target", "typebox")
	assert.NoError(t, err)
	assert.Equal(t, "typebox", v)

	v, err = s.EnsureDefault("target", "zod")
	assert.NoError(t, err)
	assert.Equal(t, "typebox", v)

	assert.NoError(t, s.Set("target", "zod"))

	v, ok, err := s.Get("target")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "zod", v)
}

func TestMemory(t *testing.T) {
	testContentCache(t, store.NewMemoryCache())
	testSettingsStore(t, store.NewMemorySettings())
}

func TestSQLite(t *testing.T) {
	s := openSQLite(t)
	testContentCache(t, s.Content())
	testSettingsStore(t, s.Settings())
}

func TestSQLiteTablesAreSeparate(t *testing.T) {
	s := openSQLite(t)

	assert.NoError(t, s.Content().Set("k", "content"))
	_, ok, err := s.Settings().Get("k")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLitePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typeshift.db")

	s, err := store.Open(path, zap.NewNop().Sugar())
	assert.NoError(t, err)
	assert.NoError(t, s.Settings().Set("target", "yup"))
	assert.NoError(t, s.Close())

	s, err = store.Open(path, zap.NewNop().Sugar())
	assert.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Settings().Get("target")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "yup", v)
}
