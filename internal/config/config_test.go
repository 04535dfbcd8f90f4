package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GRIMPO_DB_PATH", "")
	t.Setenv("GRIMPO_CATALOG", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "main_user", cfg.PlayerKey)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, uint(5), cfg.PersistMaxTries)
	assert.Equal(t, 5*time.Second, cfg.PersistMaxElapsed)

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, 19, cat.Len())
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte("items:\n  - id: moss\n    unlock: 0\n    cost: 1\n"), 0o600))

	t.Setenv("GRIMPO_DB_PATH", filepath.Join(dir, "g.db"))
	t.Setenv("GRIMPO_PLAYER_KEY", "alice")
	t.Setenv("GRIMPO_CATALOG", catalogPath)
	t.Setenv("GRIMPO_PERSIST_MAX_TRIES", "2")
	t.Setenv("GRIMPO_PERSIST_MAX_ELAPSED", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.PlayerKey)
	assert.Equal(t, uint(2), cfg.PersistMaxTries)
	assert.Equal(t, 250*time.Millisecond, cfg.PersistMaxElapsed)

	path, err := cfg.ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "g.db"), path)

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	_, ok := cat.Get("moss")
	assert.True(t, ok)
	assert.Len(t, cfg.PersisterOptions(), 1)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Run("zero tries", func(t *testing.T) {
		t.Setenv("GRIMPO_PERSIST_MAX_TRIES", "0")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("malformed duration", func(t *testing.T) {
		t.Setenv("GRIMPO_PERSIST_MAX_ELAPSED", "soon")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("blank key", func(t *testing.T) {
		t.Setenv("GRIMPO_PLAYER_KEY", " ")
		_, err := Load()
		require.Error(t, err)
	})
}
