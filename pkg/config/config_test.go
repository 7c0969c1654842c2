package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8192, cfg.Parallel.ChunkSize)
	assert.Equal(t, 1024, cfg.Parallel.MinChunkSize)
	assert.Equal(t, int64(1_000_000), cfg.GroupBy.DenseRangeLimit)
	assert.Equal(t, 1_000, cfg.GroupBy.DenseMinRows)
	assert.Equal(t, 50_000, cfg.GroupBy.SequentialRowLimit)
	assert.Equal(t, int64(50), cfg.GroupBy.SequentialRangeLimit)
	assert.Equal(t, 100, cfg.Pool.FreeListCap)
	assert.False(t, cfg.Kernel.ForceScalar)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"negative workers":   func(c *Config) { c.Parallel.Workers = -1 },
		"zero chunk size":    func(c *Config) { c.Parallel.ChunkSize = 0 },
		"min above chunk":    func(c *Config) { c.Parallel.MinChunkSize = 100_000 },
		"zero dense range":   func(c *Config) { c.GroupBy.DenseRangeLimit = 0 },
		"negative min rows":  func(c *Config) { c.GroupBy.DenseMinRows = -1 },
		"negative free list": func(c *Config) { c.Pool.FreeListCap = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().GroupBy, cfg.GroupBy)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiver.yaml")
	body := []byte("parallel:\n  chunk_size: 4096\ngroup_by:\n  dense_min_rows: 500\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.Parallel.ChunkSize)
	assert.Equal(t, 500, cfg.GroupBy.DenseMinRows)
	assert.Equal(t, int64(1_000_000), cfg.GroupBy.DenseRangeLimit, "unset keys keep defaults")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("QUIVER_POOL_FREE_LIST_CAP", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pool.FreeListCap)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parallel: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
