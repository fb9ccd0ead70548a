package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Addr, cfg.Addr)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9090"
base_url: https://sv.example.com/
cache_ttl: 90s
log_level: DEBUG
`), 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "https://sv.example.com/", cfg.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unterminated"), 0600))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	cfg.ServerURL = "https://sv.example.com"
	require.NoError(t, cfg.Save())

	again, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://sv.example.com", again.ServerURL)
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("SECUREVIEW_ADDR", ":7000")
	t.Setenv("SECUREVIEW_CACHE_TTL", "1m")
	t.Setenv("SECUREVIEW_CACHE_SIZE_MB", "nope")

	cfg := DefaultConfig()
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 256, cfg.CacheSizeMB)
}
