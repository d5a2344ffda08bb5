package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.EqualValues(t, 25, cfg.Difficulty)
	require.Equal(t, 5*time.Minute, cfg.IgnorePeersTime)
	require.Equal(t, 2*time.Minute, cfg.GetMorePeersTime)
	require.True(t, cfg.GenesisBootstrap)
	require.False(t, cfg.AllowUnsignedTx)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weave-bridge.yaml")
	contents := "difficulty: 40\nlocal_http_addr: \":9999\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.EqualValues(t, 40, cfg.Difficulty)
	require.Equal(t, ":9999", cfg.LocalHTTPAddr)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.EqualValues(t, 25, cfg.Difficulty)
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Setenv("WEAVE_DIFFICULTY", "99")
	cfg, err := Load("")
	require.NoError(t, err)
	require.EqualValues(t, 99, cfg.Difficulty)
}

func TestNewLoggerDefaultsToInfo(t *testing.T) {
	cfg := &Config{LogLevel: "bogus-level"}
	logger := NewLogger(cfg)
	require.Equal(t, "info", logger.GetLevel().String())
}

func TestNewLoggerHonorsConfiguredLevel(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	logger := NewLogger(cfg)
	require.Equal(t, "debug", logger.GetLevel().String())
}
