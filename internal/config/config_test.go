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
	t.Setenv("GRIDPULSE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, int64(33554432), cfg.Dataset.MaxUploadBytes)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GRIDPULSE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("GRIDPULSE_SERVER_PORT", "9090")
	t.Setenv("GRIDPULSE_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "gridpulse.yaml")
	content := "server:\n  port: 9999\nlogging:\n  level: warn\n  output: console\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	t.Setenv("GRIDPULSE_CONFIG", file)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// unset file values still defaulted from env layer
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "GRIDPULSE_SERVER_PORT", "99999"},
		{"bad log level", "GRIDPULSE_LOGGING_LEVEL", "verbose"},
		{"bad log output", "GRIDPULSE_LOGGING_OUTPUT", "syslog"},
		{"bad upload cap", "GRIDPULSE_DATASET_MAX_UPLOAD_BYTES", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GRIDPULSE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestPaths(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewPaths(PathsConfig{
		DataDir:    filepath.Join(dir, "data"),
		ExportsDir: filepath.Join(dir, "data", "exports"),
		LogsDir:    filepath.Join(dir, "logs"),
	})
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	assert.DirExists(t, paths.DataDir)
	assert.DirExists(t, paths.ExportsDir)
	assert.DirExists(t, paths.LogsDir)
	assert.Equal(t, filepath.Join(dir, "data", "exports", "out.csv"), paths.ExportPath("out.csv"))

	assert.False(t, FileExists(filepath.Join(dir, "nope.txt")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "yes.txt"), []byte("x"), 0o644))
	assert.True(t, FileExists(filepath.Join(dir, "yes.txt")))
}
