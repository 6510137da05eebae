package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"STATLAB_ADDR", "STATLAB_DB", "STATLAB_LOG_MODE", "STATLAB_LOG_LEVEL", "STATLAB_GIN_MODE",
		"STATLAB_SHUTDOWN_TIMEOUT", "STATLAB_CORS_ORIGINS", "STATLAB_GENERATE_ON_MISS", "STATLAB_SEED",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STATLAB_ADDR", "127.0.0.1:9000")
	t.Setenv("STATLAB_DB", "/tmp/s.db")
	t.Setenv("STATLAB_LOG_MODE", "PROD")
	t.Setenv("STATLAB_LOG_LEVEL", "warn")
	t.Setenv("STATLAB_GIN_MODE", "debug")
	t.Setenv("STATLAB_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("STATLAB_CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("STATLAB_GENERATE_ON_MISS", "false")
	t.Setenv("STATLAB_SEED", "42")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "/tmp/s.db", cfg.DBPath)
	assert.Equal(t, "prod", cfg.LogMode)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.GenerateOnMiss)
	assert.Equal(t, uint64(42), cfg.Seed)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"STATLAB_SHUTDOWN_TIMEOUT", "soon"},
		{"STATLAB_SHUTDOWN_TIMEOUT", "-1s"},
		{"STATLAB_GENERATE_ON_MISS", "maybe"},
		{"STATLAB_SEED", "-3"},
		{"STATLAB_GIN_MODE", "verbose"},
		{"STATLAB_LOG_LEVEL", "trace"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STATLAB_ADDR=:7070\nSTATLAB_TEST_ONLY=1\n"), 0o600))
	t.Setenv("STATLAB_TEST_ONLY", "")
	os.Unsetenv("STATLAB_TEST_ONLY")
	os.Unsetenv("STATLAB_ADDR")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, ":7070", os.Getenv("STATLAB_ADDR"))

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
