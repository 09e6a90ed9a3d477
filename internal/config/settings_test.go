package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAddr, EnvDBDriver, EnvDBDSN, EnvCatalog, EnvWorkers, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := LoadSettings(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.False(t, s.UsesDatabase())
}

func TestLoadSettings_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAddr, ":9090")
	t.Setenv(EnvDBDriver, "postgres")
	t.Setenv(EnvDBDSN, "postgres://localhost/spcalc")
	t.Setenv(EnvWorkers, "4")
	t.Setenv(EnvLogLevel, "debug")

	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", s.Addr)
	assert.Equal(t, "postgres", s.DBDriver)
	assert.Equal(t, 4, s.Workers)
	assert.Equal(t, slog.LevelDebug, s.LogLevel)
	assert.True(t, s.UsesDatabase())
}

func TestLoadSettings_EnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is set, even to "".
	// clearEnv registered the restore, so unsetting here is safe.
	require.NoError(t, os.Unsetenv(EnvCatalog))
	require.NoError(t, os.Unsetenv(EnvWorkers))

	path := writeFile(t, ".env", "SPCALC_CATALOG=catalog.yaml\nSPCALC_WORKERS=2\n")
	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "catalog.yaml", s.Catalog)
	assert.Equal(t, 2, s.Workers)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"workers not a number", EnvWorkers, "many", "SPCALC_WORKERS must be a positive integer"},
		{"workers zero", EnvWorkers, "0", "SPCALC_WORKERS must be a positive integer"},
		{"unknown log level", EnvLogLevel, "chatty", "SPCALC_LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadSettings("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
