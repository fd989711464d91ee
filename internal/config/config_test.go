package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transportcore/internal/errors"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, uint64(1), cfg.Sampling.Seed)
	assert.Equal(t, 10000, cfg.Sampling.Particles)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "nearest", cfg.Library.TemperatureMethod)
	assert.Equal(t, -1, cfg.Library.MaxOrder)
	assert.True(t, cfg.Library.Isotropic)
	assert.Equal(t, 1e-10, cfg.Tolerance.Numeric().Abs)
	assert.Equal(t, "INFO", cfg.Log.Level)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SAMPLING_SEED", "42")
	t.Setenv("SAMPLING_WORKERS", "8")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("STORE_DSN", "postgres://localhost/xs?sslmode=disable")
	t.Setenv("LIBRARY_TEMPERATURE_METHOD", "interpolation")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.Sampling.Seed)
	assert.Equal(t, 8, cfg.Sampling.Workers)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "interpolation", cfg.Library.TemperatureMethod)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"SAMPLING_WORKERS":           "0",
		"STORE_DRIVER":               "mysql",
		"LIBRARY_TEMPERATURE_METHOD": "cubic",
		"LIBRARY_SCATTER_FORMAT":     "histogram",
		"TOLERANCE_ABS":              "-1",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestFromEnvParseError(t *testing.T) {
	t.Setenv("SAMPLING_SEED", "not-a-number")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SAMPLING_PARTICLES=77\n"), 0o600))
	t.Setenv("SAMPLING_PARTICLES", "")
	os.Unsetenv("SAMPLING_PARTICLES")
	t.Cleanup(func() { os.Unsetenv("SAMPLING_PARTICLES") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 77, cfg.Sampling.Particles)
}
