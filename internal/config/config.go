package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"transportcore/domain/numeric"
	"transportcore/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Sampling  SamplingConfig  `envPrefix:"SAMPLING_"`
	Store     StoreConfig     `envPrefix:"STORE_"`
	Library   LibraryConfig   `envPrefix:"LIBRARY_"`
	Tolerance ToleranceConfig `envPrefix:"TOLERANCE_"`
	Log       LogConfig
}

// SamplingConfig controls source bank generation
type SamplingConfig struct {
	Seed      uint64 `env:"SEED" envDefault:"1"`
	Particles int    `env:"PARTICLES" envDefault:"10000"`
	Offset    int64  `env:"OFFSET" envDefault:"0"`
	Workers   int    `env:"WORKERS" envDefault:"4"`
	Chunk     int    `env:"CHUNK" envDefault:"256"`
}

// StoreConfig selects the cross-section store
type StoreConfig struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	DSN    string `env:"DSN" envDefault:"transportcore.db"`
}

// LibraryConfig controls how library entries are read and evaluated
type LibraryConfig struct {
	TemperatureMethod    string  `env:"TEMPERATURE_METHOD" envDefault:"nearest"`
	TemperatureTolerance float64 `env:"TEMPERATURE_TOLERANCE" envDefault:"0.002"`
	ScatterFormat        string  `env:"SCATTER_FORMAT" envDefault:"legendre"`
	FinalScatterFormat   string  `env:"FINAL_SCATTER_FORMAT" envDefault:"legendre"`
	MaxOrder             int     `env:"MAX_ORDER" envDefault:"-1"`
	TabularPoints        int     `env:"TABULAR_POINTS" envDefault:"33"`
	Isotropic            bool    `env:"ISOTROPIC" envDefault:"true"`
}

// ToleranceConfig is the float comparison policy
type ToleranceConfig struct {
	Abs float64 `env:"ABS" envDefault:"1e-10"`
	Rel float64 `env:"REL" envDefault:"1e-8"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Numeric returns the tolerance as a comparison policy
func (t ToleranceConfig) Numeric() numeric.Tolerance {
	return numeric.Tolerance{Abs: t.Abs, Rel: t.Rel}
}

// Load reads an optional .env file, then the environment, and validates
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// a missing .env is fine
		_ = godotenv.Load(f)
	}
	return FromEnv()
}

// FromEnv parses the process environment without reading any file
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	switch {
	case c.Sampling.Particles < 0:
		return errors.ConfigInvalid(fmt.Sprintf("SAMPLING_PARTICLES must be non-negative, got %d", c.Sampling.Particles))
	case c.Sampling.Offset < 0:
		return errors.ConfigInvalid(fmt.Sprintf("SAMPLING_OFFSET must be non-negative, got %d", c.Sampling.Offset))
	case c.Sampling.Workers <= 0:
		return errors.ConfigInvalid(fmt.Sprintf("SAMPLING_WORKERS must be positive, got %d", c.Sampling.Workers))
	case c.Sampling.Chunk <= 0:
		return errors.ConfigInvalid(fmt.Sprintf("SAMPLING_CHUNK must be positive, got %d", c.Sampling.Chunk))
	case c.Store.Driver != "sqlite" && c.Store.Driver != "postgres":
		return errors.ConfigInvalid(fmt.Sprintf("STORE_DRIVER must be sqlite or postgres, got %q", c.Store.Driver))
	case c.Store.DSN == "":
		return errors.ConfigInvalid("STORE_DSN is required")
	case !oneOf(c.Library.TemperatureMethod, "nearest", "interpolation"):
		return errors.ConfigInvalid(fmt.Sprintf("LIBRARY_TEMPERATURE_METHOD must be nearest or interpolation, got %q", c.Library.TemperatureMethod))
	case c.Library.TemperatureTolerance < 0:
		return errors.ConfigInvalid("LIBRARY_TEMPERATURE_TOLERANCE must be non-negative")
	case !oneOf(c.Library.ScatterFormat, "legendre", "tabular"):
		return errors.ConfigInvalid(fmt.Sprintf("LIBRARY_SCATTER_FORMAT %q is unknown", c.Library.ScatterFormat))
	case !oneOf(c.Library.FinalScatterFormat, "legendre", "tabular"):
		return errors.ConfigInvalid(fmt.Sprintf("LIBRARY_FINAL_SCATTER_FORMAT %q is unknown", c.Library.FinalScatterFormat))
	case c.Tolerance.Abs < 0 || c.Tolerance.Rel < 0:
		return errors.ConfigInvalid("tolerances must be non-negative")
	}
	return nil
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if strings.EqualFold(v, o) {
			return true
		}
	}
	return false
}
