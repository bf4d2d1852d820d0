// Package config loads daemon configuration from YAML, layered over
// built-in defaults so a partial file only overrides what it names.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps all validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full simulator daemon configuration.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Proximity  ProximityConfig  `yaml:"proximity"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

// SimulationConfig controls the tick loop.
type SimulationConfig struct {
	Tick        time.Duration `yaml:"tick"`
	Duration    time.Duration `yaml:"duration"`
	Accelerated bool          `yaml:"accelerated"`
	Scenario    string        `yaml:"scenario"`
}

// ProximityConfig controls the sweep thresholds, in metres.
type ProximityConfig struct {
	QueryRadiusM   float64 `yaml:"query_radius_m"`
	MinSeparationM float64 `yaml:"min_separation_m"`
}

// LoggingConfig mirrors the logging package's options.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Exporter    string  `yaml:"exporter"` // stdout | otlp
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Simulation: SimulationConfig{
			Tick:        time.Second,
			Duration:    60 * time.Second,
			Accelerated: true,
		},
		Proximity: ProximityConfig{
			QueryRadiusM:   50,
			MinSeparationM: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: ":9090",
		},
		Tracing: TracingConfig{
			ServiceName: "traffic-simulator",
			Exporter:    "stdout",
			SampleRatio: 1.0,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the simulator cannot run with.
func (c Config) Validate() error {
	if c.Simulation.Tick <= 0 {
		return fmt.Errorf("%w: simulation.tick must be positive, got %s", ErrInvalidConfig, c.Simulation.Tick)
	}
	if c.Simulation.Duration < 0 {
		return fmt.Errorf("%w: simulation.duration must not be negative, got %s", ErrInvalidConfig, c.Simulation.Duration)
	}
	if c.Proximity.QueryRadiusM < 0 {
		return fmt.Errorf("%w: proximity.query_radius_m must not be negative, got %v", ErrInvalidConfig, c.Proximity.QueryRadiusM)
	}
	if c.Proximity.MinSeparationM < 0 {
		return fmt.Errorf("%w: proximity.min_separation_m must not be negative, got %v", ErrInvalidConfig, c.Proximity.MinSeparationM)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("%w: tracing.sample_ratio must be in [0, 1], got %v", ErrInvalidConfig, c.Tracing.SampleRatio)
	}
	return nil
}
