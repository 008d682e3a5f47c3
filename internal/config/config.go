package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/proctrace/internal/shared/id"
)

// Config holds all process configuration.
type Config struct {
	Logging LogConfig
	Trace   TraceConfig
	Work    WorkConfig
	Launch  LaunchConfig
	IDs     IDConfig
	Metrics MetricsConfig
	Combine CombineConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// TraceConfig holds span export configuration.
type TraceConfig struct {
	Enabled         bool          `envconfig:"TRACE_ENABLED" default:"true"`
	Dir             string        `envconfig:"TRACE_LOG_DIR" default:"./logs"`
	SyncExport      bool          `envconfig:"TRACE_SYNC_EXPORT" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"TRACE_SHUTDOWN_TIMEOUT" default:"5s"`
}

// WorkConfig holds the simulated unit of work.
type WorkConfig struct {
	Duration time.Duration `envconfig:"WORK_DURATION" default:"500ms"`
}

// LaunchConfig holds next-hop process configuration.
type LaunchConfig struct {
	// GracePeriod bounds the wait for a child to exit after SIGTERM before it is killed.
	GracePeriod time.Duration `envconfig:"LAUNCH_GRACE_PERIOD" default:"10s"`
}

// IDConfig holds identifier generation configuration.
type IDConfig struct {
	Format string `envconfig:"ID_FORMAT" default:"ulid"`
}

// MetricsConfig holds per-process metrics configuration.
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// CombineConfig holds defaults for the offline trace combiner.
type CombineConfig struct {
	Name        string `envconfig:"COMBINE_NAME" default:"proctrace"`
	Pattern     string `envconfig:"COMBINE_PATTERN" default:"*.json*"`
	Compression string `envconfig:"COMBINE_COMPRESSION" default:"none"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Trace: TraceConfig{
			Enabled:         true,
			Dir:             "./logs",
			SyncExport:      false,
			ShutdownTimeout: 5 * time.Second,
		},
		Work: WorkConfig{
			Duration: 500 * time.Millisecond,
		},
		Launch: LaunchConfig{
			GracePeriod: 10 * time.Second,
		},
		IDs: IDConfig{
			Format: string(id.FormatULID),
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Combine: CombineConfig{
			Name:        "proctrace",
			Pattern:     "*.json*",
			Compression: "none",
		},
	}
}

// Validate checks values envconfig cannot check by type alone.
func (c *Config) Validate() error {
	if _, err := id.ParseFormat(c.IDs.Format); err != nil {
		return fmt.Errorf("invalid ID_FORMAT: %w", err)
	}
	if c.Trace.Dir == "" {
		return fmt.Errorf("TRACE_LOG_DIR must not be empty")
	}
	if c.Trace.ShutdownTimeout <= 0 {
		return fmt.Errorf("TRACE_SHUTDOWN_TIMEOUT must be positive, got %s", c.Trace.ShutdownTimeout)
	}
	if c.Work.Duration < 0 {
		return fmt.Errorf("WORK_DURATION must not be negative, got %s", c.Work.Duration)
	}
	if c.Launch.GracePeriod <= 0 {
		return fmt.Errorf("LAUNCH_GRACE_PERIOD must be positive, got %s", c.Launch.GracePeriod)
	}
	switch c.Combine.Compression {
	case "none", "gzip", "zstd":
	default:
		return fmt.Errorf("COMBINE_COMPRESSION must be none, gzip or zstd, got %q", c.Combine.Compression)
	}
	return nil
}
