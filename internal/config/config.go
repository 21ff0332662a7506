// Package config defines service configuration and its loading.
//
// Values are layered: defaults from New, then a YAML file named by
// TTFL_CONFIG, then TTFL_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// LogOutput selects the log stream: stdout or stderr.
	LogOutput string `koanf:"log_output"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// LockDays is how long a picked player stays unavailable.
	LockDays int `koanf:"lock_days"`

	// BaselineWindow is the number of recent games averaged per player.
	BaselineWindow int `koanf:"baseline_window"`

	// MinBaseline excludes players averaging less. Zero disables.
	MinBaseline float64 `koanf:"min_baseline"`

	// UseForm ranks on form-adjusted scores by default.
	UseForm bool `koanf:"use_form"`

	// UseDefense scales baselines by the opponent's defensive profile by default.
	UseDefense bool `koanf:"use_defense"`

	// IgnoreLocks ranks as if no pick had ever been made.
	IgnoreLocks bool `koanf:"ignore_locks"`

	// DatasetPath points at the YAML slate snapshot.
	DatasetPath string `koanf:"dataset_path"`

	// PicksDBPath points at the SQLite pick history. Empty keeps picks in memory.
	PicksDBPath string `koanf:"picks_db_path"`

	// MaxPlanDays caps GET /plan?days.
	MaxPlanDays int `koanf:"max_plan_days"`

	// DefaultTop is the list length when a request names none.
	DefaultTop int `koanf:"default_top"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsBuckets overrides the latency histogram buckets, in milliseconds.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`

	// MetricsLabels are constant labels attached to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		LogOutput:        "stdout",
		Addr:             ":9080",
		ShutdownTimeout:  10 * time.Second,
		LockDays:         30,
		BaselineWindow:   10,
		MaxPlanDays:      30,
		DefaultTop:       10,
		MetricsNamespace: "ttfl",
		MetricsSubsystem: "picker",
	}
}

// Validate reports the first invalid value.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("addr must not be empty: %w", ErrInvalidConfig)
	case c.LockDays <= 0:
		return fmt.Errorf("lock_days must be positive, got %d: %w", c.LockDays, ErrInvalidConfig)
	case c.BaselineWindow <= 0:
		return fmt.Errorf("baseline_window must be positive, got %d: %w", c.BaselineWindow, ErrInvalidConfig)
	case c.MinBaseline < 0:
		return fmt.Errorf("min_baseline must not be negative, got %g: %w", c.MinBaseline, ErrInvalidConfig)
	case c.MaxPlanDays <= 0:
		return fmt.Errorf("max_plan_days must be positive, got %d: %w", c.MaxPlanDays, ErrInvalidConfig)
	case c.DefaultTop <= 0:
		return fmt.Errorf("default_top must be positive, got %d: %w", c.DefaultTop, ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q: %w", c.LogFormat, ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogOutput) {
	case "stdout", "stderr":
	default:
		return fmt.Errorf("log_output must be stdout or stderr, got %q: %w", c.LogOutput, ErrInvalidConfig)
	}
	for i, b := range c.MetricsBuckets {
		if i > 0 && b <= c.MetricsBuckets[i-1] {
			return fmt.Errorf("metrics_buckets must be increasing, got %v: %w", c.MetricsBuckets, ErrInvalidConfig)
		}
	}
	return nil
}
