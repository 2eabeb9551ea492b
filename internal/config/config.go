// Package config handles analysis configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/strikemesh/internal/classify"
	"github.com/Faultbox/strikemesh/internal/parallel"
	"github.com/Faultbox/strikemesh/internal/velocity"
)

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all analysis settings.
type Config struct {
	Classifier classify.Params `yaml:"classifier"`
	Velocity   VelocityConfig  `yaml:"velocity"`
	Analysis   AnalysisConfig  `yaml:"analysis"`
	Metrics    MetricsConfig   `yaml:"metrics"`
	Logging    LoggingConfig   `yaml:"logging"`

	// Source is the file the config was read from, empty for defaults only.
	Source string `yaml:"-"`
}

// VelocityConfig holds velocity tracking settings.
type VelocityConfig struct {
	ExpectedAttackTime float32       `yaml:"expected_attack_time"` // Seconds of motion for full smoothing weight
	FixedStep          time.Duration `yaml:"fixed_step"`           // Physics tick used by simulations
}

// AnalysisConfig holds fan-out and weapon settings.
type AnalysisConfig struct {
	Workers    int     `yaml:"workers"`     // 0 = GOMAXPROCS
	BatchSize  int     `yaml:"batch_size"`  // Elements per goroutine
	WeaponMass float32 `yaml:"weapon_mass"` // kg
}

// MetricsConfig holds Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Classifier: classify.DefaultParams(),
		Velocity: VelocityConfig{
			ExpectedAttackTime: velocity.DefaultExpectedAttackTime,
			FixedStep:          20 * time.Millisecond,
		},
		Analysis: AnalysisConfig{
			Workers:    0,
			BatchSize:  parallel.DefaultBatchSize,
			WeaponMass: 1.5,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: "127.0.0.1:9464",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks every section for out-of-range values.
func (c *Config) Validate() error {
	if err := c.Classifier.Validate(); err != nil {
		return fmt.Errorf("%w: classifier: %w", ErrInvalidConfig, err)
	}
	if c.Velocity.FixedStep <= 0 {
		return fmt.Errorf("%w: velocity.fixed_step must be positive, got %v", ErrInvalidConfig, c.Velocity.FixedStep)
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("%w: analysis.workers is negative", ErrInvalidConfig)
	}
	if c.Analysis.BatchSize < 0 {
		return fmt.Errorf("%w: analysis.batch_size is negative", ErrInvalidConfig)
	}
	if c.Analysis.WeaponMass <= 0 {
		return fmt.Errorf("%w: analysis.weapon_mass must be positive", ErrInvalidConfig)
	}
	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		return fmt.Errorf("%w: metrics.listen_addr is empty", ErrInvalidConfig)
	}
	return nil
}

// ParallelOptions returns the fan-out settings for the analysis kernels.
func (c *Config) ParallelOptions() parallel.Options {
	return parallel.Options{Workers: c.Analysis.Workers, BatchSize: c.Analysis.BatchSize}
}

// VelocityOptions returns the tracker settings.
func (c *Config) VelocityOptions() velocity.Options {
	return velocity.Options{
		ExpectedAttackTime: c.Velocity.ExpectedAttackTime,
		Parallel:           c.ParallelOptions(),
	}
}
