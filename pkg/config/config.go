// Package config provides the unified configuration system for Quiver.
// It defines a single Config structure holding every engine tunable,
// organized into logical sections:
//   - Parallel: worker count, chunk sizing for the fork-join executor
//   - GroupBy: strategy-selection thresholds for the aggregation engine
//   - Pool: aligned memory pool free-list limits
//   - Kernel: hardware fast-path control
//   - Logging: structured logging settings
//
// Example usage:
//
//	cfg := config.Default()
//	cfg.Parallel.ChunkSize = 4096
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/quiverdb/quiver/pkg/errors"
)

// Config is the single unified configuration structure for the engine.
type Config struct {
	// Parallel controls the fork-join executor
	Parallel ParallelConfig `mapstructure:"parallel" yaml:"parallel" json:"parallel"`

	// GroupBy controls aggregation strategy selection
	GroupBy GroupByConfig `mapstructure:"group_by" yaml:"group_by" json:"group_by"`

	// Pool controls the aligned memory pool
	Pool PoolConfig `mapstructure:"pool" yaml:"pool" json:"pool"`

	// Kernel controls the vectorized kernel layer
	Kernel KernelConfig `mapstructure:"kernel" yaml:"kernel" json:"kernel"`

	// Logging controls structured log output
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// ParallelConfig configures the chunk scheduler.
type ParallelConfig struct {
	// Workers is the worker pool size; 0 means detected hardware parallelism
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
	// ChunkSize is the base chunk size in elements, tuned for L1/L2 residency
	ChunkSize int `mapstructure:"chunk_size" yaml:"chunk_size" json:"chunk_size"`
	// MinChunkSize is the floor applied when shrinking chunks for small inputs
	MinChunkSize int `mapstructure:"min_chunk_size" yaml:"min_chunk_size" json:"min_chunk_size"`
}

// GroupByConfig configures aggregation strategy selection.
type GroupByConfig struct {
	// DenseRangeLimit is the maximum key range (max-min+1) eligible for the
	// dense-array strategy
	DenseRangeLimit int64 `mapstructure:"dense_range_limit" yaml:"dense_range_limit" json:"dense_range_limit"`
	// DenseMinRows is the minimum valid-row count eligible for the
	// dense-array strategy
	DenseMinRows int `mapstructure:"dense_min_rows" yaml:"dense_min_rows" json:"dense_min_rows"`
	// SequentialRowLimit: below this row count the dense path runs on the
	// calling goroutine
	SequentialRowLimit int `mapstructure:"sequential_row_limit" yaml:"sequential_row_limit" json:"sequential_row_limit"`
	// SequentialRangeLimit: below this key range the dense path runs on the
	// calling goroutine
	SequentialRangeLimit int64 `mapstructure:"sequential_range_limit" yaml:"sequential_range_limit" json:"sequential_range_limit"`
}

// PoolConfig configures the aligned memory pool.
type PoolConfig struct {
	// FreeListCap caps the number of reusable regions kept per size class
	FreeListCap int `mapstructure:"free_list_cap" yaml:"free_list_cap" json:"free_list_cap"`
}

// KernelConfig configures the vectorized kernel layer.
type KernelConfig struct {
	// ForceScalar disables the hardware fast path; used for cross-checking
	ForceScalar bool `mapstructure:"force_scalar" yaml:"force_scalar" json:"force_scalar"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level       string `mapstructure:"level" yaml:"level" json:"level"`
	Development bool   `mapstructure:"development" yaml:"development" json:"development"`
	Encoding    string `mapstructure:"encoding" yaml:"encoding" json:"encoding"`
}

// Default returns a Config populated with the engine defaults.
func Default() *Config {
	return &Config{
		Parallel: ParallelConfig{
			Workers:      runtime.NumCPU(),
			ChunkSize:    8192,
			MinChunkSize: 1024,
		},
		GroupBy: GroupByConfig{
			DenseRangeLimit:      1_000_000,
			DenseMinRows:         1_000,
			SequentialRowLimit:   50_000,
			SequentialRangeLimit: 50,
		},
		Pool: PoolConfig{
			FreeListCap: 100,
		},
		Kernel: KernelConfig{
			ForceScalar: false,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Parallel.Workers < 0 {
		return errors.New(errors.ErrorTypeConfig, "parallel.workers must be >= 0")
	}
	if c.Parallel.ChunkSize <= 0 {
		return errors.New(errors.ErrorTypeConfig, "parallel.chunk_size must be positive")
	}
	if c.Parallel.MinChunkSize <= 0 || c.Parallel.MinChunkSize > c.Parallel.ChunkSize {
		return errors.New(errors.ErrorTypeConfig, "parallel.min_chunk_size must be in (0, chunk_size]")
	}
	if c.GroupBy.DenseRangeLimit <= 0 {
		return errors.New(errors.ErrorTypeConfig, "group_by.dense_range_limit must be positive")
	}
	if c.GroupBy.DenseMinRows < 0 {
		return errors.New(errors.ErrorTypeConfig, "group_by.dense_min_rows must be >= 0")
	}
	if c.Pool.FreeListCap < 0 {
		return errors.New(errors.ErrorTypeConfig, "pool.free_list_cap must be >= 0")
	}
	return nil
}

// Load reads configuration from the given file (YAML, JSON, or TOML by
// extension) layered over defaults, with QUIVER_-prefixed environment
// variable overrides. Pass an empty path to load defaults plus environment
// only.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("parallel.workers", defaults.Parallel.Workers)
	v.SetDefault("parallel.chunk_size", defaults.Parallel.ChunkSize)
	v.SetDefault("parallel.min_chunk_size", defaults.Parallel.MinChunkSize)
	v.SetDefault("group_by.dense_range_limit", defaults.GroupBy.DenseRangeLimit)
	v.SetDefault("group_by.dense_min_rows", defaults.GroupBy.DenseMinRows)
	v.SetDefault("group_by.sequential_row_limit", defaults.GroupBy.SequentialRowLimit)
	v.SetDefault("group_by.sequential_range_limit", defaults.GroupBy.SequentialRangeLimit)
	v.SetDefault("pool.free_list_cap", defaults.Pool.FreeListCap)
	v.SetDefault("kernel.force_scalar", defaults.Kernel.ForceScalar)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.development", defaults.Logging.Development)
	v.SetDefault("logging.encoding", defaults.Logging.Encoding)

	v.SetEnvPrefix("QUIVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
