// Package config loads the engine's TOML configuration file, following
// the config-struct-plus-defaults pattern used across this codebase:
// zero-value fields after decode are filled in by Defaults, so an
// absent config file is equivalent to an empty one.
package config

import (
	"github.com/BurntSushi/toml"

	"joinengine/pkg/dberror"
	"joinengine/pkg/logging"
)

// LoggingConfig configures the process-wide logger.
type LoggingConfig struct {
	Level      string `toml:"level"`
	OutputPath string `toml:"output_path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	JSON       bool   `toml:"json"`
}

// JoinConfig configures the join operators built by the planner.
type JoinConfig struct {
	// CapacityMultiplier is the reserved-capacity factor for a hash
	// join's build-side multimap.
	CapacityMultiplier int `toml:"capacity_multiplier"`
}

// BatchConfig configures the batch harness's response output.
type BatchConfig struct {
	// FlushPerQuery flushes the response stream after every query line
	// instead of only at each batch boundary. Off by default: flushing
	// once per batch is enough to keep memory bounded and is cheaper
	// under high query volume; turn it on when a downstream reader
	// consumes responses line-by-line without its own buffering.
	FlushPerQuery bool `toml:"flush_per_query"`
}

// Config is the top-level engine configuration.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Join    JoinConfig    `toml:"join"`
	Batch   BatchConfig   `toml:"batch"`
}

// Defaults returns the configuration used when no config file is given.
func Defaults() Config {
	return Config{
		Logging: LoggingConfig{
			Level: string(logging.LevelInfo),
		},
		Join: JoinConfig{
			CapacityMultiplier: 2,
		},
	}
}

// Load reads and decodes the TOML file at path, filling any zero-value
// field left after decode with the corresponding default.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, dberror.Wrap(err, dberror.CategoryLoad, "config.Load", "cannot decode config file "+path)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = string(logging.LevelInfo)
	}
	if cfg.Join.CapacityMultiplier <= 0 {
		cfg.Join.CapacityMultiplier = 2
	}
	return cfg, nil
}

// loggingConfig converts to the logging package's own Config type.
func (c Config) loggingConfig() logging.Config {
	return logging.Config{
		Level:      logging.Level(c.Logging.Level),
		OutputPath: c.Logging.OutputPath,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		JSON:       c.Logging.JSON,
	}
}

// InitLogging initializes the process-wide logger from c.
func (c Config) InitLogging() error {
	return logging.Init(c.loggingConfig())
}
