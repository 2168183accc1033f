package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is absent from the config file
const (
	DefaultAddr              = ":8080"
	DefaultDataDir           = "/var/lib/herald"
	DefaultPollInterval      = 60 * time.Second
	DefaultFetchLimit        = 100
	DefaultFallbackBatchSize = 50
)

// Config is the top-level Herald configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Engine EngineConfig `yaml:"engine"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the reference server of record
type ServerConfig struct {
	// Addr is the listen address for the HTTP API
	Addr string `yaml:"addr"`
	// DataDir holds the bbolt database
	DataDir string `yaml:"dataDir"`
	// AuthSecret enables JWT authentication when non-empty; without it
	// the server trusts recipient headers (development mode)
	AuthSecret string `yaml:"authSecret"`
}

// EngineConfig configures per-session sync engines
type EngineConfig struct {
	// PollInterval is the period between refresh cycles
	PollInterval time.Duration `yaml:"pollInterval"`
	// FetchLimit caps the number of records fetched per cycle
	FetchLimit int `yaml:"fetchLimit"`
	// FallbackBatchSize bounds per-item fan-out when the bulk
	// mark-all-read endpoint fails
	FallbackBatchSize int `yaml:"fallbackBatchSize"`
}

// LogConfig configures logging output
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns a configuration with all defaults applied
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML configuration file, applying defaults for any
// absent fields
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.DataDir == "" {
		c.Server.DataDir = DefaultDataDir
	}
	if c.Engine.PollInterval <= 0 {
		c.Engine.PollInterval = DefaultPollInterval
	}
	if c.Engine.FetchLimit <= 0 {
		c.Engine.FetchLimit = DefaultFetchLimit
	}
	if c.Engine.FallbackBatchSize <= 0 {
		c.Engine.FallbackBatchSize = DefaultFallbackBatchSize
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
