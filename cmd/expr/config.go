package main

import (
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the settings that can be given in a configuration file.
// Command-line flags override them.
type Config struct {
	Format    string             `yaml:"format"`
	Precision int                `yaml:"precision"`
	Exponents bool               `yaml:"exponents"`
	Vars      map[string]float64 `yaml:"vars"`
	Log       LogConfig          `yaml:"log"`
}

// LogConfig describes where and how much to log.
type LogConfig struct {
	Level      string `yaml:"level"`
	Source     bool   `yaml:"source"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"` // megabytes
	MaxAge     int    `yaml:"max_age"`  // days
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := new(Config)
	applyDefaults(cfg)
	return cfg
}

// LoadConfig reads a YAML configuration file, fills in defaults for anything
// it leaves out, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Format == "" {
		cfg.Format = "%g"
	}
	if cfg.Vars == nil {
		cfg.Vars = make(map[string]float64)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxSize == 0 {
		cfg.Log.MaxSize = 10
	}
	if cfg.Log.MaxAge == 0 {
		cfg.Log.MaxAge = 28
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 3
	}
}

// Validate reports the first problem with cfg, if any.
func (cfg *Config) Validate() error {
	if cfg.Precision < 0 {
		return errors.Errorf("precision (%d) must not be negative", cfg.Precision)
	}
	if !strings.Contains(cfg.Format, "%") {
		return errors.Errorf("format %q has no verb", cfg.Format)
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("unknown log level %q", cfg.Log.Level)
	}
	if cfg.Log.MaxSize < 0 || cfg.Log.MaxAge < 0 || cfg.Log.MaxBackups < 0 {
		return errors.New("log rotation limits must not be negative")
	}
	for name, v := range cfg.Vars {
		if math.IsNaN(v) {
			return errors.Errorf("variable %s is NaN", name)
		}
	}
	return nil
}
