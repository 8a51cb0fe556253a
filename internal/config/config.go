package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config keeps runtime settings for the calendar daemon.
type Config struct {
	// Database is the SQLite file path.
	Database string `yaml:"database"`

	// RolloverTime is the local HH:MM at which the daily rollover job runs.
	RolloverTime string `yaml:"rollover_time"`

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
	File    string `yaml:"file"`
}

// DefaultConfig returns the in-memory defaults.
func DefaultConfig() Config {
	return Config{
		Database:     "petcal.db",
		RolloverTime: "03:00",
		Log: LogConfig{
			Level:   "INFO",
			Console: true,
		},
	}
}

// Normalize fills missing values so partially-filled configs still behave.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.Database) == "" {
		c.Database = "petcal.db"
	}
	if strings.TrimSpace(c.RolloverTime) == "" {
		c.RolloverTime = "03:00"
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = "INFO"
	}
	if !c.Log.Console && c.Log.File == "" {
		c.Log.Console = true
	}
}

// DefaultPath resolves the config path from PETCAL_CONFIG, falling back to
// petcal.yaml in the working directory.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv("PETCAL_CONFIG")); p != "" {
		return p
	}
	return "petcal.yaml"
}

// Load reads the YAML config at path. A missing file is not an error: the
// defaults are returned so a first run works without any setup.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}
