package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the contents of quads.yaml. Environment variables override
// the file and flags override both.
type Config struct {
	DataDir  string `yaml:"data_dir"`
	Snapshot string `yaml:"snapshot"`
	Addr     string `yaml:"addr"`
	Color    *bool  `yaml:"color"`
	// MaxWidth caps table columns; 0 keeps the default.
	MaxWidth int `yaml:"max_width"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		DataDir:  "quads.db",
		Snapshot: "default",
		Addr:     ":8080",
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("QUADS_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("QUADS_SNAPSHOT"); v != "" {
		cfg.Snapshot = v
	}
	if v := os.Getenv("QUADS_ADDR"); v != "" {
		cfg.Addr = v
	}
	return cfg, nil
}
