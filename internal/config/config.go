// Package config loads ugdb's small YAML-backed persisted defaults
// (spec.md §2.2): the debugger path, default layout string, and default
// watch expressions. Grounded on the teacher's internal/config.Config/Load
// shape, adapted from per-user bridge settings to per-invocation debugger
// defaults; CLI flags always override whatever is loaded here.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the persisted ugdb configuration.
type Config struct {
	GDB              string   `yaml:"gdb,omitempty"`
	Layout           string   `yaml:"layout,omitempty"`
	WatchExpressions []string `yaml:"watch_expressions,omitempty"`
}

// Dir returns ugdb's configuration directory (~/.config/ugdb).
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ugdb")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "ugdb")
	}
	return filepath.Join(home, ".config", "ugdb")
}

// Load reads config.yaml from Dir(). A missing file is not an error; it
// yields a zero-value Config so every field falls back to its built-in
// default.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(Dir(), "config.yaml"))
}

// LoadFrom reads the config from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields of dst from the config, leaving
// any already-set (CLI-flag-provided) values untouched.
func (c *Config) ApplyDefaults(gdb, layout *string, watch *[]string) {
	if *gdb == "" && c.GDB != "" {
		*gdb = c.GDB
	}
	if *layout == "" && c.Layout != "" {
		*layout = c.Layout
	}
	if len(*watch) == 0 && len(c.WatchExpressions) > 0 {
		*watch = append([]string(nil), c.WatchExpressions...)
	}
}
