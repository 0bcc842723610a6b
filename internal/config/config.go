package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds all configurable vra settings.
type Config struct {
	AssetsDir     string `json:"assets_dir"`     // static demo assets served by `vra serve`
	HTTPAddr      string `json:"http_addr"`      // listen address for the companion server
	DefaultFormat string `json:"default_format"` // "markdown" | "json"
	OutputDir     string `json:"output_dir"`     // where reports are written
	SinkDisabled  bool   `json:"sink_disabled"`  // skip the durable event sink
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		AssetsDir:     "assets",
		HTTPAddr:      ":8090",
		DefaultFormat: "markdown",
		OutputDir:     ".",
	}
}

// LoadGlobal reads ~/.config/vra/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "vra", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .vraconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".vraconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()

	// Apply global values over defaults.
	apply := func(c *Config) {
		if c == nil {
			return
		}
		if c.AssetsDir != "" {
			result.AssetsDir = c.AssetsDir
		}
		if c.HTTPAddr != "" {
			result.HTTPAddr = c.HTTPAddr
		}
		if c.DefaultFormat != "" {
			result.DefaultFormat = c.DefaultFormat
		}
		if c.OutputDir != "" {
			result.OutputDir = c.OutputDir
		}
		if c.SinkDisabled {
			result.SinkDisabled = true
		}
	}
	apply(global)
	// Apply project values over global.
	apply(project)

	return result
}

// GlobalPath returns the path of the global config file.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "vra", "config.json"), nil
}

// SaveGlobal writes cfg as the global config, creating the directory if
// needed.
func SaveGlobal(cfg Config) error {
	path, err := GlobalPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
