// Package config loads the tokn command line configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/MichaelAyles/tokn/pkg/netlist"
	"github.com/MichaelAyles/tokn/pkg/tokn"
)

// FileName is the configuration file looked up under the config directory.
const FileName = "config.yaml"

// Config holds the settings shared by all subcommands.
type Config struct {
	Tolerance        float64 `yaml:"tolerance"`
	Workers          int     `yaml:"workers"`
	Generator        string  `yaml:"generator"`
	GeneratorVersion string  `yaml:"generator_version"`
	Paper            string  `yaml:"paper"`
	RoundTrip        bool    `yaml:"roundtrip"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Tolerance:        netlist.DefaultTolerance,
		Workers:          runtime.NumCPU(),
		Generator:        "tokn_decoder",
		GeneratorVersion: "1.0",
		Paper:            "A4",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/tokn/config.yaml, falling back to
// ~/.config/tokn/config.yaml. It returns "" when neither can be resolved.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tokn", FileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tokn", FileName)
}

// Load reads the configuration at path over the defaults. An empty path
// means DefaultPath, where a missing file is not an error. An explicitly
// named file must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %v", c.Tolerance)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// DecodeOptions converts the decoder settings.
func (c Config) DecodeOptions() []tokn.DecodeOption {
	var opts []tokn.DecodeOption
	if c.Generator != "" {
		opts = append(opts, tokn.WithGenerator(c.Generator, c.GeneratorVersion))
	}
	if c.Paper != "" {
		opts = append(opts, tokn.WithPaper(c.Paper))
	}
	return opts
}

// AnalyzeOptions converts the connectivity settings.
func (c Config) AnalyzeOptions() []netlist.Option {
	return []netlist.Option{netlist.WithTolerance(c.Tolerance)}
}
