// Package config loads cssminify settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/seanhalberthal/cssminify/internal/filewriter"
)

// FileName is the config file looked up in the working directory.
const FileName = ".cssminify.yaml"

// errNegativeConcurrency indicates an invalid worker limit.
var errNegativeConcurrency = errors.New("concurrency must not be negative")

// Config holds settings shared by the CLI and the MCP server.
type Config struct {
	// Output is the folder batch results are written into.
	Output string `yaml:"output"`
	// Recursive descends into subdirectories of directory inputs.
	Recursive bool `yaml:"recursive"`
	// Concurrency limits batch workers. Zero means runtime.NumCPU().
	Concurrency int `yaml:"concurrency"`
	// Compress lists precompressed siblings to write ("gzip", "br").
	Compress []string `yaml:"compress"`
	// Incremental skips inputs whose content did not change.
	Incremental bool `yaml:"incremental"`
	// Cache is the incremental cache file. Empty means the default location.
	Cache string `yaml:"cache"`
	// WarnUnterminated reports comments left open at end of file.
	WarnUnterminated bool `yaml:"warn_unterminated"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Concurrency:      runtime.NumCPU(),
		WarnUnterminated: true,
	}
}

// Find returns the config file in dir, or "" if there is none.
func Find(dir string) string {
	path := filepath.Join(dir, FileName)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

// Load reads the config file at path on top of the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	// #nosec G304 -- path is supplied by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	return cfg, nil
}

// Validate checks the settings for values no component accepts.
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return errNegativeConcurrency
	}
	if _, err := filewriter.New(c.Compress); err != nil {
		return err
	}
	return nil
}
