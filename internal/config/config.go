// Package config loads miseqinterop.yaml: defaults for the runs directory,
// read lengths, HTTP listen address, and log location.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/miseqtools/miseqinterop/internal/summary"
)

// FileName is the config file looked up in the working directory when no
// explicit path is given.
const FileName = "miseqinterop.yaml"

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "MISEQINTEROP_CONFIG"

const defaultListen = ":8990"

// Config models miseqinterop.yaml.
type Config struct {
	Version int `yaml:"version"`

	// RunsDir is the default scan root for list, watch, serve, and browse.
	RunsDir string `yaml:"runs_dir,omitempty"`

	// ReadLengths is the default read-length spec for summaries,
	// e.g. "150,8,8,150".
	ReadLengths string `yaml:"read_lengths,omitempty"`

	// Listen is the serve command's bind address.
	Listen string `yaml:"listen,omitempty"`

	// LogDir receives the log file written by watch and serve. Empty
	// disables file logging.
	LogDir string `yaml:"log_dir,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{Version: 1, Listen: defaultListen}
}

// Load reads the configuration. An explicit path (argument or the
// MISEQINTEROP_CONFIG variable) must exist; otherwise a missing
// miseqinterop.yaml in the working directory falls back to defaults.
func Load(path string) (Config, error) {
	explicit := strings.TrimSpace(path)
	if explicit == "" {
		explicit = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}

	target := explicit
	if target == "" {
		target = FileName
	}

	data, err := os.ReadFile(target)
	if err != nil {
		if explicit == "" && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", target, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", target, err)
	}
	cfg.applyDefaults()
	cfg.normalize(filepath.Dir(target))
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = defaultListen
	}
}

func (c *Config) normalize(base string) {
	c.RunsDir = resolvePath(base, c.RunsDir)
	c.LogDir = resolvePath(base, c.LogDir)
	c.ReadLengths = strings.TrimSpace(c.ReadLengths)
	c.Listen = strings.TrimSpace(c.Listen)
}

func (c Config) validate() error {
	if c.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	if c.ReadLengths != "" {
		if _, err := summary.ParseReadLengths(c.ReadLengths); err != nil {
			return fmt.Errorf("read_lengths: %w", err)
		}
	}
	return nil
}

// DefaultReadLengths returns the configured read lengths, or nil when unset.
func (c Config) DefaultReadLengths() *summary.ReadLengths {
	if c.ReadLengths == "" {
		return nil
	}
	rl, err := summary.ParseReadLengths(c.ReadLengths)
	if err != nil {
		return nil
	}
	return &rl
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
