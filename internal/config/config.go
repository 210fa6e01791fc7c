package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// bounds and step of the trim control
	DefaultOffsetLimitMs = 480000
	DefaultOffsetStepMs  = 500

	fileName = "config.yaml"
	appDir   = "subview"
)

// Config holds viewer defaults. Flags override it per invocation.
type Config struct {
	// Playback
	OffsetMs      int64 `yaml:"offset_ms"`
	OffsetStepMs  int64 `yaml:"offset_step_ms"`
	OffsetLimitMs int64 `yaml:"offset_limit_ms"`
	Autostart     bool  `yaml:"autostart"`

	// Display
	AutoFollow bool `yaml:"auto_follow"`

	// Logging, empty discards logs while the terminal UI runs
	LogFile string `yaml:"log_file"`

	// Extraction
	FFmpegPath string `yaml:"ffmpeg_path"`

	path string
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func defaultConfig() *Config {
	return &Config{
		OffsetMs:      0,
		OffsetStepMs:  DefaultOffsetStepMs,
		OffsetLimitMs: DefaultOffsetLimitMs,
		Autostart:     false,
		AutoFollow:    true,
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	c := defaultConfig()
	c.normalize()
	return c
}

// DefaultPath is $XDG_CONFIG_HOME/subview/config.yaml or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Load reads the YAML file at path over the defaults. An empty path uses
// DefaultPath; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		cfg.normalize()
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// fields absent from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.path = path

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Path is the file the configuration was read from, empty for defaults.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) normalize() {
	c.LogFile = strings.TrimSpace(c.LogFile)
	c.FFmpegPath = strings.TrimSpace(c.FFmpegPath)

	if c.OffsetStepMs == 0 {
		c.OffsetStepMs = DefaultOffsetStepMs
	}
	if c.OffsetLimitMs == 0 {
		c.OffsetLimitMs = DefaultOffsetLimitMs
	}
}

// Validate checks the trim settings.
func (c *Config) Validate() error {
	if c.OffsetStepMs < 0 {
		return &ValidationError{Field: "offset_step_ms", Msg: "must be positive"}
	}
	if c.OffsetLimitMs < 0 {
		return &ValidationError{Field: "offset_limit_ms", Msg: "must be positive"}
	}
	if c.OffsetMs > c.OffsetLimitMs || c.OffsetMs < -c.OffsetLimitMs {
		return &ValidationError{
			Field: "offset_ms",
			Msg:   fmt.Sprintf("%d outside ±%d", c.OffsetMs, c.OffsetLimitMs),
		}
	}
	return nil
}

// ClampOffset limits ms to the configured trim range.
func (c *Config) ClampOffset(ms int64) int64 {
	if ms > c.OffsetLimitMs {
		return c.OffsetLimitMs
	}
	if ms < -c.OffsetLimitMs {
		return -c.OffsetLimitMs
	}
	return ms
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	c.path = path
	return nil
}
