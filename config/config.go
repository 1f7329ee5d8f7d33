// Package config loads the adapter's YAML configuration.
package config

import (
	"bytes"
	"io"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/http-adapter/errors"
	"github.com/wippyai/http-adapter/guest"
)

// Config is the adapter configuration.
type Config struct {
	// Listen is the TCP address the server binds.
	Listen string `yaml:"listen"`

	// Guest is a built-in guest name or the path of a .wasm module.
	Guest string `yaml:"guest"`

	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Compress gzips replies for clients that accept it.
	Compress bool `yaml:"compress"`

	// MaxBodyBytes limits the buffered request body.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// MemoryLimitPages caps wasm guest memory in 64KiB pages. 0 means the
	// runtime default.
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`

	// Render holds the properties of the built-in render guest.
	Render guest.Props `yaml:"render"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		Guest:        "hello",
		LogLevel:     "info",
		MaxBodyBytes: 10 << 20,
		Render:       guest.DefaultProps(),
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read config file")
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse config file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.InvalidInput(errors.PhaseConfig, "listen is required")
	}
	if c.Guest == "" {
		return errors.InvalidInput(errors.PhaseConfig, "guest is required")
	}
	if !c.IsWasm() && !slices.Contains(guest.Names(), c.Guest) {
		return errors.NotFound(errors.PhaseConfig, "guest", c.Guest)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log_level")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.InvalidInput(errors.PhaseConfig, "max_body_bytes must be positive")
	}
	return nil
}

// IsWasm reports whether Guest names a wasm module file.
func (c *Config) IsWasm() bool {
	return strings.HasSuffix(c.Guest, ".wasm")
}

// Level returns the parsed log level. Call after Validate.
func (c *Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
