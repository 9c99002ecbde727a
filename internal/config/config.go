// Package config holds the command-line configuration and its validation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"

	"github.com/idelchi/gochap/internal/scratch"
)

// EnvPrefix is the prefix of every environment variable read into Config.
const EnvPrefix = "GOCHAP"

type Config struct {
	// Common flags
	Workspace  string   `mapstructure:"workspace"   validate:"required"`
	Quiet      bool     `mapstructure:"quiet"`
	Stats      bool     `mapstructure:"stats"`
	Strict     bool     `mapstructure:"strict"`
	Ignore     []string `mapstructure:"ignore"`
	IgnoreFrom string   `mapstructure:"ignore-from"`
	LegacyKey  bool     `mapstructure:"legacy-key"`
	KeyName    string   `mapstructure:"key-name"    validate:"required,excludesall=/\\,ne=.,ne=.."`
	LogLevel   string   `mapstructure:"log-level"   validate:"oneof=trace debug info warn error"`
	LogFormat  string   `mapstructure:"log-format"  validate:"oneof=text json"`
	File       string   `mapstructure:"config"`

	// Command-specific flags
	Key     string `mapstructure:"key"      label:"--key"      validate:"exclusive=KeyFile"`
	KeyFile string `mapstructure:"key-file" label:"--key-file"`
	Decrypt bool   `mapstructure:"-"`

	// Positional arguments
	Source string `mapstructure:"-"`
}

// Load reads the optional JSONC config file named by the "config" key into v
// and decodes the merged flags, environment and file values.
func Load(v *viper.Viper) (*Config, error) {
	if path := v.GetString("config"); path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is from user-supplied flag
		if err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}

		v.SetConfigType("json")

		if err := v.ReadConfig(bytes.NewReader(jsonc.ToJSON(data))); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration against the struct tags
func (c *Config) Validate() error {
	validate := validator.New()

	if err := registerExclusive(validate); err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	if c.Decrypt && c.Key == "" && c.KeyFile == "" {
		return errors.New("validating configuration: one of --key or --key-file is required")
	}

	if !c.Decrypt && c.Source == "" {
		return errors.New("validating configuration: a source file is required")
	}

	return nil
}

// IgnorePatterns returns the ignore patterns from flags and the patterns file.
func (c *Config) IgnorePatterns() ([]string, error) {
	patterns := append([]string{}, c.Ignore...)

	if c.IgnoreFrom != "" {
		loaded, err := LoadPatterns(c.IgnoreFrom)
		if err != nil {
			return nil, fmt.Errorf("loading ignore patterns: %w", err)
		}

		patterns = append(patterns, loaded...)
	}

	return patterns, nil
}

// Matcher compiles the ignore patterns, or returns nil when there are none.
func (c *Config) Matcher() (*scratch.Ignore, error) {
	patterns, err := c.IgnorePatterns()
	if err != nil || len(patterns) == 0 {
		return nil, err
	}

	return scratch.NewIgnore(patterns)
}

// KeyArtifact returns the key artifact content from --key or --key-file.
func (c *Config) KeyArtifact() ([]byte, error) {
	if c.Key != "" {
		return []byte(strings.TrimSpace(c.Key)), nil
	}

	data, err := os.ReadFile(c.KeyFile) //nolint:gosec // path is from user-supplied flag
	if err != nil {
		return nil, fmt.Errorf("reading key file %q: %w", c.KeyFile, err)
	}

	return data, nil
}
