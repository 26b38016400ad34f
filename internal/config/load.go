package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/globalenv/internal/messages"
)

// ErrConfigValidation is a sentinel that wraps config validation failures
// (as opposed to TOML syntax or filesystem errors).
var ErrConfigValidation = errors.New("config validation failed")

// Config is the user configuration stored in <GENV_HOME>/config.toml.
type Config struct {
	// ChannelDefaults are used when an install does not name channels explicitly.
	ChannelDefaults []string `toml:"default_channels"`
	// ChannelAlias is the base URL (or directory) named channels are resolved against.
	ChannelAlias string `toml:"channel_alias"`
	// CustomChannels maps channel names to explicit URLs or directories.
	CustomChannels map[string]string `toml:"custom_channels,omitempty"`
	Warnings       WarningsConfig    `toml:"warnings"`
}

// WarningsConfig controls warning output.
type WarningsConfig struct {
	// NoiseMode is one of "default", "reduce" or "quiet".
	NoiseMode string `toml:"noise_mode,omitempty"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		ChannelDefaults: []string{DefaultChannel},
		ChannelAlias:    DefaultChannelAlias,
		CustomChannels:  map[string]string{},
	}
}

// LoadConfig reads path, falling back to DefaultConfig when the file does not exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf(messages.ConfigReadFailedFmt, path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses and validates config TOML data from a source identifier.
// Keys that are absent keep their default values.
func ParseConfig(data []byte, source string) (*Config, error) {
	cfg := DefaultConfig()
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: "+messages.ConfigUnrecognizedKeysFmt, ErrConfigValidation, source, err)
		}
		return nil, fmt.Errorf(messages.ConfigInvalidFmt, source, err)
	}
	if cfg.CustomChannels == nil {
		cfg.CustomChannels = map[string]string{}
	}
	if err := cfg.Validate(source); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	return cfg, nil
}

// DefaultChannels returns a copy of the channels used when none are given explicitly.
func (c *Config) DefaultChannels() []string {
	out := make([]string, len(c.ChannelDefaults))
	copy(out, c.ChannelDefaults)
	return out
}

// GlobalChannelConfig returns the settings used to resolve channel names.
func (c *Config) GlobalChannelConfig() ChannelConfig {
	custom := make(map[string]string, len(c.CustomChannels))
	for name, target := range c.CustomChannels {
		custom[name] = target
	}
	return ChannelConfig{Alias: c.ChannelAlias, Custom: custom}
}
