// Package config loads srsd's TOML configuration file: the HMAC secret,
// this hop's identity, and logging preferences. The three listener/bufsize
// options stay CLI-only (see cmd/srsd) and are never read from here.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk shape of srsd's TOML configuration file.
type Config struct {
	Secret        string `toml:"secret"`
	Hostname      string `toml:"hostname"`
	Separator     string `toml:"separator"`
	Digest        string `toml:"digest"`
	MaxValidDelta int32  `toml:"max_valid_delta"`
	VerboseErrors bool   `toml:"verbose_errors"`
	LogFile       string `toml:"log_file"`
	LogLevel      string `toml:"log_level"`
}

// Load reads and parses the TOML file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// SeparatorByte returns the configured separator as a byte, or the SRS0/
// SRS1 default '=' when Separator is unset.
func (c *Config) SeparatorByte() byte {
	if c.Separator == "" {
		return '='
	}
	return c.Separator[0]
}
