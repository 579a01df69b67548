package server

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"sigil/internal/config"
	"sigil/internal/logging"
)

// Config configures sigild.
type Config struct {
	Addr         string        `toml:"addr" yaml:"addr" json:"addr"`
	DatabasePath string        `toml:"database_path" yaml:"database_path" json:"database_path"`
	TokenSecret  string        `toml:"token_secret" yaml:"token_secret" json:"token_secret"`
	TokenTTL     time.Duration `toml:"token_ttl" yaml:"token_ttl" json:"token_ttl"`

	// GenesisCode is the invite code accepted while no user exists yet.
	GenesisCode string `toml:"genesis_code" yaml:"genesis_code" json:"genesis_code"`

	// RateLimit is the sustained login attempts per second allowed per
	// username; Burst is the bucket size.
	RateLimit float64 `toml:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
	Burst     int     `toml:"burst" yaml:"burst" json:"burst"`

	Logging logging.Config `toml:"logging" yaml:"logging" json:"logging"`
}

// DefaultConfig returns a configuration suitable for local development.
// TokenSecret is left empty and must be supplied.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:8080",
		DatabasePath: "sigild.db",
		TokenTTL:     24 * time.Hour,
		GenesisCode:  "genesis",
		RateLimit:    0.2,
		Burst:        5,
		Logging: logging.Config{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// LoadConfig reads path over the defaults, then applies environment
// overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if _, err := config.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// ApplyEnvOverrides applies SIGILD_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SIGILD_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("SIGILD_DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("SIGILD_TOKEN_SECRET"); v != "" {
		c.TokenSecret = v
	}
	if v := os.Getenv("SIGILD_GENESIS_CODE"); v != "" {
		c.GenesisCode = v
	}
	if v := os.Getenv("SIGILD_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.TokenTTL = d
		}
	}
	if v := os.Getenv("SIGILD_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit = f
		}
	}
	if v := os.Getenv("SIGILD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// minTokenSecret is the shortest HS256 secret accepted.
const minTokenSecret = 32

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is required"))
	}
	if len(c.TokenSecret) < minTokenSecret {
		errs = append(errs, fmt.Errorf("token_secret must be at least %d bytes", minTokenSecret))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if c.GenesisCode == "" {
		errs = append(errs, errors.New("genesis_code is required"))
	}
	if c.RateLimit <= 0 || c.Burst <= 0 {
		errs = append(errs, errors.New("rate_limit and burst must be positive"))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
