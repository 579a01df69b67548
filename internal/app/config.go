package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"sigil/internal/config"
	"sigil/internal/logging"
)

// DefaultConfigName is the config file looked up in Home when no path is given.
const DefaultConfigName = "config.toml"

// Config holds runtime wiring options for building the app.
type Config struct {
	// Home is the directory holding identity.json and accounts.json,
	// e.g. $HOME/.sigil.
	Home string `toml:"home" yaml:"home" json:"home"`

	// ServiceURL is the identity and action service base URL,
	// e.g. http://127.0.0.1:8080. Empty means offline.
	ServiceURL string `toml:"service_url" yaml:"service_url" json:"service_url"`

	// Username is used by commands that take an optional username.
	Username string `toml:"username" yaml:"username" json:"username"`

	// Ephemeral makes one-time keys the default signing mode; BindEphemeral
	// additionally vouches for them with the identity key.
	Ephemeral     bool `toml:"ephemeral" yaml:"ephemeral" json:"ephemeral"`
	BindEphemeral bool `toml:"bind_ephemeral" yaml:"bind_ephemeral" json:"bind_ephemeral"`

	HTTPTimeout time.Duration `toml:"http_timeout" yaml:"http_timeout" json:"http_timeout"`

	Logging logging.Config `toml:"logging" yaml:"logging" json:"logging"`
}

// DefaultConfig returns the built-in defaults. Home is ~/.sigil when the user
// home directory is known.
func DefaultConfig() *Config {
	home := ".sigil"
	if dir, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(dir, ".sigil")
	}
	return &Config{
		Home:        home,
		HTTPTimeout: 15 * time.Second,
		Logging:     *logging.DefaultConfig(),
	}
}

// LoadConfig reads path over the defaults and applies environment overrides.
// An empty path means Home/config.toml; a missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if v := os.Getenv("SIGIL_HOME"); v != "" {
		cfg.Home = v
	}
	if path == "" {
		path = filepath.Join(cfg.Home, DefaultConfigName)
	}
	if _, err := config.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// ApplyEnvOverrides applies SIGIL_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SIGIL_HOME"); v != "" {
		c.Home = v
	}
	if v := os.Getenv("SIGIL_SERVICE_URL"); v != "" {
		c.ServiceURL = v
	}
	if v := os.Getenv("SIGIL_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("SIGIL_EPHEMERAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Ephemeral = b
		}
	}
	if v := os.Getenv("SIGIL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.Home == "" {
		errs = append(errs, errors.New("home is required"))
	}
	if c.ServiceURL != "" {
		u, err := url.Parse(c.ServiceURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("service_url %q must be an http(s) URL", c.ServiceURL))
		}
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("http_timeout must be positive"))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
