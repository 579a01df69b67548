package app

import (
	"errors"
	"fmt"
	"os"

	"sigil/internal/logging"
	actionsvc "sigil/internal/services/action"
)

// App is the CLI's view of a configured sigil installation.
type App struct {
	*Wire
	Config *Config
	Logger *logging.Logger
}

// New validates cfg, prepares the home directory and builds the wiring.
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}

	logCfg := cfg.Logging
	if logCfg.Component == "" {
		logCfg.Component = "sigil"
	}
	logger, err := logging.New(&logCfg)
	if err != nil {
		return nil, err
	}

	return &App{
		Wire:   NewWire(cfg, logger.Logger),
		Config: cfg,
		Logger: logger,
	}, nil
}

// DefaultMode is the signing mode selected by the configuration.
func (a *App) DefaultMode() actionsvc.Mode {
	return actionsvc.ModeFor(a.Config.Ephemeral, a.Config.BindEphemeral)
}

// Close locks the session, destroying any unsealed key, and closes the log.
func (a *App) Close() error {
	return errors.Join(a.Session.Close(), a.Logger.Close())
}
