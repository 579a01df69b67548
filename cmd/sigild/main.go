package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sigil/internal/logging"
	"sigil/internal/server"
	"sigil/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath, addr, dbPath string
	cmd := &cobra.Command{
		Use:          "sigild",
		Short:        "Development identity and action service for sigil",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if dbPath != "" {
				cfg.DatabasePath = dbPath
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			logCfg := cfg.Logging
			logCfg.Component = "sigild"
			logger, err := logging.New(&logCfg)
			if err != nil {
				return err
			}
			defer logger.Close()
			logging.SetDefault(logger)

			db, err := store.OpenSQLite(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.New(cfg, db, logger.Logger).ListenAndServe(ctx); err != nil {
				logger.Error("server stopped", "err", err)
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file (TOML, YAML or JSON)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (overrides config)")
	return cmd
}
