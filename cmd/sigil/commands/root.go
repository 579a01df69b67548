package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"sigil/internal/app"
	"sigil/internal/crypto"
	actionsvc "sigil/internal/services/action"
)

var (
	home       string
	configPath string
	serviceURL string
	passphrase string
	logLevel   string
	appCtx     *app.App
)

// Execute runs the sigil CLI and wipes guarded memory before returning.
func Execute() error {
	defer memguard.Purge()
	return run(newRootCmd())
}

// run executes root and always closes the app, so an unsealed key does not
// outlive a failed command.
func run(root *cobra.Command) error {
	err := root.Execute()
	if appCtx != nil {
		err = errors.Join(err, appCtx.Close())
		appCtx = nil
	}
	return err
}

func newRootCmd() *cobra.Command {
	stdinReader = nil

	root := &cobra.Command{
		Use:          "sigil",
		Short:        "Password-sealed signing identity CLI",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			memguard.CatchInterrupt()
			if err := crypto.CheckSecureContext(); err != nil {
				return err
			}

			path := configPath
			if path == "" && home != "" {
				path = filepath.Join(home, app.DefaultConfigName)
			}
			cfg, err := app.LoadConfig(path)
			if err != nil {
				return err
			}
			if home != "" {
				cfg.Home = home
			}
			if serviceURL != "" {
				cfg.ServiceURL = serviceURL
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}

			appCtx, err = app.New(cfg)
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.sigil)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <home>/config.toml)")
	root.PersistentFlags().StringVar(&serviceURL, "service", "", "service base URL (e.g. http://127.0.0.1:8080)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the identity (prompted if empty)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		registerCmd(),
		loginCmd(),
		signCmd(),
		verifyCmd(),
		voteCmd(),
		postCmd(),
		tallyCmd(),
		inviteCmd(),
		passwdCmd(),
		exportCmd(),
		importCmd(),
	)
	return root
}

// requireService fails when no service URL is configured.
func requireService() error {
	if appCtx.Remote == nil {
		return fmt.Errorf("no service configured. use --service or service_url")
	}
	return nil
}

// signingMode resolves --ephemeral/--bind against the configured default.
func signingMode(cmd *cobra.Command, ephemeral, bind bool) actionsvc.Mode {
	if !cmd.Flags().Changed("ephemeral") && !cmd.Flags().Changed("bind") {
		return appCtx.DefaultMode()
	}
	if bind {
		ephemeral = true
	}
	return actionsvc.ModeFor(ephemeral, bind)
}

// unlockFor unseals the identity when mode signs with it.
func unlockFor(cmd *cobra.Command, mode actionsvc.Mode) error {
	if mode == actionsvc.Ephemeral {
		return nil
	}
	pass, err := readPassphrase(cmd, "Passphrase: ")
	if err != nil {
		return err
	}
	_, err = appCtx.Identity.Unlock(pass)
	return err
}
