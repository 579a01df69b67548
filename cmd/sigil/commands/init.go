package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate identity keys and store them sealed under a passphrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pass := passphrase
			if pass == "" {
				var err error
				if pass, err = readNewPassphrase(cmd, "New passphrase: "); err != nil {
					return err
				}
			}
			id, err := appCtx.Identity.Create(pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Identity created.\nFingerprint: %s\n", id.Fingerprint)
			return nil
		},
	}
}
