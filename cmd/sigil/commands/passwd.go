package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func passwdCmd() *cobra.Command {
	var newPassphrase string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Reseal the identity under a new passphrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := readPassphrase(cmd, "Current passphrase: ")
			if err != nil {
				return err
			}
			next := newPassphrase
			if next == "" {
				if next, err = readNewPassphrase(cmd, "New passphrase: "); err != nil {
					return err
				}
			}
			if err := appCtx.Identity.ChangePassphrase(cmd.Context(), old, next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Passphrase changed.")
			return nil
		},
	}
	cmd.Flags().StringVar(&newPassphrase, "new-passphrase", "", "new passphrase (prompted if empty)")
	return cmd
}
