package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sigil/internal/domain"
)

// login <username>: fetch the sealed identity and open it on this device.
func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Fetch your sealed identity from the service and unlock it locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireService(); err != nil {
				return err
			}
			pass, err := readPassphrase(cmd, "Passphrase: ")
			if err != nil {
				return err
			}
			id, err := appCtx.Identity.Login(cmd.Context(), domain.Username(args[0]), pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\nFingerprint: %s\n", id.Username, id.Fingerprint)
			return nil
		},
	}
}
