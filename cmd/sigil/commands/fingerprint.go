package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sigil/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	var short, publicKey bool
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print identity fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := appCtx.Identity.Identity()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case publicKey:
				fmt.Fprintln(out, crypto.B64(id.PublicKey))
			case short:
				fmt.Fprintln(out, crypto.ShortFingerprint(id.PublicKey))
			default:
				fmt.Fprintf(out, "Fingerprint: %s\n", id.Fingerprint)
				if id.Username != "" {
					fmt.Fprintf(out, "Username: %s\nUser ID: %s\n", id.Username, id.UserID)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print the short fingerprint only")
	cmd.Flags().BoolVar(&publicKey, "public-key", false, "print the base64 SPKI public key instead")
	cmd.MarkFlagsMutuallyExclusive("short", "public-key")
	return cmd
}
