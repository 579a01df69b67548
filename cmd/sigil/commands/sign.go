package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// sign <payload>: print a SignedAction for payload.
func signCmd() *cobra.Command {
	var ephemeral, bind bool
	cmd := &cobra.Command{
		Use:   "sign <payload>",
		Short: "Sign a payload and print the signed action as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := signingMode(cmd, ephemeral, bind)
			if err := unlockFor(cmd, mode); err != nil {
				return err
			}
			action, err := appCtx.Actions.SignPayload([]byte(args[0]), mode)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(action, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "sign with a one-time key")
	cmd.Flags().BoolVar(&bind, "bind", false, "vouch for the one-time key with the identity key (implies --ephemeral)")
	return cmd
}
