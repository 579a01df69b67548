package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sigil/internal/domain"
)

func registerCmd() *cobra.Command {
	var invite string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Publish your identity to the service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireService(); err != nil {
				return err
			}
			pass, err := readPassphrase(cmd, "Passphrase: ")
			if err != nil {
				return err
			}
			id, err := appCtx.Identity.Register(cmd.Context(), domain.Username(args[0]), invite, pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered as %s (user id %s)\n", id.Username, id.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&invite, "invite", "", "invite code (an existing member's user id)")
	_ = cmd.MarkFlagRequired("invite")
	return cmd
}
