package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sigil/internal/services/identity"
)

func inviteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invite",
		Short: "Print an invite code for a new user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireService(); err != nil {
				return err
			}
			id, err := appCtx.Identity.Identity()
			if err != nil {
				return err
			}
			if id.UserID == "" {
				return identity.ErrNotRegistered
			}
			inv, err := appCtx.Remote.Invite(cmd.Context(), id.UserID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invite code: %s\n", inv.InviteCode)
			return nil
		},
	}
}
