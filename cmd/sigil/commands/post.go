package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sigil/internal/domain"
)

func postCmd() *cobra.Command {
	var ephemeral, bind bool
	cmd := &cobra.Command{
		Use:   "post <content>...",
		Short: "Sign and post a rumor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireService(); err != nil {
				return err
			}
			mode := signingMode(cmd, ephemeral, bind)
			if err := unlockFor(cmd, mode); err != nil {
				return err
			}
			resp, err := appCtx.Actions.Post(cmd.Context(), domain.Rumor{
				Content: strings.Join(args, " "),
			}, mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rumor posted (%s, rumor %s)\n", mode, resp.RumorID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "sign with a one-time key")
	cmd.Flags().BoolVar(&bind, "bind", false, "vouch for the one-time key with the identity key (implies --ephemeral)")
	return cmd
}
