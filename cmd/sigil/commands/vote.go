package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sigil/internal/domain"
)

func voteCmd() *cobra.Command {
	var (
		up, down, ephemeral, bind bool
		prediction                float64
	)
	cmd := &cobra.Command{
		Use:   "vote <rumorID>",
		Short: "Sign and submit a vote on a rumor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireService(); err != nil {
				return err
			}
			mode := signingMode(cmd, ephemeral, bind)
			if err := unlockFor(cmd, mode); err != nil {
				return err
			}
			resp, err := appCtx.Actions.Vote(cmd.Context(), domain.Vote{
				RumorID:    args[0],
				Up:         up,
				Prediction: prediction,
			}, mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Vote accepted (%s, action %s)\n", mode, resp.ActionID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&up, "up", false, "vote the rumor up")
	cmd.Flags().BoolVar(&down, "down", false, "vote the rumor down")
	cmd.Flags().Float64Var(&prediction, "prediction", 0.5, "predicted share of up votes, 0..1")
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "sign with a one-time key")
	cmd.Flags().BoolVar(&bind, "bind", false, "vouch for the one-time key with the identity key (implies --ephemeral)")
	cmd.MarkFlagsOneRequired("up", "down")
	cmd.MarkFlagsMutuallyExclusive("up", "down")
	return cmd
}
