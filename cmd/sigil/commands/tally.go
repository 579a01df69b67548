package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func tallyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tally <rumorID>",
		Short: "Show accepted votes for a rumor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireService(); err != nil {
				return err
			}
			t, err := appCtx.Remote.Tally(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: up %d, down %d\n", t.RumorID, t.Up, t.Down)
			return nil
		},
	}
}
