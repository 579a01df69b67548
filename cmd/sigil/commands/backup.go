package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// export: print the sealed envelope for backup.
func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the sealed identity envelope for backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := appCtx.Identity.Export()
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			if err := os.WriteFile(out, []byte(text+"\n"), 0o600); err != nil {
				return fmt.Errorf("write envelope: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Envelope written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the envelope to this file instead of stdout")
	return cmd
}

// import <file|->: restore an envelope written by export. When reading
// stdin, the passphrase is the first line unless --passphrase is given.
func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Restore the identity from an exported envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := readPassphrase(cmd, "Passphrase: ")
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			id, err := appCtx.Identity.Import(string(raw), pass)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported identity %s\n", id.Fingerprint)
			return nil
		},
	}
}
