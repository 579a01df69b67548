package commands

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sigil/internal/domain"
)

var errInvalidSignature = errors.New("signature is not valid")

// verify <file>: check a SignedAction produced by sign.
func verifyCmd() *cobra.Command {
	var pubKey string
	cmd := &cobra.Command{
		Use:   "verify <file|->",
		Short: "Verify a signed action against a public key (default: your identity)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var action domain.SignedAction
			if err := json.Unmarshal(raw, &action); err != nil {
				return fmt.Errorf("%w: signed action: %v", domain.ErrMalformedInput, err)
			}

			// An unbound ephemeral action carries its own key.
			unbound := len(action.SignerPublicKey) > 0 && len(action.Binding) == 0

			var registered []byte
			switch {
			case pubKey != "":
				if registered, err = base64.StdEncoding.DecodeString(pubKey); err != nil {
					return fmt.Errorf("%w: public key", domain.ErrMalformedInput)
				}
			case unbound:
			default:
				id, err := appCtx.Identity.Identity()
				if err != nil {
					return err
				}
				registered = id.PublicKey
			}

			ok, err := appCtx.Signing.VerifyAction(registered, action)
			if err != nil {
				return err
			}
			if !ok {
				return errInvalidSignature
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
	cmd.Flags().StringVar(&pubKey, "pubkey", "", "base64 SPKI public key of the expected signer")
	return cmd
}

// readInput reads a file, or stdin for "-". Stdin continues after any lines
// already consumed by a passphrase prompt.
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		if stdinReader != nil {
			return io.ReadAll(stdinReader)
		}
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}
