package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// stdinReader is shared so successive prompts on piped input read successive lines.
var stdinReader *bufio.Reader

// readPassphrase returns --passphrase if set, otherwise prompts for it.
func readPassphrase(cmd *cobra.Command, prompt string) (string, error) {
	if passphrase != "" {
		return passphrase, nil
	}
	return promptSecret(cmd, prompt)
}

// readNewPassphrase prompts twice and requires both entries to match.
func readNewPassphrase(cmd *cobra.Command, prompt string) (string, error) {
	first, err := promptSecret(cmd, prompt)
	if err != nil {
		return "", err
	}
	second, err := promptSecret(cmd, "Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passphrases do not match")
	}
	return first, nil
}

func promptSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read passphrase: %w", err)
		}
		return string(b), nil
	}

	// Not a terminal: read a plaintext line.
	if stdinReader == nil {
		stdinReader = bufio.NewReader(in)
	}
	line, err := stdinReader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
