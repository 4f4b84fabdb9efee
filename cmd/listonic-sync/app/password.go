package app

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stacklok/listonic-sync/internal/config"
)

func newPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage account passwords in the OS keyring",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Store an account password read from stdin",
		Long: `Store an account password in the OS keyring. On a terminal the password is read
without echo; otherwise the first line of standard input is used. Accounts opt in with
"keyring: true" in the configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := cmd.Flags().GetString("email")
			if err != nil {
				return fmt.Errorf("failed to get email flag: %w", err)
			}

			var reader io.Reader
			if term.IsTerminal(int(os.Stdin.Fd())) {
				slog.Info("Reading password from terminal...")
				reader, err = readerFromTerminal()
				if err != nil {
					return err
				}
			} else {
				reader = cmd.InOrStdin()
			}

			password, err := readPassword(reader)
			if err != nil {
				return err
			}
			if err := config.StorePassword(email, password); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Password for %s stored in keyring\n", email)
			return err
		},
	}
	set.Flags().String("email", "", "Account email (required)")
	_ = set.MarkFlagRequired("email")

	cmd.AddCommand(set)
	return cmd
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	return password, nil
}

func readerFromTerminal() (io.Reader, error) {
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return bytes.NewReader(passwordBytes), nil
}
