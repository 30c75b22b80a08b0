package commands

import (
	"bufio"
	"errors"
	"fmt"
	"journal-backend/cmd/journal-cli/globals"
	"journal-backend/internal/session"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginPassword *string

func init() {
	loginPassword = loginCmd.Flags().StringP("password", "p", "", "The password, it is read from stdin when omitted.")
	rootCmd.AddCommand(loginCmd)
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Пароль: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var loginCmd = &cobra.Command{
	Use:   "login <username> [--password <password>]",
	Short: "Logs into the journal and saves the session and the credentials.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j := globals.Get(cmd.Context()).Journal

		password := *loginPassword
		if password == "" {
			var err error
			password, err = readPassword()
			if err != nil {
				return err
			}
		}

		err := j.Login(cmd.Context(), args[0], password)
		var authErr *session.AuthError
		if errors.As(err, &authErr) {
			return errors.New(authErr.Message)
		}
		if err != nil {
			return err
		}

		fmt.Println("Вход выполнен.")
		return nil
	},
}
