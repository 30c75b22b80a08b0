package commands

import (
	"fmt"
	"journal-backend/cmd/journal-cli/globals"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(logoutCmd)
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forgets the session and the saved credentials.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		globals.Get(cmd.Context()).Journal.Logout(cmd.Context())
		fmt.Println("Выход выполнен.")
	},
}
