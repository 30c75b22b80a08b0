package commands

import (
	"journal-backend/cmd/journal-cli/globals"
	"journal-backend/cmd/journal-cli/utils"
	"journal-backend/internal/session"
	"journal-backend/lib/timezone"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows whether the saved session can still be used.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		j := globals.Get(ctx).Journal

		state, err := j.State(ctx)
		if err != nil {
			return err
		}

		username := "-"
		creds, ok := j.SavedCredentials(ctx)
		if ok {
			username = creds.Username
		}
		loggedInAt := "-"
		expiresAt := "-"
		if !state.AuthTimestamp.IsZero() {
			loggedInAt = timezone.In(state.AuthTimestamp).Format(time.DateTime)
			expiresAt = timezone.In(state.AuthTimestamp.Add(session.Lifetime)).Format(time.DateTime)
		}

		t := utils.NewTable()
		t.AppendRows([]table.Row{
			{"Пользователь", username},
			{"Сессия активна", j.IsLoggedIn(ctx)},
			{"Вход выполнен", loggedInAt},
			{"Истекает", expiresAt},
			{"Сохранено дисциплин", len(j.Cached(ctx))},
		})
		t.Render()
		return nil
	},
}
