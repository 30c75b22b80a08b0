package commands

import (
	"fmt"
	"journal-backend/cmd/journal-cli/globals"
	"journal-backend/cmd/journal-cli/utils"
	"journal-backend/internal/grades"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var subjectsCached *bool

func init() {
	subjectsCached = subjectsCmd.Flags().Bool("cached", false, "Show the subjects of the last successful fetch without contacting the portal.")
	rootCmd.AddCommand(subjectsCmd)
}

var subjectsCmd = &cobra.Command{
	Use:   "subjects [--cached]",
	Short: "Fetches and shows the current grades.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		j := globals.Get(ctx).Journal

		if *subjectsCached {
			t := utils.NewTable()
			utils.SubjectsTable(t, j.Cached(ctx))
			t.Render()
			return
		}

		_, err := j.Resume(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Авто-вход не удался: %v\n", err)
		}

		subjects, status := j.FetchSubjects(ctx)
		slog.Debug("fetched subjects", "status", status, "count", len(subjects))
		if status != grades.StatusSuccess {
			fmt.Fprintln(os.Stderr, status.Message())
		}

		t := utils.NewTable()
		utils.SubjectsTable(t, subjects)
		t.Render()
	},
}
