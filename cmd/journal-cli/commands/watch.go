package commands

import (
	"fmt"
	"journal-backend/cmd/journal-cli/globals"
	"journal-backend/internal/components/chrono"
	"journal-backend/internal/components/telemetry"
	"journal-backend/internal/grades"
	libtelemetry "journal-backend/lib/telemetry"
	"journal-backend/lib/util/serviceutil"
	"log/slog"

	"github.com/spf13/cobra"
)

var watchCron *string

func init() {
	watchCron = watchCmd.Flags().String("cron", "", "The cron spec to refresh on, defaults to refresh_cron from the config.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--cron <spec>]",
	Short: "Refreshes the grades on a schedule until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := serviceutil.SignalContext(cmd.Context())
		defer cancel()

		value := globals.Get(ctx)
		j := value.Journal
		spec := *watchCron
		if spec == "" {
			spec = value.Config.RefreshCron
		}

		perfStats, err := libtelemetry.InstrumentPerfStats()
		if err != nil {
			slog.Warn("failed to instrument perf stats", "err", err)
		} else {
			defer perfStats.Unregister()
		}

		refresh := func() {
			_, err := j.Resume(ctx)
			if err != nil {
				slog.Warn("automatic login failed", "err", err)
			}
			subjects, status := j.FetchSubjects(ctx)
			if status != grades.StatusSuccess {
				slog.Warn("refresh failed", "status", status, "message", status.Message(), "cached", len(subjects))
				return
			}
			slog.Info("refreshed grades", "subjects", len(subjects))
		}

		cron := chrono.NewStandardCron(telemetry.SlogAPI{})
		defer cron.Stop()
		err = cron.Cron(spec, refresh)
		if err != nil {
			return fmt.Errorf("invalid cron spec %q: %w", spec, err)
		}

		slog.Info("watching grades", "cron", spec)
		refresh()
		<-ctx.Done()
		slog.Info("stopping")
		return nil
	},
}
