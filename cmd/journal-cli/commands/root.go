package commands

import (
	"context"
	"errors"
	"fmt"
	"journal-backend/cmd/journal-cli/globals"
	"journal-backend/internal/components/chrono"
	"journal-backend/internal/components/kv"
	"journal-backend/internal/components/telemetry"
	"journal-backend/internal/service"
	"journal-backend/lib/restyutil"
	libtelemetry "journal-backend/lib/telemetry"
	"journal-backend/lib/textutil"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	dumpHttp   *string
)

// run before exiting, in reverse order
var cleanups []func()

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file to read (json5 or yaml).")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug logs.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "A directory to write every exchange with the portal to.")
}

var rootCmd = &cobra.Command{
	Use:               "journal-cli",
	Short:             "journal-cli logs into the college journal portal and shows your grades.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

func setupTelemetry(ctx context.Context) {
	tel, err := libtelemetry.SetupFromEnv(ctx, "journal-cli")
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("telemetry.json5 not found, traces are not exported")
		return
	}
	if err != nil {
		slog.Warn("failed to setup telemetry", "err", err)
		return
	}
	cleanups = append(cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := tel.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	})
}

func setup(cmd *cobra.Command, args []string) error {
	libtelemetry.InitSlog(*verbose)
	ctx := cmd.Context()
	setupTelemetry(ctx)

	config, err := readConfig(*configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	opts, err := config.ClientOptions()
	if err != nil {
		return err
	}

	database, err := config.Database.OpenDB()
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	cleanups = append(cleanups, func() { database.Close() })

	store, err := kv.NewSqliteStore(ctx, database)
	if err != nil {
		return err
	}

	j, err := service.NewJournal(opts, store, chrono.NewStandardTime(), telemetry.SlogAPI{})
	if err != nil {
		return err
	}

	if *dumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(*dumpHttp)
		if err != nil {
			return err
		}
		restyutil.DumpExchanges(j.Client().Http, output, textutil.DecodeWindows1251, "userpass")
	}

	cmd.SetContext(globals.Set(ctx, &globals.Value{
		Journal: j,
		Config:  globals.Config{RefreshCron: config.RefreshCron},
	}))
	return nil
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	runCleanups()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
