package cmd

import (
	"iserv-client/cmd/iserv/globals"
	"iserv-client/cmd/iserv/utils"
	"iserv-client/internal/components/chrono"
	"iserv-client/internal/export"
	"iserv-client/internal/export/db"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

var (
	exportDb       *string
	exportEvery    *string
	exportMessages *int
)

func init() {
	exportDb = exportCmd.Flags().String("db", "results.db", "The database to write the snapshot to.")
	exportEvery = exportCmd.Flags().String("every", "", "Repeat the export on this cron schedule until interrupted, ex. \"@hourly\" or \"0 7 * * 1-5\".")
	exportMessages = exportCmd.Flags().IntP("messages", "n", 50, "Amount of message summaries to store per mail folder.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--db <path/to/output.db>] [--every <schedule>]",
	Short: "Writes mail, notifications, events and badges into a sqlite database.",
	Run: func(cmd *cobra.Command, args []string) {
		value := globals.Get(cmd.Context())
		clock, err := chrono.NewStandardImpl(value.Config.Timezone)
		if err != nil {
			utils.Fatal("invalid timezone", err)
		}

		out, err := db.Open(*exportDb)
		if err != nil {
			utils.Fatal("failed to open db", err)
		}
		defer out.Close()

		client := newClient(cmd)
		opts := export.Options{
			Host:              value.Config.Host,
			MessagesPerFolder: *exportMessages,
		}

		run := func() error {
			t1 := time.Now()
			summary, err := export.Run(cmd.Context(), out, client, opts, clock, value.Tel)
			if err != nil {
				return err
			}
			slog.Info(
				"export finished",
				"db", *exportDb,
				"folders", summary.Folders,
				"messages", summary.Messages,
				"notifications", summary.Notifications,
				"events", summary.Events,
				"badges", summary.Badges,
				"seconds", time.Since(t1).Seconds(),
			)
			return nil
		}

		if *exportEvery == "" {
			err = run()
			if err != nil {
				utils.Fatal("export failed", err)
			}
			return
		}

		// the session is not refreshed, a run after it expired fails and is
		// logged while the schedule continues
		scheduler := chrono.NewCronScheduler(clock.Location(), value.Tel)
		defer scheduler.Stop()
		scheduled := func() {
			err := run()
			if err != nil {
				slog.Error("export failed", "err", err)
			}
		}
		err = scheduler.Add(*exportEvery, scheduled)
		if err != nil {
			utils.Fatal("invalid schedule", err)
		}
		scheduled()
		<-cmd.Context().Done()
	},
}
