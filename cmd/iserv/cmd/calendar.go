package cmd

import (
	"iserv-client/cmd/iserv/globals"
	"iserv-client/cmd/iserv/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	calendarCmd.AddCommand(calendarUpcomingCmd)
	calendarCmd.AddCommand(calendarSourcesCmd)
	rootCmd.AddCommand(calendarCmd)
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "The 'calendar' subcommand reads calendar events.",
}

var calendarUpcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Lists upcoming events.",
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		list, err := client.UpcomingEvents(cmd.Context())
		if err != nil {
			utils.Fatal("failed to list events", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Start", "End", "Title", "Location", "Calendar"})
		for _, e := range list.Events {
			end := e.End
			if e.AllDay {
				end = "all day"
			}
			t.AppendRow(table.Row{e.Start, end, e.Title, e.Location, e.Calendar})
		}
		t.Render()
		for _, e := range list.Errors {
			globals.Get(cmd.Context()).Tel.ReportWarning("cli.calendar-upcoming", e)
		}
	},
}

var calendarSourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lists the calendars events are read from.",
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		sources, err := client.EventSources(cmd.Context())
		if err != nil {
			utils.Fatal("failed to list event sources", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Id", "Title", "Editable"})
		for _, s := range sources {
			t.AppendRow(table.Row{s.Id, s.Title, s.Editable})
		}
		t.Render()
	},
}
