package cmd

import (
	"fmt"
	"iserv-client/cmd/iserv/utils"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(healthCmd)
}

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "Prints the unread counters of every module.",
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		badges, err := client.Badges(cmd.Context())
		if err != nil {
			utils.Fatal("failed to read badges", err)
		}

		names := make([]string, 0, len(badges))
		for name := range badges {
			names = append(names, name)
		}
		sort.Strings(names)

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Module", "Unread"})
		for _, name := range names {
			t.AppendRow(table.Row{name, badges[name]})
		}
		t.Render()
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Prints the status of the video conference service.",
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		health, err := client.ConferenceHealth(cmd.Context())
		if err != nil {
			utils.Fatal("failed to read conference health", err)
		}
		fmt.Println(health.Status)
	},
}
