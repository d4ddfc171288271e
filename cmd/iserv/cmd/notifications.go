package cmd

import (
	"fmt"
	"iserv-client/cmd/iserv/utils"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsReadAllCmd)
	rootCmd.AddCommand(notificationsCmd)
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "The 'notifications' subcommand lists and dismisses notifications.",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists notifications.",
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		list, err := client.Notifications(cmd.Context())
		if err != nil {
			utils.Fatal("failed to list notifications", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Id", "Date", "Type", "Title", "Message", "Read"})
		for _, n := range list.Data.Notifications {
			t.AppendRow(table.Row{n.Id, n.Date, n.Type, n.Title, n.Message, n.Read})
		}
		t.Render()
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>...",
	Short: "Marks notifications as read.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ids := make([]int64, len(args))
		for i, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				utils.Fatal("invalid notification id", err)
			}
			ids[i] = id
		}

		client := newClient(cmd)
		for _, id := range ids {
			status, err := client.ReadNotification(cmd.Context(), id)
			if err != nil {
				utils.Fatal(fmt.Sprintf("failed to read notification %d", id), err)
			}
			fmt.Printf("%d: %d\n", id, status)
		}
	},
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Marks every notification as read.",
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		status, err := client.ReadAllNotifications(cmd.Context())
		if err != nil {
			utils.Fatal("failed to read notifications", err)
		}
		fmt.Printf("marked all notifications as read (status %d)\n", status)
	},
}
