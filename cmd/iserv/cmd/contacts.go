package cmd

import (
	"errors"
	"fmt"
	"iserv-client/cmd/iserv/utils"
	"iserv-client/pkg/iserv"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var autocompleteLimit *int

func init() {
	autocompleteLimit = contactsAutocompleteCmd.Flags().IntP("limit", "n", 50, "Maximum amount of suggestions.")
	contactsCmd.AddCommand(contactsSearchCmd)
	contactsCmd.AddCommand(contactsAutocompleteCmd)
	contactsCmd.AddCommand(contactsShowCmd)
	rootCmd.AddCommand(contactsCmd)
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "The 'contacts' subcommand searches the public address book.",
}

var contactsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Searches the address book by name.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		users, err := client.SearchUsers(cmd.Context(), args[0])
		if errors.Is(err, iserv.TooManyResults) {
			utils.Fatal("too many results, use a longer query", err)
		}
		if err != nil {
			utils.Fatal("failed to search address book", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"User", "Name"})
		for _, u := range users {
			t.AppendRow(table.Row{u.User, u.Name})
		}
		t.Render()
	},
}

var contactsAutocompleteCmd = &cobra.Command{
	Use:   "autocomplete <query> [-n <limit>]",
	Short: "Suggests users and mailing lists matching a query.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		entries, err := client.SearchUsersAutocomplete(cmd.Context(), args[0], *autocompleteLimit)
		if err != nil {
			utils.Fatal("failed to autocomplete", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Type", "Id", "Label", "Address"})
		for _, e := range entries {
			t.AppendRow(table.Row{e.Type, e.Id, e.Label, e.Value})
		}
		t.Render()
	},
}

var contactsShowCmd = &cobra.Command{
	Use:   "show <user>",
	Short: "Prints the public address book entry of a user.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		info, err := client.UserInfo(cmd.Context(), args[0])
		if errors.Is(err, iserv.NoSuchUser) {
			utils.Fatal(fmt.Sprintf("no address book entry for %q", args[0]), err)
		}
		if err != nil {
			utils.Fatal("failed to read address book entry", err)
		}

		keys := make([]string, 0, len(info))
		for k := range info {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		t := utils.NewTable()
		for _, k := range keys {
			t.AppendRow(table.Row{k, info[k]})
		}
		t.Render()
	},
}
