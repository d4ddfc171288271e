package cmd

import (
	"fmt"
	"iserv-client/cmd/iserv/utils"
	"iserv-client/pkg/iserv"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var pictureDir *string

func init() {
	pictureDir = profilePictureCmd.Flags().StringP("out", "o", ".", "Directory to save the picture to.")
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profilePictureCmd)
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "The 'profile' subcommand reads and updates the account's profile.",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints groups, roles, rights and the public profile fields.",
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		info, err := client.OwnUserInfo(cmd.Context())
		if err != nil {
			utils.Fatal("failed to read profile", err)
		}

		groups := make([]string, 0, len(info.Groups))
		for name := range info.Groups {
			groups = append(groups, name)
		}
		sort.Strings(groups)

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRow(table.Row{"groups", strings.Join(groups, "\n")})
		t.AppendRow(table.Row{"roles", strings.Join(info.Roles, "\n")})
		t.AppendRow(table.Row{"rights", strings.Join(info.Rights, "\n")})
		t.AppendSeparator()
		for _, field := range iserv.ProfileFields {
			t.AppendRow(table.Row{field, info.PublicInfo[field]})
		}
		t.Render()
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <field=value>...",
	Short: "Updates public profile fields, fields that aren't given keep their value.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		overrides, err := utils.ParseAssignments(args)
		if err != nil {
			utils.Fatal("invalid arguments", err)
		}

		client := newClient(cmd)
		status, err := client.SetOwnUserInfo(cmd.Context(), overrides)
		if err != nil {
			utils.Fatal("failed to update profile", err)
		}
		fmt.Printf("profile updated (status %d)\n", status)
	},
}

var profilePictureCmd = &cobra.Command{
	Use:   "picture <user> [-o <dir>]",
	Short: "Downloads the profile picture of a user.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		path, err := client.SaveUserProfilePicture(cmd.Context(), args[0], *pictureDir)
		if err != nil {
			utils.Fatal("failed to download profile picture", err)
		}
		fmt.Println(path)
	},
}
