package cmd

import (
	"fmt"
	"iserv-client/cmd/iserv/utils"
	"iserv-client/pkg/iserv"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	mailFolder *string
	mailLength *int
	mailStart  *int
	mailRaw    *bool
)

func init() {
	mailFolder = mailCmd.PersistentFlags().StringP("folder", "f", "INBOX", "Mail folder path.")
	mailLength = mailListCmd.Flags().IntP("length", "n", 50, "Amount of messages to list.")
	mailStart = mailListCmd.Flags().Int("start", 0, "Offset of the first message.")
	mailRaw = mailSourceCmd.Flags().Bool("raw", false, "Print the raw message instead of a summary.")

	mailCmd.AddCommand(mailListCmd)
	mailCmd.AddCommand(mailFoldersCmd)
	mailCmd.AddCommand(mailSourceCmd)
	rootCmd.AddCommand(mailCmd)
}

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "The 'mail' subcommand reads the account's mailbox.",
}

func messageFlags(m iserv.MessageSummary) string {
	var out []string
	if !m.Seen {
		out = append(out, "new")
	}
	if m.Flagged {
		out = append(out, "flagged")
	}
	if m.Answered {
		out = append(out, "answered")
	}
	if m.HasAttachment {
		out = append(out, "attachment")
	}
	return strings.Join(out, ",")
}

var mailListCmd = &cobra.Command{
	Use:   "list [-f <folder>] [-n <length>]",
	Short: "Lists the newest messages of a folder.",
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		list, err := client.Emails(cmd.Context(), iserv.MailQuery{
			Path:   *mailFolder,
			Length: *mailLength,
			Start:  *mailStart,
		})
		if err != nil {
			utils.Fatal("failed to list messages", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"UID", "Date", "From", "Subject", "Size", "Flags"})
		for _, m := range list.Data {
			t.AppendRow(table.Row{m.Uid, m.Date, m.From.String(), m.Subject, utils.FormatSize(m.Size), messageFlags(m)})
		}
		t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d of %d", len(list.Data), list.RecordsTotal), "", ""})
		t.Render()
	},
}

var mailFoldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Lists mail folders with their message counts.",
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		folders, err := client.MailFolders(cmd.Context())
		if err != nil {
			utils.Fatal("failed to list folders", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Path", "Name", "Unseen", "Total"})
		for _, f := range folders {
			t.AppendRow(table.Row{f.Path, f.DisplayName, f.Unseen, f.Total})
		}
		t.Render()
	},
}

var mailSourceCmd = &cobra.Command{
	Use:   "source <uid> [-f <folder>] [--raw]",
	Short: "Prints a message, parsed or as its raw source.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		uid, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			utils.Fatal("invalid uid", err)
		}

		client := newClient(cmd)
		source, err := client.EmailSource(cmd.Context(), uid, *mailFolder)
		if err != nil {
			utils.Fatal("failed to fetch message", err)
		}
		if *mailRaw {
			fmt.Print(source)
			return
		}

		parsed, err := iserv.ParseEmailSource(source)
		if err != nil {
			utils.Fatal("failed to parse message", err)
		}
		fmt.Printf("From:    %s\n", parsed.From)
		fmt.Printf("To:      %s\n", strings.Join(parsed.To, ", "))
		fmt.Printf("Date:    %s\n", parsed.Date.Format(time.RFC1123Z))
		fmt.Printf("Subject: %s\n\n", parsed.Subject)
		fmt.Println(parsed.Text)
		for _, a := range parsed.Attachments {
			fmt.Printf("[attachment] %s (%s, %s)\n", a.Filename, a.MIMEType, utils.FormatSize(a.Size))
		}
	},
}
