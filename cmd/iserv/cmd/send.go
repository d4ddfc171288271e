package cmd

import (
	"fmt"
	"io"
	"iserv-client/cmd/iserv/globals"
	"iserv-client/cmd/iserv/utils"
	"iserv-client/internal/components/mailer"
	"iserv-client/pkg/iserv"
	"os"

	"github.com/spf13/cobra"
)

var (
	sendTo          *[]string
	sendSubject     *string
	sendBody        *string
	sendBodyFile    *string
	sendHTMLFile    *string
	sendAttachments *[]string
)

func init() {
	flags := sendCmd.Flags()
	sendTo = flags.StringSliceP("to", "t", nil, "Recipient addresses.")
	sendSubject = flags.StringP("subject", "s", "", "Subject line.")
	sendBody = flags.StringP("body", "b", "", "Plain text body.")
	sendBodyFile = flags.String("body-file", "", "Read the plain text body from a file, - for stdin.")
	sendHTMLFile = flags.String("html-file", "", "Read an alternative HTML body from a file.")
	sendAttachments = flags.StringSliceP("attach", "a", nil, "Files to attach.")
	sendCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(sendCmd)
}

func readBody(name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(name)
	return string(data), err
}

var sendCmd = &cobra.Command{
	Use:   "send --to <address>... [-s <subject>] [-b <body>] [-a <file>...]",
	Short: "Sends an email from the account over SMTP submission.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := globals.Get(cmd.Context()).Config

		security := mailer.SECURITY_TLS
		if cfg.Smtp.Security != "" {
			var err error
			security, err = mailer.ParseSecurity(cfg.Smtp.Security)
			if err != nil {
				utils.Fatal("invalid smtp security", err)
			}
		}

		body := *sendBody
		if *sendBodyFile != "" {
			var err error
			body, err = readBody(*sendBodyFile)
			if err != nil {
				utils.Fatal("failed to read body", err)
			}
		}
		var html string
		if *sendHTMLFile != "" {
			var err error
			html, err = readBody(*sendHTMLFile)
			if err != nil {
				utils.Fatal("failed to read html body", err)
			}
		}

		client := newClient(cmd)
		err := client.SendEmail(cmd.Context(), iserv.Email{
			To:          *sendTo,
			Subject:     *sendSubject,
			Body:        body,
			HTMLBody:    html,
			Attachments: *sendAttachments,
			Server:      cfg.Smtp.Server,
			Port:        cfg.Smtp.Port,
			Security:    security,
		})
		if err != nil {
			utils.Fatal("failed to send email", err)
		}
		fmt.Printf("sent to %d recipient(s)\n", len(*sendTo))
	},
}
