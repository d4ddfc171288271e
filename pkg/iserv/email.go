package iserv

import (
	"context"
	"fmt"
	"iserv-client/internal/components/mailer"
)

type Email struct {
	To      []string
	Subject string
	Body    string
	// HTMLBody is sent as an alternative to Body when set.
	HTMLBody string
	// Attachments are paths of files to attach.
	Attachments []string

	// SenderName defaults to the username.
	SenderName string
	// SenderEmail defaults to "<username>@<host>".
	SenderEmail string
	// Server defaults to the portal host.
	Server string
	// Port defaults to 465, or 587 when Security is STARTTLS.
	Port     int
	Security mailer.Security
}

// SendEmail submits an email with the account's credentials.
func (c *Client) SendEmail(ctx context.Context, e Email) error {
	if e.SenderName == "" {
		e.SenderName = c.username
	}
	if e.SenderEmail == "" {
		e.SenderEmail = fmt.Sprintf("%s@%s", c.username, c.Host)
	}
	if e.Server == "" {
		e.Server = c.Host
	}

	m := mailer.New(mailer.Options{
		Server:   e.Server,
		Port:     e.Port,
		Username: c.username,
		Password: c.password,
		Security: e.Security,
	}, c.tel)

	err := m.Send(ctx, mailer.Message{
		SenderName:  e.SenderName,
		SenderEmail: e.SenderEmail,
		To:          e.To,
		Subject:     e.Subject,
		Text:        e.Body,
		HTML:        e.HTMLBody,
		Attachments: e.Attachments,
	})
	if err != nil {
		c.tel.ReportWarning(report_client_send_email, err)
		return err
	}
	return nil
}
