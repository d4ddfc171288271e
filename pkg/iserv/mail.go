package iserv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

type MailQuery struct {
	// Path is the mail folder, "INBOX" if empty.
	Path string
	// Length is the amount of messages to return. For Emails, 0 means 50,
	// EmailInfo always requests 0 messages to only get the folder totals.
	Length int
	Start  int
	// Order is the column to order by, "date" if empty.
	Order string
	// Dir is "asc" or "desc", "desc" if empty.
	Dir string
}

func (q MailQuery) params() map[string]string {
	if q.Path == "" {
		q.Path = "INBOX"
	}
	if q.Order == "" {
		q.Order = "date"
	}
	if q.Dir == "" {
		q.Dir = "desc"
	}
	return map[string]string{
		"path":          q.Path,
		"length":        strconv.Itoa(q.Length),
		"start":         strconv.Itoa(q.Start),
		"order[column]": q.Order,
		"order[dir]":    q.Dir,
	}
}

type Address struct {
	Name string `json:"name"`
	Mail string `json:"mail"`
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Mail
	}
	if a.Mail == "" {
		return a.Name
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Mail)
}

// Addresses accepts a single address string, a single address object or a
// list of either.
type Addresses []Address

func (a *Addresses) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*a = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		*a = Addresses{{Mail: s}}
		return nil
	case '{':
		var addr Address
		err := json.Unmarshal(data, &addr)
		if err != nil {
			return err
		}
		*a = Addresses{addr}
		return nil
	}

	var raw []json.RawMessage
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}
	out := make(Addresses, 0, len(raw))
	for _, r := range raw {
		var one Addresses
		err = one.UnmarshalJSON(r)
		if err != nil {
			return err
		}
		out = append(out, one...)
	}
	*a = out
	return nil
}

func (a Addresses) String() string {
	parts := make([]string, len(a))
	for i, addr := range a {
		parts[i] = addr.String()
	}
	return strings.Join(parts, ", ")
}

type MessageSummary struct {
	Uid           int64     `json:"uid"`
	Subject       string    `json:"subject"`
	From          Addresses `json:"from"`
	To            Addresses `json:"to"`
	Date          string    `json:"date"`
	Size          int64     `json:"size"`
	Seen          bool      `json:"seen"`
	Flagged       bool      `json:"flagged"`
	Answered      bool      `json:"answered"`
	HasAttachment bool      `json:"hasAttachments"`
}

// MessageList is the paged message listing of a mail folder.
type MessageList struct {
	Data            []MessageSummary `json:"data"`
	RecordsTotal    int              `json:"recordsTotal"`
	RecordsFiltered int              `json:"recordsFiltered"`
}

type MailFolder struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	DisplayName string `json:"displayName"`
	Unseen      int    `json:"unseen"`
	Total       int    `json:"messages"`
}

func (c *Client) messageList(ctx context.Context, query MailQuery) (MessageList, error) {
	list, err := getJson[MessageList](ctx, c, report_client_emails, "/iserv/mail/api/message/list", query.params())
	if err != nil {
		return MessageList{}, err
	}
	c.tel.ReportCount(report_client_emails, int64(len(list.Data)))
	return list, nil
}

// Emails lists the messages of a mail folder.
func (c *Client) Emails(ctx context.Context, query MailQuery) (MessageList, error) {
	if query.Length == 0 {
		query.Length = 50
	}
	return c.messageList(ctx, query)
}

// EmailInfo returns the message counts of a mail folder without listing its
// messages.
func (c *Client) EmailInfo(ctx context.Context, query MailQuery) (MessageList, error) {
	query.Length = 0
	return c.messageList(ctx, query)
}

// EmailSource returns the raw source of a message, `path` defaults to "INBOX".
func (c *Client) EmailSource(ctx context.Context, uid int64, path string) (string, error) {
	if path == "" {
		path = "INBOX"
	}
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"path": path,
			"msg":  strconv.FormatInt(uid, 10),
		}).
		Get("/iserv/mail/show/source")
	if err != nil {
		c.tel.ReportBroken(report_client_email_source, fmt.Errorf("fetch: %w", err), uid)
		return "", err
	}
	err = checkStatus(res)
	if err != nil {
		c.tel.ReportBroken(report_client_email_source, err, uid)
		return "", err
	}
	return res.String(), nil
}

func (c *Client) MailFolders(ctx context.Context) ([]MailFolder, error) {
	return getJson[[]MailFolder](ctx, c, report_client_mail_folders, "/iserv/mail/api/folder/list", nil)
}

type AttachmentInfo struct {
	Filename string
	MIMEType string
	Size     int64
}

type ParsedEmail struct {
	Subject     string
	From        string
	To          []string
	Date        time.Time
	Text        string
	HTML        string
	Attachments []AttachmentInfo
}

// ParseEmailSource parses the output of EmailSource.
func ParseEmailSource(source string) (ParsedEmail, error) {
	mr, err := mail.CreateReader(strings.NewReader(source))
	if err != nil {
		return ParsedEmail{}, fmt.Errorf("parse email: %w", err)
	}
	defer mr.Close()

	var parsed ParsedEmail
	parsed.Subject, _ = mr.Header.Subject()
	parsed.Date, _ = mr.Header.Date()

	from, err := mr.Header.AddressList("From")
	if err == nil && len(from) > 0 {
		parsed.From = from[0].String()
	}
	to, err := mr.Header.AddressList("To")
	if err == nil {
		for _, addr := range to {
			parsed.To = append(parsed.To, addr.String())
		}
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return parsed, fmt.Errorf("parse email part: %w", err)
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return parsed, err
			}
			switch {
			case strings.HasPrefix(contentType, "text/html"):
				parsed.HTML = string(body)
			case strings.HasPrefix(contentType, "text/plain"), contentType == "":
				parsed.Text = string(body)
			}
		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return parsed, err
			}
			parsed.Attachments = append(parsed.Attachments, AttachmentInfo{
				Filename: filename,
				MIMEType: contentType,
				Size:     int64(len(body)),
			})
		}
	}
	return parsed, nil
}
