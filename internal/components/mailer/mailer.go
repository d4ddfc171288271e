package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"iserv-client/internal/components/assert"
	"iserv-client/internal/components/telemetry"
	"net"
	"net/mail"
	"net/smtp"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("iserv/mailer")

const report_mailer_send = "mailer.send"

var SendFailed = errors.New("failed to send email")

type Security int

const (
	// SECURITY_TLS connects with implicit TLS (SMTPS), the default on port 465.
	SECURITY_TLS Security = iota
	// SECURITY_STARTTLS upgrades a plain connection, the default on port 587.
	SECURITY_STARTTLS
	// SECURITY_NONE sends everything in the clear, only meant for local relays.
	SECURITY_NONE
)

func (s Security) String() string {
	switch s {
	case SECURITY_TLS:
		return "tls"
	case SECURITY_STARTTLS:
		return "starttls"
	case SECURITY_NONE:
		return "none"
	}
	return fmt.Sprintf("Security(%d)", int(s))
}

// ParseSecurity parses the output of Security.String.
func ParseSecurity(s string) (Security, error) {
	switch strings.ToLower(s) {
	case "tls", "ssl", "smtps":
		return SECURITY_TLS, nil
	case "starttls":
		return SECURITY_STARTTLS, nil
	case "none", "plain":
		return SECURITY_NONE, nil
	}
	return 0, fmt.Errorf("unknown smtp security '%s'", s)
}

type Options struct {
	Server   string
	Port     int
	Username string
	Password string
	Security Security
	// TLSConfig overrides the tls configuration used for SECURITY_TLS and SECURITY_STARTTLS.
	TLSConfig *tls.Config
}

type Message struct {
	SenderName  string
	SenderEmail string
	To          []string
	Subject     string
	Text        string
	// HTML is sent as an alternative to Text if it is not empty.
	HTML string
	// Attachments are paths to files on disk.
	Attachments []string
}

type Mailer struct {
	opts Options
	tel  telemetry.API
}

func New(opts Options, tel telemetry.API) Mailer {
	assert.NotEmptyStr(opts.Server, "mailer.Options.Server")
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	if opts.Port == 0 {
		opts.Port = 465
		if opts.Security == SECURITY_STARTTLS {
			opts.Port = 587
		}
	}
	return Mailer{
		opts: opts,
		tel:  telemetry.NewScopedAPI("mailer", tel),
	}
}

func (m Mailer) build(msg Message) (*email.Email, error) {
	if msg.SenderEmail == "" {
		return nil, fmt.Errorf("sender email is required")
	}
	if len(msg.To) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}

	e := email.NewEmail()
	e.From = (&mail.Address{Name: msg.SenderName, Address: msg.SenderEmail}).String()
	e.To = msg.To
	e.Subject = msg.Subject
	e.Text = []byte(msg.Text)
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}
	for _, path := range msg.Attachments {
		_, err := e.AttachFile(path)
		if err != nil {
			return nil, fmt.Errorf("attach %s: %w", filepath.Base(path), err)
		}
	}
	return e, nil
}

func (m Mailer) send(e *email.Email, auth smtp.Auth) error {
	addr := net.JoinHostPort(m.opts.Server, strconv.Itoa(m.opts.Port))
	tlsConfig := m.opts.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: m.opts.Server}
	}

	switch m.opts.Security {
	case SECURITY_TLS:
		return e.SendWithTLS(addr, auth, tlsConfig)
	case SECURITY_STARTTLS:
		return e.SendWithStartTLS(addr, auth, tlsConfig)
	default:
		return e.Send(addr, auth)
	}
}

// Send submits the message. Errors are wrapped with SendFailed except for
// invalid messages.
func (m Mailer) Send(ctx context.Context, msg Message) error {
	ctx, span := tracer.Start(ctx, "Send")
	defer span.End()

	e, err := m.build(msg)
	if err != nil {
		return err
	}
	// the smtp client does not take a context, so cancellation is only
	// honored before the connection is made
	err = ctx.Err()
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.opts.Username != "" {
		auth = smtp.PlainAuth("", m.opts.Username, m.opts.Password, m.opts.Server)
	}
	err = m.send(e, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = m.send(e, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		m.tel.ReportBroken(report_mailer_send, err, m.opts.Server, m.opts.Security.String())
		return fmt.Errorf("%w: %w", SendFailed, err)
	}

	m.tel.ReportDebug("email sent", m.opts.Server, m.opts.Port, len(msg.To))
	return nil
}
