// Package smtp delivers mailer.Email messages over SMTP using gopkg.in/mail.v2.
package smtp

import (
	"context"
	"fmt"
	"io"
	"time"

	mail "gopkg.in/mail.v2"

	"github.com/dmitrymomot/mailseries/pkg/mailer"
)

// TLSMode selects how the connection is secured.
type TLSMode int

const (
	// TLSOpportunistic upgrades with STARTTLS when the server offers it.
	TLSOpportunistic TLSMode = iota
	// TLSMandatory requires STARTTLS and fails when the server does not offer it.
	TLSMandatory
	// TLSImplicit connects over TLS from the first byte (SMTPS).
	TLSImplicit
)

// DefaultTimeout bounds dialing and every SMTP command.
const DefaultTimeout = 30 * time.Second

// Config holds SMTP connection settings.
type Config struct {
	Host      string
	Username  string
	Password  string
	LocalName string // Name sent with EHLO (default: localhost)
	Port      int
	TLS       TLSMode
	Timeout   time.Duration
}

// Sender implements mailer.Sender over SMTP. Each Send opens its own connection.
type Sender struct {
	cfg Config
}

// New creates an SMTP sender.
func New(cfg Config) *Sender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Sender{cfg: cfg}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.Timeout = s.cfg.Timeout
	d.LocalName = s.cfg.LocalName
	d.RetryFailure = false

	switch s.cfg.TLS {
	case TLSImplicit:
		d.SSL = true
	case TLSMandatory:
		d.StartTLSPolicy = mail.MandatoryStartTLS
	default:
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}

	if err := d.DialAndSend(NewMessage(email)); err != nil {
		return fmt.Errorf("smtp: %s:%d: %w", s.cfg.Host, s.cfg.Port, err)
	}
	return nil
}

// NewMessage converts an Email into a MIME message.
// Bcc recipients take part in the envelope but are not written to the headers.
func NewMessage(email *mailer.Email) *mail.Message {
	m := mail.NewMessage()

	for name, value := range email.Headers {
		m.SetHeader(name, value)
	}

	m.SetHeader("From", email.From)
	m.SetHeader("To", email.To...)
	if len(email.CC) > 0 {
		m.SetHeader("Cc", email.CC...)
	}
	if len(email.BCC) > 0 {
		m.SetHeader("Bcc", email.BCC...)
	}
	if email.ReplyTo != "" {
		m.SetHeader("Reply-To", email.ReplyTo)
	}
	m.SetHeader("Subject", email.Subject)

	switch {
	case email.HTML != "" && email.Text != "":
		m.SetBody(mailer.ContentTypePlain, email.Text)
		m.AddAlternative(mailer.ContentTypeHTML, email.HTML)
	case email.HTML != "":
		m.SetBody(mailer.ContentTypeHTML, email.HTML)
	default:
		m.SetBody(mailer.ContentTypePlain, email.Text)
	}

	for _, a := range email.Attachments {
		name := a.Filename
		if name == "" {
			name = "attachment"
		}
		content := a.Content
		settings := []mail.FileSetting{
			mail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, mail.SetHeader(map[string][]string{
				"Content-Type": {a.ContentType},
			}))
		}
		m.Attach(name, settings...)
	}

	return m
}

// WriteMessage serializes email as it would be transmitted.
func WriteMessage(w io.Writer, email *mailer.Email) error {
	_, err := NewMessage(email).WriteTo(w)
	return err
}
