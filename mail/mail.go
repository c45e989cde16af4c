// Package mail sends the transactional emails of the marketplace:
// verification codes, recovery codes and booking notifications.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"
)

// Message is a single outgoing email.
type Message struct {
	To      []string
	Subject string
	Body    string
	HTML    bool
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds the dialer settings.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

var ErrNoRecipients = errors.New("mail: no recipients")

// SMTPMailer sends through an SMTP server with gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a mailer for cfg. From defaults to User.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		from:   from,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	if msg.HTML {
		gm.SetBody("text/html", msg.Body)
	} else {
		gm.SetBody("text/plain", msg.Body)
	}
	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("mail: send to %s: %w", strings.Join(msg.To, ","), err)
	}
	return nil
}

// NopMailer drops messages. Used when SMTP is not configured.
type NopMailer struct{}

func (NopMailer) Send(ctx context.Context, msg Message) error {
	slog.DebugContext(ctx, "mail disabled, message dropped", "to", msg.To, "subject", msg.Subject)
	return nil
}

// New returns an SMTP mailer, or a NopMailer when cfg.Host is empty.
func New(cfg SMTPConfig) Mailer {
	if cfg.Host == "" {
		slog.Warn("SMTP_HOST is not set, outgoing mail is disabled")
		return NopMailer{}
	}
	return NewSMTPMailer(cfg)
}
