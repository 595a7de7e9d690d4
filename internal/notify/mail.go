package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// MailTransport delivers one HTML email. Implementations must be safe
// for concurrent use; the dispatcher calls Send from several workers.
type MailTransport interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpTransport struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPTransport returns a MailTransport backed by an SMTP server.
func NewSMTPTransport(cfg SMTPConfig) MailTransport {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &smtpTransport{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

func (t *smtpTransport) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", t.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := t.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}
	return nil
}
