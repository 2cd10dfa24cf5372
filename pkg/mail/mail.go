// Package mail delivers the few plain-text emails the service sends.
package mail

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	gomail "github.com/wneessen/go-mail"

	"github.com/EliasObeid9-02/library-system/pkg/config"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New returns an SMTP mailer, or a LogMailer when no SMTP host is configured.
func New(cfg *config.Config) (Mailer, error) {
	if cfg.SMTPHost == "" {
		return NewLogMailer(cfg.MailFrom), nil
	}
	return NewSMTPMailer(cfg)
}

type SMTPMailer struct {
	client *gomail.Client
	from   string
}

func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTPPort),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTPUsername),
			gomail.WithPassword(cfg.SMTPPassword),
		)
	}
	if cfg.SMTPTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &SMTPMailer{client: client, from: cfg.MailFrom}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return errors.Wrap(err, "invalid sender")
	}
	if err := msg.To(to); err != nil {
		return errors.Wrap(err, "invalid recipient")
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrap(err, "failed to send mail")
	}

	logger.FromContext(ctx).Info("mail sent", logger.Data{"to": to, "subject": subject})
	return nil
}

// LogMailer writes messages to the log instead of delivering them. It's used
// in development and tests.
type LogMailer struct {
	from string
}

func NewLogMailer(from string) *LogMailer {
	return &LogMailer{from: from}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger.FromContext(ctx).Info("mail not delivered (no smtp host)", logger.Data{
		"from":    m.from,
		"to":      to,
		"subject": subject,
		"body":    body,
	})
	return nil
}
