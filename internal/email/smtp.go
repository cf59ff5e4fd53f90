// Package email delivers lead notifications over SMTP.
package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"terrasite_backend/internal/notification/message"
	"terrasite_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// implicitTLSPort is the SMTPS port; everything else negotiates STARTTLS.
const implicitTLSPort = 465

const fromName = "Terrasite"

// SMTPSender mails lead notifications to a single operator address.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	toEmail   string
}

// NewSMTPSender creates a sender from the SMTP settings.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUser(),
		password:  cfg.GetSMTPPassword(),
		fromEmail: cfg.GetFromEmail(),
		toEmail:   cfg.GetToEmail(),
	}
}

// Channel names this notifier in logs.
func (s *SMTPSender) Channel() string { return "email" }

// Send mails msg as plain text with an HTML alternative.
func (s *SMTPSender) Send(ctx context.Context, msg message.Message) error {
	mail, err := s.compose(msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, mail); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) compose(msg message.Message) (*gomail.Msg, error) {
	htmlContent, err := renderLeadNotification(msg)
	if err != nil {
		return nil, err
	}

	mail := gomail.NewMsg()
	if err := mail.FromFormat(fromName, s.fromEmail); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := mail.To(s.toEmail); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	mail.Subject(msg.Subject)
	mail.SetBodyString(gomail.TypeTextPlain, msg.Text())
	mail.AddAlternativeString(gomail.TypeTextHTML, htmlContent)
	return mail, nil
}

func (s *SMTPSender) clientOptions() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.port == implicitTLSPort {
		opts = append(opts, gomail.WithSSLPort(false))
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	}
	return opts
}
