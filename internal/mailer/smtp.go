package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
}

// SMTP relays contact messages through an authenticated SMTP server. The
// visitor's address goes into Reply-To; From is always the account user.
type SMTP struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.User == "" || cfg.Pass == "" {
		return nil, fmt.Errorf("%w: SMTP credentials", ErrNotConfigured)
	}
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTP{cfg: cfg, send: smtp.SendMail}, nil
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.ToEmail == "" {
		return fmt.Errorf("%w: no destination address", ErrNotConfigured)
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	err := s.send(s.cfg.Host+":"+s.cfg.Port, auth, s.cfg.User, []string{msg.ToEmail}, composeMail(s.cfg.User, msg))
	if err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

func composeMail(from string, msg Message) []byte {
	// Header values come from the visitor; strip line breaks so they cannot
	// inject extra headers.
	clean := strings.NewReplacer("\r", "", "\n", " ")

	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, msg.FromName, msg.FromEmail, msg.Message)

	return []byte("To: " + msg.ToEmail + "\r\n" +
		"Subject: Portfolio Contact: " + clean.Replace(msg.FromName) + "\r\n" +
		"From: " + from + "\r\n" +
		"Reply-To: " + clean.Replace(msg.FromEmail) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

var _ Sender = (*SMTP)(nil)
