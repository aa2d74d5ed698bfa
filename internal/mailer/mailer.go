// Package mailer delivers contact-form messages through an external email
// service. Callers treat a Sender as an opaque capability: one call, one
// outcome, no retries.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotConfigured = errors.New("mailer: not configured")

// Message is the payload handed to the delivery service. Field names follow
// the template parameters of the contact template.
type Message struct {
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	Message   string `json:"message"`
	ToEmail   string `json:"to_email"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

const (
	BackendEmailJS = "emailjs"
	BackendSMTP    = "smtp"
)

// Config selects and configures one backend. It is built once at process
// start and not modified afterwards.
type Config struct {
	Backend string

	EmailJS EmailJSConfig
	SMTP    SMTPConfig
}

// New builds the Sender named by cfg.Backend.
func New(cfg Config) (Sender, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendEmailJS:
		return NewEmailJS(cfg.EmailJS)
	case BackendSMTP:
		return NewSMTP(cfg.SMTP)
	default:
		return nil, fmt.Errorf("mailer: unknown backend %q", cfg.Backend)
	}
}
