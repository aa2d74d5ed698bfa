package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const DefaultEmailJSURL = "https://api.emailjs.com"

type EmailJSConfig struct {
	BaseURL    string
	ServiceID  string
	TemplateID string
	PublicKey  string
	// PrivateKey is the optional access token required when the account
	// enforces strict mode for API calls.
	PrivateKey string
}

// APIError is returned when the service answers with a non-2xx status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("emailjs: status %d: %s", e.Status, e.Body)
}

type EmailJS struct {
	cfg  EmailJSConfig
	HTTP *http.Client
}

func NewEmailJS(cfg EmailJSConfig) (*EmailJS, error) {
	if cfg.ServiceID == "" || cfg.TemplateID == "" || cfg.PublicKey == "" {
		return nil, fmt.Errorf("%w: emailjs service id, template id and public key are required", ErrNotConfigured)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultEmailJSURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &EmailJS{cfg: cfg, HTTP: http.DefaultClient}, nil
}

type emailJSRequest struct {
	ServiceID      string  `json:"service_id"`
	TemplateID     string  `json:"template_id"`
	UserID         string  `json:"user_id"`
	AccessToken    string  `json:"accessToken,omitempty"`
	TemplateParams Message `json:"template_params"`
}

func (c *EmailJS) Send(ctx context.Context, msg Message) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(emailJSRequest{
		ServiceID:      c.cfg.ServiceID,
		TemplateID:     c.cfg.TemplateID,
		UserID:         c.cfg.PublicKey,
		AccessToken:    c.cfg.PrivateKey,
		TemplateParams: msg,
	}); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/v1.0/email/send", buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}

var _ Sender = (*EmailJS)(nil)
