// Package config reads process configuration once at start-up from the
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nosuji/portfolio/internal/mailer"
)

type Config struct {
	Port        string
	GinMode     string
	DBPath      string
	ContentFile string
	StaticDir   string

	Mail    mailer.Config
	ToEmail string

	AdminUsername string
	AdminPassword string

	TypewriterInterval time.Duration
	TypewriterPause    time.Duration
	ContactResetAfter  time.Duration
	SessionIdle        time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_PATH", "portfolio.db")
	v.SetDefault("STATIC_DIR", "./static")
	v.SetDefault("MAIL_BACKEND", mailer.BackendEmailJS)
	v.SetDefault("EMAILJS_URL", mailer.DefaultEmailJSURL)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("TYPEWRITER_INTERVAL", "100ms")
	v.SetDefault("TYPEWRITER_PAUSE", "2s")
	v.SetDefault("CONTACT_RESET_AFTER", "5s")
	v.SetDefault("SESSION_IDLE", "30m")
}

// Load reads envFile (if it exists) into the environment and builds the
// config. A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load %s: %w", envFile, err)
			}
			log.Printf("warning: %s not found, using environment only", envFile)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds the config from v, filling unset keys with defaults.
func FromViper(v *viper.Viper) (*Config, error) {
	defaults(v)
	c := &Config{
		Port:        v.GetString("PORT"),
		GinMode:     v.GetString("GIN_MODE"),
		DBPath:      v.GetString("DB_PATH"),
		ContentFile: v.GetString("CONTENT_FILE"),
		StaticDir:   v.GetString("STATIC_DIR"),
		ToEmail:     v.GetString("CONTACT_TO_EMAIL"),
		Mail: mailer.Config{
			Backend: strings.ToLower(v.GetString("MAIL_BACKEND")),
			EmailJS: mailer.EmailJSConfig{
				BaseURL:    v.GetString("EMAILJS_URL"),
				ServiceID:  v.GetString("EMAILJS_SERVICE_ID"),
				TemplateID: v.GetString("EMAILJS_TEMPLATE_ID"),
				PublicKey:  v.GetString("EMAILJS_PUBLIC_KEY"),
				PrivateKey: v.GetString("EMAILJS_PRIVATE_KEY"),
			},
			SMTP: mailer.SMTPConfig{
				Host: v.GetString("SMTP_HOST"),
				Port: v.GetString("SMTP_PORT"),
				User: v.GetString("SMTP_USER"),
				Pass: v.GetString("SMTP_PASS"),
			},
		},
		AdminUsername: v.GetString("ADMIN_USERNAME"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"TYPEWRITER_INTERVAL", &c.TypewriterInterval},
		{"TYPEWRITER_PAUSE", &c.TypewriterPause},
		{"CONTACT_RESET_AFTER", &c.ContactResetAfter},
		{"SESSION_IDLE", &c.SessionIdle},
	}
	for _, d := range durations {
		val, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid value for '%s': %w", d.key, err)
		}
		*d.dst = val
	}
	if c.TypewriterInterval <= 0 {
		return nil, errors.New("'TYPEWRITER_INTERVAL' must be positive")
	}
	return c, nil
}
