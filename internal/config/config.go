package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Config holds every environment-level setting the service consumes.
// It is built once at startup and passed down explicitly; nothing
// reads the environment after Load returns.
type Config struct {
	Port        string
	DatabaseURL string

	// Base URL embedded in verification links, e.g. https://example.com
	SiteURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	// Set to enable the Resend HTTP API instead of SMTP.
	ResendAPIKey string

	// Comma-separated CORS allow-list.
	AllowedOrigins []string

	// Recipient of the /api/test-email probe.
	TestEmailTo string

	UseEmailReputation bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               getenv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SiteURL:            getenv("SITE_URL", "http://localhost:8080"),
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPPort:           587,
		SMTPUsername:       os.Getenv("SMTP_USERNAME"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		MailFrom:           getenv("MAIL_FROM", "MeetingTranslator <no-reply@localhost>"),
		ResendAPIKey:       os.Getenv("RESEND_API_KEY"),
		TestEmailTo:        os.Getenv("TEST_EMAIL_TO"),
		UseEmailReputation: os.Getenv("USE_EMAIL_REPUTATION") == "true",
	}

	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("SMTP_PORT must be a number")
		}
		cfg.SMTPPort = port
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
