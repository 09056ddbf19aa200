package config

import (
	"errors"
	"os"
	"strconv"
)

// Settings holds everything read from the environment at startup. It is
// constructed once in main and handed to the components that need it; nothing
// else in the codebase reads os.Getenv.
type Settings struct {
	Port        string
	DatabaseURL string

	JWTSecret      string
	JWTExpiryHours int

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPBackup string
	FromEmail  string

	PublicBaseURL string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
}

func Load() (*Settings, error) {
	s := &Settings{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DB_URL"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpiryHours: getenvInt("JWT_EXPIRY_HOURS", 24*7),

		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   getenvInt("SMTP_PORT", 465),
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		SMTPBackup: os.Getenv("SMTP_BACKUP"),
		FromEmail:  getenv("FROM_EMAIL", "billing@zuperhandy.com"),

		PublicBaseURL: getenv("PUBLIC_FRONTEND_URL", "https://invoice.zuperhandy.com"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_FROM"),
	}

	if s.DatabaseURL == "" {
		return nil, errors.New("DB_URL not set")
	}
	if s.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}

	return s, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
