package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hongminglow/interview-be/internal/mail"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string
	JWTTTL      time.Duration
	CORSOrigins []string

	SMTP mail.SMTPConfig

	DefaultAdminEmail    string
	DefaultAdminPassword string

	OTPTTL    time.Duration
	OTPLength int

	RedisURL         string
	OTPMaxRequests   int
	OTPRequestWindow time.Duration
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "interview-backend"),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "http://localhost:5173,http://127.0.0.1:5173")),
		SMTP: mail.SMTPConfig{
			Host:     fallback(os.Getenv("SMTP_HOST"), "smtp.gmail.com"),
			Port:     positiveInt(os.Getenv("SMTP_PORT"), 587),
			Username: strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     fallback(os.Getenv("EMAIL_FROM"), "noreply@example.com"),
		},
		DefaultAdminEmail:    strings.ToLower(strings.TrimSpace(os.Getenv("DEFAULT_ADMIN_EMAIL"))),
		DefaultAdminPassword: os.Getenv("DEFAULT_ADMIN_PASSWORD"),
		OTPTTL:               duration("OTP_TTL", 5*time.Minute),
		OTPLength:            positiveInt(os.Getenv("OTP_LENGTH"), 6),
		RedisURL:             strings.TrimSpace(os.Getenv("REDIS_URL")),
		OTPMaxRequests:       positiveInt(os.Getenv("OTP_MAX_REQUESTS"), 5),
		OTPRequestWindow:     duration("OTP_REQUEST_WINDOW", 15*time.Minute),
	}

	cfg.JWTTTL = time.Duration(positiveInt(os.Getenv("JWT_TTL_MINUTES"), 30)) * time.Minute

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if (cfg.DefaultAdminEmail == "") != (cfg.DefaultAdminPassword == "") {
		return Config{}, errors.New("DEFAULT_ADMIN_EMAIL and DEFAULT_ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return n
	}
	return def
}

// duration accepts a Go duration in key or a whole number of seconds in key_SECONDS.
func duration(key string, def time.Duration) time.Duration {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	if val := strings.TrimSpace(os.Getenv(key + "_SECONDS")); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
