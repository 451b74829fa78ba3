package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabasePath string
	Port         string
	BaseURL      string
	SecretKey    string
	TokenTTL     time.Duration
	Environment  string

	AllowedOrigins   string
	GoogleMapsAPIKey string
	LogLevel         string

	MailgunAPIKey      string
	MailgunDomain      string
	MailgunSenderEmail string
	MailgunSenderName  string
}

func Load() *Config {
	cfg := &Config{
		DatabasePath: getEnv("DATABASE_PATH", "tripmate.db"),
		Port:         getEnv("PORT", "8080"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:8080"),
		SecretKey:    getEnv("SECRET_KEY", "your-secret-key-change-this-in-production"),
		TokenTTL:     time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		Environment:  getEnv("ENVIRONMENT", "production"),

		AllowedOrigins:   getEnv("ALLOWED_ORIGINS", "http://localhost:8080"),
		GoogleMapsAPIKey: getEnv("GOOGLEMAPS_API_KEY", ""),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),

		MailgunAPIKey:      getEnv("MAILGUN_API_KEY", ""),
		MailgunDomain:      getEnv("MAILGUN_DOMAIN", ""),
		MailgunSenderEmail: getEnv("MAILGUN_SENDER_EMAIL", "no-reply@tripmate.app"),
		MailgunSenderName:  getEnv("MAILGUN_SENDER_NAME", "Tripmate"),
	}
	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
