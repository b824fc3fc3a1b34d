package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port   string
	AppURL string
	Secret string

	AccessTokenLifespan        time.Duration
	RefreshTokenLifespan       time.Duration
	RegisterTokenLifespan      time.Duration
	PasswordResetTokenLifespan time.Duration

	DBHost    string
	DBPort    string
	CacheHost string
	CachePort string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	JaegerAddress string
}

func NewConfig() *Config {
	return &Config{
		Port:   envOrDefault("PORT", "8000"),
		AppURL: envOrDefault("APP_URL", "http://localhost:8000"),
		Secret: os.Getenv("APP_KEY"),

		AccessTokenLifespan:        envSecondsOrDefault("ACCESS_TOKEN_LIFESPAN", 3600),
		RefreshTokenLifespan:       envSecondsOrDefault("REFRESH_TOKEN_LIFESPAN", 2592000),
		RegisterTokenLifespan:      envSecondsOrDefault("REGISTER_TOKEN_LIFESPAN", 2592000),
		PasswordResetTokenLifespan: envSecondsOrDefault("PASSWORD_RESET_TOKEN_LIFESPAN", 3600),

		DBHost:    envOrDefault("DB_HOST", "localhost"),
		DBPort:    envOrDefault("DB_PORT", "27017"),
		CacheHost: envOrDefault("CACHE_HOST", "localhost"),
		CachePort: envOrDefault("CACHE_PORT", "6379"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		JaegerAddress: os.Getenv("JAEGER_ADDRESS"),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envSecondsOrDefault(key string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(key, fallback)) * time.Second
}
