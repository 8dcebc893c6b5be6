package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	Env           string
	SessionMaxAge time.Duration
}

// LoadConfig reads the optional .env file and returns a Config struct.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on system env variables")
	}

	maxAge := time.Hour
	if raw := getEnv("SESSION_MAX_AGE", ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			maxAge = d
		} else {
			slog.Warn("Invalid SESSION_MAX_AGE, keeping default", "value", raw)
		}
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Env:           getEnv("ENV", "development"),
		SessionMaxAge: maxAge,
	}
}

// Helper to get env with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
