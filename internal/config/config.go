package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort            int
	DatabasePath          string
	JWTSecret             string
	ActivityRetentionDays int
}

// ErrMissingJWTSecret is returned when no signing secret is configured.
// The server must not start without one.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

// Load loads configuration from environment variables or sets defaults.
// A .env file is honored outside production.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		godotenv.Load()
	}

	portStr := getEnv("PORT", "5000")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}

	retentionStr := getEnv("ACTIVITY_RETENTION_DAYS", "30")
	retention, err := strconv.Atoi(retentionStr)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:            port,
		DatabasePath:          getEnv("DATABASE_PATH", "./wavefeed.db"),
		JWTSecret:             secret,
		ActivityRetentionDays: retention,
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
