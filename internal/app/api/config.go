package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	Environment       string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	SessionSecret     string
	SessionTTL        time.Duration
	SecureCookies     bool
	StorageBaseURL    string
	StoragePublicURL  string
}

// LoadConfig reads a .env file if present, then environment variables, and
// validates basic constraints.
func LoadConfig() (Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		Environment:       envDefault("ENVIRONMENT", "local"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		SessionSecret:     strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		SessionTTL:        24 * time.Hour,
		SecureCookies:     isTruthy(os.Getenv("SECURE_COOKIES")),
		StorageBaseURL:    strings.TrimSpace(os.Getenv("STORAGE_BASE_URL")),
		StoragePublicURL:  strings.TrimSpace(os.Getenv("STORAGE_PUBLIC_URL")),
	}
	if cfg.SessionSecret == "" {
		if cfg.Environment != "local" {
			return Config{}, errors.New("SESSION_SECRET is required outside local development")
		}
		cfg.SessionSecret = "local-dev-session-secret"
	}
	if raw := strings.TrimSpace(os.Getenv("SESSION_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("SESSION_TTL_HOURS must be a positive integer")
		}
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
