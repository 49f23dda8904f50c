// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `validate:"required,numeric"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `validate:"dive,url"`

	// MapTilerAPIKey is interpolated into the base style URL. Required.
	MapTilerAPIKey string

	// StyleURL is the base style template; "{key}" is replaced by the API key.
	// Defaults to the MapTiler dataviz-light style.
	StyleURL string `validate:"required,url"`

	// StyleTimeout bounds the base style download. Defaults to 10s.
	StyleTimeout time.Duration `validate:"gt=0"`

	// SeedLinePath optionally points at a YAML line shown at startup in
	// place of the built-in U9.
	SeedLinePath string
}

// DefaultStyleURL is used when MAP_STYLE_URL is unset.
const DefaultStyleURL = "https://api.maptiler.com/maps/dataviz-light/style.json?key={key}"

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory, if present, fills in variables
// that are not already set.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StyleURL:     getEnv("MAP_STYLE_URL", DefaultStyleURL),
		SeedLinePath: os.Getenv("SEED_LINE_PATH"),
	}

	timeout, err := time.ParseDuration(getEnv("MAP_STYLE_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("MAP_STYLE_TIMEOUT: %w", err)
	}
	cfg.StyleTimeout = timeout

	var missing []string

	cfg.MapTilerAPIKey = os.Getenv("MAPTILER_API_KEY")
	if cfg.MapTilerAPIKey == "" {
		missing = append(missing, "MAPTILER_API_KEY")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
