// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/kwanghifi and cmd/kwanghifi-worker.
package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kwanghifi/kwanghifi/internal/config"
	"github.com/kwanghifi/kwanghifi/internal/log"
)

// SetupLogger initializes structured logging at the level named by
// KWANGHIFI_LOG_LEVEL, defaulting to info. Returns the configured
// logger and sets it as the process default.
func SetupLogger() *log.Logger {
	logger := log.New(log.Config{
		Level:     parseLevel(os.Getenv("KWANGHIFI_LOG_LEVEL")),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
