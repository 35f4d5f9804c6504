// Package logging builds the process logger used across the engine.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a structured logger for the named service. The level is read
// from LOG_LEVEL (default info); LOG_FORMAT=console switches from JSON to
// human-readable output.
func New(service string) zerolog.Logger {
	level := zerolog.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}

	var logger zerolog.Logger
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "console") {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()
}
