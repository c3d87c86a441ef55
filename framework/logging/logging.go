// Package logging builds the framework's structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a slog.Logger configured for the environment: JSON in
// production, human-readable text elsewhere, debug level when debug is set.
func New(env string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// Discard returns a logger that drops everything — handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
