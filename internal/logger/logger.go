// internal/logger/logger.go

// Package logger builds the process-wide structured logger. Text output for
// local runs, JSON for deployments; the choice comes from server config.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a slog.Logger writing to stdout in the given format
// ("text" or "json") at the given level.
func New(format, level string) *slog.Logger {
	return NewWithWriter(format, level, os.Stdout)
}

// NewWithWriter is New with an explicit output, for tests.
func NewWithWriter(format, level string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("service", "meal-risk"))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
