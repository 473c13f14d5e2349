// Package logging configures structured logging for homebase.
//
// Two output formats are supported:
//
//	text: colored, human readable lines via tint (local development)
//	json: one JSON object per line on stdout (production, log shippers)
//
// Usage:
//
//	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup builds a logger for the given level and format names, installs it as
// the slog default and returns it. Unknown values fall back to info/text.
func Setup(level, format string) *slog.Logger {
	var w io.Writer = os.Stderr
	if strings.EqualFold(format, "json") {
		w = os.Stdout
	}
	logger := New(w, ParseLevel(level), format)
	slog.SetDefault(logger)
	return logger
}

// New returns a logger writing to w.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level == slog.LevelDebug,
	}))
}

// ParseLevel maps debug, warn and error to their slog levels; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
