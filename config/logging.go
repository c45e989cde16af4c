package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoggingConfig controls the application logger.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
}

// ParseLogLevel maps debug/info/warn/error to slog levels, defaulting to info.
func ParseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

// NewLogger builds a text or json slog.Logger writing to w (stdout when nil).
func NewLogger(w io.Writer, cfg LoggingConfig) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLogLevel(cfg.Level), AddSource: cfg.AddSource}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
