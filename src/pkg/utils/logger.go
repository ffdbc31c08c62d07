package utils

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// ParseLevel maps a level name to a slog level; unknown names mean info
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
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

// NewLogger creates a logger writing to stdout. format is "text", "json" or "auto";
// auto picks text on a terminal and JSON otherwise. Changing level later changes
// what the logger emits.
func NewLogger(level *slog.LevelVar, format string) *slog.Logger {
	if format == "auto" || format == "" {
		format = "json"
		if term.IsTerminal(int(os.Stdout.Fd())) {
			format = "text"
		}
	}
	return NewLoggerTo(os.Stdout, level, format)
}

// NewLoggerTo creates a logger writing to w in the given format
func NewLoggerTo(w io.Writer, level *slog.LevelVar, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
