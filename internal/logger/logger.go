package logger

import (
	"log/slog"
	"os"
	"strings"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// New creates a preconfigured slog.Logger writing JSON at the given level.
func New(level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(handler)
}

// ParseLevel maps a textual level to slog, falling back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// NewEventLogger returns a zap backed logger for fx container events.
func NewEventLogger() fxevent.Logger {
	zl, err := zap.NewProduction()
	if err != nil {
		return fxevent.NopLogger
	}
	return &fxevent.ZapLogger{Logger: zl}
}
