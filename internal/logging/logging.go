package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds the process logger, installs it as the slog default, and
// returns it. Level accepts debug, info, warn/warning, or error; anything
// else falls back to info. Format "json" emits JSON records for log
// shippers; the default is human-readable text for running dekita on a
// home server.
func Setup(level, format string) *slog.Logger {
	handler := newHandler(parseLevel(level), format)
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
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

func newHandler(lvl slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.NewTextHandler(os.Stderr, opts)
}
