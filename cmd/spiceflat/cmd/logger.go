package cmd

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger builds the logger that the commands put on their context.
// Levels are the slog names ("debug", "info", "warn", "error", in any case);
// anything else falls back to warn.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(formatStr, "json") {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
