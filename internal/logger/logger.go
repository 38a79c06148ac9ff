package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the process-wide JSON logger. Level is one of
// debug/info/warn/error; anything else falls back to info.
func Init(level string) {
	lvl := slog.LevelInfo

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	})
	slog.SetDefault(slog.New(h))
}

func Info(msg string, fields map[string]any) {
	slog.Info(msg, args(fields)...)
}

func Warn(msg string, fields map[string]any) {
	slog.Warn(msg, args(fields)...)
}

func Error(msg string, fields map[string]any) {
	slog.Error(msg, args(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	slog.Error(msg, args(fields)...)
	os.Exit(1)
}

func args(fields map[string]any) []any {
	out := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}
