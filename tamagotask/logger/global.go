package logger

import (
	"log/slog"
	"time"
)

// LogActivity logs a completed (or rejected) game activity.
func LogActivity(kind string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "game"),
		slog.String("activity", kind),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Warn("Activity rejected", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Info("Activity completed", attrs...)
	}
}

// LogSync logs remote synchronization attempts.
func LogSync(op string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "sync"),
		slog.String("operation", op),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Sync failed", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Info("Sync completed", attrs...)
	}
}

// LogSystem logs system events
func LogSystem(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}
