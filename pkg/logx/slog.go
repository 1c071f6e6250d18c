package logx

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

const (
	FieldError   = "error"
	FieldStack   = "stack"
	FieldTraceID = "trace-id"
)

var Error = tint.Err //nolint:gochecknoglobals

func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewHandler returns a JSON handler for format "json" and a tint text
// handler otherwise.
func NewHandler(w io.Writer, format, level string) slog.Handler {
	lvl := ParseLevel(level)

	if format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.DateTime,
		NoColor:    format == "plain",
	})
}
