package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the logger for one command. It writes to w (stderr when nil);
// stdout is never used since it carries the scrub pipeline's output.
// Unknown levels fall back to INFO.
func New(level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	var l slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		l = slog.LevelDebug
	case "WARN":
		l = slog.LevelWarn
	case "ERROR":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: l,
	}
	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// WithComponent returns l with the component field set.
func WithComponent(l *slog.Logger, name string) *slog.Logger {
	return l.With(slog.String("component", name))
}

// WithRun returns l with the run_id field set. An empty id leaves l unchanged.
func WithRun(l *slog.Logger, id string) *slog.Logger {
	if id == "" {
		return l
	}
	return l.With(slog.String("run_id", id))
}

// WithHandler returns l with the handler field set.
func WithHandler(l *slog.Logger, name string) *slog.Logger {
	return l.With(slog.String("handler", name))
}
