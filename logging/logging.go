// Package logging sets up the library-wide slog logger used by every
// layer of the Cortex client.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Config controls the global slog handler. A zero Config logs at Info
// level, text-formatted, to stdout.
type Config struct {
	// Level overrides LOG_LEVEL ("debug", "info", "warn", "error").
	Level string
	// JSON selects slog.NewJSONHandler over the default text handler.
	JSON bool
	// Writer overrides the default os.Stdout destination.
	Writer io.Writer
}

// Init installs the global slog logger. Safe to call once at process
// startup; callers embedding this library in their own process should
// prefer slog.SetDefault themselves and skip this helper.
func Init(cfg Config) {
	level := cfg.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	jsonFormat := cfg.JSON || os.Getenv("LOG_FORMAT") == "json"

	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// NewConnLogger returns a logger tagged with a fresh connection id, used
// to correlate log lines. Package cortex creates one per Client, so the
// id stays the same across that Client's reconnects.
func NewConnLogger() (*slog.Logger, string) {
	connID := uuid.Must(uuid.NewV7()).String()
	return slog.With("connId", connID), connID
}
