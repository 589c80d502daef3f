// Package logger configures the process-wide slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// levelVar holds the current log level; defaults to Info.
var levelVar slog.LevelVar

func init() {
	Setup(os.Stdout, "text")
}

// Setup installs the default logger writing to w. format is "text" or
// "json"; anything else falls back to text.
func Setup(w io.Writer, format string) {
	opts := &slog.HandlerOptions{Level: &levelVar}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps a level name onto a slog level.
// Supported: "error", "warn", "info", "debug".
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// Configure sets the global logger level from a string value. Unknown
// levels leave Info in place and return an error.
func Configure(level string) error {
	lvl, err := ParseLevel(level)
	levelVar.Set(lvl)
	return err
}

// Level returns the current level.
func Level() slog.Level {
	return levelVar.Level()
}
