// Package logger configures structured JSON logging.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a level name such as "debug" or "WARN" to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", name, err)
	}
	return level, nil
}

// Setup returns a JSON slog.Logger writing to w.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler).With("service", "saju-auth")
}

// SetupDefault installs a JSON logger as the global logger.
// A nil writer means os.Stdout.
func SetupDefault(w io.Writer, level slog.Level) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(Setup(w, level))
}
