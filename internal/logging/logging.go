// Package logging builds the file-backed zerolog logger. The terminal UI owns
// stdout and stderr, so every log line goes to a rotating file instead.
package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/unkn0wn-root/restpad/internal/config"
)

// ParseLevel maps a settings value to a zerolog level. Empty means info.
func ParseLevel(raw string) (zerolog.Level, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", raw, err)
	}
	return level, nil
}

// New returns a logger writing to the rotating file described by cfg. The
// returned closer releases the file and must be called on exit.
func New(cfg config.LogSettings) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	path := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("ensure log directory: %w", err)
	}

	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    positiveOr(cfg.MaxSizeMB, 10),
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}

	logger := NewWithWriter(writer, level)
	stdlog.SetOutput(logger)
	stdlog.SetFlags(0)
	return logger, writer, nil
}

// NewWithWriter builds a timestamped JSON logger on w.
func NewWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("app", "restpad").
		Logger()
}

func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
