// Package logging builds the structured slog loggers used by the CLI and the
// HTTP server, with optional size-based rotation of log files.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the level, format and destination of the log output.
type Config struct {
	Level      string `json:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `json:"format" mapstructure:"format" validate:"omitempty,oneof=json text"`
	File       string `json:"file" mapstructure:"file"` // empty logs to stderr
	MaxSize    int    `json:"maxSize" mapstructure:"max_size" validate:"gte=0"`       // MB per file
	MaxBackups int    `json:"maxBackups" mapstructure:"max_backups" validate:"gte=0"` // rotated files kept
	MaxAge     int    `json:"maxAge" mapstructure:"max_age" validate:"gte=0"`         // days
	Compress   bool   `json:"compress" mapstructure:"compress"`
}

func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

// Logger wraps a slog.Logger together with the file it writes to, if any.
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// Close releases the log file. It is a no-op for console loggers.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// New creates a logger for the given service. Files are always written as
// JSON; the console honors Format.
func New(cfg Config, service string) *Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			return a
		},
	}

	var (
		handler slog.Handler
		closer  io.Closer
	)
	if cfg.File != "" {
		w := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		handler = slog.NewJSONHandler(w, opts)
		closer = w
	} else {
		handler = consoleHandler(os.Stderr, cfg.Format, opts)
	}

	return &Logger{
		Logger: slog.New(handler).With(slog.String("service", service)),
		closer: closer,
	}
}

// NewWriter creates a logger that writes to w, for tests and embedding.
func NewWriter(w io.Writer, cfg Config, service string) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	return &Logger{Logger: slog.New(consoleHandler(w, cfg.Format, opts)).With(slog.String("service", service))}
}

func consoleHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
