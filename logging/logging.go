// Package logging builds the zerolog loggers used by the service and CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
)

// Config selects level, encoding and destination.
type Config struct {
	Level   string    // "debug", "info", "warn", "error" (default "info")
	JSON    bool      // JSON lines instead of the console writer
	File    string    // optional rotating log file, written in addition to Output
	Output  io.Writer // defaults to os.Stderr
	Service string
}

// New returns a logger for cfg. An unknown level is an error.
func New(cfg Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if cfg.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}

	service := cfg.Service
	if service == "" {
		service = "lumen"
	}
	return zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", service).
		Logger(), nil
}

// WithComponent tags every entry with a component name.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}
