// Package logger builds the process [slog.Logger] from configuration.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-ports/addressbook/internal/config"
)

func level(option string) (slog.Leveler, bool) {
	switch strings.ToLower(option) {
	case "":
		return nil, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return nil, false
	}
}

// New returns a logger for options. Invalid values fall back to their
// defaults and the fallback is logged as a warning. stderr receives output
// unless a file is configured, so logs never mix with command output.
func New(options *config.LogConfig) *slog.Logger {
	return newWithStderr(options, os.Stderr)
}

func newWithStderr(options *config.LogConfig, stderr io.Writer) *slog.Logger {
	level, ok := level(options.Level)
	if !ok {
		options.Level = ""
		logger := newWithStderr(options, stderr)
		logger.Warn("could not parse logger level")
		return logger
	}
	opts := slog.HandlerOptions{Level: level}

	var output io.Writer
	switch options.File {
	case "", "-":
		output = stderr
	case os.DevNull:
		return slog.New(slog.DiscardHandler)
	default:
		var err error
		output, err = os.OpenFile(options.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			options.File = ""
			logger := newWithStderr(options, stderr)
			logger.Warn("could not open logger file", "err", err)
			return logger
		}
	}

	switch strings.ToLower(options.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(output, &opts))
	case "text", "":
		return slog.New(slog.NewTextHandler(output, &opts))
	default:
		options.Format = "text"
		logger := newWithStderr(options, stderr)
		logger.Warn("could not parse logger format")
		return logger
	}
}
