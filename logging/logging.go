// Package logging adapts log/slog to the types.Logger interface used by the
// export components.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/faretracker/fareexport/types"
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Logger implements types.Logger on top of a *slog.Logger.
type Logger struct {
	logger *slog.Logger
}

var _ types.Logger = (*Logger)(nil)

// New creates a Logger writing to w. Level is one of debug, info, warn or
// error and format is text or json. Empty values default to info and text.
func New(w io.Writer, level string, format Format) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler

	switch format {
	case FormatText, "":
		handler = slog.NewTextHandler(w, opts)
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return &Logger{logger: slog.New(handler)}, nil
}

// Wrap adapts an existing *slog.Logger.
func Wrap(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// Slog returns the underlying *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

//nolint:ireturn // Must return interface to implement types.Logger
func (l *Logger) WithField(key string, value any) types.Logger {
	return &Logger{logger: l.logger.With(key, value)}
}

//nolint:ireturn // Must return interface to implement types.Logger
func (l *Logger) WithFields(fields map[string]any) types.Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}

	return &Logger{logger: l.logger.With(args...)}
}

func (l *Logger) Debug(msg string) { l.logger.Debug(msg) }

func (l *Logger) Debugf(format string, args ...any) { l.logger.Debug(fmt.Sprintf(format, args...)) }

func (l *Logger) Info(msg string) { l.logger.Info(msg) }

func (l *Logger) Infof(format string, args ...any) { l.logger.Info(fmt.Sprintf(format, args...)) }

func (l *Logger) Warn(msg string) { l.logger.Warn(msg) }

func (l *Logger) Warnf(format string, args ...any) { l.logger.Warn(fmt.Sprintf(format, args...)) }

func (l *Logger) Error(msg string) { l.logger.Error(msg) }

func (l *Logger) Errorf(format string, args ...any) { l.logger.Error(fmt.Sprintf(format, args...)) }
