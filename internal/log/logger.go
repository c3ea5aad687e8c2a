// Package log wires process logging: a slog wrapper that stamps every
// record with its component, and the shared field-name vocabulary.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Logger stamps a component attribute onto records logged through it. The
// embedded slog.Logger stays available for code that passes loggers on.
type Logger struct {
	*slog.Logger
	component string
}

// Config selects the level, the component stamped on records, and
// optionally a prebuilt handler.
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

// New builds a Logger writing text records to stdout unless cfg.Handler
// overrides the destination.
func New(cfg Config) *Logger {
	handler := cfg.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level})
	}
	return &Logger{Logger: slog.New(handler), component: cfg.Component}
}

// ParseLevel maps a configuration string to a slog level. Unknown values
// fall back to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a logger stamping the given component instead.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger, component: component}
}

// Info logs at info level with the component stamped first.
func (l *Logger) Info(msg string, args ...any) {
	l.Logger.Info(msg, l.stamp(args)...)
}

// Warn logs at warn level with the component stamped first.
func (l *Logger) Warn(msg string, args ...any) {
	l.Logger.Warn(msg, l.stamp(args)...)
}

// Error logs at error level with the component stamped first.
func (l *Logger) Error(msg string, args ...any) {
	l.Logger.Error(msg, l.stamp(args)...)
}

func (l *Logger) stamp(args []any) []any {
	return append([]any{FieldComponent, l.component}, args...)
}

// SetDefault installs the wrapped slog.Logger as the process default used
// by package-level slog calls.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
