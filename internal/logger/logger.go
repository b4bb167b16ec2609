// Package logger provides structured logging capabilities for the application.
// It supports multiple log levels (Debug, Info, Warn, Error) and structured fields,
// written through zerolog as console text or JSON lines, optionally teed to a file.
//
// Example usage:
//
//	log := logger.New(logger.LevelInfo)
//	log.Info("START fetching streaming data", map[string]interface{}{
//	    "streaming_id": "346883570",
//	})
//
// Or use the global logger:
//
//	logger.Info("Application started", nil)
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Level represents the severity level of a log message
type Level int

const (
	// LevelDebug is for detailed debugging information
	LevelDebug Level = iota
	// LevelInfo is for general informational messages
	LevelInfo
	// LevelWarn is for warning messages
	LevelWarn
	// LevelError is for error messages
	LevelError
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel converts a level name (debug, info, warn, error) into a Level
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// Logger provides structured logging capabilities
type Logger struct {
	level  Level
	logger zerolog.Logger
}

// Options configures where and how log lines are written
type Options struct {
	Level  Level
	Format string    // "console" or "json"
	Output io.Writer // defaults to os.Stdout
	File   string    // optional path; lines are appended as JSON
}

// New creates a new Logger instance writing console text to stdout
func New(level Level) *Logger {
	return NewWithWriter(level, os.Stdout, "console")
}

// NewWithWriter creates a Logger writing to w in the given format
func NewWithWriter(level Level, w io.Writer, format string) *Logger {
	return &Logger{
		level:  level,
		logger: zerolog.New(formatWriter(w, format)).Level(level.zerolog()).With().Timestamp().Logger(),
	}
}

// Open builds a Logger from options. The returned closer releases the log
// file and is safe to call when no file was configured.
func Open(opts Options) (*Logger, io.Closer, error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	w := formatWriter(out, opts.Format)
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = zerolog.MultiLevelWriter(w, f)
		closer = f
	}

	l := &Logger{
		level:  opts.Level,
		logger: zerolog.New(w).Level(opts.Level.zerolog()).With().Timestamp().Logger(),
	}
	return l, closer, nil
}

func formatWriter(w io.Writer, format string) io.Writer {
	if format == "json" {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
}

// Default returns a default logger instance with Info level
func Default() *Logger {
	return New(LevelInfo)
}

// log writes a log message with the specified level
func (l *Logger) log(level Level, msg string, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	event := l.logger.WithLevel(level.zerolog())
	if event == nil {
		return
	}

	// Sorted so console output is stable
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := fields[k].(type) {
		case error:
			event = event.AnErr(k, v)
		case string:
			event = event.Str(k, v)
		case time.Duration:
			event = event.Str(k, v.String())
		default:
			event = event.Interface(k, v)
		}
	}

	event.Msg(msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.log(LevelDebug, msg, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.log(LevelInfo, msg, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.log(LevelWarn, msg, fields)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.log(LevelError, msg, fields)
}

// WithField returns a logger with a single field attached to every line
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a logger with multiple fields attached to every line
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{
		level:  l.level,
		logger: l.logger.With().Fields(fields).Logger(),
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Global logger instance
var globalLogger = Default()

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	globalLogger = logger
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	return globalLogger
}

// Debug logs a debug message using the global logger
func Debug(msg string, fields map[string]interface{}) {
	globalLogger.Debug(msg, fields)
}

// Info logs an info message using the global logger
func Info(msg string, fields map[string]interface{}) {
	globalLogger.Info(msg, fields)
}

// Warn logs a warning message using the global logger
func Warn(msg string, fields map[string]interface{}) {
	globalLogger.Warn(msg, fields)
}

// Error logs an error message using the global logger
func Error(msg string, fields map[string]interface{}) {
	globalLogger.Error(msg, fields)
}
