package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// Logger writes leveled diagnostics to stderr. Session progress goes through
// the presenters; this carries only what the layers below want to report.
type Logger struct {
	mu       sync.Mutex
	minLevel LogLevel
	output   io.Writer
	now      func() time.Time
}

// NewLogger creates a new logger with the specified minimum level
func NewLogger(minLevel LogLevel, output io.Writer) *Logger {
	return &Logger{
		minLevel: minLevel,
		output:   output,
		now:      time.Now,
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LogLevelDebug, "DEBUG", format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LogLevelInfo, "INFO", format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LogLevelWarn, "WARN", format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LogLevelError, "ERROR", format, args...)
}

func (l *Logger) log(level LogLevel, prefix string, format string, args ...interface{}) {
	if level < l.minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)

	// Concurrent writers (sandbox pumps, observers) must not interleave lines
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.output, "%s %s: %s\n", l.now().Format("15:04:05.000"), prefix, msg)
}

// LogLevelFromString converts a string to LogLevel, defaulting to warn
func LogLevelFromString(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "error":
		return LogLevelError
	default:
		return LogLevelWarn
	}
}
