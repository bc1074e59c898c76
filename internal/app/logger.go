package app

import (
	"fmt"
	"io"
	"os"
)

// Logger interface shared by the layers below the CLI
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// stderrLogger is used until the CLI installs its own; it keeps warnings and errors
type stderrLogger struct {
	output io.Writer
}

func (l *stderrLogger) Debug(string, ...interface{}) {}

func (l *stderrLogger) Info(string, ...interface{}) {}

func (l *stderrLogger) Warn(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "WARN: "+format+"\n", args...)
}

func (l *stderrLogger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "ERROR: "+format+"\n", args...)
}

var globalLogger Logger = &stderrLogger{output: os.Stderr}

// SetLogger replaces the global logger; nil is ignored
func SetLogger(logger Logger) {
	if logger != nil {
		globalLogger = logger
	}
}

// GetLogger returns the current logger
func GetLogger() Logger {
	return globalLogger
}
