// Package logger wraps charmbracelet/log with the prefixed-logger
// conventions used across the engine, server, and CLI packages.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// Default creates a prefixed charm logger at the current global level,
// without timestamps or caller reporting.
func Default(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stdout, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// WithLevel creates a prefixed charm logger pinned to an explicit level,
// for components (like the IPC server) that shouldn't drift with a global
// level change mid-session.
func WithLevel(prefix string, level log.Level) *log.Logger {
	return log.NewWithOptions(os.Stdout, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           level,
	})
}
