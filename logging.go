package rlsync

import (
	"context"
)

// LogLevel represents the severity of a log message.
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// LogField holds a key/value pair for structured logging.
type LogField struct {
	Key   string
	Value any
}

// Logger is a generic logging interface so that the pipeline can be used
// with any structured logging solution; adapters are easy to write. The
// CLI bridges this to charmbracelet/log, and [TestLogger] bridges it to a
// test's output. A nil Logger is valid and silences all messages.
type Logger interface {
	Log(context.Context, LogLevel, string, ...LogField)
}

// Helper is an optional interface that a logger can implement so that
// stacktraces point at the caller rather than at this package's logging
// helpers. [TestLogger] implements it through its embedded [testing.T].
// Implementing it is never required.
type Helper interface {
	Helper()
}

func logAt(ctx context.Context, logger Logger, level LogLevel, msg string, fields ...LogField) {
	if logger == nil {
		return
	}
	if hl, ok := logger.(Helper); ok {
		hl.Helper()
	}
	logger.Log(ctx, level, msg, fields...)
}

func logDebug(ctx context.Context, logger Logger, msg string, fields ...LogField) {
	if hl, ok := logger.(Helper); ok {
		hl.Helper()
	}
	logAt(ctx, logger, LogLevelDebug, msg, fields...)
}

func logInfo(ctx context.Context, logger Logger, msg string, fields ...LogField) {
	if hl, ok := logger.(Helper); ok {
		hl.Helper()
	}
	logAt(ctx, logger, LogLevelInfo, msg, fields...)
}

func logWarn(ctx context.Context, logger Logger, msg string, fields ...LogField) {
	if hl, ok := logger.(Helper); ok {
		hl.Helper()
	}
	logAt(ctx, logger, LogLevelWarning, msg, fields...)
}

func logError(ctx context.Context, logger Logger, err error, msg string, fields ...LogField) {
	if hl, ok := logger.(Helper); ok {
		hl.Helper()
	}
	fields = append(fields, LogField{Key: "error", Value: err})
	logAt(ctx, logger, LogLevelError, msg, fields...)
}
