package shared

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/rlsync/rlsync"
)

type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

func (state StateT) Logger() (*log.Logger, LogAdapter) {
	var logger *log.Logger
	format := state.LogFormat().Value()
	switch format {
	case LogFormatText:
		logger = log.NewWithOptions(os.Stdout, log.Options{Formatter: log.TextFormatter})
	case LogFormatJSON:
		logger = log.NewWithOptions(os.Stdout, log.Options{Formatter: log.JSONFormatter})
	default:
		panic(fmt.Errorf("unknown log format: %s", format))
	}
	return logger, LogAdapter{logger}
}

// LogAdapter bridges the library's Logger interface to charmbracelet/log.
type LogAdapter struct {
	*log.Logger
}

func (l LogAdapter) Log(_ context.Context, level rlsync.LogLevel, msg string, fields ...rlsync.LogField) {
	args := make([]any, 0, 2*len(fields))
	for _, field := range fields {
		args = append(args, field.Key, field.Value)
	}
	switch level {
	case rlsync.LogLevelDebug:
		l.Logger.Debug(msg, args...)
	case rlsync.LogLevelInfo:
		l.Logger.Info(msg, args...)
	case rlsync.LogLevelWarning:
		l.Logger.Warn(msg, args...)
	case rlsync.LogLevelError:
		l.Logger.Error(msg, args...)
	}
}
