package applog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// LevelTrace sits below slog.LevelDebug.
const LevelTrace = slog.Level(-8)

// DefaultLogger wraps slog.logger and implements AppLogger.
type DefaultLogger struct {
	logger *slog.Logger
}

var _ AppLogger = (*DefaultLogger)(nil)

// NewAppDefaultLogger creates a DefaultLogger writing text records to stdout
// at the level configured under "log.level".
func NewAppDefaultLogger() *DefaultLogger {
	return NewLogger(os.Stdout, viper.GetString("log.level"))
}

// NewLogger creates a DefaultLogger writing to w at the given level name.
func NewLogger(w io.Writer, level string) *DefaultLogger {
	return &DefaultLogger{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(level), AddSource: false})),
	}
}

func (l *DefaultLogger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args)
}

func (l *DefaultLogger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args)
}

func (l *DefaultLogger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args)
}

func (l *DefaultLogger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args)
}

func (l *DefaultLogger) Trace(msg string, args ...any) {
	l.log(LevelTrace, msg, args)
}

func (l *DefaultLogger) Fatal(msg string, args ...any) {
	l.log(slog.LevelError, msg, args)
	os.Exit(1)
}

func (l *DefaultLogger) log(level slog.Level, msg string, args []any) {
	if !l.logger.Enabled(context.Background(), level) {
		return
	}
	if src := callerSource(2); src != "" {
		args = append([]any{"source", src}, args...)
	}
	l.logger.Log(context.Background(), level, msg, args...)
}

func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func parseLogLevel(s string) slog.Level {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}
