// Package logger provides leveled diagnostic logging for sitectl.
//
// Diagnostics go to stderr through a log/slog text handler, separate from
// the user-facing output written by the output package to stdout. By
// default only warnings and errors are shown; Init(true) (the --verbose
// flag) enables debug and info.
//
//	logger.Debug("staging %s", name)
//	logger.InfoFields("deployment committed", map[string]interface{}{
//	    "id":     id,
//	    "server": "nginx",
//	})
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
)

// Level represents a logging severity level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
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

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

var (
	mu     sync.Mutex
	level  = LevelWarn
	lvlVar = func() *slog.LevelVar {
		v := new(slog.LevelVar)
		v.Set(slog.LevelWarn)
		return v
	}()
	std = newSlog(os.Stderr)
)

func newSlog(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvlVar}))
}

// Init initializes the global logger with the specified verbosity.
func Init(verbose bool) {
	if verbose {
		SetLevel(LevelDebug)
	} else {
		SetLevel(LevelWarn)
	}
}

// SetLevel sets the minimum log level for the global logger.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
	lvlVar.Set(l.slogLevel())
}

// GetLevel returns the current log level.
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return level
}

// SetOutput sets the output destination for the global logger.
// A nil writer restores os.Stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	mu.Lock()
	defer mu.Unlock()
	std = newSlog(w)
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return std
}

func logf(l Level, format string, args ...interface{}) {
	lg := current()
	if !lg.Enabled(context.Background(), l.slogLevel()) {
		return
	}
	lg.Log(context.Background(), l.slogLevel(), fmt.Sprintf(format, args...))
}

func logFields(l Level, msg string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	current().LogAttrs(context.Background(), l.slogLevel(), msg, attrs...)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) { logf(LevelDebug, format, args...) }

// Info logs an informational message.
func Info(format string, args ...interface{}) { logf(LevelInfo, format, args...) }

// Warn logs a warning message.
func Warn(format string, args ...interface{}) { logf(LevelWarn, format, args...) }

// Error logs an error message.
func Error(format string, args ...interface{}) { logf(LevelError, format, args...) }

// DebugFields logs a debug message with structured fields.
func DebugFields(msg string, fields map[string]interface{}) { logFields(LevelDebug, msg, fields) }

// InfoFields logs an informational message with structured fields.
func InfoFields(msg string, fields map[string]interface{}) { logFields(LevelInfo, msg, fields) }

// WarnFields logs a warning message with structured fields.
func WarnFields(msg string, fields map[string]interface{}) { logFields(LevelWarn, msg, fields) }

// ErrorFields logs an error message with structured fields.
func ErrorFields(msg string, fields map[string]interface{}) { logFields(LevelError, msg, fields) }

// LogError logs an error with additional context message.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	logf(LevelError, "%s: %v", msg, err)
}
