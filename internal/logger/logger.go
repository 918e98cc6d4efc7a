// Package logger is a thin process-wide wrapper over log/slog: one shared
// handler, a mutable level, and printf-style helpers.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	level slog.LevelVar
	mu    sync.RWMutex
	base  *slog.Logger
)

func init() {
	level.Set(slog.LevelInfo)
	base = build(os.Stdout)
}

func build(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &level}))
}

// SetOutput replaces the destination of all subsequent log lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	base = build(w)
	mu.Unlock()
}

// SetLevel accepts debug/info/warn/error; anything else falls back to info.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func Debugf(format string, args ...any) { current().Debug(fmt.Sprintf(format, args...)) }
func Infof(format string, args ...any)  { current().Info(fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { current().Warn(fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { current().Error(fmt.Sprintf(format, args...)) }
