// Package logger provides service-prefixed structured logging on top of log/slog
// and helpers for timing repository and handler calls.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// slowCallThreshold is the duration above which LogDuration reports a call at info level.
const slowCallThreshold = 100 * time.Millisecond

var (
	mu      sync.RWMutex
	prefix  string
	level   = new(slog.LevelVar)
	base    = newLogger(os.Stdout)
	current = base
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func init() {
	SetLevel(os.Getenv("LOG_LEVEL"))
}

// SetPrefix tags every following record with service=p (e.g. "api", "auth").
func SetPrefix(p string) {
	mu.Lock()
	defer mu.Unlock()
	prefix = p
	current = base.With(slog.String("service", p))
	slog.SetDefault(current)
}

// SetLevel accepts debug, info, warn or error; anything else means info.
func SetLevel(s string) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

// SetOutput redirects records to w. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = newLogger(w)
	current = base
	if prefix != "" {
		current = base.With(slog.String("service", prefix))
	}
}

// L returns the underlying slog logger (for slog-chi and friends).
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func Info(v ...any) {
	L().Info(fmt.Sprint(v...))
}

func Infof(format string, v ...any) {
	L().Info(fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...any) {
	L().Debug(fmt.Sprintf(format, v...))
}

func Error(v ...any) {
	L().Error(fmt.Sprint(v...))
}

func Errorf(format string, v ...any) {
	L().Error(fmt.Sprintf(format, v...))
}

// LogDuration logs fn and its duration in milliseconds. At info level only calls
// slower than 100ms are reported; at debug level every call is.
func LogDuration(fn string, start time.Time) {
	elapsed := time.Since(start)
	if elapsed >= slowCallThreshold {
		L().Info("slow call", slog.String("fn", fn), slog.Int64("duration_ms", elapsed.Milliseconds()))
		return
	}
	L().Debug("call", slog.String("fn", fn), slog.Int64("duration_ms", elapsed.Milliseconds()))
}

// DeferLogDuration returns a func for defer: defer logger.DeferLogDuration("chat.Create", time.Now())().
func DeferLogDuration(fn string, start time.Time) func() {
	return func() { LogDuration(fn, start) }
}
