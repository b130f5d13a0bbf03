// Package logger owns the process-wide slog logger. Every record carries
// the service name; request handlers stash a scoped logger in the context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

const serviceName = "tapcoin"

var (
	current atomic.Pointer[slog.Logger]
	level   = new(slog.LevelVar)
)

type ctxKey struct{}

// Init installs the stdout logger.
func Init(lvl string, json bool) {
	InitWriter(os.Stdout, lvl, json)
}

// InitWriter installs a logger writing to w and makes it the slog default.
func InitWriter(w io.Writer, lvl string, json bool) {
	level.Set(parseLevel(lvl))
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if json {
		h = slog.NewJSONHandler(w, opts)
	}
	l := slog.New(h).With("service", serviceName)
	current.Store(l)
	slog.SetDefault(l)
}

// SetLevel changes the level of the installed logger in place.
func SetLevel(lvl string) {
	level.Set(parseLevel(lvl))
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Get returns the installed logger, installing an info-level text one on
// first use.
func Get() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init("info", false)
	return current.Load()
}

func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// WithContext returns the request-scoped logger, or the global one.
func WithContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return Get()
}

func With(args ...any) *slog.Logger { return Get().With(args...) }

func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

// Fatal logs at error level and exits with status 1.
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}
