package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "info", true)

	l := With("request_id", "abc")
	ctx := NewContext(context.Background(), l)
	WithContext(ctx).Info("hello")

	assert.Contains(t, buf.String(), `"request_id":"abc"`)
	assert.Contains(t, buf.String(), `"service":"tapcoin"`)
	assert.Same(t, Get(), WithContext(context.Background()))
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", false)

	Info("dropped")
	assert.Empty(t, buf.String())

	SetLevel("info")
	Info("kept")
	assert.Contains(t, buf.String(), "kept")
}
