package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestJSONLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newJSON(&buf, "warn")
	l.Info("hidden")
	l.Warn("shown", "facility", "lion")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "lion", rec["facility"])
	assert.False(t, l.Enabled(context.Background(), slog.LevelInfo))
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.log")
	l, closer := New("info", path)
	l.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNewStderrCloserIsNoop(t *testing.T) {
	l, closer := New("debug", "")
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
	assert.NoError(t, closer.Close())
}
