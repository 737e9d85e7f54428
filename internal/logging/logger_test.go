package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNew_DualSink(t *testing.T) {
	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "inventory.log")

	logger, closeFn, err := New(Options{Level: "info", Format: "json", File: logFile, Console: &console})
	require.NoError(t, err)

	logger.Warn("low stock", "product", "Widget", "quantity", 3)
	logger.Debug("hidden")
	require.NoError(t, closeFn())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(console.Bytes(), &entry))
	assert.Equal(t, "low stock", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Contains(t, entry, "time")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=\"low stock\"")
	assert.Contains(t, string(data), "product=Widget")
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_FileAppends(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "inventory.log")

	for i := 0; i < 2; i++ {
		logger, closeFn, err := New(Options{Format: "text", File: logFile, Console: &bytes.Buffer{}})
		require.NoError(t, err)
		logger.Info("file processed")
		require.NoError(t, closeFn())
	}

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "file processed"))
}

func TestNew_BadFile(t *testing.T) {
	_, _, err := New(Options{File: filepath.Join(t.TempDir(), "missing", "x.log"), Console: &bytes.Buffer{}})
	require.Error(t, err)
}

func TestFromContext_RunID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithRunID(context.Background())
	require.NotEmpty(t, RunID(ctx))

	FromContext(ctx, base).Info("hello")
	assert.Contains(t, buf.String(), "run_id="+RunID(ctx))

	buf.Reset()
	FromContext(context.Background(), base).Info("plain")
	assert.NotContains(t, buf.String(), "run_id")
}

func TestResolveFormat_NonTerminalWriter(t *testing.T) {
	assert.Equal(t, "text", resolveFormat("", &bytes.Buffer{}))
	assert.Equal(t, "json", resolveFormat("JSON", &bytes.Buffer{}))
}
