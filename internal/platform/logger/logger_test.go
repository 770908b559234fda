// Package logger_test contains tests for the logger package
package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/phrazzld/netfetch/internal/config"
	"github.com/phrazzld/netfetch/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogBuffer is a synchronized buffer for capturing log output in tests
type testLogBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

// Write implements io.Writer interface for the testLogBuffer
func (b *testLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// entries parses each buffered line as a JSON log record
func (b *testLogBuffer) entries(t *testing.T) []map[string]interface{} {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "log line should be JSON: %s", line)
		out = append(out, entry)
	}
	return out
}

// restoreDefault resets the default slog logger after a test replaces it
func restoreDefault(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })
}

func TestSetup(t *testing.T) {
	restoreDefault(t)

	l, err := logger.Setup(config.LogConfig{Level: "info"})

	require.NoError(t, err)
	require.NotNil(t, l, "Setup should return the configured logger")
	assert.Same(t, l, slog.Default())
}

func TestSetupWithWriter_JSONOutput(t *testing.T) {
	restoreDefault(t)
	buf := &testLogBuffer{}

	l, err := logger.SetupWithWriter(config.LogConfig{Level: "debug"}, buf)
	require.NoError(t, err)

	l.Debug("task enqueued", "task_id", "abc", "queue_len", 1)

	entries := buf.entries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "DEBUG", entries[0]["level"])
	assert.Equal(t, "task enqueued", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["task_id"])
	assert.Equal(t, float64(1), entries[0]["queue_len"])
}

func TestSetupWithWriter_LevelFiltering(t *testing.T) {
	restoreDefault(t)
	buf := &testLogBuffer{}

	l, err := logger.SetupWithWriter(config.LogConfig{Level: "warn"}, buf)
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept")
	slog.Error("kept via default")

	entries := buf.entries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, "kept via default", entries[1]["msg"])
}

// TestInvalidLogLevelParsing checks that an invalid level falls back to info
// and warns on stderr.
func TestInvalidLogLevelParsing(t *testing.T) {
	restoreDefault(t)

	origStderr := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	buf := &testLogBuffer{}
	l, setupErr := logger.SetupWithWriter(config.LogConfig{Level: "invalid_level"}, buf)

	os.Stderr = origStderr
	require.NoError(t, w.Close())

	var stderrBuf bytes.Buffer
	_, _ = stderrBuf.ReadFrom(r)

	require.NoError(t, setupErr)
	assert.Contains(t, stderrBuf.String(), "invalid log level configured")

	l.Debug("hidden")
	l.Info("shown")
	entries := buf.entries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  slog.Level
		valid bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"fatal", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := logger.ParseLevel(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestDiscard(t *testing.T) {
	l := logger.Discard()
	require.NotNil(t, l)
	l.Error("dropped", "key", "value")
	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
}
