package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  slog.Level
		known bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.known, ok, tt.in)
	}
}

func TestContextLoggerCarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	prev := L
	t.Cleanup(func() { L = prev; slog.SetDefault(prev) })

	InitLoggerWithWriter("info", &buf)
	buf.Reset()

	ctx := ToContext(context.Background(), L.With("requestID", "abc"))
	InfoFromContext(ctx, "hello", "userID", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "abc", entry["requestID"])
	assert.EqualValues(t, 7, entry["userID"])
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	assert.Same(t, L, FromContext(context.Background()))
}
