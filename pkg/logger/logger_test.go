package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestColorHandler(t *testing.T) {
	t.Run("writes message and attrs", func(t *testing.T) {
		var buf bytes.Buffer
		log := slog.New(NewColorHandler(&buf, nil))

		log.Info("query answered", "strategy", "primary")

		out := buf.String()
		assert.Contains(t, out, "query answered")
		assert.Contains(t, out, "strategy=")
		assert.Contains(t, out, "primary")
	})

	t.Run("respects the level", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewColorHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})

		assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
		assert.True(t, h.Enabled(context.Background(), slog.LevelError))
	})

	t.Run("groups dot-prefix attr keys", func(t *testing.T) {
		var buf bytes.Buffer
		log := slog.New(NewColorHandler(&buf, nil)).WithGroup("retrieval")

		log.Info("pass done", "candidates", 3)
		assert.Contains(t, buf.String(), "retrieval.candidates=")
	})

	t.Run("with attrs persists across records", func(t *testing.T) {
		var buf bytes.Buffer
		log := slog.New(NewColorHandler(&buf, nil)).With("request_id", "r1")

		log.Info("first")
		assert.Contains(t, buf.String(), "request_id=")
	})
}
