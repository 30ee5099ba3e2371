package telemetry

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parsdesk/dana/pkg/types"
)

func newTestHandler(t *testing.T) (*ParquetHandler, string) {
	t.Helper()
	dir := t.TempDir()
	h, err := NewParquetHandler(slog.NewTextHandler(io.Discard, nil), dir)
	require.NoError(t, err)
	return h, dir
}

func parquetFiles(t *testing.T, dir string) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "execution_errors_*.parquet"))
	require.NoError(t, err)
	return files
}

func TestParquetHandler(t *testing.T) {
	t.Run("flush persists records buffered below the batch size", func(t *testing.T) {
		h, dir := newTestHandler(t)
		logger := slog.New(h)

		ctx := context.WithValue(context.Background(), types.ContextKeyUserID, "u-1")
		logger.ErrorContext(ctx, "generation failed", "stage", "generation")

		// One record is far below the batch size, so nothing is on disk yet.
		require.Empty(t, parquetFiles(t, dir))

		require.NoError(t, h.Flush())

		files := parquetFiles(t, dir)
		require.Len(t, files, 1)

		rows, err := parquet.ReadFile[LogRecord](files[0])
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "generation failed", rows[0].Message)
		assert.Equal(t, slog.LevelError.String(), rows[0].Level)
		assert.Equal(t, "u-1", rows[0].UserID)
		assert.Contains(t, rows[0].Attributes, "generation")
		assert.NotEmpty(t, rows[0].ID)
	})

	t.Run("flush with an empty buffer writes nothing", func(t *testing.T) {
		h, dir := newTestHandler(t)

		require.NoError(t, h.Flush())
		assert.Empty(t, parquetFiles(t, dir))
	})

	t.Run("records below error level are not buffered", func(t *testing.T) {
		h, dir := newTestHandler(t)
		logger := slog.New(h)

		logger.Warn("slow recall pass", "elapsed_ms", 1200)

		require.NoError(t, h.Flush())
		assert.Empty(t, parquetFiles(t, dir))
	})
}
