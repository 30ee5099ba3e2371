package telemetry

import (
	"os"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parsdesk/dana/pkg/types"
)

func TestBenchmarkWriter(t *testing.T) {
	t.Run("writes one parquet file per run", func(t *testing.T) {
		w, err := NewBenchmarkWriter(t.TempDir())
		require.NoError(t, err)

		results := []types.BenchmarkResult{
			{
				Case:             types.BenchmarkCase{ID: "c1", Question: "پرسش یک"},
				GeneratedAnswer:  "پاسخ",
				RetrievedSources: []string{"doc-1", "doc-2"},
				KeywordRecall:    0.5,
				CompositeScore:   0.5,
			},
			{
				Case:           types.BenchmarkCase{ID: "c2", Question: "پرسش دو"},
				CompositeScore: 1.0,
				Judged:         true,
			},
		}

		runID, path, err := w.WriteRun(results)
		require.NoError(t, err)
		assert.NotEmpty(t, runID)

		rows, err := parquet.ReadFile[BenchmarkRecord](path)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, runID, rows[0].RunID)
		assert.Equal(t, "c1", rows[0].CaseID)
		assert.Equal(t, "doc-1,doc-2", rows[0].RetrievedSources)
		assert.True(t, rows[1].Judged)
	})

	t.Run("empty run is rejected", func(t *testing.T) {
		w, err := NewBenchmarkWriter(t.TempDir())
		require.NoError(t, err)

		_, _, err = w.WriteRun(nil)
		assert.Error(t, err)
	})

	t.Run("creates the output directory", func(t *testing.T) {
		dir := t.TempDir() + "/nested/runs"
		_, err := NewBenchmarkWriter(dir)
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}
