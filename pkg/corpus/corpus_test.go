package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parsdesk/dana/pkg/types"
)

func samplePassages() []*types.Passage {
	return []*types.Passage{
		{
			ID:       "p1",
			Content:  "برای بازیابی رمز عبور به صفحه ورود بروید",
			Metadata: types.PassageMetadata{Category: "احراز هویت"},
			Source:   types.SourceRef{ID: "doc-1", Title: "رمز عبور"},
		},
		{
			ID:       "p2",
			Content:  "راهنمای واریز وجه به حساب معاملاتی",
			Metadata: types.PassageMetadata{Category: "مالی"},
			Source:   types.SourceRef{ID: "doc-2", Title: "واریز"},
		},
	}
}

func TestMemoryCorpus(t *testing.T) {
	t.Run("rejects invalid passages", func(t *testing.T) {
		_, err := NewMemoryCorpus([]*types.Passage{{ID: "", Content: "متن"}})
		assert.Error(t, err)
	})

	t.Run("query returns all in indexing order", func(t *testing.T) {
		c, err := NewMemoryCorpus(samplePassages())
		require.NoError(t, err)

		out, err := c.Query(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "p1", out[0].ID)
		assert.Equal(t, "p2", out[1].ID)
	})

	t.Run("category filter is case-insensitive", func(t *testing.T) {
		c, err := NewMemoryCorpus(samplePassages())
		require.NoError(t, err)

		out, err := c.Query(context.Background(), "مالی")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "p2", out[0].ID)
	})

	t.Run("count", func(t *testing.T) {
		c, err := NewMemoryCorpus(samplePassages())
		require.NoError(t, err)

		n, err := c.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}

func TestStore(t *testing.T) {
	newStore := func(t *testing.T) *Store {
		t.Helper()
		s, err := NewStore(t.TempDir())
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	}

	t.Run("put and query round trip", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(samplePassages()...))

		out, err := s.Query(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, out, 2)
		// Key order is lexicographic, stable across runs.
		assert.Equal(t, "p1", out[0].ID)
		assert.Equal(t, "p2", out[1].ID)
	})

	t.Run("put overwrites by id", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(samplePassages()...))

		updated := &types.Passage{ID: "p1", Content: "متن تازه"}
		require.NoError(t, s.Put(updated))

		out, err := s.Query(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "متن تازه", out[0].Content)
	})

	t.Run("category filter", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(samplePassages()...))

		out, err := s.Query(context.Background(), "احراز هویت")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "p1", out[0].ID)
	})

	t.Run("count skips value loads", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(samplePassages()...))

		n, err := s.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("rejects invalid passages", func(t *testing.T) {
		s := newStore(t)
		assert.Error(t, s.Put(&types.Passage{ID: "x"}))
	})

	t.Run("implements Writer", func(t *testing.T) {
		var w Writer = newStore(t)
		assert.NotNil(t, w)
	})
}

func TestLoadPassages(t *testing.T) {
	t.Run("parses a yaml passage list", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "passages.yaml")
		data := `
- id: p1
  content: "متن نمونه"
  metadata:
    category: "مالی"
  source:
    id: doc-1
    title: "نمونه"
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		passages, err := LoadPassages(path)
		require.NoError(t, err)
		require.Len(t, passages, 1)
		assert.Equal(t, "p1", passages[0].ID)
		assert.Equal(t, "مالی", passages[0].Metadata.Category)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadPassages("/nonexistent/passages.yaml")
		assert.Error(t, err)
	})
}
