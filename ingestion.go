package dana

import (
	"context"
	"fmt"

	"github.com/parsdesk/dana/pkg/corpus"
	"github.com/parsdesk/dana/pkg/types"
)

// embedBatchSize bounds how many passages are embedded per provider call.
const embedBatchSize = 64

// Ingest validates, embeds, and indexes passages. The corpus must support
// writes (the badger-backed store does; the in-memory corpus does not).
// Passages that already carry an embedding of the right dimensionality are
// indexed as-is.
func (c *Client) Ingest(ctx context.Context, passages []*types.Passage) error {
	writer, ok := c.corpus.(corpus.Writer)
	if !ok {
		return ErrReadOnlyCorpus
	}

	for i, p := range passages {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("passage %d: %w", i, err)
		}
	}

	var pending []*types.Passage
	for _, p := range passages {
		if len(p.Embedding) != c.embedder.Dimensions() {
			pending = append(pending, p)
		}
	}

	for start := 0; start < len(pending); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.LexicalText()
		}

		vectors, err := c.embedder.Embed(ctx, texts, false)
		if err != nil {
			return fmt.Errorf("failed to embed passages: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("expected %d embeddings, got %d", len(batch), len(vectors))
		}
		for i, p := range batch {
			p.Embedding = vectors[i]
		}
	}

	if err := writer.Put(passages...); err != nil {
		return fmt.Errorf("failed to index passages: %w", err)
	}

	c.logger.Info("passages ingested", "count", len(passages), "embedded", len(pending))
	return nil
}

// IngestFile loads passages from a YAML file and ingests them.
func (c *Client) IngestFile(ctx context.Context, path string) (int, error) {
	passages, err := corpus.LoadPassages(path)
	if err != nil {
		return 0, err
	}
	if err := c.Ingest(ctx, passages); err != nil {
		return 0, err
	}
	return len(passages), nil
}
