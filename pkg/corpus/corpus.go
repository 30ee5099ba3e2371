// Package corpus provides read-only access to the indexed passage set.
// The engine never writes to a corpus during retrieval; indexing is a
// separate, explicit operation.
package corpus

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/parsdesk/dana/pkg/types"
)

// Corpus is a read-only snapshot of indexed passages.
type Corpus interface {
	// Query returns the indexed passages, optionally restricted to one
	// category. The returned slice is a snapshot in stable indexing order;
	// callers must not mutate the passages.
	Query(ctx context.Context, categoryFilter string) ([]*types.Passage, error)

	// Count returns the number of indexed passages.
	Count(ctx context.Context) (int, error)

	// Close cleans up any resources.
	Close() error
}

// Writer indexes passages. The badger-backed Store implements it; the
// in-memory corpus is fixed at construction and does not.
type Writer interface {
	Put(passages ...*types.Passage) error
}

// MemoryCorpus holds the passage set in memory, in indexing order.
type MemoryCorpus struct {
	passages []*types.Passage
}

// NewMemoryCorpus creates a corpus over the given passages. Invalid passages
// are rejected so retrieval never sees half-formed entries.
func NewMemoryCorpus(passages []*types.Passage) (*MemoryCorpus, error) {
	for i, p := range passages {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("passage %d: %w", i, err)
		}
	}
	return &MemoryCorpus{passages: passages}, nil
}

// Query implements Corpus.
func (c *MemoryCorpus) Query(ctx context.Context, categoryFilter string) ([]*types.Passage, error) {
	if categoryFilter == "" {
		out := make([]*types.Passage, len(c.passages))
		copy(out, c.passages)
		return out, nil
	}

	filter := strings.TrimSpace(strings.ToLower(categoryFilter))
	var out []*types.Passage
	for _, p := range c.passages {
		if strings.ToLower(p.Metadata.Category) == filter {
			out = append(out, p)
		}
	}
	return out, nil
}

// Count implements Corpus.
func (c *MemoryCorpus) Count(ctx context.Context) (int, error) {
	return len(c.passages), nil
}

// Close implements Corpus.
func (c *MemoryCorpus) Close() error {
	return nil
}

// LoadPassages reads a passage list from a YAML (or JSON, as a YAML subset)
// file produced by the ingestion pipeline.
func LoadPassages(path string) ([]*types.Passage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read passages file: %w", err)
	}

	var passages []*types.Passage
	if err := yaml.Unmarshal(data, &passages); err != nil {
		return nil, fmt.Errorf("failed to parse passages file: %w", err)
	}
	return passages, nil
}
