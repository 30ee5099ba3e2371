// Package embedder provides embedding-provider clients for the engine.
package embedder

import (
	"context"

	"github.com/parsdesk/dana/pkg/llm"
)

// Client defines the interface for embedding operations.
//
// isQuery lets a provider apply the asymmetric query/document prefixes some
// embedding models require. Non-transport failures are recoverable: callers
// fall back to a zero vector, which cosine similarity scores as 0. Transport
// failures surface as llm.UnreachableError and must not be absorbed.
type Client interface {
	// Embed generates embeddings for the given texts.
	Embed(ctx context.Context, texts []string, isQuery bool) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string, isQuery bool) ([]float32, error)

	// Dimensions returns the number of dimensions in the embeddings.
	Dimensions() int

	// HealthCheck probes provider connectivity. Callers are expected to
	// bound it with a short (~2s) timeout.
	HealthCheck(ctx context.Context) error

	// Close cleans up any resources.
	Close() error
}

// Config holds configuration for embedding clients.
type Config struct {
	Model      string `json:"model"`
	APIKey     string `json:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty"`
	Dimensions int    `json:"dimensions"`

	// QueryPrefix and PassagePrefix implement the asymmetric prefixes used
	// by e5-style models ("query: " / "passage: "). Both may be empty.
	QueryPrefix   string `json:"query_prefix,omitempty"`
	PassagePrefix string `json:"passage_prefix,omitempty"`
}

// ZeroVector returns the recoverable fallback embedding of the given size.
func ZeroVector(dimensions int) []float32 {
	return make([]float32, dimensions)
}

// applyPrefix prepends the configured asymmetric prefix to each text.
func applyPrefix(texts []string, prefix string) []string {
	if prefix == "" {
		return texts
	}
	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = prefix + t
	}
	return prefixed
}

// IsUnreachable reports whether err indicates a transport-level failure.
func IsUnreachable(err error) bool {
	return llm.IsUnreachable(err)
}
