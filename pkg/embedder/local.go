package embedder

import (
	"context"
	"fmt"

	"github.com/soundprediction/go-embedeverything/pkg/embedder"
)

// LocalClient implements the Client interface on top of an in-process
// EmbedEverything model, for deployments that cannot reach a hosted
// embedding API.
type LocalClient struct {
	client *embedder.Embedder
	config *Config
}

// NewLocalClient creates a new in-process embedding client.
func NewLocalClient(config *Config) (*LocalClient, error) {
	if config == nil {
		return nil, fmt.Errorf("embedder config is required")
	}

	client, err := embedder.NewEmbedder(config.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &LocalClient{
		client: client,
		config: config,
	}, nil
}

// Embed generates embeddings for the given texts.
func (e *LocalClient) Embed(ctx context.Context, texts []string, isQuery bool) ([][]float32, error) {
	prefix := e.config.PassagePrefix
	if isQuery {
		prefix = e.config.QueryPrefix
	}

	// go-embedeverything does not support context yet
	embeddings, err := e.client.Embed(applyPrefix(texts, prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *LocalClient) EmbedSingle(ctx context.Context, text string, isQuery bool) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{text}, isQuery)
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

// Dimensions returns the number of dimensions in the embeddings.
func (e *LocalClient) Dimensions() int {
	return e.config.Dimensions
}

// HealthCheck always succeeds for an in-process model.
func (e *LocalClient) HealthCheck(ctx context.Context) error {
	return nil
}

// Close cleans up any resources.
func (e *LocalClient) Close() error {
	e.client.Close()
	return nil
}
