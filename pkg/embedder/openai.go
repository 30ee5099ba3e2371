package embedder

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/parsdesk/dana/pkg/llm"
)

// DefaultDimensions matches text-embedding-3-small.
const DefaultDimensions = 1536

// OpenAIClient implements the Client interface for OpenAI-compatible
// embedding endpoints.
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates an embedding client for an OpenAI-compatible API.
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	if config == nil {
		return nil, fmt.Errorf("embedder config is required")
	}
	if config.Model == "" {
		config.Model = string(openai.SmallEmbedding3)
	}
	if config.Dimensions <= 0 {
		config.Dimensions = DefaultDimensions
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Embed generates embeddings for the given texts.
func (e *OpenAIClient) Embed(ctx context.Context, texts []string, isQuery bool) ([][]float32, error) {
	prefix := e.config.PassagePrefix
	if isQuery {
		prefix = e.config.QueryPrefix
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.config.Model),
		Input: applyPrefix(texts, prefix),
	})
	if err != nil {
		if llm.IsConnectionError(err) {
			return nil, llm.NewUnreachableError(fmt.Sprintf("embedding provider unreachable: %v", err))
		}
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		embeddings[i] = d.Embedding
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *OpenAIClient) EmbedSingle(ctx context.Context, text string, isQuery bool) ([]float32, error) {
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
func (e *OpenAIClient) Dimensions() int {
	return e.config.Dimensions
}

// HealthCheck probes the endpoint with a single short embedding call.
func (e *OpenAIClient) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedSingle(ctx, "ping", true)
	return err
}

// Close cleans up any resources.
func (e *OpenAIClient) Close() error {
	return nil
}
