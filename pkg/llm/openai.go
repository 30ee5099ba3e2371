package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/parsdesk/dana/pkg/types"
)

const (
	// DefaultModel is used when the config does not name one.
	DefaultModel = "gpt-4o-mini"
	// MaxRetries bounds retry attempts for transient failures.
	MaxRetries = 2
)

// OpenAIClient is a completion client for OpenAI-compatible endpoints.
type OpenAIClient struct {
	client     *openai.Client
	config     *Config
	model      string
	maxRetries int
}

// NewOpenAIClient creates a client for an OpenAI-compatible completion API.
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	if config == nil {
		return nil, fmt.Errorf("llm config is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientConfig),
		config:     config,
		model:      model,
		maxRetries: MaxRetries,
	}, nil
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, messages []types.Message, temperature float32) (*types.Response, error) {
	openaiMessages := convertMessages(messages)

	var lastError error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req := openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    openaiMessages,
			Temperature: temperature,
			TopP:        c.config.TopP,
			Stream:      false,
		}
		if c.config.MaxTokens > 0 {
			req.MaxTokens = c.config.MaxTokens
		}

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastError = err

			if IsConnectionError(err) {
				return nil, NewUnreachableError(fmt.Sprintf("completion provider unreachable: %v", err))
			}
			if strings.Contains(err.Error(), "rate limit") || strings.Contains(err.Error(), "rate_limit") {
				if attempt == c.maxRetries {
					return nil, NewRateLimitError(err.Error())
				}
				continue
			}
			if isRetriableError(err) && attempt < c.maxRetries {
				continue
			}
			return nil, fmt.Errorf("completion failed: %w", err)
		}

		if len(resp.Choices) == 0 {
			return nil, NewEmptyResponseError("no choices returned from API")
		}

		response := &types.Response{
			Content:      resp.Choices[0].Message.Content,
			Model:        resp.Model,
			FinishReason: string(resp.Choices[0].FinishReason),
		}
		if resp.Usage.TotalTokens > 0 {
			response.TokensUsed = &types.TokenUsage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			}
		}
		return response, nil
	}

	return nil, fmt.Errorf("all retries exhausted, last error: %w", lastError)
}

// HealthCheck implements Client by listing models on the endpoint.
func (c *OpenAIClient) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		if IsConnectionError(err) {
			return NewUnreachableError(fmt.Sprintf("completion provider unreachable: %v", err))
		}
		return fmt.Errorf("completion provider health check failed: %w", err)
	}
	return nil
}

// Close implements Client.
func (c *OpenAIClient) Close() error {
	return nil
}

func convertMessages(messages []types.Message) []openai.ChatCompletionMessage {
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		content := cleanInput(m.Content)
		switch m.Role {
		case types.RoleUser:
			openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleUser, Content: content,
			})
		case types.RoleSystem:
			openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleSystem, Content: content,
			})
		case types.RoleAssistant:
			openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant, Content: content,
			})
		}
	}
	return openaiMessages
}

// cleanInput cleans input string of invalid unicode and control characters
func cleanInput(input string) string {
	zeroWidthChars := []string{"\u200b", "\u200c", "\u200d", "\ufeff", "\u2060"}
	cleaned := input
	for _, char := range zeroWidthChars {
		cleaned = strings.ReplaceAll(cleaned, char, "")
	}

	var builder strings.Builder
	for _, r := range cleaned {
		if r >= 32 || r == '\n' || r == '\r' || r == '\t' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// IsConnectionError reports transport-level failures that must surface as
// "provider unreachable" rather than a model error.
func IsConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	for _, marker := range []string{"connection refused", "no such host", "dial tcp", "connection reset"} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// isRetriableError determines if an error should trigger a retry
func isRetriableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retriableErrors := []string{
		"timeout",
		"internal server error",
		"service unavailable",
		"bad gateway",
		"gateway timeout",
	}
	for _, retriable := range retriableErrors {
		if strings.Contains(errStr, retriable) {
			return true
		}
	}
	return false
}
