// Package llm provides completion-provider clients for the engine.
// Response-shape handling belongs entirely to the adapters here; the core
// packages only ever see typed messages and responses.
package llm

import (
	"context"

	"github.com/parsdesk/dana/pkg/types"
)

// Client defines the interface for completion operations.
type Client interface {
	// Complete sends a single-turn, non-streaming chat completion request
	// at the given sampling temperature and returns the generated text.
	Complete(ctx context.Context, messages []types.Message, temperature float32) (*types.Response, error)

	// HealthCheck probes provider connectivity. Callers are expected to
	// bound it with a short (~2s) timeout.
	HealthCheck(ctx context.Context) error

	// Close cleans up any resources.
	Close() error
}

// Config holds configuration for completion clients.
type Config struct {
	Model     string  `json:"model"`
	APIKey    string  `json:"api_key,omitempty"`
	BaseURL   string  `json:"base_url,omitempty"`
	MaxTokens int     `json:"max_tokens,omitempty"`
	TopP      float32 `json:"top_p,omitempty"`
}

// NewMessage creates a new message with the specified role and content.
func NewMessage(role types.Role, content string) types.Message {
	return types.Message{Role: role, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) types.Message {
	return NewMessage(types.RoleSystem, content)
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) types.Message {
	return NewMessage(types.RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) types.Message {
	return NewMessage(types.RoleAssistant, content)
}
