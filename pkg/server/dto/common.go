// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"errors"
	"strings"

	"github.com/parsdesk/dana/pkg/types"
)

// MaxQuestionLength bounds the accepted question size.
const MaxQuestionLength = 2000

// ErrQuestionTooLong is returned when a question exceeds MaxQuestionLength.
var ErrQuestionTooLong = errors.New("question exceeds maximum length")

// ValidRoles defines acceptable message roles.
var ValidRoles = map[string]bool{
	"user":      true,
	"assistant": true,
}

// Message represents one conversation turn in a request.
type Message struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Validate performs validation on Message.
func (m *Message) Validate() error {
	if strings.TrimSpace(m.Role) == "" {
		return errors.New("role cannot be empty")
	}
	if !ValidRoles[strings.ToLower(m.Role)] {
		return errors.New("invalid role: must be user or assistant")
	}
	if strings.TrimSpace(m.Content) == "" {
		return errors.New("content cannot be empty")
	}
	return nil
}

// Turn converts the message to the engine's conversation turn.
func (m *Message) Turn() types.Turn {
	role := types.RoleUser
	if strings.ToLower(m.Role) == "assistant" {
		role = types.RoleAssistant
	}
	return types.Turn{Role: role, Content: m.Content}
}

// Result represents a generic API result.
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
