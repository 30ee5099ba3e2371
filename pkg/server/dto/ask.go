package dto

import (
	"errors"
	"strings"

	"github.com/parsdesk/dana/pkg/types"
)

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Question string    `json:"question" binding:"required"`
	Category string    `json:"category,omitempty"`
	History  []Message `json:"history,omitempty"`

	// Optional per-request overrides of the tuned defaults.
	MinConfidence *float64 `json:"min_confidence,omitempty"`
	Temperature   *float32 `json:"temperature,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
}

// Validate performs validation on AskRequest.
func (r *AskRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return errors.New("question cannot be empty")
	}
	if len(r.Question) > MaxQuestionLength {
		return ErrQuestionTooLong
	}
	for i := range r.History {
		if err := r.History[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Query converts the request to the engine's query type.
func (r *AskRequest) Query() types.Query {
	q := types.Query{
		Text:           r.Question,
		CategoryFilter: r.Category,
	}
	for i := range r.History {
		q.History = append(q.History, r.History[i].Turn())
	}
	return q
}

// Apply overlays the request's overrides on a base retrieval configuration.
func (r *AskRequest) Apply(base types.RetrievalConfig) types.RetrievalConfig {
	if r.MinConfidence != nil {
		base.MinConfidence = *r.MinConfidence
	}
	if r.Temperature != nil {
		base.Temperature = *r.Temperature
	}
	if r.TopK != nil {
		base.TopK = *r.TopK
	}
	return base
}

// AskResponse is the body returned by POST /api/v1/ask.
type AskResponse struct {
	RequestID string            `json:"request_id"`
	Answer    string            `json:"answer"`
	Sources   []types.SourceRef `json:"sources,omitempty"`
	Debug     *types.DebugInfo  `json:"debug,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// NewAskResponse maps an engine result to the API shape. Debug info is
// included only when requested.
func NewAskResponse(result *types.QueryResult, includeDebug bool) AskResponse {
	resp := AskResponse{
		RequestID: result.RequestID,
		Answer:    result.Text,
		Sources:   result.Sources,
		Error:     string(result.Error),
	}
	if includeDebug {
		debug := result.Debug
		resp.Debug = &debug
	}
	return resp
}
