package types

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrEmptyID       = errors.New("id cannot be empty")
	ErrEmptyContent  = errors.New("content cannot be empty")
	ErrEmptyQuestion = errors.New("question cannot be empty")
	ErrInvalidLimit  = errors.New("limit must be positive")
)

// Passage is an indexed unit of corpus text with a precomputed embedding.
// Passages are immutable once indexed; the engine only reads them.
type Passage struct {
	ID string `json:"id" mapstructure:"id" yaml:"id"`

	// Content is the display text returned to callers.
	Content string `json:"content" mapstructure:"content" yaml:"content"`

	// SearchContent is the normalized text used for lexical matching.
	// When empty, lexical scoring falls back to Content.
	SearchContent string `json:"search_content,omitempty" mapstructure:"search_content" yaml:"search_content,omitempty"`

	Embedding []float32 `json:"embedding,omitempty" mapstructure:"embedding" yaml:"embedding,omitempty"`

	Metadata PassageMetadata `json:"metadata" mapstructure:"metadata" yaml:"metadata"`
	Source   SourceRef       `json:"source" mapstructure:"source" yaml:"source"`
}

// PassageMetadata carries classification data used for filtering.
type PassageMetadata struct {
	Category    string   `json:"category,omitempty" mapstructure:"category" yaml:"category,omitempty"`
	SubCategory string   `json:"sub_category,omitempty" mapstructure:"sub_category" yaml:"sub_category,omitempty"`
	Tags        []string `json:"tags,omitempty" mapstructure:"tags" yaml:"tags,omitempty"`
	TicketID    string   `json:"ticket_id,omitempty" mapstructure:"ticket_id" yaml:"ticket_id,omitempty"`
}

// SourceRef identifies the document a passage was indexed from.
type SourceRef struct {
	ID    string `json:"id" mapstructure:"id" yaml:"id"`
	Title string `json:"title,omitempty" mapstructure:"title" yaml:"title,omitempty"`
	Page  int    `json:"page,omitempty" mapstructure:"page" yaml:"page,omitempty"`
}

// Validate checks if the Passage has all required fields set.
func (p *Passage) Validate() error {
	if p.ID == "" {
		return ErrEmptyID
	}
	if p.Content == "" {
		return ErrEmptyContent
	}
	return nil
}

// LexicalText returns the text used for keyword matching.
func (p *Passage) LexicalText() string {
	if p.SearchContent != "" {
		return p.SearchContent
	}
	return p.Content
}

// Role identifies the author of a chat message.
type Role string

const (
	// RoleSystem represents a system message.
	RoleSystem Role = "system"
	// RoleUser represents a user message.
	RoleUser Role = "user"
	// RoleAssistant represents an assistant message.
	RoleAssistant Role = "assistant"
)

// Message is a single chat message exchanged with a completion provider.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response is the result of a completion call.
type Response struct {
	Content      string      `json:"content"`
	Model        string      `json:"model,omitempty"`
	FinishReason string      `json:"finish_reason,omitempty"`
	TokensUsed   *TokenUsage `json:"tokens_used,omitempty"`
}

// TokenUsage reports token consumption for a completion call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Turn is a single prior exchange in a conversation, most-recent-last.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Query is a single retrieval request. Transient, created per request.
type Query struct {
	// Text is the raw user question.
	Text string `json:"text"`
	// CategoryFilter restricts retrieval to one corpus category when set.
	CategoryFilter string `json:"category_filter,omitempty"`
	// History holds recent conversation turns, most-recent-last.
	// Only the last MaxHistoryTurns are consulted.
	History []Turn `json:"history,omitempty"`
}

// MaxHistoryTurns bounds how much conversation history the rewriter and
// answer generator consult.
const MaxHistoryTurns = 4

// RecentHistory returns at most the last MaxHistoryTurns turns.
func (q *Query) RecentHistory() []Turn {
	if len(q.History) <= MaxHistoryTurns {
		return q.History
	}
	return q.History[len(q.History)-MaxHistoryTurns:]
}

// ScoredCandidate pairs a passage with its retrieval scores.
// FinalScore is derived from VectorScore and KeywordScore only; reranking
// produces a new sorted sequence rather than mutating candidates in place.
type ScoredCandidate struct {
	Passage *Passage `json:"passage"`
	// VectorScore is cosine similarity clamped to [0,1].
	VectorScore float64 `json:"vector_score"`
	// KeywordScore is the capped lexical recall score plus the unbounded
	// precision bonus, so it may exceed 1.0 when numeric codes match.
	KeywordScore float64 `json:"keyword_score"`
	FinalScore   float64 `json:"final_score"`
}

// PipelineStage identifies a retrieval pipeline phase.
type PipelineStage string

const (
	StageAnalyzing   PipelineStage = "analyzing"
	StageVectorizing PipelineStage = "vectorizing"
	StageSearching   PipelineStage = "searching"
	StageGenerating  PipelineStage = "generating"
)

// PipelineEvent is a discrete progress notification carrying partial state.
// Events are purely observational; emitting one never alters the retrieval
// outcome.
type PipelineEvent struct {
	Stage         PipelineStage      `json:"stage"`
	ExpandedQuery string             `json:"expanded_query,omitempty"`
	Terms         []string           `json:"terms,omitempty"`
	Candidates    []*ScoredCandidate `json:"candidates,omitempty"`
	Elapsed       time.Duration      `json:"elapsed"`
}

// ResultError tags the defined failure outcomes of a query.
type ResultError string

const (
	// ResultErrorNone indicates a successful answer.
	ResultErrorNone ResultError = ""
	// ResultErrorNoInformation indicates zero candidates survived gating,
	// even after the multi-query fallback. A defined terminal outcome, not
	// a failure of the engine.
	ResultErrorNoInformation ResultError = "no_information_found"
	// ResultErrorCancelled indicates the request context was cancelled.
	ResultErrorCancelled ResultError = "cancelled"
	// ResultErrorProviderUnreachable indicates a transport-level provider
	// failure, distinct from "no results".
	ResultErrorProviderUnreachable ResultError = "provider_unreachable"
	// ResultErrorGenerationFailed indicates the completion provider produced
	// unusable output (e.g. language leakage).
	ResultErrorGenerationFailed ResultError = "generation_failed"
)

// DebugInfo carries per-request diagnostics for auditing retrieval behavior.
type DebugInfo struct {
	Strategy          string   `json:"strategy"`
	ProcessingTimeMs  int64    `json:"processing_time_ms"`
	CandidateCount    int      `json:"candidate_count"`
	LogicStep         string   `json:"logic_step"`
	ExtractedKeywords []string `json:"extracted_keywords,omitempty"`
}

// QueryResult is the final outcome of one request. Immutable once returned.
type QueryResult struct {
	RequestID string      `json:"request_id"`
	Text      string      `json:"text"`
	Sources   []SourceRef `json:"sources"`
	Debug     DebugInfo   `json:"debug"`
	Error     ResultError `json:"error,omitempty"`
}

// ContextKey is used for storing values in context
type ContextKey string

const (
	ContextKeyUserID        ContextKey = "user_id"
	ContextKeySessionID     ContextKey = "session_id"
	ContextKeyRequestSource ContextKey = "request_source"
)
