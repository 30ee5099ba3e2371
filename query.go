package dana

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parsdesk/dana/pkg/answer"
	"github.com/parsdesk/dana/pkg/llm"
	"github.com/parsdesk/dana/pkg/retrieval"
	"github.com/parsdesk/dana/pkg/types"
)

// noInformationMessage is the fixed user-facing reply when nothing in the
// corpus clears the confidence gate.
const noInformationMessage = "متاسفانه اطلاعاتی در این مورد در پایگاه دانش یافت نشد."

// Ask answers a support question using the client's default retrieval
// parameters.
func (c *Client) Ask(ctx context.Context, query types.Query) (*types.QueryResult, error) {
	result, _, err := c.Answer(ctx, query, c.config.Retrieval)
	return result, err
}

// Answer runs the full pipeline with explicit retrieval parameters and also
// returns the candidates that grounded the answer. The evaluation harness
// uses the candidates to judge faithfulness.
func (c *Client) Answer(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*types.QueryResult, []*types.ScoredCandidate, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, nil, ErrEmptyQuery
	}

	cfg = cfg.Normalized()
	requestID := uuid.New().String()
	start := time.Now()

	out, err := c.orchestrator.Retrieve(ctx, query, cfg)
	if err != nil {
		return nil, nil, err
	}

	result := &types.QueryResult{
		RequestID: requestID,
		Debug: types.DebugInfo{
			Strategy:          out.Strategy,
			LogicStep:         out.LogicStep,
			CandidateCount:    out.CandidateCount,
			ExtractedKeywords: out.Terms,
		},
	}

	if out.Err != types.ResultErrorNone {
		result.Error = out.Err
		if out.Err == types.ResultErrorNoInformation {
			result.Text = noInformationMessage
		}
		result.Debug.ProcessingTimeMs = time.Since(start).Milliseconds()
		return result, nil, nil
	}

	c.emit(types.PipelineEvent{
		Stage:         types.StageGenerating,
		ExpandedQuery: out.ExpandedQuery,
		Terms:         out.Terms,
		Candidates:    out.Candidates,
		Elapsed:       time.Since(start),
	})

	text, err := c.generator.Generate(ctx, query, out.Candidates, cfg.Temperature)
	if err != nil {
		result.Error = generationError(ctx, err)
		result.Debug.LogicStep = "generating"
		result.Debug.ProcessingTimeMs = time.Since(start).Milliseconds()
		c.logger.Warn("answer generation failed", "request_id", requestID, "error", err)
		return result, nil, nil
	}

	result.Text = text
	for _, cand := range out.Candidates {
		result.Sources = append(result.Sources, cand.Passage.Source)
	}
	result.Debug.ProcessingTimeMs = time.Since(start).Milliseconds()

	c.logger.Info("query answered",
		"request_id", requestID,
		"strategy", out.Strategy,
		"candidates", out.CandidateCount,
		"elapsed_ms", result.Debug.ProcessingTimeMs,
	)

	return result, out.Candidates, nil
}

// Retrieve runs retrieval only, without generation. Useful for inspecting
// what the pipeline would ground an answer on.
func (c *Client) Retrieve(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*retrieval.Output, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, ErrEmptyQuery
	}
	return c.orchestrator.Retrieve(ctx, query, cfg.Normalized())
}

func generationError(ctx context.Context, err error) types.ResultError {
	switch {
	case ctx.Err() != nil:
		return types.ResultErrorCancelled
	case llm.IsUnreachable(err):
		return types.ResultErrorProviderUnreachable
	case errors.Is(err, answer.ErrLanguageLeakage):
		return types.ResultErrorGenerationFailed
	default:
		return types.ResultErrorGenerationFailed
	}
}

func (c *Client) emit(event types.PipelineEvent) {
	if c.events == nil {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
