// Package retrieval runs the two-stage retrieve/rerank pipeline with
// multi-query fallback and confidence gating.
package retrieval

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/parsdesk/dana/pkg/corpus"
	"github.com/parsdesk/dana/pkg/embedder"
	"github.com/parsdesk/dana/pkg/llm"
	"github.com/parsdesk/dana/pkg/scoring"
	"github.com/parsdesk/dana/pkg/terms"
	"github.com/parsdesk/dana/pkg/types"
)

const (
	// alternativeCount is how many rephrased queries the fallback tries.
	alternativeCount = 3

	// StrategyPrimary marks results produced by the primary pass.
	StrategyPrimary = "primary"
	// StrategyMultiQuery marks results produced by the multi-query fallback.
	StrategyMultiQuery = "multi_query_fallback"
)

// QueryRewriter is the slice of the rewriter the orchestrator depends on.
type QueryRewriter interface {
	Rewrite(ctx context.Context, query types.Query) string
	GenerateAlternatives(ctx context.Context, query string, n int) ([]string, error)
}

// Output is the result of one retrieval run.
type Output struct {
	// Candidates are the gated, reranked top candidates, best first.
	Candidates []*types.ScoredCandidate
	// ExpandedQuery is the rewritten, synonym-expanded query that was
	// actually searched.
	ExpandedQuery string
	// Terms are the critical terms extracted from the expanded query.
	Terms []string
	// Strategy names the pass that produced the candidates.
	Strategy string
	// LogicStep describes the terminal pipeline step, for debugging.
	LogicStep string
	// CandidateCount is the number of candidates that survived gating
	// before the TopK cut.
	CandidateCount int
	// Err tags the defined terminal outcomes (no information, cancelled,
	// provider unreachable). Empty on success.
	Err types.ResultError
}

// Orchestrator coordinates rewriting, scoring, gating, and fallback for one
// retrieval run. Each run is self-contained; the orchestrator holds no
// per-request state and is safe for concurrent use.
type Orchestrator struct {
	processor *terms.Processor
	embedder  embedder.Client
	corpus    corpus.Corpus
	scorer    *scoring.Scorer
	rewriter  QueryRewriter
	logger    *slog.Logger

	// events receives progress notifications. May be nil; emission is
	// fire-and-forget and never blocks or alters the pipeline.
	events chan<- types.PipelineEvent
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	processor *terms.Processor,
	embedderClient embedder.Client,
	corp corpus.Corpus,
	scorer *scoring.Scorer,
	rewriter QueryRewriter,
	events chan<- types.PipelineEvent,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		processor: processor,
		embedder:  embedderClient,
		corpus:    corp,
		scorer:    scorer,
		rewriter:  rewriter,
		events:    events,
		logger:    logger,
	}
}

// Retrieve runs the pipeline: Analyzing -> Vectorizing -> Recall -> Rerank ->
// gating, with the multi-query fallback triggered only when zero candidates
// survive gating.
func (o *Orchestrator) Retrieve(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*Output, error) {
	cfg = cfg.Normalized()
	start := time.Now()

	// Analyzing: rewrite and expand the query, extract critical terms.
	rewritten := o.rewriter.Rewrite(ctx, query)
	expanded := o.processor.ExpandWithSynonyms(rewritten)
	criticalTerms := o.processor.ExtractCriticalTerms(expanded)

	o.emit(types.PipelineEvent{
		Stage:         types.StageAnalyzing,
		ExpandedQuery: expanded,
		Terms:         criticalTerms,
		Elapsed:       time.Since(start),
	})

	if err := ctx.Err(); err != nil {
		return cancelled(expanded, criticalTerms), nil
	}

	// Vectorizing: embed the expanded query.
	queryVector, resultErr := o.embedQuery(ctx, expanded)
	if resultErr != "" {
		return &Output{
			ExpandedQuery: expanded,
			Terms:         criticalTerms,
			Strategy:      StrategyPrimary,
			LogicStep:     "vectorizing",
			Err:           resultErr,
		}, nil
	}

	o.emit(types.PipelineEvent{
		Stage:         types.StageVectorizing,
		ExpandedQuery: expanded,
		Terms:         criticalTerms,
		Elapsed:       time.Since(start),
	})

	passages, err := o.corpus.Query(ctx, query.CategoryFilter)
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(expanded, criticalTerms), nil
		}
		return nil, err
	}

	// Recall + Rerank + gating, primary pass.
	gated := o.runPass(expanded, queryVector, passages, cfg)

	o.emit(types.PipelineEvent{
		Stage:         types.StageSearching,
		ExpandedQuery: expanded,
		Terms:         criticalTerms,
		Candidates:    topK(gated, cfg.TopK),
		Elapsed:       time.Since(start),
	})

	if len(gated) > 0 {
		return &Output{
			Candidates:     topK(gated, cfg.TopK),
			ExpandedQuery:  expanded,
			Terms:          criticalTerms,
			Strategy:       StrategyPrimary,
			LogicStep:      "gated_primary",
			CandidateCount: len(gated),
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return cancelled(expanded, criticalTerms), nil
	}

	// Fallback: triggered only when zero candidates survive gating.
	return o.fallback(ctx, expanded, criticalTerms, passages, cfg, start)
}

// embedQuery embeds the query text. Non-transport failures are recoverable
// and fall back to a zero vector; transport failures and cancellation are
// surfaced as typed outcomes.
func (o *Orchestrator) embedQuery(ctx context.Context, text string) ([]float32, types.ResultError) {
	vector, err := o.embedder.EmbedSingle(ctx, text, true)
	if err == nil {
		return vector, ""
	}
	if ctx.Err() != nil {
		return nil, types.ResultErrorCancelled
	}
	if llm.IsUnreachable(err) {
		return nil, types.ResultErrorProviderUnreachable
	}
	o.logger.Warn("query embedding failed, falling back to zero vector", "error", err)
	return embedder.ZeroVector(o.embedder.Dimensions()), ""
}

// runPass executes Recall -> Rerank -> gating for one query phrasing.
//
// Recall weights the vector score at cfg.VectorWeight to avoid discarding
// paraphrased-but-relevant passages; Rerank adds the unbounded precision
// score so exact identifier matches dominate. Ties keep first-seen order.
func (o *Orchestrator) runPass(query string, queryVector []float32, passages []*types.Passage, cfg types.RetrievalConfig) []*types.ScoredCandidate {
	type recallEntry struct {
		passage *types.Passage
		scores  scoring.Scores
		initial float64
	}

	entries := make([]recallEntry, 0, len(passages))
	for _, p := range passages {
		scores := o.scorer.Score(queryVector, p.Embedding, query, p.LexicalText())
		entries = append(entries, recallEntry{
			passage: p,
			scores:  scores,
			initial: cfg.VectorWeight*scores.Vector + (1-cfg.VectorWeight)*scores.Keyword,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].initial > entries[j].initial
	})
	if len(entries) > cfg.RecallSize {
		entries = entries[:cfg.RecallSize]
	}

	candidates := make([]*types.ScoredCandidate, 0, len(entries))
	for _, e := range entries {
		advanced := o.scorer.AdvancedScore(query, e.passage.LexicalText())
		candidates = append(candidates, &types.ScoredCandidate{
			Passage:      e.passage,
			VectorScore:  e.scores.Vector,
			KeywordScore: advanced,
			FinalScore:   e.scores.Vector + advanced,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})

	gated := candidates[:0:0]
	for _, c := range candidates {
		if c.FinalScore >= cfg.MinConfidence {
			gated = append(gated, c)
		}
	}
	return gated
}

// fallback generates alternative phrasings and runs the pipeline for each of
// them concurrently. All surviving candidates are merged (dedup by passage
// id, first-seen wins) and re-sorted by FinalScore.
func (o *Orchestrator) fallback(
	ctx context.Context,
	expanded string,
	criticalTerms []string,
	passages []*types.Passage,
	cfg types.RetrievalConfig,
	start time.Time,
) (*Output, error) {
	alternatives, err := o.rewriter.GenerateAlternatives(ctx, expanded, alternativeCount)
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(expanded, criticalTerms), nil
		}
		if llm.IsUnreachable(err) {
			return &Output{
				ExpandedQuery: expanded,
				Terms:         criticalTerms,
				Strategy:      StrategyMultiQuery,
				LogicStep:     "fallback_alternatives",
				Err:           types.ResultErrorProviderUnreachable,
			}, nil
		}
		o.logger.Warn("alternative query generation failed", "error", err)
		alternatives = nil
	}

	// Per-alternative results are collected into fixed slots so the merge
	// order is deterministic regardless of goroutine scheduling.
	results := make([][]*types.ScoredCandidate, len(alternatives))
	unreachable := make([]bool, len(alternatives))

	var wg sync.WaitGroup
	for i, alt := range alternatives {
		wg.Add(1)
		go func(slot int, alt string) {
			defer wg.Done()
			vector, resultErr := o.embedQuery(ctx, alt)
			if resultErr == types.ResultErrorProviderUnreachable {
				unreachable[slot] = true
				return
			}
			if resultErr != "" {
				return
			}
			results[slot] = o.runPass(alt, vector, passages, cfg)
		}(i, alt)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return cancelled(expanded, criticalTerms), nil
	}

	seen := make(map[string]struct{})
	var merged []*types.ScoredCandidate
	for _, branch := range results {
		for _, c := range branch {
			if _, dup := seen[c.Passage.ID]; dup {
				continue
			}
			seen[c.Passage.ID] = struct{}{}
			merged = append(merged, c)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].FinalScore > merged[j].FinalScore
	})

	o.emit(types.PipelineEvent{
		Stage:         types.StageSearching,
		ExpandedQuery: expanded,
		Terms:         criticalTerms,
		Candidates:    topK(merged, cfg.TopK),
		Elapsed:       time.Since(start),
	})

	if len(merged) == 0 {
		errTag := types.ResultErrorNoInformation
		if allUnreachable(unreachable) {
			errTag = types.ResultErrorProviderUnreachable
		}
		return &Output{
			ExpandedQuery: expanded,
			Terms:         criticalTerms,
			Strategy:      StrategyMultiQuery,
			LogicStep:     "fallback_empty",
			Err:           errTag,
		}, nil
	}

	return &Output{
		Candidates:     topK(merged, cfg.TopK),
		ExpandedQuery:  expanded,
		Terms:          criticalTerms,
		Strategy:       StrategyMultiQuery,
		LogicStep:      "gated_fallback",
		CandidateCount: len(merged),
	}, nil
}

// emit sends a pipeline event without ever blocking the state machine.
func (o *Orchestrator) emit(event types.PipelineEvent) {
	if o.events == nil {
		return
	}
	select {
	case o.events <- event:
	default:
	}
}

func topK(candidates []*types.ScoredCandidate, k int) []*types.ScoredCandidate {
	if len(candidates) > k {
		return candidates[:k]
	}
	return candidates
}

func cancelled(expanded string, criticalTerms []string) *Output {
	return &Output{
		ExpandedQuery: expanded,
		Terms:         criticalTerms,
		LogicStep:     "cancelled",
		Err:           types.ResultErrorCancelled,
	}
}

func allUnreachable(flags []bool) bool {
	if len(flags) == 0 {
		return false
	}
	for _, f := range flags {
		if !f {
			return false
		}
	}
	return true
}
