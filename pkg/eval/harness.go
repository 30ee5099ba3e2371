// Package eval scores generated answers against a benchmark suite and tunes
// the retrieval configuration over a fixed strategy grid.
package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"gopkg.in/yaml.v3"

	"github.com/parsdesk/dana/pkg/embedder"
	"github.com/parsdesk/dana/pkg/llm"
	"github.com/parsdesk/dana/pkg/scoring"
	"github.com/parsdesk/dana/pkg/terms"
	"github.com/parsdesk/dana/pkg/types"
)

const (
	// fuzzyMinLen is the minimum shared length for a partial token match.
	// Persian morphology inflects word endings, so exact token equality
	// undercounts recall; containment of a 4+ char stem is a match.
	fuzzyMinLen = 4

	// highRecallThreshold switches the composite to trust lexical recall
	// alone. An answer that reproduces most ground-truth terms is correct
	// regardless of how the embedding model scores its phrasing.
	highRecallThreshold = 0.8

	// judgeWeight blends the LLM judge average into the composite.
	judgeWeight = 0.3

	// judgeTemperature keeps the judges near-deterministic.
	judgeTemperature float32 = 0.0

	// defaultConcurrency bounds concurrent case evaluation in a suite run.
	defaultConcurrency = 4
)

const faithfulnessPrompt = `شما داور ارزیابی هستید. پاسخ تولیدشده را فقط از نظر وفاداری به متن زمینه بسنجید:
آیا تمام ادعاهای پاسخ از زمینه پشتیبانی می‌شوند؟
خروجی را دقیقاً به این شکل JSON برگردانید: {"score": 0.0}
که score عددی بین 0 و 1 است.`

const relevancePrompt = `شما داور ارزیابی هستید. پاسخ تولیدشده را فقط از نظر ارتباط با پرسش بسنجید:
آیا پاسخ مستقیماً به همان پرسش پاسخ می‌دهد؟
خروجی را دقیقاً به این شکل JSON برگردانید: {"score": 0.0}
که score عددی بین 0 و 1 است.`

var scoreNumberRe = regexp.MustCompile(`[01](?:[.,][0-9]+)?`)

// Answerer runs one question through the full pipeline with the given
// retrieval configuration, returning both the result and the candidates that
// grounded it. The engine facade satisfies this.
type Answerer interface {
	Answer(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*types.QueryResult, []*types.ScoredCandidate, error)
}

// Harness evaluates generated answers against ground truth. The judge client
// is optional; without one, only lexical recall and calibrated similarity
// contribute to the composite.
type Harness struct {
	answerer  Answerer
	embedder  embedder.Client
	judge     llm.Client
	processor *terms.Processor
	logger    *slog.Logger

	concurrency int
}

// NewHarness creates a Harness. judge may be nil to skip LLM judging.
func NewHarness(answerer Answerer, embedderClient embedder.Client, judge llm.Client, processor *terms.Processor, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harness{
		answerer:    answerer,
		embedder:    embedderClient,
		judge:       judge,
		processor:   processor,
		logger:      logger,
		concurrency: defaultConcurrency,
	}
}

// SetConcurrency overrides how many cases a suite run evaluates in parallel.
func (h *Harness) SetConcurrency(n int) {
	if n > 0 {
		h.concurrency = n
	}
}

// LoadCases reads a benchmark suite from a YAML file.
func LoadCases(path string) ([]types.BenchmarkCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark file: %w", err)
	}
	var cases []types.BenchmarkCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark file: %w", err)
	}
	for i := range cases {
		if err := cases[i].Validate(); err != nil {
			return nil, fmt.Errorf("benchmark case %d: %w", i, err)
		}
	}
	return cases, nil
}

// KeywordRecall computes the fraction of ground-truth content tokens present
// in the generated answer. A token matches by direct substring containment in
// the answer, or fuzzily against any answer token when either contains the
// other with at least 4 shared characters.
func (h *Harness) KeywordRecall(generated, groundTruth string) float64 {
	truthTokens := h.contentTokens(groundTruth)
	if len(truthTokens) == 0 {
		return 0
	}

	answerNorm := h.processor.Normalize(generated)
	answerTokens := strings.Fields(answerNorm)

	matched := 0
	for _, token := range truthTokens {
		if strings.Contains(answerNorm, token) {
			matched++
			continue
		}
		if fuzzyTokenMatch(token, answerTokens) {
			matched++
		}
	}
	return float64(matched) / float64(len(truthTokens))
}

func (h *Harness) contentTokens(text string) []string {
	tokens := h.processor.Tokenize(text)
	kept := tokens[:0:0]
	for _, t := range tokens {
		if h.processor.IsStopWord(t) {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

func fuzzyTokenMatch(token string, answerTokens []string) bool {
	tokenRunes := len([]rune(token))
	for _, a := range answerTokens {
		aRunes := len([]rune(a))
		if tokenRunes >= fuzzyMinLen && aRunes >= tokenRunes && strings.Contains(a, token) {
			return true
		}
		if aRunes >= fuzzyMinLen && tokenRunes >= aRunes && strings.Contains(token, a) {
			return true
		}
	}
	return false
}

// SimilarityScore embeds both texts and returns the calibrated cosine
// similarity between them.
func (h *Harness) SimilarityScore(ctx context.Context, generated, groundTruth string) (float64, error) {
	vectors, err := h.embedder.Embed(ctx, []string{generated, groundTruth}, false)
	if err != nil {
		return 0, fmt.Errorf("failed to embed answer pair: %w", err)
	}
	if len(vectors) != 2 {
		return 0, fmt.Errorf("expected 2 embeddings, got %d", len(vectors))
	}
	raw := scoring.CosineSimilarity(vectors[0], vectors[1])
	return Calibrate(raw), nil
}

// JudgeScores asks the judge model to rate faithfulness (against the
// retrieved context) and relevance (against the question), each on [0,1].
func (h *Harness) JudgeScores(ctx context.Context, question, generated, retrievedContext string) (faithfulness, relevance float64, err error) {
	faithfulness, err = h.askJudge(ctx, faithfulnessPrompt, fmt.Sprintf("زمینه:\n%s\n\nپاسخ تولیدشده:\n%s", retrievedContext, generated))
	if err != nil {
		return 0, 0, err
	}
	relevance, err = h.askJudge(ctx, relevancePrompt, fmt.Sprintf("پرسش:\n%s\n\nپاسخ تولیدشده:\n%s", question, generated))
	if err != nil {
		return 0, 0, err
	}
	return faithfulness, relevance, nil
}

func (h *Harness) askJudge(ctx context.Context, system, user string) (float64, error) {
	messages := []types.Message{
		llm.NewSystemMessage(system),
		llm.NewUserMessage(user),
	}
	resp, err := h.judge.Complete(ctx, messages, judgeTemperature)
	if err != nil {
		return 0, fmt.Errorf("judge call failed: %w", err)
	}
	score, err := parseJudgeScore(resp.Content)
	if err != nil {
		return 0, fmt.Errorf("failed to parse judge output: %w", err)
	}
	return score, nil
}

// parseJudgeScore extracts the score from judge output. Strict JSON first,
// then repaired JSON, then the first number in the text as a last resort.
func parseJudgeScore(content string) (float64, error) {
	var payload struct {
		Score float64 `json:"score"`
	}

	trimmed := strings.TrimSpace(content)
	if err := json.Unmarshal([]byte(trimmed), &payload); err == nil {
		return clampUnit(payload.Score), nil
	}

	if repaired, err := jsonrepair.JSONRepair(trimmed); err == nil {
		if err := json.Unmarshal([]byte(repaired), &payload); err == nil {
			return clampUnit(payload.Score), nil
		}
	}

	if match := scoreNumberRe.FindString(trimmed); match != "" {
		match = strings.ReplaceAll(match, ",", ".")
		var score float64
		if _, err := fmt.Sscanf(match, "%f", &score); err == nil {
			return clampUnit(score), nil
		}
	}

	return 0, fmt.Errorf("no score found in %q", trimmed)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Composite combines the sub-scores into the single quality number.
//
// High lexical recall short-circuits the rest: when recall exceeds 0.8 the
// answer demonstrably contains the ground truth. Otherwise the base score is
// the better of calibrated similarity and recall, blended with the judge
// average when judging ran.
func Composite(recall, similarity, faithfulness, relevance float64, judged bool) float64 {
	if recall > highRecallThreshold {
		return maxFloat(recall, similarity)
	}
	base := maxFloat(recall, similarity)
	if !judged {
		return base
	}
	judgeAvg := (faithfulness + relevance) / 2
	return (1-judgeWeight)*base + judgeWeight*judgeAvg
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// EvaluateCase runs one case through the pipeline and scores the result.
// Judge failures degrade to an unjudged result rather than failing the case.
func (h *Harness) EvaluateCase(ctx context.Context, benchCase types.BenchmarkCase, cfg types.RetrievalConfig) (*types.BenchmarkResult, error) {
	start := time.Now()

	answer, candidates, err := h.answerer.Answer(ctx, types.Query{Text: benchCase.Question, CategoryFilter: benchCase.Category}, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to answer case %s: %w", benchCase.ID, err)
	}

	result := &types.BenchmarkResult{
		Case:            benchCase,
		GeneratedAnswer: answer.Text,
		TimeTakenMs:     time.Since(start).Milliseconds(),
	}
	for _, src := range answer.Sources {
		result.RetrievedSources = append(result.RetrievedSources, src.ID)
	}

	// A terminal pipeline outcome (no information, provider unreachable)
	// scores zero but still produces an auditable result row.
	if answer.Error != types.ResultErrorNone {
		return result, nil
	}

	result.KeywordRecall = h.KeywordRecall(answer.Text, benchCase.GroundTruth)

	similarity, err := h.SimilarityScore(ctx, answer.Text, benchCase.GroundTruth)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		h.logger.Warn("similarity scoring failed", "case", benchCase.ID, "error", err)
	} else {
		result.SimilarityScore = similarity
	}

	if h.judge != nil {
		faithfulness, relevance, err := h.JudgeScores(ctx, benchCase.Question, answer.Text, contextOf(candidates))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			h.logger.Warn("judge scoring failed", "case", benchCase.ID, "error", err)
		} else {
			result.FaithfulnessScore = faithfulness
			result.RelevanceScore = relevance
			result.Judged = true
		}
	}

	result.CompositeScore = Composite(result.KeywordRecall, result.SimilarityScore, result.FaithfulnessScore, result.RelevanceScore, result.Judged)
	result.TimeTakenMs = time.Since(start).Milliseconds()
	return result, nil
}

func contextOf(candidates []*types.ScoredCandidate) string {
	var b strings.Builder
	for _, c := range candidates {
		b.WriteString(c.Passage.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// SuiteResult is the outcome of evaluating a whole benchmark suite under one
// retrieval configuration.
type SuiteResult struct {
	Results   []types.BenchmarkResult `json:"results"`
	MeanScore float64                 `json:"mean_score"`
}

// EvaluateSuite runs every case under the given configuration with bounded
// concurrency. Results keep the suite's case order.
func (h *Harness) EvaluateSuite(ctx context.Context, cases []types.BenchmarkCase, cfg types.RetrievalConfig) (*SuiteResult, error) {
	if len(cases) == 0 {
		return nil, fmt.Errorf("benchmark suite is empty")
	}

	results := make([]types.BenchmarkResult, len(cases))
	errs := make([]error, len(cases))
	sem := make(chan struct{}, h.concurrency)

	var wg sync.WaitGroup
	for i, benchCase := range cases {
		wg.Add(1)
		go func(slot int, benchCase types.BenchmarkCase) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := h.EvaluateCase(ctx, benchCase, cfg)
			if err != nil {
				errs[slot] = err
				return
			}
			results[slot] = *result
		}(i, benchCase)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var total float64
	for i := range results {
		total += results[i].CompositeScore
	}

	return &SuiteResult{
		Results:   results,
		MeanScore: total / float64(len(results)),
	}, nil
}
