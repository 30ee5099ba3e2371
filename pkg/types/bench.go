package types

// BenchmarkCase is a single question with a reference answer. Append-only.
type BenchmarkCase struct {
	ID          string `json:"id" yaml:"id"`
	Question    string `json:"question" yaml:"question"`
	GroundTruth string `json:"ground_truth" yaml:"ground_truth"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Validate checks if the BenchmarkCase has all required fields set.
func (c *BenchmarkCase) Validate() error {
	if c.ID == "" {
		return ErrEmptyID
	}
	if c.Question == "" {
		return ErrEmptyQuestion
	}
	return nil
}

// BenchmarkResult records one evaluation run of a case. All sub-scores are
// always reported alongside the composite for auditability.
type BenchmarkResult struct {
	Case BenchmarkCase `json:"case"`

	GeneratedAnswer  string   `json:"generated_answer"`
	RetrievedSources []string `json:"retrieved_sources,omitempty"`

	KeywordRecall     float64 `json:"keyword_recall"`
	SimilarityScore   float64 `json:"similarity_score"`
	FaithfulnessScore float64 `json:"faithfulness_score"`
	RelevanceScore    float64 `json:"relevance_score"`
	// Judged reports whether the LLM judge scores were actually computed.
	Judged bool `json:"judged"`

	CompositeScore float64 `json:"composite_score"`
	TimeTakenMs    int64   `json:"time_taken_ms"`
}

// TuningStepResult records the outcome of evaluating one tuning strategy.
type TuningStepResult struct {
	StrategyName string          `json:"strategy_name"`
	Config       RetrievalConfig `json:"config"`
	Score        float64         `json:"score"`
	// Pass is true when the strategy's mean score reached the acceptance
	// threshold.
	Pass bool `json:"pass"`
}
