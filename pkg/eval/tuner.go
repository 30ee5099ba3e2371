package eval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parsdesk/dana/pkg/types"
)

// AcceptanceThreshold is the mean composite score at which a strategy is
// accepted and the remaining grid is skipped.
const AcceptanceThreshold = 0.85

// Strategy is one named point of the tuning grid.
type Strategy struct {
	Name   string
	Config types.RetrievalConfig
}

// DefaultStrategies is the fixed tuning grid, evaluated in order. The order
// is part of the contract: earlier strategies are cheaper or safer defaults,
// and the first one to reach the acceptance threshold wins.
func DefaultStrategies() []Strategy {
	base := types.DefaultRetrievalConfig()

	baseline := base

	precision := base
	precision.MinConfidence = 0.5
	precision.Temperature = 0.1

	keywordHeavy := base
	keywordHeavy.VectorWeight = 0.5

	highRecall := base
	highRecall.MinConfidence = 0.15
	highRecall.RecallSize = 50

	creative := base
	creative.MinConfidence = 0.2
	creative.Temperature = 0.5

	return []Strategy{
		{Name: "Baseline", Config: baseline},
		{Name: "Precision Mode", Config: precision},
		{Name: "Keyword Heavy", Config: keywordHeavy},
		{Name: "High Recall", Config: highRecall},
		{Name: "Creative", Config: creative},
	}
}

// TuningOutcome is the result of one tuner run.
type TuningOutcome struct {
	// Steps records every strategy that was evaluated, in grid order.
	Steps []types.TuningStepResult `json:"steps"`
	// Best is the winning step: the accepted strategy, or the best-scoring
	// one when nothing reached the threshold.
	Best types.TuningStepResult `json:"best"`
	// Accepted reports whether Best reached the acceptance threshold.
	Accepted bool `json:"accepted"`
}

// Tuner evaluates the strategy grid against a benchmark suite and picks the
// retrieval configuration to run with.
type Tuner struct {
	harness    *Harness
	strategies []Strategy
	logger     *slog.Logger
}

// NewTuner creates a Tuner. A nil strategies slice uses the default grid.
func NewTuner(harness *Harness, strategies []Strategy, logger *slog.Logger) *Tuner {
	if strategies == nil {
		strategies = DefaultStrategies()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tuner{harness: harness, strategies: strategies, logger: logger}
}

// Run evaluates strategies in grid order. Each strategy's mean is computed
// over the full suite before the acceptance decision; a passing strategy
// short-circuits the rest of the grid.
func (t *Tuner) Run(ctx context.Context, cases []types.BenchmarkCase) (*TuningOutcome, error) {
	if len(t.strategies) == 0 {
		return nil, fmt.Errorf("no tuning strategies configured")
	}

	outcome := &TuningOutcome{}
	bestIdx := -1

	for _, strategy := range t.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t.logger.Info("evaluating tuning strategy",
			"strategy", strategy.Name,
			"min_confidence", strategy.Config.MinConfidence,
			"temperature", strategy.Config.Temperature,
			"vector_weight", strategy.Config.VectorWeight,
		)

		suite, err := t.harness.EvaluateSuite(ctx, cases, strategy.Config)
		if err != nil {
			return nil, fmt.Errorf("strategy %q failed: %w", strategy.Name, err)
		}

		step := types.TuningStepResult{
			StrategyName: strategy.Name,
			Config:       strategy.Config,
			Score:        suite.MeanScore,
			Pass:         suite.MeanScore >= AcceptanceThreshold,
		}
		outcome.Steps = append(outcome.Steps, step)

		t.logger.Info("tuning strategy scored",
			"strategy", strategy.Name,
			"mean_score", suite.MeanScore,
			"pass", step.Pass,
		)

		if step.Pass {
			outcome.Best = step
			outcome.Accepted = true
			return outcome, nil
		}
		if bestIdx < 0 || step.Score > outcome.Steps[bestIdx].Score {
			bestIdx = len(outcome.Steps) - 1
		}
	}

	outcome.Best = outcome.Steps[bestIdx]
	return outcome, nil
}
