package dana

import (
	"context"

	"github.com/parsdesk/dana/pkg/eval"
	"github.com/parsdesk/dana/pkg/types"
)

// Benchmark evaluates the suite under the client's default retrieval
// parameters.
func (c *Client) Benchmark(ctx context.Context, cases []types.BenchmarkCase) (*eval.SuiteResult, error) {
	return c.harness.EvaluateSuite(ctx, cases, c.config.Retrieval)
}

// BenchmarkWith evaluates the suite under explicit retrieval parameters.
func (c *Client) BenchmarkWith(ctx context.Context, cases []types.BenchmarkCase, cfg types.RetrievalConfig) (*eval.SuiteResult, error) {
	return c.harness.EvaluateSuite(ctx, cases, cfg.Normalized())
}

// Tune runs the strategy grid against the suite and adopts the winning
// configuration as the client's new default.
func (c *Client) Tune(ctx context.Context, cases []types.BenchmarkCase) (*eval.TuningOutcome, error) {
	outcome, err := c.tuner.Run(ctx, cases)
	if err != nil {
		return nil, err
	}

	c.SetRetrievalConfig(outcome.Best.Config)
	c.logger.Info("tuning complete",
		"strategy", outcome.Best.StrategyName,
		"score", outcome.Best.Score,
		"accepted", outcome.Accepted,
	)
	return outcome, nil
}

// Harness exposes the evaluation harness for callers that score answers
// outside a full suite run.
func (c *Client) Harness() *eval.Harness {
	return c.harness
}
