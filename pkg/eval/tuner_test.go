package eval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parsdesk/dana/pkg/terms"
	"github.com/parsdesk/dana/pkg/types"
)

func tuningCases() []types.BenchmarkCase {
	return []types.BenchmarkCase{
		{ID: "c1", Question: "پرسش یک", GroundTruth: "واریز وجه موفق"},
		{ID: "c2", Question: "پرسش دو", GroundTruth: "واریز وجه موفق"},
	}
}

// answerByConfig answers perfectly only under the matching configuration, so
// tests can control which strategy wins.
func answerByConfig(match func(cfg types.RetrievalConfig) bool) *mockAnswerer {
	return &mockAnswerer{answerFn: func(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*types.QueryResult, []*types.ScoredCandidate, error) {
		if match(cfg) {
			return &types.QueryResult{Text: "واریز وجه موفق"}, nil, nil
		}
		return &types.QueryResult{Text: "پاسخ بی ربط"}, nil, nil
	}}
}

func TestTunerShortCircuit(t *testing.T) {
	// The "Precision Mode" strategy (second in the grid) is the first to
	// reach the threshold; the grid must stop there.
	answerer := answerByConfig(func(cfg types.RetrievalConfig) bool {
		return cfg.MinConfidence == 0.5
	})
	harness := NewHarness(answerer, zeroEmbedder{}, nil, terms.NewProcessor(nil), nil)
	tuner := NewTuner(harness, nil, nil)

	outcome, err := tuner.Run(context.Background(), tuningCases())
	require.NoError(t, err)

	require.Len(t, outcome.Steps, 2)
	assert.Equal(t, "Baseline", outcome.Steps[0].StrategyName)
	assert.False(t, outcome.Steps[0].Pass)
	assert.Equal(t, "Precision Mode", outcome.Steps[1].StrategyName)
	assert.True(t, outcome.Steps[1].Pass)

	assert.True(t, outcome.Accepted)
	assert.Equal(t, "Precision Mode", outcome.Best.StrategyName)
	assert.Equal(t, 1.0, outcome.Best.Score)
}

func TestTunerBestSeenWhenNothingPasses(t *testing.T) {
	// No strategy reaches the threshold; one case succeeds only under the
	// keyword-heavy configuration, making it the best seen.
	answerer := &mockAnswerer{answerFn: func(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*types.QueryResult, []*types.ScoredCandidate, error) {
		if cfg.VectorWeight == 0.5 && query.Text == "پرسش یک" {
			return &types.QueryResult{Text: "واریز وجه موفق"}, nil, nil
		}
		return &types.QueryResult{Text: "پاسخ بی ربط"}, nil, nil
	}}
	harness := NewHarness(answerer, zeroEmbedder{}, nil, terms.NewProcessor(nil), nil)
	tuner := NewTuner(harness, nil, nil)

	outcome, err := tuner.Run(context.Background(), tuningCases())
	require.NoError(t, err)

	assert.Len(t, outcome.Steps, len(DefaultStrategies()))
	assert.False(t, outcome.Accepted)
	assert.Equal(t, "Keyword Heavy", outcome.Best.StrategyName)
	assert.InDelta(t, 0.5, outcome.Best.Score, 1e-9)
}

func TestTunerCustomStrategies(t *testing.T) {
	answerer := answerByConfig(func(cfg types.RetrievalConfig) bool { return true })
	harness := NewHarness(answerer, zeroEmbedder{}, nil, terms.NewProcessor(nil), nil)

	custom := []Strategy{{Name: "Only", Config: types.DefaultRetrievalConfig()}}
	tuner := NewTuner(harness, custom, nil)

	outcome, err := tuner.Run(context.Background(), tuningCases())
	require.NoError(t, err)

	require.Len(t, outcome.Steps, 1)
	assert.Equal(t, "Only", outcome.Best.StrategyName)
	assert.True(t, outcome.Accepted)
}

func TestDefaultStrategiesOrder(t *testing.T) {
	names := []string{}
	for _, s := range DefaultStrategies() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Baseline", "Precision Mode", "Keyword Heavy", "High Recall", "Creative"}, names)
}
