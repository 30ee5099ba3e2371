package eval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parsdesk/dana/pkg/embedder"
	"github.com/parsdesk/dana/pkg/llm"
	"github.com/parsdesk/dana/pkg/terms"
	"github.com/parsdesk/dana/pkg/types"
)

// mockAnswerer returns canned results keyed by the configuration it is
// called with.
type mockAnswerer struct {
	answerFn func(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*types.QueryResult, []*types.ScoredCandidate, error)
}

func (m *mockAnswerer) Answer(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*types.QueryResult, []*types.ScoredCandidate, error) {
	return m.answerFn(ctx, query, cfg)
}

var _ Answerer = (*mockAnswerer)(nil)

// zeroEmbedder returns zero vectors so calibrated similarity is always 0.
type zeroEmbedder struct{}

func (zeroEmbedder) Embed(ctx context.Context, texts []string, isQuery bool) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0, 0}
	}
	return out, nil
}

func (zeroEmbedder) EmbedSingle(ctx context.Context, text string, isQuery bool) ([]float32, error) {
	return []float32{0, 0}, nil
}

func (zeroEmbedder) Dimensions() int                      { return 2 }
func (zeroEmbedder) HealthCheck(ctx context.Context) error { return nil }
func (zeroEmbedder) Close() error                          { return nil }

var _ embedder.Client = zeroEmbedder{}

type mockJudge struct {
	content string
}

func (m *mockJudge) Complete(ctx context.Context, messages []types.Message, temperature float32) (*types.Response, error) {
	return &types.Response{Content: m.content}, nil
}

func (m *mockJudge) HealthCheck(ctx context.Context) error { return nil }
func (m *mockJudge) Close() error                          { return nil }

var _ llm.Client = (*mockJudge)(nil)

func newHarness(answerer Answerer, judge llm.Client) *Harness {
	return NewHarness(answerer, zeroEmbedder{}, judge, terms.NewProcessor(nil), nil)
}

func answered(text string) func(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*types.QueryResult, []*types.ScoredCandidate, error) {
	return func(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*types.QueryResult, []*types.ScoredCandidate, error) {
		return &types.QueryResult{RequestID: "r", Text: text}, nil, nil
	}
}

func TestKeywordRecall(t *testing.T) {
	h := newHarness(nil, nil)

	t.Run("stop words excluded from ground truth", func(t *testing.T) {
		// "دارد" is a stop word; both content tokens are present.
		recall := h.KeywordRecall("این فرآیند شامل پنج مرحله است", "پنج مرحله دارد")
		assert.Equal(t, 1.0, recall)
	})

	t.Run("fuzzy match on inflected forms", func(t *testing.T) {
		// "کارمزدها" is not a substring of the answer, but the answer token
		// "کارمزد" is a 4+ char stem of it.
		recall := h.KeywordRecall("کارمزد معاملات", "کارمزدها")
		assert.Equal(t, 1.0, recall)
	})

	t.Run("short tokens require exact containment", func(t *testing.T) {
		recall := h.KeywordRecall("واریز", "وجه")
		assert.Equal(t, 0.0, recall)
	})

	t.Run("partial recall", func(t *testing.T) {
		recall := h.KeywordRecall("واریز انجام شد", "واریز وجه موفق")
		assert.InDelta(t, 1.0/3.0, recall, 1e-9)
	})

	t.Run("normalization bridges digit variants", func(t *testing.T) {
		recall := h.KeywordRecall("خطای 504 رفع شد", "رفع خطای ۵۰۴")
		assert.Equal(t, 1.0, recall)
	})

	t.Run("empty ground truth scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, h.KeywordRecall("پاسخ", ""))
	})
}

func TestComposite(t *testing.T) {
	t.Run("high recall short-circuits", func(t *testing.T) {
		assert.Equal(t, 0.9, Composite(0.9, 0.2, 0, 0, false))
		// Similarity can still raise it.
		assert.Equal(t, 0.95, Composite(0.9, 0.95, 0, 0, false))
	})

	t.Run("unjudged uses the better of the two signals", func(t *testing.T) {
		assert.Equal(t, 0.6, Composite(0.4, 0.6, 0, 0, false))
		assert.Equal(t, 0.5, Composite(0.5, 0.3, 0, 0, false))
	})

	t.Run("judged blends the judge average", func(t *testing.T) {
		// base 0.6, judges average 0.8: 0.7*0.6 + 0.3*0.8
		assert.InDelta(t, 0.66, Composite(0.4, 0.6, 0.9, 0.7, true), 1e-9)
	})

	t.Run("high recall ignores judges", func(t *testing.T) {
		assert.Equal(t, 0.9, Composite(0.9, 0.1, 0.0, 0.0, true))
	})
}

func TestParseJudgeScore(t *testing.T) {
	t.Run("strict json", func(t *testing.T) {
		score, err := parseJudgeScore(`{"score": 0.8}`)
		require.NoError(t, err)
		assert.Equal(t, 0.8, score)
	})

	t.Run("repairable json", func(t *testing.T) {
		score, err := parseJudgeScore("{score: 0.6}")
		require.NoError(t, err)
		assert.Equal(t, 0.6, score)
	})

	t.Run("number in prose", func(t *testing.T) {
		score, err := parseJudgeScore("امتیاز نهایی: 0.75 از یک")
		require.NoError(t, err)
		assert.Equal(t, 0.75, score)
	})

	t.Run("clamped to unit range", func(t *testing.T) {
		score, err := parseJudgeScore(`{"score": 1.7}`)
		require.NoError(t, err)
		assert.Equal(t, 1.0, score)
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, err := parseJudgeScore("هیچ عددی اینجا نیست")
		assert.Error(t, err)
	})
}

func TestEvaluateCase(t *testing.T) {
	benchCase := types.BenchmarkCase{
		ID:          "case-1",
		Question:    "واریز وجه چگونه است؟",
		GroundTruth: "واریز وجه موفق",
	}

	t.Run("perfect answer scores 1.0 without judging", func(t *testing.T) {
		h := newHarness(&mockAnswerer{answerFn: answered("واریز وجه موفق")}, nil)

		result, err := h.EvaluateCase(context.Background(), benchCase, types.DefaultRetrievalConfig())
		require.NoError(t, err)

		assert.Equal(t, 1.0, result.KeywordRecall)
		assert.Equal(t, 1.0, result.CompositeScore)
		assert.False(t, result.Judged)
	})

	t.Run("judge scores populate when a judge is configured", func(t *testing.T) {
		judge := &mockJudge{content: `{"score": 0.9}`}
		h := newHarness(&mockAnswerer{answerFn: answered("پاسخ بی ربط")}, judge)

		result, err := h.EvaluateCase(context.Background(), benchCase, types.DefaultRetrievalConfig())
		require.NoError(t, err)

		assert.True(t, result.Judged)
		assert.Equal(t, 0.9, result.FaithfulnessScore)
		assert.Equal(t, 0.9, result.RelevanceScore)
		// base 0 blended with judge average 0.9.
		assert.InDelta(t, 0.27, result.CompositeScore, 1e-9)
	})

	t.Run("terminal pipeline outcome scores zero but reports", func(t *testing.T) {
		h := newHarness(&mockAnswerer{answerFn: func(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*types.QueryResult, []*types.ScoredCandidate, error) {
			return &types.QueryResult{RequestID: "r", Error: types.ResultErrorNoInformation}, nil, nil
		}}, nil)

		result, err := h.EvaluateCase(context.Background(), benchCase, types.DefaultRetrievalConfig())
		require.NoError(t, err)

		assert.Equal(t, 0.0, result.CompositeScore)
		assert.Equal(t, "case-1", result.Case.ID)
	})
}

func TestEvaluateSuite(t *testing.T) {
	cases := []types.BenchmarkCase{
		{ID: "c1", Question: "پرسش یک", GroundTruth: "واریز وجه موفق"},
		{ID: "c2", Question: "پرسش دو", GroundTruth: "واریز وجه موفق"},
		{ID: "c3", Question: "پرسش سه", GroundTruth: "واریز وجه موفق"},
	}

	t.Run("results keep case order and mean is correct", func(t *testing.T) {
		h := newHarness(&mockAnswerer{answerFn: func(ctx context.Context, query types.Query, cfg types.RetrievalConfig) (*types.QueryResult, []*types.ScoredCandidate, error) {
			// Only the first question gets a perfect answer.
			if query.Text == "پرسش یک" {
				return &types.QueryResult{Text: "واریز وجه موفق"}, nil, nil
			}
			return &types.QueryResult{Text: "پاسخ بی ربط"}, nil, nil
		}}, nil)

		suite, err := h.EvaluateSuite(context.Background(), cases, types.DefaultRetrievalConfig())
		require.NoError(t, err)

		require.Len(t, suite.Results, 3)
		assert.Equal(t, "c1", suite.Results[0].Case.ID)
		assert.Equal(t, "c2", suite.Results[1].Case.ID)
		assert.Equal(t, "c3", suite.Results[2].Case.ID)
		assert.InDelta(t, 1.0/3.0, suite.MeanScore, 1e-9)
	})

	t.Run("empty suite is an error", func(t *testing.T) {
		h := newHarness(&mockAnswerer{answerFn: answered("پاسخ")}, nil)
		_, err := h.EvaluateSuite(context.Background(), nil, types.DefaultRetrievalConfig())
		assert.Error(t, err)
	})
}
