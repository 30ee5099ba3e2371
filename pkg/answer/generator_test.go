package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parsdesk/dana/pkg/llm"
	"github.com/parsdesk/dana/pkg/types"
)

type mockLLM struct {
	completeFn func(ctx context.Context, messages []types.Message, temperature float32) (*types.Response, error)
}

func (m *mockLLM) Complete(ctx context.Context, messages []types.Message, temperature float32) (*types.Response, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, messages, temperature)
	}
	return &types.Response{Content: "پاسخ آزمایشی"}, nil
}

func (m *mockLLM) HealthCheck(ctx context.Context) error { return nil }
func (m *mockLLM) Close() error                          { return nil }

var _ llm.Client = (*mockLLM)(nil)

func candidates() []*types.ScoredCandidate {
	return []*types.ScoredCandidate{
		{Passage: &types.Passage{
			ID:      "p1",
			Content: "برای بازیابی رمز عبور روی گزینه فراموشی رمز کلیک کنید",
			Source:  types.SourceRef{ID: "doc-1", Title: "رمز عبور"},
		}},
		{Passage: &types.Passage{
			ID:      "p2",
			Content: "کد تایید به شماره همراه ثبت شده ارسال می‌شود",
			Source:  types.SourceRef{ID: "doc-2", Title: "کد تایید"},
		}},
	}
}

func TestBuildPrompt(t *testing.T) {
	g := NewGenerator(&mockLLM{}, nil)

	t.Run("system first, question last", func(t *testing.T) {
		messages := g.BuildPrompt(types.Query{Text: "چطور رمز را بازیابی کنم؟"}, candidates())

		require.GreaterOrEqual(t, len(messages), 2)
		assert.Equal(t, types.RoleSystem, messages[0].Role)
		last := messages[len(messages)-1]
		assert.Equal(t, types.RoleUser, last.Role)
		assert.Contains(t, last.Content, "پرسش: چطور رمز را بازیابی کنم؟")
	})

	t.Run("passages carry source tags", func(t *testing.T) {
		messages := g.BuildPrompt(types.Query{Text: "پرسش"}, candidates())
		last := messages[len(messages)-1]

		assert.Contains(t, last.Content, "[منبع: doc-1]")
		assert.Contains(t, last.Content, "[منبع: doc-2]")
		assert.Contains(t, last.Content, "فراموشی رمز")
	})

	t.Run("history turns included with roles", func(t *testing.T) {
		query := types.Query{
			Text: "و بعد؟",
			History: []types.Turn{
				{Role: types.RoleUser, Content: "رمزم را فراموش کردم"},
				{Role: types.RoleAssistant, Content: "روی فراموشی رمز کلیک کنید"},
			},
		}
		messages := g.BuildPrompt(query, candidates())

		require.GreaterOrEqual(t, len(messages), 4)
		assert.Equal(t, types.RoleUser, messages[1].Role)
		assert.Equal(t, types.RoleAssistant, messages[2].Role)
	})

	t.Run("long history turns truncated", func(t *testing.T) {
		long := strings.Repeat("ک", 1000)
		query := types.Query{
			Text:    "پرسش",
			History: []types.Turn{{Role: types.RoleUser, Content: long}},
		}
		messages := g.BuildPrompt(query, candidates())
		assert.Less(t, len([]rune(messages[1].Content)), 1000)
	})

	t.Run("only recent history included", func(t *testing.T) {
		var history []types.Turn
		for i := 0; i < 10; i++ {
			history = append(history, types.Turn{Role: types.RoleUser, Content: "نوبت"})
		}
		messages := g.BuildPrompt(types.Query{Text: "پرسش", History: history}, candidates())
		// system + capped history + final user message
		assert.Len(t, messages, 1+types.MaxHistoryTurns+1)
	})
}

func TestClean(t *testing.T) {
	t.Run("strips boilerplate preface", func(t *testing.T) {
		out, err := Clean("بر اساس متن زمینه: برای بازیابی رمز اقدام کنید")
		require.NoError(t, err)
		assert.Equal(t, "برای بازیابی رمز اقدام کنید", out)
	})

	t.Run("strips leading non-persian run", func(t *testing.T) {
		out, err := Clean("Sure! برای بازیابی رمز اقدام کنید")
		require.NoError(t, err)
		assert.Equal(t, "برای بازیابی رمز اقدام کنید", out)
	})

	t.Run("no persian text is a language leakage error", func(t *testing.T) {
		_, err := Clean("To reset your password, click the link.")
		assert.ErrorIs(t, err, ErrLanguageLeakage)
	})

	t.Run("plain persian passes through", func(t *testing.T) {
		out, err := Clean("  برای واریز وجه اقدام کنید  ")
		require.NoError(t, err)
		assert.Equal(t, "برای واریز وجه اقدام کنید", out)
	})
}

func TestGenerate(t *testing.T) {
	t.Run("returns cleaned answer", func(t *testing.T) {
		mock := &mockLLM{completeFn: func(ctx context.Context, messages []types.Message, temperature float32) (*types.Response, error) {
			return &types.Response{Content: "پاسخ: برای بازیابی رمز اقدام کنید"}, nil
		}}
		g := NewGenerator(mock, nil)

		out, err := g.Generate(context.Background(), types.Query{Text: "پرسش"}, candidates(), 0.2)
		require.NoError(t, err)
		assert.Equal(t, "برای بازیابی رمز اقدام کنید", out)
	})

	t.Run("passes the configured temperature", func(t *testing.T) {
		var captured float32
		mock := &mockLLM{completeFn: func(ctx context.Context, messages []types.Message, temperature float32) (*types.Response, error) {
			captured = temperature
			return &types.Response{Content: "پاسخ فارسی"}, nil
		}}
		g := NewGenerator(mock, nil)

		_, err := g.Generate(context.Background(), types.Query{Text: "پرسش"}, candidates(), 0.7)
		require.NoError(t, err)
		assert.Equal(t, float32(0.7), captured)
	})

	t.Run("provider error propagates", func(t *testing.T) {
		mock := &mockLLM{completeFn: func(ctx context.Context, messages []types.Message, temperature float32) (*types.Response, error) {
			return nil, errors.New("boom")
		}}
		g := NewGenerator(mock, nil)

		_, err := g.Generate(context.Background(), types.Query{Text: "پرسش"}, candidates(), 0.2)
		assert.Error(t, err)
	})

	t.Run("english-only output surfaces language leakage", func(t *testing.T) {
		mock := &mockLLM{completeFn: func(ctx context.Context, messages []types.Message, temperature float32) (*types.Response, error) {
			return &types.Response{Content: "I cannot help with that."}, nil
		}}
		g := NewGenerator(mock, nil)

		_, err := g.Generate(context.Background(), types.Query{Text: "پرسش"}, candidates(), 0.2)
		assert.ErrorIs(t, err, ErrLanguageLeakage)
	})
}
