package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parsdesk/dana/pkg/types"
)

func TestAskRequestValidate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		req := AskRequest{Question: "چطور واریز کنم؟"}
		assert.NoError(t, req.Validate())
	})

	t.Run("blank question rejected", func(t *testing.T) {
		req := AskRequest{Question: "   "}
		assert.Error(t, req.Validate())
	})

	t.Run("overlong question rejected", func(t *testing.T) {
		req := AskRequest{Question: strings.Repeat("a", MaxQuestionLength+1)}
		assert.ErrorIs(t, req.Validate(), ErrQuestionTooLong)
	})

	t.Run("invalid history role rejected", func(t *testing.T) {
		req := AskRequest{
			Question: "پرسش",
			History:  []Message{{Role: "system", Content: "x"}},
		}
		assert.Error(t, req.Validate())
	})
}

func TestAskRequestApply(t *testing.T) {
	base := types.DefaultRetrievalConfig()

	t.Run("no overrides keeps the base", func(t *testing.T) {
		req := AskRequest{Question: "پرسش"}
		assert.Equal(t, base, req.Apply(base))
	})

	t.Run("overrides replace only the set fields", func(t *testing.T) {
		minConf := 0.5
		topK := 3
		req := AskRequest{Question: "پرسش", MinConfidence: &minConf, TopK: &topK}

		got := req.Apply(base)
		assert.Equal(t, 0.5, got.MinConfidence)
		assert.Equal(t, 3, got.TopK)
		assert.Equal(t, base.Temperature, got.Temperature)
	})
}

func TestAskRequestQuery(t *testing.T) {
	req := AskRequest{
		Question: "و بعد؟",
		Category: "مالی",
		History: []Message{
			{Role: "user", Content: "واریز چطور است؟"},
			{Role: "Assistant", Content: "از درگاه بانکی"},
		},
	}

	q := req.Query()
	assert.Equal(t, "و بعد؟", q.Text)
	assert.Equal(t, "مالی", q.CategoryFilter)
	assert.Equal(t, types.RoleUser, q.History[0].Role)
	assert.Equal(t, types.RoleAssistant, q.History[1].Role)
}

func TestNewAskResponse(t *testing.T) {
	result := &types.QueryResult{
		RequestID: "r1",
		Text:      "پاسخ",
		Sources:   []types.SourceRef{{ID: "doc-1"}},
		Debug:     types.DebugInfo{Strategy: "primary"},
	}

	t.Run("debug excluded by default", func(t *testing.T) {
		resp := NewAskResponse(result, false)
		assert.Nil(t, resp.Debug)
		assert.Equal(t, "پاسخ", resp.Answer)
	})

	t.Run("debug included on request", func(t *testing.T) {
		resp := NewAskResponse(result, true)
		assert.NotNil(t, resp.Debug)
		assert.Equal(t, "primary", resp.Debug.Strategy)
	})
}
