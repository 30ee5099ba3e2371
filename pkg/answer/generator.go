// Package answer builds the grounded generation prompt and post-processes
// the completion output.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/parsdesk/dana/pkg/llm"
	"github.com/parsdesk/dana/pkg/types"
)

// ErrLanguageLeakage is returned when the cleaned output contains no Persian
// characters at all: the model answered in the wrong language. This is a
// generation failure, not a crash.
var ErrLanguageLeakage = errors.New("generated answer contains no Persian text")

// maxTurnRunes truncates each history turn included in the prompt.
const maxTurnRunes = 300

const systemPrompt = `شما دستیار پشتیبانی کارگزاری هستید. فقط بر اساس متن‌های زمینه که در ادامه می‌آید پاسخ دهید.
قوانین:
- اگر اطلاعات لازم در زمینه نیست، صریحاً بگویید «این اطلاعات در مستندات موجود نیست».
- اگر پرسش درباره «چطور» یا «مراحل» است، ترتیب مراحل را دقیقاً همان‌طور که در زمینه آمده حفظ کنید.
- پاسخ را به زبان فارسی بنویسید.
- هیچ اطلاعاتی خارج از زمینه اضافه نکنید.`

var (
	persianCharRe = regexp.MustCompile(`[\x{0600}-\x{06FF}]`)
	// leadingNoiseRe strips a leading run of non-Persian characters that
	// some models emit before switching to the target language.
	leadingNoiseRe = regexp.MustCompile(`^[^\x{0600}-\x{06FF}]+`)
	// boilerplateRe strips preface phrases the model prepends to answers.
	boilerplateRe = regexp.MustCompile(`^(?:بر اساس (?:متن|اطلاعات|مستندات|زمینه)[^:،.]*[:،.]?\s*|پاسخ\s*[:：]\s*|Based on the provided context[:,]?\s*|According to the context[:,]?\s*)`)
)

// Generator produces grounded answers from retrieved candidates.
type Generator struct {
	llm    llm.Client
	logger *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(client llm.Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llm: client, logger: logger}
}

// Generate builds the grounded prompt and invokes the completion provider
// once, non-streaming, at the given temperature.
func (g *Generator) Generate(ctx context.Context, query types.Query, candidates []*types.ScoredCandidate, temperature float32) (string, error) {
	messages := g.BuildPrompt(query, candidates)

	resp, err := g.llm.Complete(ctx, messages, temperature)
	if err != nil {
		return "", err
	}

	answer, err := Clean(resp.Content)
	if err != nil {
		g.logger.Warn("generation produced non-Persian output", "model", resp.Model)
		return "", err
	}
	return answer, nil
}

// BuildPrompt assembles the system instruction, the truncated recent history,
// the source-tagged passage texts, and the question into a message list.
func (g *Generator) BuildPrompt(query types.Query, candidates []*types.ScoredCandidate) []types.Message {
	messages := []types.Message{llm.NewSystemMessage(systemPrompt)}

	for _, turn := range query.RecentHistory() {
		content := truncate(turn.Content, maxTurnRunes)
		switch turn.Role {
		case types.RoleAssistant:
			messages = append(messages, llm.NewAssistantMessage(content))
		default:
			messages = append(messages, llm.NewUserMessage(content))
		}
	}

	var b strings.Builder
	b.WriteString("زمینه:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "[منبع: %s]\n%s\n\n", c.Passage.Source.ID, c.Passage.Content)
	}
	b.WriteString("پرسش: ")
	b.WriteString(query.Text)
	messages = append(messages, llm.NewUserMessage(b.String()))

	return messages
}

// Clean strips boilerplate prefaces and leading non-Persian runs from the
// generated text. It returns ErrLanguageLeakage when nothing Persian remains.
func Clean(content string) (string, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = boilerplateRe.ReplaceAllString(cleaned, "")

	if !persianCharRe.MatchString(cleaned) {
		return "", ErrLanguageLeakage
	}

	cleaned = leadingNoiseRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned), nil
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "…"
}
