// Package rewrite turns possibly-elliptical follow-up questions into
// standalone search queries, and generates alternative phrasings for the
// multi-query fallback.
package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/parsdesk/dana/pkg/llm"
	"github.com/parsdesk/dana/pkg/types"
)

const (
	// rewriteTemperature keeps the rewrite deterministic-ish.
	rewriteTemperature float32 = 0.1
	// alternativesTemperature is deliberately high to maximize phrasing
	// diversity in the fallback.
	alternativesTemperature float32 = 0.9

	// minRewriteLen rejects degenerate rewriter output. Rewriting must
	// never make the system strictly worse than not rewriting.
	minRewriteLen = 3
)

const rewriteSystemPrompt = `شما یک بازنویس پرسش برای موتور جستجوی پایگاه دانش هستید.
پرسش کاربر ممکن است به گفتگوی قبلی اشاره داشته باشد. وظیفه شما:
- ضمایر و اشاره‌ها را با موجودیت مشخص از تاریخچه جایگزین کنید.
- پرسش‌های ناقص مانند «چطور درستش کنم؟» را با موضوع مشخص کامل کنید.
- اگر پرسش از قبل مستقل و کامل است، آن را بدون تغییر برگردانید.
فقط پرسش بازنویسی‌شده را برگردانید، بدون هیچ توضیح اضافه.`

const alternativesSystemPrompt = `شما یک دستیار جستجو هستید. برای پرسش داده‌شده، %d عبارت جایگزین با همان معنا اما واژگان متفاوت بنویسید.
هر عبارت را در یک خط جداگانه و بدون شماره‌گذاری برگردانید.`

var (
	thinkTagRe   = regexp.MustCompile(`(?s)<think>.*?</think>`)
	lineBulletRe = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)．]|[۰-۹]+[.)])\s*`)
)

// fillerTokens are politeness/filler words the optimizer strips.
var fillerTokens = map[string]struct{}{
	"لطفا": {}, "لطفاً": {}, "ممنون": {}, "ممنونم": {}, "مرسی": {},
	"سلام": {}, "خواهشمندم": {}, "میشه": {}, "می‌شه": {}, "بگید": {},
	"بگویید": {}, "بفرمایید": {}, "تشکر": {}, "عزیز": {},
	"please": {}, "thanks": {}, "thank": {}, "hi": {}, "hello": {}, "kindly": {},
}

// proceduralTokens carry procedural intent ("how", "steps") and are domain
// signal, not noise. They survive optimization even when they look like
// function words.
var proceduralTokens = map[string]struct{}{
	"چطور": {}, "چگونه": {}, "مراحل": {}, "مرحله": {}, "روش": {},
	"نحوه": {}, "طریقه": {},
	"how": {}, "steps": {}, "step": {}, "method": {}, "way": {},
}

// Rewriter produces standalone search queries from conversational input.
type Rewriter struct {
	llm    llm.Client
	logger *slog.Logger
}

// NewRewriter creates a Rewriter.
func NewRewriter(client llm.Client, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rewriter{llm: client, logger: logger}
}

// Rewrite returns a standalone search query for the given request.
//
// With no history it falls back to the lighter-weight Optimize step. With
// history it asks the completion provider to resolve pronouns and elliptical
// follow-ups against the last turns. Provider errors and degenerate outputs
// degrade silently to the raw query.
func (r *Rewriter) Rewrite(ctx context.Context, query types.Query) string {
	history := query.RecentHistory()
	if len(history) == 0 {
		return Optimize(query.Text)
	}

	var b strings.Builder
	b.WriteString("گفتگوی اخیر:\n")
	for _, turn := range history {
		b.WriteString(string(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nپرسش فعلی کاربر: ")
	b.WriteString(query.Text)

	messages := []types.Message{
		llm.NewSystemMessage(rewriteSystemPrompt),
		llm.NewUserMessage(b.String()),
	}

	resp, err := r.llm.Complete(ctx, messages, rewriteTemperature)
	if err != nil {
		r.logger.Debug("query rewrite failed, using raw query", "error", err)
		return query.Text
	}

	rewritten := sanitize(resp.Content)
	if len([]rune(rewritten)) < minRewriteLen {
		return query.Text
	}
	return rewritten
}

// GenerateAlternatives asks the completion provider for n alternative
// phrasings of the query, for the multi-query fallback.
func (r *Rewriter) GenerateAlternatives(ctx context.Context, query string, n int) ([]string, error) {
	messages := []types.Message{
		llm.NewSystemMessage(fmt.Sprintf(alternativesSystemPrompt, n)),
		llm.NewUserMessage(query),
	}

	resp, err := r.llm.Complete(ctx, messages, alternativesTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to generate alternative queries: %w", err)
	}

	seen := map[string]struct{}{strings.TrimSpace(query): {}}
	var alternatives []string
	for _, line := range strings.Split(sanitize(resp.Content), "\n") {
		alt := strings.TrimSpace(lineBulletRe.ReplaceAllString(line, ""))
		if len([]rune(alt)) < minRewriteLen {
			continue
		}
		if _, dup := seen[alt]; dup {
			continue
		}
		seen[alt] = struct{}{}
		alternatives = append(alternatives, alt)
		if len(alternatives) == n {
			break
		}
	}
	return alternatives, nil
}

// Optimize strips filler and politeness tokens from a query while explicitly
// preserving procedural-intent words. Pure function; used when there is no
// history to rewrite against.
func Optimize(query string) string {
	fields := strings.Fields(query)
	kept := make([]string, 0, len(fields))

	for _, field := range fields {
		key := strings.ToLower(strings.Trim(field, ".,!?؟،؛"))
		if _, procedural := proceduralTokens[key]; procedural {
			kept = append(kept, field)
			continue
		}
		if _, filler := fillerTokens[key]; filler {
			continue
		}
		kept = append(kept, field)
	}

	if len(kept) == 0 {
		return query
	}
	return strings.Join(kept, " ")
}

// sanitize removes think tags and surrounding whitespace/quotes from
// provider output.
func sanitize(content string) string {
	content = thinkTagRe.ReplaceAllString(content, "")
	content = strings.TrimSpace(content)
	return strings.Trim(content, `"'«»`)
}
