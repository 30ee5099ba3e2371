// Package scoring combines vector similarity and lexical signals into the
// relevance scores used by the retrieval pipeline.
//
// The design is two-tier on purpose: the recall-stage keyword score is capped
// at 1.0 so scores stay comparable across passages for thresholding, while
// the precision-stage bonus is unbounded so exact-identifier matches override
// weaker semantic ties.
package scoring

import (
	"math"
	"regexp"
	"strings"

	"github.com/parsdesk/dana/pkg/terms"
)

const (
	// fullMatchMinQueryLen guards the full-substring shortcut against
	// trivially short queries.
	fullMatchMinQueryLen = 10

	bigramWeight        = 0.3
	unigramWeight       = 0.05
	maxUnigramCount     = 3
	coverageWeight      = 0.4
	fullCoverageBonus   = 0.2
	// NumericCodeBonus is added per 3+-digit code from the query found
	// verbatim in a passage. Numeric identifiers are near-certain relevance
	// signals and must dominate ranking when present.
	NumericCodeBonus = 5.0
)

var numericCodeRe = regexp.MustCompile(`[0-9]{3,}`)

// Scores holds the two recall-stage signals for a (query, passage) pair.
type Scores struct {
	// Vector is cosine similarity clamped to [0,1].
	Vector float64
	// Keyword is the capped lexical recall score.
	Keyword float64
}

// CosineSimilarity computes cosine similarity between two vectors.
// Mismatched lengths and zero vectors score 0, which absorbs the
// zero-vector fallback of a failed embedding call.
func CosineSimilarity(vector1, vector2 []float32) float64 {
	if len(vector1) != len(vector2) {
		return 0.0
	}

	var dotProduct float64
	var norm1, norm2 float64

	for i := range vector1 {
		dotProduct += float64(vector1[i]) * float64(vector2[i])
		norm1 += float64(vector1[i]) * float64(vector1[i])
		norm2 += float64(vector2[i]) * float64(vector2[i])
	}

	norm1 = math.Sqrt(norm1)
	norm2 = math.Sqrt(norm2)

	if norm1 == 0 || norm2 == 0 {
		return 0.0 // Handle zero vectors
	}

	return dotProduct / (norm1 * norm2)
}

// VectorScore clamps cosine similarity into [0,1].
func VectorScore(queryVector, passageVector []float32) float64 {
	sim := CosineSimilarity(queryVector, passageVector)
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// Scorer computes lexical scores using the shared term processor.
type Scorer struct {
	processor *terms.Processor
}

// NewScorer creates a Scorer.
func NewScorer(processor *terms.Processor) *Scorer {
	return &Scorer{processor: processor}
}

// KeywordScore computes the capped recall-stage lexical score of a passage
// against a query:
//
//   - an exact full-query substring match (query longer than 10 chars)
//     scores 1.0 immediately
//   - otherwise: +0.3 per matched adjacent-term bigram, +0.05 x
//     min(occurrences,3) per matched unigram, +0.4 x unigram coverage,
//     and +0.2 when every unigram matched; capped at 1.0
func (s *Scorer) KeywordScore(query, passageText string) float64 {
	normalizedQuery := s.processor.Normalize(query)
	normalizedPassage := s.processor.Normalize(passageText)

	if len([]rune(normalizedQuery)) > fullMatchMinQueryLen && strings.Contains(normalizedPassage, normalizedQuery) {
		return 1.0
	}

	tokens := strings.Fields(normalizedQuery)
	if len(tokens) == 0 {
		return 0
	}

	score := 0.0

	for i := 0; i+1 < len(tokens); i++ {
		bigram := tokens[i] + " " + tokens[i+1]
		if strings.Contains(normalizedPassage, bigram) {
			score += bigramWeight
		}
	}

	matched := 0
	for _, token := range tokens {
		count := strings.Count(normalizedPassage, token)
		if count == 0 {
			continue
		}
		matched++
		if count > maxUnigramCount {
			count = maxUnigramCount
		}
		score += unigramWeight * float64(count)
	}

	score += coverageWeight * float64(matched) / float64(len(tokens))
	if matched == len(tokens) {
		score += fullCoverageBonus
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// AdvancedScore computes the precision-stage score used for reranking: the
// capped keyword score plus an unbounded +5.0 per numeric code (3+ digits)
// from the query found verbatim in the passage.
func (s *Scorer) AdvancedScore(query, passageText string) float64 {
	score := s.KeywordScore(query, passageText)

	normalizedQuery := s.processor.Normalize(query)
	normalizedPassage := s.processor.Normalize(passageText)

	seen := make(map[string]struct{})
	for _, code := range numericCodeRe.FindAllString(normalizedQuery, -1) {
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		if strings.Contains(normalizedPassage, code) {
			score += NumericCodeBonus
		}
	}

	return score
}

// Score computes the recall-stage signal pair for a (query, passage) pair.
func (s *Scorer) Score(queryVector, passageVector []float32, query, passageText string) Scores {
	return Scores{
		Vector:  VectorScore(queryVector, passageVector),
		Keyword: s.KeywordScore(query, passageText),
	}
}
