// Package terms normalizes Persian/English support-desk text, extracts the
// critical terms of a query, and expands queries with domain synonyms.
//
// All operations are pure functions of the input text and the static
// keyword/synonym tables. No hidden state, no network calls: the evaluation
// harness relies on this to run thousands of scoring calls reproducibly.
package terms

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// maxSynonymSample bounds how many synonyms are appended when the canonical
// term itself is already present in the query.
const maxSynonymSample = 2

var (
	numericTokenRe = regexp.MustCompile(`^[0-9]{3,}$`)
	// identifier-like tokens: latin letters optionally joined to digits,
	// e.g. "t+1", "etf2", "api"
	identTokenRe = regexp.MustCompile(`^[a-z]+[+\-]?[0-9]+$`)
	latinWordRe  = regexp.MustCompile(`^[a-z]{2,6}$`)
)

// arabicFold maps Arabic letter variants onto their Persian forms so that
// lexical matching is insensitive to the source keyboard.
var arabicFold = map[rune]rune{
	'ي': 'ی',
	'ك': 'ک',
	'ة': 'ه',
	'أ': 'ا',
	'إ': 'ا',
	'آ': 'ا',
	'ؤ': 'و',
	'ٔ': 0,
	'ً': 0, 'ٌ': 0, 'ٍ': 0, 'َ': 0, 'ُ': 0, 'ِ': 0, 'ّ': 0, 'ْ': 0,
}

// Tables holds the static keyword, stop-word, and synonym tables.
type Tables struct {
	// Keywords are domain terms that are always critical regardless of length.
	Keywords []string `yaml:"keywords"`
	// StopWords are excluded from critical-term extraction and recall scoring.
	StopWords []string `yaml:"stop_words"`
	// Synonyms maps a canonical term to its registered synonyms.
	// Expansion is one-directional: synonym -> canonical.
	Synonyms map[string][]string `yaml:"synonyms"`
}

// LoadTables reads a Tables override from a YAML file.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}
	tables := &Tables{}
	if err := yaml.Unmarshal(data, tables); err != nil {
		return nil, fmt.Errorf("failed to parse tables file: %w", err)
	}
	return tables, nil
}

// Processor performs normalization, critical-term extraction, and synonym
// expansion. Safe for concurrent use; all state is immutable after creation.
type Processor struct {
	keywords  map[string]struct{}
	stopWords map[string]struct{}
	synonyms  map[string][]string
	// canonicals holds the synonym table keys in sorted order so that
	// expansion output is deterministic.
	canonicals []string
}

// NewProcessor creates a Processor. A nil tables argument uses the built-in
// domain tables.
func NewProcessor(tables *Tables) *Processor {
	if tables == nil {
		tables = DefaultTables()
	}

	p := &Processor{
		keywords:  make(map[string]struct{}, len(tables.Keywords)),
		stopWords: make(map[string]struct{}, len(tables.StopWords)),
		synonyms:  make(map[string][]string, len(tables.Synonyms)),
	}
	for _, kw := range tables.Keywords {
		p.keywords[normalize(kw)] = struct{}{}
	}
	for _, sw := range tables.StopWords {
		p.stopWords[normalize(sw)] = struct{}{}
	}
	for canonical, syns := range tables.Synonyms {
		key := normalize(canonical)
		normalized := make([]string, 0, len(syns))
		for _, s := range syns {
			normalized = append(normalized, normalize(s))
		}
		p.synonyms[key] = normalized
		p.canonicals = append(p.canonicals, key)
	}
	sort.Strings(p.canonicals)

	return p
}

// Normalize lower-cases text, folds Arabic letter variants and eastern digits,
// strips punctuation, and collapses whitespace.
func (p *Processor) Normalize(text string) string {
	return normalize(text)
}

func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(text) {
		if folded, ok := arabicFold[r]; ok {
			if folded != 0 {
				b.WriteRune(folded)
			}
			continue
		}
		switch {
		case r >= '۰' && r <= '۹': // Persian digits
			b.WriteRune('0' + r - '۰')
		case r >= '٠' && r <= '٩': // Arabic-Indic digits
			b.WriteRune('0' + r - '٠')
		case r == '‌': // zero-width non-joiner acts as a word break
			b.WriteRune(' ')
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// identifier joiners like T+1 survive normalization
			if r == '+' || r == '-' {
				b.WriteRune(r)
			} else {
				b.WriteRune(' ')
			}
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize splits normalized text into tokens.
func (p *Processor) Tokenize(text string) []string {
	return strings.Fields(normalize(text))
}

// IsStopWord reports whether the normalized token is in the stop-word table.
func (p *Processor) IsStopWord(token string) bool {
	_, ok := p.stopWords[normalize(token)]
	return ok
}

// ExtractCriticalTerms returns the query tokens that carry retrieval signal,
// in first-occurrence order without duplicates:
//
//   - numeric tokens of length >= 3 (error/ticket codes)
//   - identifier-like alphanumeric tokens (T+1, API)
//   - tokens in the domain-keyword table, or of length >= 4, excluding
//     stop words
func (p *Processor) ExtractCriticalTerms(query string) []string {
	tokens := p.Tokenize(query)

	var critical []string
	seen := make(map[string]struct{}, len(tokens))

	add := func(token string) {
		if _, dup := seen[token]; dup {
			return
		}
		seen[token] = struct{}{}
		critical = append(critical, token)
	}

	for _, token := range tokens {
		switch {
		case numericTokenRe.MatchString(token):
			add(token)
		case identTokenRe.MatchString(token):
			add(token)
		case latinWordRe.MatchString(token) && !p.IsStopWord(token):
			// short latin tokens inside Persian queries are almost always
			// acronyms or product names (NAV, API, ETF)
			add(token)
		default:
			if _, stop := p.stopWords[token]; stop {
				continue
			}
			if _, kw := p.keywords[token]; kw || len([]rune(token)) >= 4 {
				add(token)
			}
		}
	}

	return critical
}

// ExpandWithSynonyms appends canonical terms when the query contains any of
// their registered synonyms. When the canonical term is already present, a
// small sample of its synonyms is appended instead, to aid lexical recall in
// both directions. The original query text is preserved as a prefix.
func (p *Processor) ExpandWithSynonyms(query string) string {
	normalized := " " + normalize(query) + " "

	contains := func(term string) bool {
		return strings.Contains(normalized, " "+term+" ")
	}

	var additions []string
	for _, canonical := range p.canonicals {
		if contains(canonical) {
			sampled := 0
			for _, syn := range p.synonyms[canonical] {
				if sampled == maxSynonymSample {
					break
				}
				if !contains(syn) {
					additions = append(additions, syn)
					sampled++
				}
			}
			continue
		}
		for _, syn := range p.synonyms[canonical] {
			if contains(syn) {
				additions = append(additions, canonical)
				break
			}
		}
	}

	if len(additions) == 0 {
		return query
	}
	return query + " " + strings.Join(additions, " ")
}
