package terms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	p := NewProcessor(nil)

	t.Run("folds arabic variants to persian", func(t *testing.T) {
		assert.Equal(t, "کیف", p.Normalize("كيف"))
	})

	t.Run("folds eastern digits to ascii", func(t *testing.T) {
		assert.Equal(t, "خطای 504", p.Normalize("خطای ۵۰۴"))
		assert.Equal(t, "504", p.Normalize("٥٠٤"))
	})

	t.Run("zwnj becomes a word break", func(t *testing.T) {
		assert.Equal(t, "می شود", p.Normalize("می‌شود"))
	})

	t.Run("punctuation stripped, identifier joiners kept", func(t *testing.T) {
		assert.Equal(t, "تسویه t+1 چیست", p.Normalize("تسویه T+1 چیست؟"))
	})

	t.Run("whitespace collapsed", func(t *testing.T) {
		assert.Equal(t, "a b", p.Normalize("  a \t b  "))
	})
}

func TestExtractCriticalTerms(t *testing.T) {
	p := NewProcessor(nil)

	t.Run("numeric codes are critical", func(t *testing.T) {
		terms := p.ExtractCriticalTerms("خطای ۵۰۴ در سامانه")
		assert.Contains(t, terms, "504")
	})

	t.Run("short numbers are not", func(t *testing.T) {
		terms := p.ExtractCriticalTerms("مرحله 2 چیست")
		assert.NotContains(t, terms, "2")
	})

	t.Run("identifier-like tokens are critical", func(t *testing.T) {
		terms := p.ExtractCriticalTerms("تسویه T+1 و API چطور است")
		assert.Contains(t, terms, "t+1")
		assert.Contains(t, terms, "api")
	})

	t.Run("stop words excluded", func(t *testing.T) {
		terms := p.ExtractCriticalTerms("چگونه از سامانه استفاده کنم")
		assert.NotContains(t, terms, "چگونه")
	})

	t.Run("domain keywords are critical regardless of length", func(t *testing.T) {
		terms := p.ExtractCriticalTerms("nav چیست")
		assert.Contains(t, terms, "nav")
	})

	t.Run("first occurrence order without duplicates", func(t *testing.T) {
		terms := p.ExtractCriticalTerms("کارمزد فروش کارمزد خرید")
		require.Equal(t, []string{"کارمزد", "فروش", "خرید"}, terms)
	})
}

func TestExpandWithSynonyms(t *testing.T) {
	p := NewProcessor(nil)

	t.Run("synonym pulls in canonical", func(t *testing.T) {
		expanded := p.ExpandWithSynonyms("پسورد را فراموش کردم")
		assert.Contains(t, expanded, "رمز عبور")
	})

	t.Run("canonical pulls in a bounded synonym sample", func(t *testing.T) {
		expanded := p.ExpandWithSynonyms("رمز عبور را فراموش کردم")
		assert.NotEqual(t, "رمز عبور را فراموش کردم", expanded)
	})

	t.Run("original query preserved as prefix", func(t *testing.T) {
		query := "پسورد چیست"
		expanded := p.ExpandWithSynonyms(query)
		assert.Equal(t, query, expanded[:len(query)])
	})

	t.Run("no matches returns query unchanged", func(t *testing.T) {
		query := "موضوعی بدون مترادف"
		assert.Equal(t, query, p.ExpandWithSynonyms(query))
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		first := p.ExpandWithSynonyms("پسورد و نماد")
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, p.ExpandWithSynonyms("پسورد و نماد"))
		}
	})
}

func TestCustomTables(t *testing.T) {
	p := NewProcessor(&Tables{
		Keywords:  []string{"xyz"},
		StopWords: []string{"foo"},
		Synonyms:  map[string][]string{"alpha": {"beta"}},
	})

	assert.Contains(t, p.ExtractCriticalTerms("xyz foo"), "xyz")
	assert.NotContains(t, p.ExtractCriticalTerms("کلمه foo"), "foo")
	assert.Contains(t, p.ExpandWithSynonyms("beta چیست"), "alpha")
}
