// Package stem reduces tokens to language specific normal forms so that
// inflected words in a translation can be matched against an independently
// translated slot value.
package stem

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kljensen/snowball"
	"golang.org/x/text/language"
)

// Stemmer maps a token to its normal form. Implementations are pure.
type Stemmer interface {
	Stem(token string) string
}

// Func adapts a function to Stemmer.
type Func func(string) string

// Stem implements Stemmer.
func (f Func) Stem(token string) string { return f(token) }

// Lower is the fallback stemmer for languages without a Snowball algorithm.
var Lower Stemmer = Func(strings.ToLower)

// snowballLanguages maps ISO 639-1 base codes to snowball algorithm names.
var snowballLanguages = map[string]string{
	"en": "english",
	"es": "spanish",
	"fr": "french",
	"ru": "russian",
	"sv": "swedish",
	"no": "norwegian",
	"nb": "norwegian",
	"hu": "hungarian",
}

// Snowball stems with the Snowball algorithm of one language.
type Snowball struct {
	algorithm string
}

// Stem implements Stemmer. Tokens the algorithm rejects are lower-cased.
func (s Snowball) Stem(token string) string {
	lowered := strings.ToLower(token)
	out, err := snowball.Stem(lowered, s.algorithm, true)
	if err != nil || out == "" {
		return lowered
	}
	return out
}

// Supported reports whether a Snowball algorithm exists for code.
func Supported(code string) bool {
	_, ok := snowballLanguages[baseCode(code)]
	return ok
}

// ForLanguage returns the stemmer for an ISO language code such as "fr" or
// "pt-BR". Unsupported languages get Lower.
func ForLanguage(code string) Stemmer {
	if alg, ok := snowballLanguages[baseCode(code)]; ok {
		return Snowball{algorithm: alg}
	}
	return Lower
}

func baseCode(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	base, _ := tag.Base()
	return base.String()
}

// Cached memoizes another stemmer in a bounded LRU. Safe for concurrent use.
type Cached struct {
	next  Stemmer
	cache *lru.Cache[string, string]
}

// NewCached wraps next with an LRU of the given size.
func NewCached(next Stemmer, size int) (*Cached, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: c}, nil
}

// Stem implements Stemmer.
func (c *Cached) Stem(token string) string {
	if v, ok := c.cache.Get(token); ok {
		return v
	}
	v := c.next.Stem(token)
	c.cache.Add(token, v)
	return v
}

// All stems every token value.
func All(s Stemmer, values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = s.Stem(v)
	}
	return out
}
