// Package tokenize splits text into word and punctuation tokens with byte
// offsets into the original string. Whitespace is never part of a token, so
// the text between consecutive tokens is exactly the whitespace gap.
package tokenize

import "regexp"

// Token is a word or punctuation mark. Start and End are byte offsets into
// the tokenized text, End exclusive.
type Token struct {
	Value string
	Start int
	End   int
}

// Tokenizer splits text into ordered tokens. Implementations must be
// deterministic and lossless: text[t.Start:t.End] == t.Value.
type Tokenizer interface {
	Tokenize(text string) []Token
}

var tokenRe = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+|[^\s\p{L}\p{M}\p{N}_]`)

// Words is the default tokenizer: runs of letters, marks, digits and
// underscores form one token, every other non-space rune is its own token.
type Words struct{}

// Tokenize implements Tokenizer.
func (Words) Tokenize(text string) []Token {
	locs := tokenRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	tokens := make([]Token, len(locs))
	for i, loc := range locs {
		tokens[i] = Token{Value: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]}
	}
	return tokens
}

// Values returns the token values in order.
func Values(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Value
	}
	return out
}
