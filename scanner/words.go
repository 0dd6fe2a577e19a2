package scanner

import (
	"strings"
	"unicode"

	"github.com/npillmayer/pearley"
)

// Word is the token type of tokens produced by Words.
const Word pearley.TokType = Ident

// Words splits an input string at white space and creates a token for every
// word. Spans are byte offsets into input.
func Words(input string) []pearley.Token {
	var tokens []pearley.Token
	start := -1
	for i, r := range input {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, word(input, start, i))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, word(input, start, len(input)))
	}
	return tokens
}

func word(input string, from, to int) pearley.Token {
	return MakeDefaultToken(Word, input[from:to], pearley.Span{uint64(from), uint64(to)})
}

// WordTokenizer is a Tokenizer over the tokens of Words.
type WordTokenizer struct {
	tokens []pearley.Token
	next   int
	end    uint64
}

var _ Tokenizer = (*WordTokenizer)(nil)

// NewWordTokenizer creates a tokenizer for whitespace-separated words.
func NewWordTokenizer(input string) *WordTokenizer {
	return &WordTokenizer{
		tokens: Words(input),
		end:    uint64(len(strings.TrimRightFunc(input, unicode.IsSpace))),
	}
}

// NextToken is part of the Tokenizer interface. After the last word it
// returns EOF tokens.
func (wt *WordTokenizer) NextToken() pearley.Token {
	if wt.next >= len(wt.tokens) {
		return MakeDefaultToken(EOF, "", pearley.Span{wt.end, wt.end})
	}
	tok := wt.tokens[wt.next]
	wt.next++
	return tok
}

// SetErrorHandler is part of the Tokenizer interface. A WordTokenizer never
// reports errors.
func (wt *WordTokenizer) SetErrorHandler(func(error)) {}
