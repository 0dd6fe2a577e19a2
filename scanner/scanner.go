/*
Package scanner defines an interface for scanners to be used with the parsers
of package earley.

Two default scanner implementations are provided: (1) a thin wrapper over the Go std lib
'text/scanner', and (2) an adapter for lexmachine, living in sub-package `lexmach`.
For quick experiments, function Words splits a string into whitespace-separated
tokens.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package scanner

import (
	"fmt"
	"io"
	"text/scanner"

	"github.com/npillmayer/pearley"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pearley.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("pearley.scanner")
}

// EOF is identical to text/scanner.EOF.
// Token types are replicated here for practical reasons.
const (
	EOF       = scanner.EOF
	Ident     = scanner.Ident
	Int       = scanner.Int
	Float     = scanner.Float
	Char      = scanner.Char
	String    = scanner.String
	RawString = scanner.RawString
	Comment   = scanner.Comment
)

// Tokenizer is a scanner interface.
type Tokenizer interface {
	NextToken() pearley.Token
	SetErrorHandler(func(error))
}

// DefaultTokenizer is a default implementation, backed by scanner.Scanner.
// Create one with GoTokenizer.
type DefaultTokenizer struct {
	scanner.Scanner
	lastToken    rune        // last token this scanner has produced
	Error        func(error) // error handler
	unifyStrings bool        // convert single chars to strings
}

var _ Tokenizer = (*DefaultTokenizer)(nil)

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// GoTokenizer creates a scanner/tokenizer accepting tokens similar to the Go language.
func GoTokenizer(sourceID string, input io.Reader, opts ...Option) *DefaultTokenizer {
	t := &DefaultTokenizer{}
	t.Error = logError
	t.Init(input)
	t.Filename = sourceID
	t.Scanner.Error = func(_ *scanner.Scanner, msg string) {
		t.Error(fmt.Errorf("%s: %s", sourceID, msg))
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetErrorHandler sets an error handler for the scanner.
func (t *DefaultTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		t.Error = logError
		return
	}
	t.Error = h
}

// NextToken is part of the Tokenizer interface.
func (t *DefaultTokenizer) NextToken() pearley.Token {
	t.lastToken = t.Scan()
	if t.lastToken == scanner.EOF {
		tracer().Debugf("DefaultTokenizer reached end of input")
	}
	if t.unifyStrings &&
		(t.lastToken == scanner.RawString || t.lastToken == scanner.Char) {
		t.lastToken = scanner.String
	}
	return DefaultToken{
		kind:   pearley.TokType(t.lastToken),
		lexeme: t.TokenText(),
		span:   pearley.Span{uint64(t.Position.Offset), uint64(t.Pos().Offset)},
	}
}

// Drain reads tokens from a tokenizer until EOF.
func Drain(tz Tokenizer) []pearley.Token {
	var tokens []pearley.Token
	for {
		tok := tz.NextToken()
		if tok == nil || tok.TokType() == EOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// --- Default tokens --------------------------------------------------------

// DefaultToken is a very unsophisticated token type, used as default for the Go
// tokenizer as well as the LexMachine scanner.
type DefaultToken struct {
	kind   pearley.TokType
	lexeme string
	Val    interface{}
	span   pearley.Span
}

// MakeDefaultToken creates a token.
func MakeDefaultToken(typ pearley.TokType, lexeme string, span pearley.Span) DefaultToken {
	return DefaultToken{
		kind:   typ,
		lexeme: lexeme,
		span:   span,
	}
}

// TokType is part of interface pearley.Token.
func (t DefaultToken) TokType() pearley.TokType {
	return t.kind
}

// Value is part of interface pearley.Token.
func (t DefaultToken) Value() interface{} {
	return t.Val
}

// Lexeme is part of interface pearley.Token.
func (t DefaultToken) Lexeme() string {
	return t.lexeme
}

// Span is part of interface pearley.Token.
func (t DefaultToken) Span() pearley.Span {
	return t.span
}

func (t DefaultToken) String() string {
	return fmt.Sprintf("%q%v", t.lexeme, t.span)
}

// --- Scanner options for the default (Go) tokenizer ---------------------------

// Option configures a default tokenier.
type Option func(p *DefaultTokenizer)

// SkipComments sets or clears mode-flag SkipComments.
func SkipComments(b bool) Option {
	return func(t *DefaultTokenizer) {
		if b {
			t.Mode |= scanner.SkipComments
		} else {
			t.Mode &^= scanner.SkipComments
		}
	}
}

// UnifyStrings sets or clears option UnifyStrings:
// treat raw strings and single chars as strings.
func UnifyStrings(b bool) Option {
	return func(t *DefaultTokenizer) {
		t.unifyStrings = b
	}
}
