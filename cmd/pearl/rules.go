package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/pearley"
	"github.com/npillmayer/pearley/grammar"
	"github.com/npillmayer/pearley/scanner/lexmach"
)

// Rules are entered as
//
//    [weight] LHS -> symbol …
//
// where a symbol is either a non-terminal name, a quoted lexeme ("with" or
// 'with'), a token class (#word, #number, #punct) or '?' for the non-lexical
// terminal used for error recovery. The weight defaults to 1.

type symKind int

const (
	nonterm symKind = iota
	lexeme
	tokclass
	nonlexical
)

type symbol struct {
	kind symKind
	name string
}

type ruleSpec struct {
	weight float64
	lhs    string
	rhs    []symbol
}

var tokenClasses = map[string]pearley.TokType{
	"#word":   lexmach.WordType,
	"#number": lexmach.NumberType,
	"#punct":  lexmach.PunctType,
}

func (r ruleSpec) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%g %s ->", r.weight, r.lhs)
	for _, sym := range r.rhs {
		switch sym.kind {
		case lexeme:
			fmt.Fprintf(&b, " %q", sym.name)
		case nonlexical:
			b.WriteString(" ?")
		default:
			b.WriteString(" " + sym.name)
		}
	}
	return b.String()
}

// parseRule parses the textual form of a grammar rule.
func parseRule(line string) (ruleSpec, error) {
	r := ruleSpec{weight: 1.0}
	fields, err := splitRule(line)
	if err != nil {
		return r, err
	}
	if len(fields) > 0 {
		if w, err := strconv.ParseFloat(fields[0], 64); err == nil {
			r.weight = w
			fields = fields[1:]
		}
	}
	if len(fields) < 3 || (fields[1] != "->" && fields[1] != "→") {
		return r, fmt.Errorf("rule must have the form '[weight] LHS -> symbol …': %q", line)
	}
	r.lhs = fields[0]
	if !isName(r.lhs) {
		return r, fmt.Errorf("left side of rule must be a non-terminal: %q", r.lhs)
	}
	for _, f := range fields[2:] {
		switch {
		case f == "?":
			r.rhs = append(r.rhs, symbol{kind: nonlexical})
		case strings.HasPrefix(f, "#"):
			if _, ok := tokenClasses[f]; !ok {
				return r, fmt.Errorf("unknown token class %s", f)
			}
			r.rhs = append(r.rhs, symbol{kind: tokclass, name: f})
		case len(f) >= 2 && (f[0] == '"' || f[0] == '\''):
			r.rhs = append(r.rhs, symbol{kind: lexeme, name: f[1 : len(f)-1]})
		case isName(f):
			r.rhs = append(r.rhs, symbol{kind: nonterm, name: f})
		default:
			return r, fmt.Errorf("not a grammar symbol: %q", f)
		}
	}
	return r, nil
}

// splitRule splits a line at white space, keeping quoted lexemes together.
func splitRule(line string) ([]string, error) {
	var fields []string
	var quote rune
	start := -1
	for i, c := range line {
		switch {
		case quote != 0:
			if c == quote {
				fields = append(fields, line[start:i+1])
				quote, start = 0, -1
			}
		case c == '"' || c == '\'':
			if start >= 0 {
				return nil, fmt.Errorf("misplaced quote at position %d", i)
			}
			quote, start = c, i
		case c == ' ' || c == '\t':
			if start >= 0 {
				fields = append(fields, line[start:i])
				start = -1
			}
		default:
			if start < 0 {
				start = i
			}
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated lexeme in %q", line)
	}
	if start >= 0 {
		fields = append(fields, line[start:])
	}
	return fields, nil
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || i > 0 && c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// buildGrammar creates a grammar from rule specs.
func buildGrammar(rules []ruleSpec, opts ...grammar.BuilderOption) (*grammar.Grammar, error) {
	b := grammar.NewBuilder("pearl", opts...)
	for _, r := range rules {
		rb := b.LHS(r.lhs)
		for _, sym := range r.rhs {
			switch sym.kind {
			case nonterm:
				rb.N(sym.name)
			case lexeme:
				rb.L(sym.name)
			case tokclass:
				rb.T(sym.name[1:], tokenClasses[sym.name])
			case nonlexical:
				rb.Term(grammar.NonLexical)
			}
		}
		rb.Weight(r.weight).End()
	}
	return b.Grammar()
}
