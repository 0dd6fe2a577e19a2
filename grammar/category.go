package grammar

import (
	"strconv"

	"github.com/npillmayer/pearley"
)

// Category is a grammar symbol, either a terminal or a non-terminal.
type Category interface {
	Name() string
	IsTerminal() bool
	String() string
}

// --- Non-terminals ---------------------------------------------------------

// NonTerminal is a named grammar symbol. Non-terminals are values and compare
// equal if their names are equal. The distinguished symbol Start is different
// from every non-terminal created with NT, even from one with the same name.
type NonTerminal struct {
	name  string
	start bool
}

// NT creates a non-terminal category.
func NT(name string) NonTerminal {
	return NonTerminal{name: name}
}

// Start is the distinguished start symbol. It seeds every parse and must not
// appear in user rules.
var Start = NonTerminal{name: "START", start: true}

// Name returns the name of the non-terminal.
func (nt NonTerminal) Name() string { return nt.name }

// IsTerminal is false for non-terminals.
func (nt NonTerminal) IsTerminal() bool { return false }

// IsStart is true for the distinguished start symbol only.
func (nt NonTerminal) IsStart() bool { return nt.start }

// IsNull is true for the zero value of NonTerminal.
func (nt NonTerminal) IsNull() bool {
	return nt.name == "" && !nt.start
}

func (nt NonTerminal) String() string {
	if nt.start {
		return "⟨" + nt.name + "⟩"
	}
	return nt.name
}

// --- Terminals -------------------------------------------------------------

// Terminal is a grammar symbol matching input tokens. Terminals have identity:
// two terminals are the same category only if they are the same pointer.
// Matching is delegated to a membership predicate over tokens.
type Terminal struct {
	name  string
	quote bool
	match func(pearley.Token) bool
}

// TokenType creates a terminal which matches tokens of a given token type.
func TokenType(name string, tt pearley.TokType) *Terminal {
	return &Terminal{
		name: name,
		match: func(tok pearley.Token) bool {
			return tok.TokType() == tt
		},
	}
}

// Lexeme creates a terminal which matches tokens by their lexeme.
func Lexeme(lexeme string) *Terminal {
	return &Terminal{
		name:  lexeme,
		quote: true,
		match: func(tok pearley.Token) bool {
			return tok.Lexeme() == lexeme
		},
	}
}

// Predicate creates a terminal with a client-supplied membership test.
// match should be cheap: it is called once for every (token, terminal) pair.
func Predicate(name string, match func(pearley.Token) bool) *Terminal {
	if match == nil {
		match = func(pearley.Token) bool { return false }
	}
	return &Terminal{name: name, match: match}
}

// NonLexical is a placeholder terminal standing in for a run of input tokens
// which no terminal of a grammar recognizes. It never matches a token
// directly; parsers in synchronizing mode advance states awaiting NonLexical
// over unrecognized input.
var NonLexical = &Terminal{
	name:  "<non-lexical>",
	match: func(pearley.Token) bool { return false },
}

// Name returns the name of the terminal.
func (t *Terminal) Name() string { return t.name }

// IsTerminal is true for terminals.
func (t *Terminal) IsTerminal() bool { return true }

// Match tests if a token is a member of this terminal category.
func (t *Terminal) Match(tok pearley.Token) bool {
	if t == nil || tok == nil {
		return false
	}
	return t.match(tok)
}

func (t *Terminal) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.quote {
		return strconv.Quote(t.name)
	}
	return t.name
}

var _ Category = NonTerminal{}
var _ Category = (*Terminal)(nil)
