package earley

import (
	"errors"
	"fmt"

	"github.com/npillmayer/pearley"
	"github.com/npillmayer/schuko/gconf"
)

// Errors reported by parsers.
var (
	ErrNotInLexicon = errors.New("token not in lexicon")
	ErrInvariant    = errors.New("parser invariant violated")
	ErrUnknownGoal  = errors.New("goal category not in grammar")
)

// LexiconError is reported for an input token which no terminal of the grammar
// matches, if the parser is in strict scan mode (or cannot synchronize).
type LexiconError struct {
	Index    int           // index of the offending token within the input
	Position int           // chart position where the token would have been scanned
	Token    pearley.Token // offending token
}

func (e *LexiconError) Error() string {
	lexeme := "<nil>"
	if e.Token != nil {
		lexeme = e.Token.Lexeme()
	}
	return fmt.Sprintf("%s: token #%d %q at chart position %d", ErrNotInLexicon, e.Index, lexeme, e.Position)
}

// Unwrap makes LexiconError match ErrNotInLexicon.
func (e *LexiconError) Unwrap() error {
	return ErrNotInLexicon
}

// stuck is called for violations of chart invariants. These are defects, not
// user errors.
func stuck(msg string) error {
	tracer().Errorf(msg)
	if gconf.GetBool("panic-on-parser-stuck") {
		panic(`Earley-parser is stuck.

Configuration flag panic-on-parser-stuck is set to true. It is aimed at helping 
to debug a parser and do a post-mortem of why it got stuck. However, if this is
a production environment and you did not expect this to panic, please unset
panic-on-parser-stuck to its default (false).

` + msg)
	}
	return fmt.Errorf("%w: %s", ErrInvariant, msg)
}
