package earley

import (
	"fmt"

	"github.com/npillmayer/pearley/grammar"
)

// State is a dotted rule, tied to the chart position where the rule started
// (Origin) and the chart position the state belongs to (Position).
// Two states with equal fields are the same chart entry, regardless of how
// they have been derived.
//
// Dot == len(Rule.Right) marks a passive (complete) state. Otherwise the
// category right of the dot is the state's active category, i.e. the next
// symbol awaited.
type State struct {
	Rule     *grammar.Rule
	Origin   int
	Dot      int
	Position int
}

// IsPassive is true for complete states.
func (s State) IsPassive() bool {
	return s.Dot >= len(s.Rule.Right)
}

// Active returns the category right of the dot, or nil for passive states.
func (s State) Active() grammar.Category {
	if s.IsPassive() {
		return nil
	}
	return s.Rule.Right[s.Dot]
}

// activeNonTerminal returns the active category, if it is a non-terminal.
func (s State) activeNonTerminal() (grammar.NonTerminal, bool) {
	nt, ok := s.Active().(grammar.NonTerminal)
	return nt, ok
}

// activeTerminal returns the active category, if it is a terminal.
func (s State) activeTerminal() (*grammar.Terminal, bool) {
	t, ok := s.Active().(*grammar.Terminal)
	return t, ok
}

// advance moves the dot one category to the right, with the new state
// ending at position pos.
func (s State) advance(pos int) State {
	return State{Rule: s.Rule, Origin: s.Origin, Dot: s.Dot + 1, Position: pos}
}

// predecessor is the state s has been advanced from, ending at position pos.
func (s State) predecessor(pos int) State {
	return State{Rule: s.Rule, Origin: s.Origin, Dot: s.Dot - 1, Position: pos}
}

func (s State) String() string {
	if s.Rule == nil {
		return "<no state>"
	}
	return fmt.Sprintf("%s, [%d…%d]", s.Rule.Dotted(s.Dot), s.Origin, s.Position)
}
