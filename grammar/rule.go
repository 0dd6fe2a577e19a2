package grammar

import (
	"bytes"
	"fmt"
)

// Rule is a weighted grammar rule
//
//	Left → Right[0] Right[1] …
//
// Prob is the weight as given at construction time, Weight is Prob
// converted into the semiring of the grammar. Rules are immutable once a
// grammar has been built. Serial is the rule's index within its grammar.
type Rule struct {
	Left   NonTerminal
	Right  []Category
	Weight float64
	Prob   float64
	Serial int
}

// Len returns the length of the right hand side.
func (r *Rule) Len() int {
	return len(r.Right)
}

// IsPreterminal is true if any right hand side symbol is a terminal.
func (r *Rule) IsPreterminal() bool {
	for _, c := range r.Right {
		if c.IsTerminal() {
			return true
		}
	}
	return false
}

// IsUnit is true for rules X → Y, with Y a single non-terminal.
func (r *Rule) IsUnit() bool {
	return len(r.Right) == 1 && !r.Right[0].IsTerminal()
}

// Equals compares rules by left and right side, not by weight.
func (r *Rule) Equals(other *Rule) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil || r.Left != other.Left || len(r.Right) != len(other.Right) {
		return false
	}
	for i, c := range r.Right {
		if !sameCategory(c, other.Right[i]) {
			return false
		}
	}
	return true
}

func sameCategory(a, b Category) bool {
	switch x := a.(type) {
	case NonTerminal:
		y, ok := b.(NonTerminal)
		return ok && x == y
	case *Terminal:
		y, ok := b.(*Terminal)
		return ok && x == y
	}
	return false
}

// key is a map key identical for rules with equal left and right sides.
type ruleKey string

func (r *Rule) key() ruleKey {
	var b bytes.Buffer
	b.WriteString(r.Left.String())
	for _, c := range r.Right {
		switch x := c.(type) {
		case NonTerminal:
			fmt.Fprintf(&b, "|N:%s", x)
		case *Terminal:
			fmt.Fprintf(&b, "|T:%p", x)
		}
	}
	return ruleKey(b.String())
}

// Dotted returns the rule as a dotted item with the dot at position dot.
func (r *Rule) Dotted(dot int) string {
	var b bytes.Buffer
	b.WriteString(r.Left.String())
	b.WriteString(" →")
	for i, c := range r.Right {
		if i == dot {
			b.WriteString(" •")
		}
		b.WriteString(" ")
		b.WriteString(c.String())
	}
	if dot >= len(r.Right) {
		b.WriteString(" •")
	}
	return b.String()
}

func (r *Rule) String() string {
	var b bytes.Buffer
	b.WriteString(r.Left.String())
	b.WriteString(" →")
	for _, c := range r.Right {
		b.WriteString(" ")
		b.WriteString(c.String())
	}
	fmt.Fprintf(&b, "  [%g]", r.Prob)
	return b.String()
}
