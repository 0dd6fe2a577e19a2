/*
Package grammar implements weighted context-free grammars for probabilistic
Earley parsing.

Grammars are built once with a Builder and are immutable thereafter. They may
be shared between any number of concurrent parses.

	b := grammar.NewBuilder("G")
	b.LHS("S").N("NP").N("VP").End()
	b.LHS("NP").L("she").Weight(0.4).End()
	…
	g, err := b.Grammar()

Every rule carries a weight, given as a probability and converted into the
semiring of the grammar. At build time, a grammar analyzes its rules and
computes two weighted relations between non-terminals:

The left-corner relation P_L(X,Y) sums the weights of rules X → Y …, and its
reflexive-transitive closure R_L = I + P_L + P_L² + … = (I − P_L)⁻¹ is the
total weight of all left-corner derivations X ⇒* Y …. A parser uses R_L to
predict exactly those non-terminals which are left-reachable from an awaited
category, with their correct forward weights.

The unit relation P_U(X,Y) sums the weights of unit rules X → Y. Its closure
R_U = (I − P_U)⁻¹ lets a parser complete chains (and cycles) of unit rules in
a single step.

If a matrix I − P is singular, or its inverse has entries which are not
valid weights, the grammar's expected number of left-corner (or unit)
expansions is infinite. This is a configuration error: the grammar is
rejected with ErrSingularMatrix.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package grammar

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/pearley/semiring"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/tools/container/intsets"
)

// tracer traces with key 'pearley.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("pearley.grammar")
}

// Grammar is an immutable weighted context-free grammar.
type Grammar struct {
	name       string
	sr         semiring.Semiring
	rules      []*Rule
	byLeft     map[NonTerminal][]*Rule
	byTerminal map[*Terminal][]*Rule
	terminals  []*Terminal
	nonterms   []NonTerminal       // ordered by name
	ntIndex    map[NonTerminal]int // index into nonterms and matrices
	lc         [][]float64         // P_L, probability space
	lcStar     [][]float64         // R_L, probability space
	unitStar   [][]float64         // R_U, probability space
	leftReach  []*intsets.Sparse   // non-zero columns of R_L, per row
	unitReach  []*intsets.Sparse   // non-zero rows of R_U, per column
	bestUnit   [][]float64         // best unit chain weights, probability space
	firstUnit  [][]*Rule           // first rule of best unit chain
}

func newGrammar(name string, sr semiring.Semiring, rules []*Rule) *Grammar {
	g := &Grammar{
		name:       name,
		sr:         sr,
		rules:      rules,
		byLeft:     make(map[NonTerminal][]*Rule),
		byTerminal: make(map[*Terminal][]*Rule),
		ntIndex:    make(map[NonTerminal]int),
	}
	names := treeset.NewWith(utils.StringComparator)
	seenT := make(map[*Terminal]bool)
	for _, r := range rules {
		g.byLeft[r.Left] = append(g.byLeft[r.Left], r)
		names.Add(r.Left.Name())
		for _, c := range r.Right {
			switch x := c.(type) {
			case NonTerminal:
				names.Add(x.Name())
			case *Terminal:
				if !seenT[x] {
					seenT[x] = true
					g.terminals = append(g.terminals, x)
				}
			}
		}
		if t, ok := r.Right[0].(*Terminal); ok {
			g.byTerminal[t] = append(g.byTerminal[t], r)
		}
	}
	for i, n := range names.Values() {
		nt := NT(n.(string))
		g.nonterms = append(g.nonterms, nt)
		g.ntIndex[nt] = i
	}
	return g
}

// Name returns the name of the grammar.
func (g *Grammar) Name() string {
	return g.name
}

// Semiring returns the semiring of rule weights.
func (g *Grammar) Semiring() semiring.Semiring {
	return g.sr
}

// Rules returns all rules, ordered by serial number.
func (g *Grammar) Rules() []*Rule {
	return g.rules
}

// Rule returns rule number n, or nil.
func (g *Grammar) Rule(n int) *Rule {
	if n < 0 || n >= len(g.rules) {
		return nil
	}
	return g.rules[n]
}

// RulesFor returns the rules with left side x.
func (g *Grammar) RulesFor(x NonTerminal) []*Rule {
	return g.byLeft[x]
}

// PreterminalRules returns the rules with leading terminal t.
func (g *Grammar) PreterminalRules(t *Terminal) []*Rule {
	return g.byTerminal[t]
}

// Terminals returns the terminals of the grammar, in order of appearance.
func (g *Grammar) Terminals() []*Terminal {
	return g.terminals
}

// NonTerminals returns the non-terminals of the grammar, ordered by name.
func (g *Grammar) NonTerminals() []NonTerminal {
	return g.nonterms
}

// HasNonTerminal is true if x occurs in any rule of g.
func (g *Grammar) HasNonTerminal(x NonTerminal) bool {
	_, ok := g.ntIndex[x]
	return ok
}

// --- Relations -------------------------------------------------------------

func (g *Grammar) lookup(m [][]float64, x, y NonTerminal) float64 {
	i, ok1 := g.ntIndex[x]
	j, ok2 := g.ntIndex[y]
	if !ok1 || !ok2 {
		return 0
	}
	return m[i][j]
}

func (g *Grammar) starLookup(m [][]float64, x, y NonTerminal) float64 {
	if x == y {
		if _, ok := g.ntIndex[x]; !ok {
			return g.sr.One()
		}
	}
	return g.sr.FromProbability(g.lookup(m, x, y))
}

// LeftCorner returns P_L(x,y), the summed weight of rules x → y …,
// as a semiring element.
func (g *Grammar) LeftCorner(x, y NonTerminal) float64 {
	return g.sr.FromProbability(g.lookup(g.lc, x, y))
}

// LeftCornerStar returns R_L(x,y), the summed weight of left-corner
// derivations x ⇒* y …, as a semiring element.
func (g *Grammar) LeftCornerStar(x, y NonTerminal) float64 {
	return g.starLookup(g.lcStar, x, y)
}

// UnitStar returns R_U(x,y), the summed weight of unit derivations x ⇒* y,
// as a semiring element.
func (g *Grammar) UnitStar(x, y NonTerminal) float64 {
	return g.starLookup(g.unitStar, x, y)
}

// LeftReachable returns all non-terminals y with R_L(x,y) ≠ 0, x included.
func (g *Grammar) LeftReachable(x NonTerminal) []NonTerminal {
	i, ok := g.ntIndex[x]
	if !ok {
		return nil
	}
	return g.collect(g.leftReach[i])
}

// UnitReachable returns all non-terminals z with R_U(z,y) ≠ 0, y included,
// i.e. all categories a completed y may stand in for.
func (g *Grammar) UnitReachable(y NonTerminal) []NonTerminal {
	j, ok := g.ntIndex[y]
	if !ok {
		return nil
	}
	return g.collect(g.unitReach[j])
}

// UnitConnected is true if R_U(z,y) ≠ 0.
func (g *Grammar) UnitConnected(z, y NonTerminal) bool {
	if z == y {
		return true
	}
	j, ok := g.ntIndex[y]
	if !ok {
		return false
	}
	i, ok := g.ntIndex[z]
	return ok && g.unitReach[j].Has(i)
}

func (g *Grammar) collect(s *intsets.Sparse) []NonTerminal {
	ix := s.AppendTo(make([]int, 0, s.Len()))
	nts := make([]NonTerminal, len(ix))
	for k, i := range ix {
		nts[k] = g.nonterms[i]
	}
	return nts
}

// UnitPath returns the best-scoring chain of unit rules z → … → y, together
// with its weight as a semiring element. For z = y the chain is empty with
// weight one. If y is not unit-reachable from z, UnitPath returns false.
func (g *Grammar) UnitPath(z, y NonTerminal) ([]*Rule, float64, bool) {
	if z == y {
		return nil, g.sr.One(), true
	}
	i, ok1 := g.ntIndex[z]
	j, ok2 := g.ntIndex[y]
	if !ok1 || !ok2 || g.firstUnit[i][j] == nil {
		return nil, g.sr.Zero(), false
	}
	var path []*Rule
	for k := 0; i != j && k < len(g.nonterms); k++ {
		r := g.firstUnit[i][j]
		path = append(path, r)
		i = g.ntIndex[r.Right[0].(NonTerminal)]
	}
	if i != j {
		tracer().Errorf("unit path %v ⇒ %v does not terminate", z, y)
		return nil, g.sr.Zero(), false
	}
	return path, g.sr.FromProbability(g.bestUnit[g.ntIndex[z]][j]), true
}

// UnitPaths returns every chain of unit rules z → … → y which visits no
// non-terminal twice, in order of rule serial numbers. For z = y the only
// chain is the empty one. Chains through unit cycles are not included, thus
// the result is finite.
func (g *Grammar) UnitPaths(z, y NonTerminal) [][]*Rule {
	if z == y {
		return [][]*Rule{nil}
	}
	if !g.UnitConnected(z, y) {
		return nil
	}
	var paths [][]*Rule
	visited := map[NonTerminal]bool{z: true}
	var chain []*Rule
	var walk func(x NonTerminal)
	walk = func(x NonTerminal) {
		for _, r := range g.byLeft[x] {
			if !r.IsUnit() {
				continue
			}
			next := r.Right[0].(NonTerminal)
			if visited[next] || !g.UnitConnected(next, y) {
				continue
			}
			chain = append(chain, r)
			if next == y {
				paths = append(paths, append([]*Rule(nil), chain...))
			} else {
				visited[next] = true
				walk(next)
				delete(visited, next)
			}
			chain = chain[:len(chain)-1]
		}
	}
	walk(z)
	return paths
}

// Dump traces all rules and the non-zero entries of the closures at debug level.
func (g *Grammar) Dump() {
	tracer().Debugf("--- Grammar %s (%s) ---------------------------", g.name, g.sr.Name())
	for _, r := range g.rules {
		tracer().Debugf("%3d: %s", r.Serial, r)
	}
	for i, x := range g.nonterms {
		for j, y := range g.nonterms {
			if v := g.lcStar[i][j]; v != 0 {
				tracer().Debugf("R_L(%s,%s) = %.4g", x, y, v)
			}
			if v := g.unitStar[i][j]; v != 0 && i != j {
				tracer().Debugf("R_U(%s,%s) = %.4g", x, y, v)
			}
		}
	}
	tracer().Debugf("-----------------------------------------------")
}
