package earley

import (
	"fmt"

	"github.com/npillmayer/pearley/grammar"
	"github.com/npillmayer/pearley/ptree"
	"github.com/npillmayer/pearley/semiring"
)

/*
Parse trees are extracted by walking backwards over the states of the chart,
starting at the accepting state. A state

	X → a B • c, [i…k]

has been derived in one of two ways. If the symbol left of the dot is a
terminal, the state has been scanned from its predecessor X → a • B c, [i…k-1].
If it is a non-terminal B, the state has been completed: there is a passive
state Y → ν •, [j…k] with B ⇒* Y by unit rules, and a predecessor
X → a • B c, [i…j]. There is no other way the state can come into existence.

Chains of unit rules B ⇒* Y are never stored in the chart explicitly (they
are part of the unit closure). For the best tree, the best-scoring chain is
taken from the grammar; enumeration of all trees follows every chain which
does not repeat a category.

Backlinks are memoized per state, thus extraction of the best tree is linear
in the size of the chart.
*/

type linkKind int

const (
	predicted linkKind = iota
	scanned
	completed
)

// backlink records the best derivation of a state.
type backlink struct {
	kind  linkKind
	score float64
	pred  State           // predecessor state, same rule, dot one to the left
	child State           // passive state completing the predecessor
	unit  []*grammar.Rule // unit rules between the awaited category and child
}

// completion is a candidate derivation of a completed state.
type completion struct {
	pred  State
	child State
	unit  []*grammar.Rule
	w     float64
}

// unitPath returns the best chain of unit rules z ⇒* y.
func (c *Chart) unitPath(z, y grammar.NonTerminal) ([]*grammar.Rule, float64, bool) {
	if z == y {
		return nil, c.sr.One(), true
	}
	if c.g == nil {
		return nil, c.sr.Zero(), false
	}
	return c.g.UnitPath(z, y)
}

// unitPaths returns all chains of unit rules z ⇒* y which visit no category
// twice.
func (c *Chart) unitPaths(z, y grammar.NonTerminal) [][]*grammar.Rule {
	if z == y {
		return [][]*grammar.Rule{nil}
	}
	if c.g == nil {
		return nil
	}
	return c.g.UnitPaths(z, y)
}

// completions finds all (predecessor, passive state) pairs which have
// completed s. Candidates are returned in chart order. With allChains unset,
// each pair comes with the best unit chain only; otherwise there is one
// candidate per unit chain.
func (c *Chart) completions(s State, allChains bool) []completion {
	Z, ok := s.Rule.Right[s.Dot-1].(grammar.NonTerminal)
	if !ok {
		return nil
	}
	var cands []completion
	for _, ch := range c.States(s.Position) {
		if !ch.IsPassive() || ch.Rule.IsUnit() || ch.Origin < s.Origin {
			continue
		}
		pred := s.predecessor(ch.Origin)
		if !c.Has(pred) {
			continue
		}
		if allChains {
			for _, path := range c.unitPaths(Z, ch.Rule.Left) {
				cands = append(cands, completion{pred: pred, child: ch, unit: path})
			}
			continue
		}
		path, w, ok := c.unitPath(Z, ch.Rule.Left)
		if !ok {
			continue
		}
		cands = append(cands, completion{pred: pred, child: ch, unit: path, w: w})
	}
	return cands
}

type viterbi struct {
	c        *Chart
	sr       semiring.Semiring
	best     map[State]*backlink
	visiting stateset
}

func newViterbi(c *Chart) *viterbi {
	return &viterbi{
		c:    c,
		sr:   c.sr,
		best: make(map[State]*backlink),
	}
}

// score computes the best score of any derivation of state s.
func (v *viterbi) score(s State) (float64, error) {
	if bl, ok := v.best[s]; ok {
		return bl.score, nil
	}
	if v.visiting.contains(s) {
		return v.sr.Zero(), stuck(fmt.Sprintf("cyclic derivation of state %v", s))
	}
	if !v.c.Has(s) {
		return v.sr.Zero(), stuck(fmt.Sprintf("predecessor for state missing, parse is stuck: %v", s))
	}
	v.visiting = v.visiting.add(s)
	defer v.visiting.delete(s)
	var bl *backlink
	switch {
	case s.Dot == 0:
		bl = &backlink{kind: predicted, score: s.Rule.Weight}
	case s.Rule.Right[s.Dot-1].IsTerminal():
		pred := s.predecessor(s.Position - 1)
		ps, err := v.score(pred)
		if err != nil {
			return ps, err
		}
		w, ok := v.c.scans[s]
		if !ok {
			return v.sr.Zero(), stuck(fmt.Sprintf("scan weight missing for state %v", s))
		}
		bl = &backlink{kind: scanned, score: v.sr.Times(ps, w), pred: pred}
	default:
		for _, cand := range v.c.completions(s, false) {
			ps, err := v.score(cand.pred)
			if err != nil {
				return ps, err
			}
			cs, err := v.score(cand.child)
			if err != nil {
				return cs, err
			}
			total := v.sr.Times(v.sr.Times(ps, cand.w), cs)
			if bl == nil || v.sr.Compare(total, bl.score) > 0 {
				bl = &backlink{
					kind:  completed,
					score: total,
					pred:  cand.pred,
					child: cand.child,
					unit:  cand.unit,
				}
			}
		}
		if bl == nil {
			return v.sr.Zero(), stuck(fmt.Sprintf("no completed state available to satisfy %v", s))
		}
	}
	v.best[s] = bl
	return bl.score, nil
}

// children builds the best children nodes of state s, one per category left
// of the dot. score(s) must have been called before.
func (v *viterbi) children(s State) ([]*ptree.Node, error) {
	nodes := make([]*ptree.Node, s.Dot)
	for cur := s; cur.Dot > 0; {
		bl, ok := v.best[cur]
		if !ok {
			return nil, stuck(fmt.Sprintf("no derivation recorded for %v", cur))
		}
		switch bl.kind {
		case scanned:
			T := cur.Rule.Right[cur.Dot-1].(*grammar.Terminal)
			tok, _ := v.c.Token(cur.Position - 1)
			nodes[cur.Dot-1] = ptree.NewLeaf(T, tok, cur.Position-1)
		case completed:
			kids, err := v.children(bl.child)
			if err != nil {
				return nil, err
			}
			nodes[cur.Dot-1] = wrapUnits(bl.unit, ptree.NewInner(bl.child.Rule, kids))
		default:
			return nil, stuck(fmt.Sprintf("state %v has no predecessor", cur))
		}
		cur = bl.pred
	}
	return nodes, nil
}

// wrapUnits puts a chain of unit rule nodes above a sub-tree.
func wrapUnits(chain []*grammar.Rule, node *ptree.Node) *ptree.Node {
	for i := len(chain) - 1; i >= 0; i-- {
		node = ptree.NewInner(chain[i], []*ptree.Node{node})
	}
	return node
}

// BestParseTree extracts the best-scoring (Viterbi) parse tree for goal from
// a chart. The score of the tree is returned as a semiring element. If the
// chart did not accept the input for goal, BestParseTree returns false.
func BestParseTree(c *Chart, goal grammar.NonTerminal) (*ptree.Node, float64, bool) {
	if c == nil || c.seed == nil || c.seed.Right[0] != grammar.Category(goal) {
		return nil, 0, false
	}
	acc, ok := c.Accepting()
	if !ok {
		return nil, c.sr.Zero(), false
	}
	v := newViterbi(c)
	score, err := v.score(acc)
	if err != nil {
		tracer().Errorf("cannot extract best parse tree: %v", err)
		return nil, c.sr.Zero(), false
	}
	kids, err := v.children(acc)
	if err != nil || len(kids) != 1 {
		tracer().Errorf("cannot extract best parse tree: %v", err)
		return nil, c.sr.Zero(), false
	}
	tracer().Infof("best parse tree has score %g", score)
	return kids[0], score, true
}
