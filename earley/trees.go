package earley

import (
	"github.com/npillmayer/pearley/grammar"
	"github.com/npillmayer/pearley/ptree"
)

// TreeIterator enumerates the parse trees of a chart. Trees are created
// lazily, one per call to Next. Chains of unit rules are always spelled out
// by their best-scoring variant, therefore the number of trees is finite,
// even for grammars with cycles of unit rules.
//
// Usage:
//
//	iter := earley.AllParseTrees(chart, goal)
//	for iter.Next() {
//	    tree := iter.Tree()
//	    …
//	}
//
// An iterator may be restarted with Reset.
type TreeIterator struct {
	c       *Chart
	goal    grammar.NonTerminal
	gen     treeGen
	current *ptree.Node
	seen    map[string]bool
	count   int
}

type treeGen func() (*ptree.Node, bool)
type seqGen func() ([]*ptree.Node, bool)

func nullTreeGen() (*ptree.Node, bool) {
	return nil, false
}

// AllParseTrees returns an iterator over all parse trees for goal. If the
// chart did not accept the input for goal, the iterator is empty.
func AllParseTrees(c *Chart, goal grammar.NonTerminal) *TreeIterator {
	iter := &TreeIterator{c: c, goal: goal}
	iter.Reset()
	return iter
}

// Reset restarts the enumeration.
func (iter *TreeIterator) Reset() {
	iter.current = nil
	iter.count = 0
	iter.seen = make(map[string]bool)
	iter.gen = nullTreeGen
	c := iter.c
	if c == nil || c.seed == nil || c.seed.Right[0] != grammar.Category(iter.goal) {
		return
	}
	acc, ok := c.Accepting()
	if !ok {
		return
	}
	seqs := c.sequences(acc)
	iter.gen = func() (*ptree.Node, bool) {
		seq, ok := seqs()
		if !ok || len(seq) != 1 {
			return nil, false
		}
		return seq[0], true
	}
}

// Next moves to the next parse tree. It returns false if all trees have been
// enumerated.
func (iter *TreeIterator) Next() bool {
	for {
		tree, ok := iter.gen()
		if !ok {
			iter.current = nil
			iter.gen = nullTreeGen
			return false
		}
		sig := tree.Signature()
		if iter.seen[sig] {
			tracer().Debugf("skipping duplicate tree %s", tree)
			continue
		}
		iter.seen[sig] = true
		iter.current = tree
		iter.count++
		return true
	}
}

// Tree returns the current parse tree.
func (iter *TreeIterator) Tree() *ptree.Node {
	return iter.current
}

// Count returns the number of trees enumerated so far.
func (iter *TreeIterator) Count() int {
	return iter.count
}

// sequences enumerates all sequences of children nodes for the categories left
// of the dot of state s.
func (c *Chart) sequences(s State) seqGen {
	if s.Dot == 0 {
		done := false
		return func() ([]*ptree.Node, bool) {
			if done {
				return nil, false
			}
			done = true
			return []*ptree.Node{}, true
		}
	}
	if T, ok := s.Rule.Right[s.Dot-1].(*grammar.Terminal); ok {
		pos := s.Position - 1
		prefixes := c.sequences(s.predecessor(pos))
		return func() ([]*ptree.Node, bool) {
			prefix, ok := prefixes()
			if !ok {
				return nil, false
			}
			tok, _ := c.Token(pos)
			return extend(prefix, ptree.NewLeaf(T, tok, pos)), true
		}
	}
	cands := c.completions(s, true)
	k := 0
	var prefixes seqGen
	var subtrees treeGen
	var prefix []*ptree.Node
	return func() ([]*ptree.Node, bool) {
		for k < len(cands) {
			cand := cands[k]
			if prefixes == nil {
				prefixes = c.sequences(cand.pred)
				subtrees = nil
			}
			if subtrees == nil {
				p, ok := prefixes()
				if !ok {
					prefixes = nil
					k++
					continue
				}
				prefix = p
				subtrees = c.trees(cand.child, cand.unit)
			}
			tree, ok := subtrees()
			if !ok {
				subtrees = nil
				continue
			}
			return extend(prefix, tree), true
		}
		return nil, false
	}
}

// trees enumerates all trees for passive state s, below a chain of unit rules.
func (c *Chart) trees(s State, chain []*grammar.Rule) treeGen {
	seqs := c.sequences(s)
	return func() (*ptree.Node, bool) {
		seq, ok := seqs()
		if !ok {
			return nil, false
		}
		return wrapUnits(chain, ptree.NewInner(s.Rule, seq)), true
	}
}

func extend(prefix []*ptree.Node, node *ptree.Node) []*ptree.Node {
	seq := make([]*ptree.Node, len(prefix), len(prefix)+1)
	copy(seq, prefix)
	return append(seq, node)
}
