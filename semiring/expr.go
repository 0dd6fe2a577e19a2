package semiring

import (
	"errors"
	"fmt"
)

// Errors reported by the expression arena.
var (
	ErrResolved         = errors.New("expression already resolved")
	ErrCyclicExpression = errors.New("cyclic expression")
	ErrNotMember        = errors.New("value is not a member of the semiring")
	ErrNotAccumulator   = errors.New("expression is not an accumulator")
)

// Ref references an expression node within an Arena. NoRef stands for an absent
// score and behaves like the semiring's zero.
type Ref int32

// NoRef is the null reference.
const NoRef Ref = -1

type exprKind uint8

const (
	atomExpr        exprKind = iota // concrete scalar
	plusExpr                        // a ⊕ b
	timesExpr                       // a ⊗ b
	scalarPlusExpr                  // scalar ⊕ node
	scalarTimesExpr                 // scalar ⊗ node
	sumExpr                         // open accumulator: partial scalar ⊕ deferred terms
)

func (k exprKind) String() string {
	switch k {
	case atomExpr:
		return "atom"
	case plusExpr:
		return "plus"
	case timesExpr:
		return "times"
	case scalarPlusExpr:
		return "scalar-plus"
	case scalarTimesExpr:
		return "scalar-times"
	case sumExpr:
		return "sum"
	}
	return "?"
}

type exprState uint8

const (
	open exprState = iota
	resolving
	resolved
)

// exprNode is the sum type of deferred expressions. For scalar-combined
// nodes the scalar operand lives in value and the node operand in left.
// A resolved node keeps its scalar in value and drops its children.
type exprNode struct {
	kind        exprKind
	state       exprState
	value       float64
	left, right Ref
	terms       []Ref
}

// Arena owns deferred score expressions for a single parse. Nodes own their
// children until they are resolved; resolution caches the scalar and releases
// the children.
//
// An Arena is not safe for concurrent use.
type Arena struct {
	sr    Semiring
	nodes []exprNode
}

// NewArena creates an empty arena of expressions over a semiring.
func NewArena(sr Semiring) *Arena {
	if sr == nil {
		sr = Probability
	}
	return &Arena{
		sr:    sr,
		nodes: make([]exprNode, 0, 256),
	}
}

// Semiring returns the semiring this arena computes in.
func (a *Arena) Semiring() Semiring {
	return a.sr
}

// Len returns the number of nodes allocated so far.
func (a *Arena) Len() int {
	return len(a.nodes)
}

func (a *Arena) alloc(n exprNode) Ref {
	a.nodes = append(a.nodes, n)
	return Ref(len(a.nodes) - 1)
}

// Atom creates a concrete (resolved) node.
func (a *Arena) Atom(x float64) Ref {
	return a.alloc(exprNode{kind: atomExpr, state: resolved, value: x, left: NoRef, right: NoRef})
}

// Resolved returns the scalar of a node if it is already known, i.e. if the
// node is an atom or has been resolved. NoRef counts as a known zero.
func (a *Arena) Resolved(r Ref) (float64, bool) {
	if r == NoRef {
		return a.sr.Zero(), true
	}
	n := &a.nodes[r]
	if n.state == resolved {
		return n.value, true
	}
	return 0, false
}

// Plus builds x ⊕ y. Zero operands are short-circuited and two concrete
// operands are collapsed into a new atom right away.
func (a *Arena) Plus(x, y Ref) Ref {
	if x == NoRef {
		return y
	}
	if y == NoRef {
		return x
	}
	vx, okx := a.Resolved(x)
	vy, oky := a.Resolved(y)
	switch {
	case okx && vx == a.sr.Zero():
		return y
	case oky && vy == a.sr.Zero():
		return x
	case okx && oky:
		return a.Atom(a.sr.Plus(vx, vy))
	case okx:
		return a.alloc(exprNode{kind: scalarPlusExpr, value: vx, left: y, right: NoRef})
	case oky:
		return a.alloc(exprNode{kind: scalarPlusExpr, value: vy, left: x, right: NoRef})
	}
	return a.alloc(exprNode{kind: plusExpr, left: x, right: y})
}

// Times builds x ⊗ y. Zero annihilates, one is neutral, and two concrete
// operands are collapsed into a new atom right away.
func (a *Arena) Times(x, y Ref) Ref {
	if x == NoRef || y == NoRef {
		return NoRef
	}
	vx, okx := a.Resolved(x)
	vy, oky := a.Resolved(y)
	switch {
	case okx && vx == a.sr.Zero():
		return x
	case oky && vy == a.sr.Zero():
		return y
	case okx && vx == a.sr.One():
		return y
	case oky && vy == a.sr.One():
		return x
	case okx && oky:
		return a.Atom(a.sr.Times(vx, vy))
	case okx:
		return a.alloc(exprNode{kind: scalarTimesExpr, value: vx, left: y, right: NoRef})
	case oky:
		return a.alloc(exprNode{kind: scalarTimesExpr, value: vy, left: x, right: NoRef})
	}
	return a.alloc(exprNode{kind: timesExpr, left: x, right: y})
}

// Scale builds x ⊗ s for a scalar s.
func (a *Arena) Scale(x Ref, s float64) Ref {
	if x == NoRef {
		return NoRef
	}
	if s == a.sr.One() {
		return x
	}
	if s == a.sr.Zero() {
		return a.Atom(s)
	}
	if vx, ok := a.Resolved(x); ok {
		return a.Atom(a.sr.Times(vx, s))
	}
	return a.alloc(exprNode{kind: scalarTimesExpr, value: s, left: x, right: NoRef})
}

// Sum creates an open accumulator node. Terms may be added with Accumulate
// until the node is resolved.
func (a *Arena) Sum() Ref {
	return a.alloc(exprNode{kind: sumExpr, value: a.sr.Zero(), left: NoRef, right: NoRef})
}

// Accumulate adds a term to an open accumulator. Concrete terms are folded
// into the accumulator's partial scalar, deferred terms are kept for
// resolution.
func (a *Arena) Accumulate(sum, term Ref) error {
	if sum == NoRef {
		return ErrNotAccumulator
	}
	n := &a.nodes[sum]
	if n.kind != sumExpr {
		return ErrNotAccumulator
	}
	if n.state != open {
		return ErrResolved
	}
	if term == NoRef {
		return nil
	}
	if v, ok := a.Resolved(term); ok {
		n.value = a.sr.Plus(n.value, v)
		return nil
	}
	n.terms = append(n.terms, term)
	return nil
}

// Resolve collapses an expression to a scalar. The result is cached and the
// node's children are released; resolving again returns the cached scalar.
func (a *Arena) Resolve(r Ref) (float64, error) {
	if r == NoRef {
		return a.sr.Zero(), nil
	}
	n := &a.nodes[r]
	switch n.state {
	case resolved:
		return n.value, nil
	case resolving:
		return 0, fmt.Errorf("%w: node #%d", ErrCyclicExpression, r)
	}
	n.state = resolving
	v, err := a.compute(r)
	n = &a.nodes[r]
	if err != nil {
		n.state = open
		tracer().Errorf("cannot resolve %s node #%d: %v", n.kind, r, err)
		return 0, err
	}
	if !a.sr.Member(v) {
		n.state = open
		return 0, fmt.Errorf("%w: %s node #%d = %g", ErrNotMember, n.kind, r, v)
	}
	n.value = v
	n.state = resolved
	n.left, n.right = NoRef, NoRef
	n.terms = nil
	return v, nil
}

func (a *Arena) compute(r Ref) (float64, error) {
	n := a.nodes[r] // copy, children are resolved recursively
	switch n.kind {
	case plusExpr, timesExpr:
		x, err := a.Resolve(n.left)
		if err != nil {
			return 0, err
		}
		y, err := a.Resolve(n.right)
		if err != nil {
			return 0, err
		}
		if n.kind == plusExpr {
			return a.sr.Plus(x, y), nil
		}
		return a.sr.Times(x, y), nil
	case scalarPlusExpr, scalarTimesExpr:
		x, err := a.Resolve(n.left)
		if err != nil {
			return 0, err
		}
		if n.kind == scalarPlusExpr {
			return a.sr.Plus(n.value, x), nil
		}
		return a.sr.Times(n.value, x), nil
	case sumExpr:
		v := n.value
		for _, t := range n.terms {
			x, err := a.Resolve(t)
			if err != nil {
				return 0, err
			}
			v = a.sr.Plus(v, x)
		}
		return v, nil
	}
	return n.value, nil
}
