package earley

import (
	"bytes"
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/npillmayer/pearley"
	"github.com/npillmayer/pearley/grammar"
	"github.com/npillmayer/pearley/semiring"
)

// Chart is the dynamic-programming table of a parse: for every chart position
// the set of states ending there, plus forward and inner scores for every
// state.
//
// A state has scores if and only if it has been added to its position. Scores
// of a state reached more than once are combined with the semiring's ⊕.
//
// A chart is created fresh for every parse and must not be shared between
// goroutines while the parse is running.
type Chart struct {
	sr      semiring.Semiring
	arena   *semiring.Arena
	sets    []*arraylist.List                 // states per position, insertion order
	scores  map[State]*score                  // forward and inner score per state
	waiting []map[grammar.NonTerminal][]State // states per position, by active non-terminal
	passive []map[grammar.NonTerminal][]State // passive states per position, by left side
	scans   map[State]float64                 // scan weight for states advanced by a scan
	steps   []step                            // tokens consumed from position i to i+1
	seed    *grammar.Rule                     // START → goal
	g       *grammar.Grammar                  // grammar of the parse, for unit paths
}

type score struct {
	forward semiring.Ref
	inner   semiring.Ref
}

// step records which input tokens a chart step consumed. count is larger
// than 1 for runs of unrecognized tokens bridged in synchronizing mode.
type step struct {
	index int
	count int
	token pearley.Token
}

// NewChart creates an empty chart with scores in semiring sr.
func NewChart(sr semiring.Semiring) *Chart {
	if sr == nil {
		sr = semiring.Probability
	}
	return &Chart{
		sr:     sr,
		arena:  semiring.NewArena(sr),
		scores: make(map[State]*score),
		scans:  make(map[State]float64),
	}
}

// Semiring returns the semiring of the chart's scores.
func (c *Chart) Semiring() semiring.Semiring {
	return c.sr
}

// Size returns the number of chart positions.
func (c *Chart) Size() int {
	return len(c.sets)
}

// Seed returns the seed rule START → goal of the parse, or nil.
func (c *Chart) Seed() *grammar.Rule {
	return c.seed
}

func (c *Chart) ensure(pos int) {
	for len(c.sets) <= pos {
		c.sets = append(c.sets, arraylist.New())
		c.waiting = append(c.waiting, make(map[grammar.NonTerminal][]State))
		c.passive = append(c.passive, make(map[grammar.NonTerminal][]State))
	}
}

// AddState adds a state with forward and inner scores to the chart. If the
// state is already present, the scores are combined with the existing ones.
// AddState returns true if the state is new. A malformed state is an
// invariant violation and is reported as an error wrapping ErrInvariant.
func (c *Chart) AddState(s State, forward, inner float64) (bool, error) {
	return c.put(s, c.arena.Atom(forward), c.arena.Atom(inner), false, false)
}

// put inserts a state, if absent, and combines its scores. With deferred set,
// scores of new states are open accumulators, which collect contributions
// until the state's position is resolved. With keepInner set, the inner score
// of an existing state is left unchanged.
func (c *Chart) put(s State, fw, in semiring.Ref, deferred, keepInner bool) (bool, error) {
	if s.Rule == nil || s.Origin < 0 || s.Position < s.Origin || s.Dot < 0 || s.Dot > len(s.Rule.Right) {
		return false, stuck(fmt.Sprintf("malformed state %v", s))
	}
	if sc, ok := c.scores[s]; ok {
		if err := c.combine(&sc.forward, fw, deferred); err != nil {
			return false, err
		}
		if !keepInner {
			if err := c.combine(&sc.inner, in, deferred); err != nil {
				return false, err
			}
		}
		return false, nil
	}
	c.ensure(s.Position)
	sc := &score{forward: fw, inner: in}
	if deferred {
		sc.forward, sc.inner = c.arena.Sum(), c.arena.Sum()
		_ = c.arena.Accumulate(sc.forward, fw)
		_ = c.arena.Accumulate(sc.inner, in)
	}
	c.scores[s] = sc
	c.sets[s.Position].Add(s)
	if nt, ok := s.activeNonTerminal(); ok {
		c.waiting[s.Position][nt] = append(c.waiting[s.Position][nt], s)
	} else if s.IsPassive() {
		c.passive[s.Position][s.Rule.Left] = append(c.passive[s.Position][s.Rule.Left], s)
	}
	return true, nil
}

func (c *Chart) combine(old *semiring.Ref, term semiring.Ref, deferred bool) error {
	err := c.arena.Accumulate(*old, term)
	if err == nil {
		return nil
	}
	if deferred {
		return stuck(fmt.Sprintf("cannot accumulate score: %v", err))
	}
	*old = c.arena.Plus(*old, term)
	return nil
}

// resolve collapses the scores of all states at a position to scalars.
func (c *Chart) resolve(pos int) error {
	if pos >= len(c.sets) {
		return nil
	}
	for _, v := range c.sets[pos].Values() {
		sc := c.scores[v.(State)]
		if _, err := c.arena.Resolve(sc.forward); err != nil {
			return stuck(fmt.Sprintf("cannot resolve forward score of %v: %v", v, err))
		}
		if _, err := c.arena.Resolve(sc.inner); err != nil {
			return stuck(fmt.Sprintf("cannot resolve inner score of %v: %v", v, err))
		}
	}
	return nil
}

// States returns the states ending at a chart position, in order of insertion.
func (c *Chart) States(pos int) []State {
	if pos < 0 || pos >= len(c.sets) {
		return nil
	}
	values := c.sets[pos].Values()
	states := make([]State, len(values))
	for i, v := range values {
		states[i] = v.(State)
	}
	return states
}

// stateCount returns the number of states at a position.
func (c *Chart) stateCount(pos int) int {
	if pos < 0 || pos >= len(c.sets) {
		return 0
	}
	return c.sets[pos].Size()
}

// stateAt returns state number k at a position.
func (c *Chart) stateAt(pos, k int) State {
	v, _ := c.sets[pos].Get(k)
	return v.(State)
}

// Has is true if a state has been added to the chart.
func (c *Chart) Has(s State) bool {
	_, ok := c.scores[s]
	return ok
}

// ForwardScore returns the forward score of a state. If the state is not part
// of the chart, ForwardScore returns false.
func (c *Chart) ForwardScore(s State) (float64, bool) {
	sc, ok := c.scores[s]
	if !ok {
		return c.sr.Zero(), false
	}
	return c.value(sc.forward)
}

// InnerScore returns the inner score of a state. If the state is not part
// of the chart, InnerScore returns false.
func (c *Chart) InnerScore(s State) (float64, bool) {
	sc, ok := c.scores[s]
	if !ok {
		return c.sr.Zero(), false
	}
	return c.value(sc.inner)
}

func (c *Chart) value(r semiring.Ref) (float64, bool) {
	if v, ok := c.arena.Resolved(r); ok {
		return v, true
	}
	v, err := c.arena.Resolve(r)
	if err != nil {
		tracer().Errorf("score cannot be resolved: %v", err)
		return c.sr.Zero(), false
	}
	return v, true
}

// Token returns the token scanned from chart position pos to pos+1, together
// with its index in the input.
func (c *Chart) Token(pos int) (pearley.Token, int) {
	if pos < 0 || pos >= len(c.steps) {
		return nil, -1
	}
	return c.steps[pos].token, c.steps[pos].index
}

// Skipped returns the number of input tokens consumed by the step from
// chart position pos to pos+1. It is larger than 1 only for spans of
// unrecognized tokens in synchronizing mode.
func (c *Chart) Skipped(pos int) int {
	if pos < 0 || pos >= len(c.steps) {
		return 0
	}
	return c.steps[pos].count
}

// Accepting returns the passive seed state spanning the whole chart, if the
// chart has one.
func (c *Chart) Accepting() (State, bool) {
	if c.seed == nil || len(c.sets) == 0 {
		return State{}, false
	}
	s := State{Rule: c.seed, Origin: 0, Dot: 1, Position: len(c.sets) - 1}
	return s, c.Has(s)
}

// Probability returns the inner score of the accepting state, i.e. the total
// score of all derivations of the input from goal.
func (c *Chart) Probability(goal grammar.NonTerminal) (float64, bool) {
	if c.seed == nil || c.seed.Right[0] != grammar.Category(goal) {
		return c.sr.Zero(), false
	}
	s, ok := c.Accepting()
	if !ok {
		return c.sr.Zero(), false
	}
	return c.InnerScore(s)
}

func (c *Chart) String() string {
	var b bytes.Buffer
	for pos := range c.sets {
		fmt.Fprintf(&b, "--- %d ---", pos)
		if tok, i := c.Token(pos); tok != nil {
			fmt.Fprintf(&b, " next: %q (#%d)", tok.Lexeme(), i)
		}
		b.WriteString("\n")
		for _, s := range c.States(pos) {
			fw, _ := c.ForwardScore(s)
			in, _ := c.InnerScore(s)
			fmt.Fprintf(&b, "  %-40s  α=%.4g  γ=%.4g\n", s, fw, in)
		}
	}
	return b.String()
}
