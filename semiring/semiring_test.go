package semiring

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestProbabilitySemiring(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.semiring")
	defer teardown()
	//
	sr := Probability
	if sr.Plus(0.25, 0.5) != 0.75 {
		t.Errorf("expected 0.25 ⊕ 0.5 = 0.75, is %g", sr.Plus(0.25, 0.5))
	}
	if sr.Times(0.25, 0.5) != 0.125 {
		t.Errorf("expected 0.25 ⊗ 0.5 = 0.125, is %g", sr.Times(0.25, 0.5))
	}
	if sr.Compare(0.7, 0.3) <= 0 {
		t.Errorf("expected 0.7 to be better than 0.3")
	}
	if sr.Member(-1) || sr.Member(math.NaN()) {
		t.Errorf("expected negative numbers and NaN to be rejected")
	}
}

func TestLogSemiring(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.semiring")
	defer teardown()
	//
	sr := Log
	a, b := sr.FromProbability(0.25), sr.FromProbability(0.5)
	if p := sr.ToProbability(sr.Plus(a, b)); !near(p, 0.75) {
		t.Errorf("expected log-sum to yield 0.75, is %g", p)
	}
	if p := sr.ToProbability(sr.Times(a, b)); !near(p, 0.125) {
		t.Errorf("expected log-product to yield 0.125, is %g", p)
	}
	if sr.Plus(sr.Zero(), a) != a || sr.Plus(b, sr.Zero()) != b {
		t.Errorf("expected +Inf to be neutral for ⊕")
	}
	if !math.IsInf(sr.FromProbability(0), 1) {
		t.Errorf("expected probability 0 to map to +Inf")
	}
	if sr.Compare(a, b) >= 0 {
		t.Errorf("expected 0.5 to be better than 0.25 in log space")
	}
	if Better(sr, a, b) != b {
		t.Errorf("expected Better to select 0.5")
	}
	// large magnitudes do not underflow
	x := sr.Plus(1000, 1000)
	if !near(x, 1000-math.Ln2) {
		t.Errorf("expected stable log-sum 1000-ln2, is %g", x)
	}
}

func TestPowAndByName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.semiring")
	defer teardown()
	//
	if Pow(Probability, 0.5, 3) != 0.125 {
		t.Errorf("expected 0.5^3 = 0.125")
	}
	if Pow(Log, 2, 0) != 0 {
		t.Errorf("expected x^0 to be the one of the log semiring")
	}
	for _, name := range []string{"probability", "PROB", "log", "logprob"} {
		if _, err := ByName(name); err != nil {
			t.Errorf("expected semiring %q to be known: %v", name, err)
		}
	}
	if _, err := ByName("tropical"); err == nil {
		t.Errorf("expected unknown semiring to be rejected")
	}
}

func TestArenaCollapse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.semiring")
	defer teardown()
	//
	a := NewArena(Probability)
	x, y := a.Atom(0.5), a.Atom(0.25)
	n := a.Len()
	s := a.Plus(x, y)
	if v, ok := a.Resolved(s); !ok || v != 0.75 {
		t.Errorf("expected atom ⊕ atom to collapse to 0.75, is %g/%v", v, ok)
	}
	p := a.Times(x, y)
	if v, ok := a.Resolved(p); !ok || v != 0.125 {
		t.Errorf("expected atom ⊗ atom to collapse to 0.125, is %g/%v", v, ok)
	}
	if a.Len() != n+2 {
		t.Errorf("expected collapsing to allocate atoms only, have %d nodes", a.Len())
	}
}

func TestArenaIdentities(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.semiring")
	defer teardown()
	//
	a := NewArena(Log)
	sum := a.Sum()
	zero, one := a.Atom(Log.Zero()), a.Atom(Log.One())
	if a.Plus(zero, sum) != sum || a.Plus(sum, NoRef) != sum {
		t.Errorf("expected zero to be neutral for ⊕")
	}
	if a.Times(one, sum) != sum || a.Times(sum, one) != sum {
		t.Errorf("expected one to be neutral for ⊗")
	}
	if a.Times(zero, sum) != zero {
		t.Errorf("expected zero to annihilate under ⊗")
	}
	if a.Times(sum, NoRef) != NoRef {
		t.Errorf("expected absent score to annihilate under ⊗")
	}
}

func TestArenaDeferredSum(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.semiring")
	defer teardown()
	//
	a := NewArena(Probability)
	inner := a.Sum()
	outer := a.Sum()
	// outer = 0.1 + 0.5 × inner, inner accumulates later
	if err := a.Accumulate(outer, a.Atom(0.1)); err != nil {
		t.Fatal(err)
	}
	if err := a.Accumulate(outer, a.Times(a.Atom(0.5), inner)); err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Resolved(outer); ok {
		t.Errorf("expected open sum to be unresolved")
	}
	_ = a.Accumulate(inner, a.Atom(0.2))
	_ = a.Accumulate(inner, a.Atom(0.6))
	v, err := a.Resolve(outer)
	if err != nil {
		t.Fatal(err)
	}
	if !near(v, 0.5) {
		t.Errorf("expected 0.1 + 0.5 × 0.8 = 0.5, is %g", v)
	}
	v2, _ := a.Resolve(outer)
	if v2 != v {
		t.Errorf("expected resolution to be idempotent")
	}
	if err := a.Accumulate(inner, a.Atom(0.1)); !errors.Is(err, ErrResolved) {
		t.Errorf("expected accumulation into resolved sum to fail, got %v", err)
	}
}

func TestArenaCycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.semiring")
	defer teardown()
	//
	a := NewArena(Probability)
	s := a.Sum()
	_ = a.Accumulate(s, a.Times(a.Atom(0.5), s))
	if _, err := a.Resolve(s); !errors.Is(err, ErrCyclicExpression) {
		t.Errorf("expected cyclic expression to be detected, got %v", err)
	}
}
