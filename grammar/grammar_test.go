package grammar

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/pearley/semiring"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestBuilderFluent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.grammar")
	defer teardown()
	//
	b := NewBuilder("G")
	b.LHS("S").N("A").L("x").End()      // [0]: S → A "x"
	b.LHS("A").L("x").Weight(0.3).End() // [1]: A → "x"
	b.LHS("A").L("y").Weight(0.7).End() // [2]: A → "y"
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Rules()) != 3 {
		t.Errorf("expected grammar to have 3 rules, has %d", len(g.Rules()))
	}
	if len(g.Terminals()) != 2 {
		t.Errorf("expected terminals to be interned, have %v", g.Terminals())
	}
	x := g.Rule(0).Right[1].(*Terminal)
	if g.Rule(1).Right[0] != Category(x) {
		t.Errorf("expected fluent builder to re-use terminal \"x\"")
	}
	if len(g.PreterminalRules(x)) != 1 {
		t.Errorf("expected 1 rule with leading terminal \"x\", have %d", len(g.PreterminalRules(x)))
	}
	if len(g.RulesFor(NT("A"))) != 2 {
		t.Errorf("expected 2 rules for A")
	}
	nts := g.NonTerminals()
	if len(nts) != 2 || nts[0] != NT("A") || nts[1] != NT("S") {
		t.Errorf("expected non-terminals [A S], have %v", nts)
	}
	if g.Rule(1).Weight != 0.3 {
		t.Errorf("expected weight of rule #1 to be 0.3, is %g", g.Rule(1).Weight)
	}
	g.Dump()
}

func TestBuilderErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.grammar")
	defer teardown()
	//
	x := Lexeme("x")
	cases := []struct {
		name  string
		build func(b *Builder)
		err   error
	}{
		{"empty", func(b *Builder) {}, ErrEmptyGrammar},
		{"epsilon", func(b *Builder) { b.Rule(1, NT("S")) }, ErrInvalidRule},
		{"no-lhs", func(b *Builder) { b.Rule(1, NonTerminal{}, x) }, ErrInvalidRule},
		{"start-lhs", func(b *Builder) { b.Rule(1, Start, x) }, ErrInvalidRule},
		{"start-rhs", func(b *Builder) { b.Rule(1, NT("S"), Start) }, ErrInvalidRule},
		{"nil-rhs", func(b *Builder) { b.Rule(1, NT("S"), nil) }, ErrInvalidRule},
		{"negative", func(b *Builder) { b.Rule(-0.5, NT("S"), x) }, ErrInvalidRule},
		{"duplicate", func(b *Builder) {
			b.Rule(0.5, NT("S"), x)
			b.Rule(0.2, NT("S"), x)
		}, ErrDuplicateRule},
	}
	for _, c := range cases {
		b := NewBuilder(c.name)
		c.build(b)
		_, err := b.Grammar()
		if !errors.Is(err, c.err) {
			t.Errorf("case %s: expected error %v, got %v", c.name, c.err, err)
		}
	}
	if _, err := NewBuilder("G", WithSemiringNamed("tropical")).Rule(1, NT("S"), x).Grammar(); err == nil {
		t.Errorf("expected unknown semiring to be reported")
	}
}

func TestStrictPreterminals(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.grammar")
	defer teardown()
	//
	build := func(strict bool) error {
		b := NewBuilder("G", StrictPreterminals(strict))
		b.LHS("S").N("A").L("x").End()
		b.LHS("A").L("y").End()
		_, err := b.Grammar()
		return err
	}
	if err := build(false); err != nil {
		t.Errorf("expected lenient builder to accept S → A \"x\", got %v", err)
	}
	if err := build(true); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("expected strict builder to reject S → A \"x\", got %v", err)
	}
}

// S -p-> a, S -q-> B, B -1-> S
func makeCyclicUnitGrammar(t *testing.T, p, q float64, opts ...BuilderOption) *Grammar {
	b := NewBuilder("Cyclic", opts...)
	b.LHS("S").L("a").Weight(p).End()
	b.LHS("S").N("B").Weight(q).End()
	b.LHS("B").N("S").Weight(1.0).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestLeftCornerClosure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.grammar")
	defer teardown()
	//
	p, q := 0.6, 0.4
	g := makeCyclicUnitGrammar(t, p, q)
	S, B := NT("S"), NT("B")
	expect := map[[2]NonTerminal]float64{
		{S, S}: 1 / (1 - q),
		{S, B}: q / (1 - q),
		{B, S}: 1 / (1 - q),
		{B, B}: 1 / (1 - q),
	}
	for pair, v := range expect {
		if r := g.LeftCornerStar(pair[0], pair[1]); math.Abs(r-v) > 1e-9 {
			t.Errorf("expected R_L(%v,%v) = %g, is %g", pair[0], pair[1], v, r)
		}
		if r := g.UnitStar(pair[0], pair[1]); math.Abs(r-v) > 1e-9 {
			t.Errorf("expected R_U(%v,%v) = %g, is %g", pair[0], pair[1], v, r)
		}
	}
	if len(g.LeftReachable(S)) != 2 {
		t.Errorf("expected S and B to be left-reachable from S, have %v", g.LeftReachable(S))
	}
	if !g.UnitConnected(S, B) || !g.UnitConnected(B, S) {
		t.Errorf("expected S and B to be unit-connected")
	}
}

func TestLeftCornerAcyclic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.grammar")
	defer teardown()
	//
	b := NewBuilder("Acyclic")
	b.LHS("S").N("NP").N("VP").End()
	b.LHS("S").N("VP").Weight(0.5).End()
	b.LHS("NP").N("Det").N("N").Weight(0.6).End()
	b.LHS("NP").L("she").Weight(0.4).End()
	b.LHS("VP").N("V").N("NP").End()
	b.LHS("Det").L("a").End()
	b.LHS("N").L("cat").End()
	b.LHS("V").L("sees").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	for _, x := range g.NonTerminals() {
		if r := g.LeftCornerStar(x, x); math.Abs(r-1) > 1e-9 {
			t.Errorf("expected R_L(%v,%v) = 1 for acyclic relation, is %g", x, x, r)
		}
	}
	compareGeometricSeries(t, g, 10)
	if r := g.LeftCornerStar(NT("S"), NT("Det")); math.Abs(r-0.6) > 1e-9 {
		t.Errorf("expected R_L(S,Det) = 0.6, is %g", r)
	}
	if r := g.LeftCornerStar(NT("Det"), NT("S")); r != 0 {
		t.Errorf("expected R_L(Det,S) = 0, is %g", r)
	}
}

func TestLeftRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.grammar")
	defer teardown()
	//
	b := NewBuilder("Expr")
	b.LHS("E").N("E").L("+").N("T").Weight(0.3).End()
	b.LHS("E").N("T").Weight(0.7).End()
	b.LHS("T").N("T").L("*").N("F").Weight(0.2).End()
	b.LHS("T").N("F").Weight(0.8).End()
	b.LHS("F").L("n").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	compareGeometricSeries(t, g, 200)
}

// compareGeometricSeries checks R_L against I + P + P² + … + P^k.
func compareGeometricSeries(t *testing.T, g *Grammar, k int) {
	nts := g.NonTerminals()
	n := len(nts)
	P := make([][]float64, n)
	sum := make([][]float64, n)
	pow := make([][]float64, n)
	for i, x := range nts {
		P[i] = make([]float64, n)
		sum[i] = make([]float64, n)
		pow[i] = make([]float64, n)
		for j, y := range nts {
			P[i][j] = g.LeftCorner(x, y)
		}
		pow[i][i] = 1
		sum[i][i] = 1
	}
	for e := 1; e <= k; e++ {
		next := make([][]float64, n)
		for i := range next {
			next[i] = make([]float64, n)
			for j := 0; j < n; j++ {
				for m := 0; m < n; m++ {
					next[i][j] += pow[i][m] * P[m][j]
				}
				sum[i][j] += next[i][j]
			}
		}
		pow = next
	}
	for i, x := range nts {
		for j, y := range nts {
			if r := g.LeftCornerStar(x, y); math.Abs(r-sum[i][j]) > 1e-6 {
				t.Errorf("R_L(%v,%v) = %g differs from geometric series %g", x, y, r, sum[i][j])
			}
		}
	}
}

func TestSingularLeftCorner(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.grammar")
	defer teardown()
	//
	b := NewBuilder("Singular")
	b.LHS("A").N("A").L("x").Weight(1.0).End()
	b.LHS("A").L("x").Weight(1.0).End()
	if _, err := b.Grammar(); !errors.Is(err, ErrSingularMatrix) {
		t.Errorf("expected left-recursion of weight 1 to be rejected, got %v", err)
	}
	b = NewBuilder("Divergent")
	b.LHS("A").N("B").L("x").Weight(1.0).End()
	b.LHS("B").N("A").L("y").Weight(2.0).End()
	b.LHS("B").L("y").End()
	if _, err := b.Grammar(); !errors.Is(err, ErrSingularMatrix) {
		t.Errorf("expected left-corner cycle of weight 2 to be rejected, got %v", err)
	}
}

func TestLogSemiringRelations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.grammar")
	defer teardown()
	//
	g := makeCyclicUnitGrammar(t, 0.6, 0.4, WithSemiring(semiring.Log))
	r := g.LeftCornerStar(NT("S"), NT("B"))
	if p := semiring.Log.ToProbability(r); math.Abs(p-0.4/0.6) > 1e-9 {
		t.Errorf("expected R_L(S,B) to be −log(2/3), is %g", r)
	}
	if !math.IsInf(g.LeftCornerStar(NT("S"), NT("X")), 1) {
		t.Errorf("expected unknown non-terminal to have log-zero relation")
	}
	if g.Rule(0).Weight != -math.Log(0.6) {
		t.Errorf("expected rule weight to be converted into log semiring")
	}
}

func TestUnitPath(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.grammar")
	defer teardown()
	tracing.Select("pearley.grammar").SetTraceLevel(tracing.LevelDebug)
	//
	b := NewBuilder("Units")
	b.LHS("S").N("B").Weight(0.4).End()
	b.LHS("S").N("C").Weight(0.5).End()
	b.LHS("S").L("a").Weight(0.1).End()
	b.LHS("C").N("B").Weight(0.9).End()
	b.LHS("C").L("c").Weight(0.1).End()
	b.LHS("B").L("b").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	g.Dump()
	path, w, ok := g.UnitPath(NT("S"), NT("B"))
	if !ok || len(path) != 2 || path[0].Right[0] != Category(NT("C")) {
		t.Fatalf("expected best unit path S → C → B, have %v", path)
	}
	if math.Abs(w-0.45) > 1e-9 {
		t.Errorf("expected best unit path to have weight 0.45, has %g", w)
	}
	if _, _, ok := g.UnitPath(NT("B"), NT("S")); ok {
		t.Errorf("expected no unit path from B to S")
	}
	if path, w, ok := g.UnitPath(NT("S"), NT("S")); !ok || len(path) != 0 || w != 1 {
		t.Errorf("expected empty unit path from S to S")
	}
	paths := g.UnitPaths(NT("S"), NT("B"))
	if len(paths) != 2 || len(paths[0]) != 1 || len(paths[1]) != 2 {
		t.Fatalf("expected unit paths S → B and S → C → B, have %v", paths)
	}
	if paths[1][0].Right[0] != Category(NT("C")) || paths[1][1].Left != NT("C") {
		t.Errorf("expected second unit path to lead through C, is %v", paths[1])
	}
	if len(g.UnitPaths(NT("B"), NT("S"))) != 0 {
		t.Errorf("expected no unit paths from B to S")
	}
	if p := g.UnitPaths(NT("S"), NT("S")); len(p) != 1 || len(p[0]) != 0 {
		t.Errorf("expected only the empty unit path from S to S, have %v", p)
	}
}

func TestUnitPathsInCycles(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.grammar")
	defer teardown()
	//
	b := NewBuilder("UnitCycle")
	b.LHS("S").L("a").Weight(0.6).End()
	b.LHS("S").N("B").Weight(0.4).End()
	b.LHS("B").N("S").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	paths := g.UnitPaths(NT("B"), NT("S"))
	if len(paths) != 1 || len(paths[0]) != 1 {
		t.Errorf("expected the single chain B → S, have %v", paths)
	}
	if p := g.UnitPaths(NT("S"), NT("S")); len(p) != 1 || len(p[0]) != 0 {
		t.Errorf("expected cycle S → B → S not to be a unit path, have %v", p)
	}
}
