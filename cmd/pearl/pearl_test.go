package main

import (
	"math"
	"testing"

	"github.com/npillmayer/pearley/earley"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestParseRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.pearl")
	defer teardown()
	//
	r, err := parseRule(`0.4 VP -> V "with a" #word ?`)
	if err != nil {
		t.Fatal(err)
	}
	if r.weight != 0.4 || r.lhs != "VP" || len(r.rhs) != 4 {
		t.Fatalf("unexpected rule %v", r)
	}
	kinds := []symKind{nonterm, lexeme, tokclass, nonlexical}
	for i, k := range kinds {
		if r.rhs[i].kind != k {
			t.Errorf("expected symbol #%d to be of kind %d, is %d", i, k, r.rhs[i].kind)
		}
	}
	if r.rhs[1].name != "with a" {
		t.Errorf("expected quoted lexeme to keep its blank, is %q", r.rhs[1].name)
	}
	if r, _ := parseRule(`S → 'a'`); r.weight != 1.0 || r.rhs[0].name != "a" {
		t.Errorf("expected default weight and single-quoted lexeme, have %v", r)
	}
	for _, bad := range []string{`S NP`, `S ->`, `"S" -> a`, `S -> #verb`, `S -> "a`, `S -> a+b`} {
		if _, err := parseRule(bad); err == nil {
			t.Errorf("expected rule %q to be rejected", bad)
		}
	}
}

func TestSession(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.pearl")
	defer teardown()
	//
	intp, err := NewIntp()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := intp.Eval("parse she eats fish"); err == nil {
		t.Errorf("expected parse without rules to fail")
	}
	intp.loadDefaultGrammar()
	expected := 0.18432 * 0.4 * 0.3 * 0.3
	for _, sr := range []string{"probability", "log"} {
		if _, err := intp.Eval("semiring " + sr); err != nil {
			t.Fatal(err)
		}
		if _, err := intp.Eval("parse she eats fish with forks"); err != nil {
			t.Fatal(err)
		}
		if intp.status != earley.Accept {
			t.Fatalf("expected sentence to be accepted")
		}
		p, _ := intp.chart.Probability(intp.goalOf(intp.chart))
		if math.Abs(intp.sr.ToProbability(p)-expected) > 1e-9 {
			t.Errorf("expected probability %g, is %g", expected, intp.sr.ToProbability(p))
		}
		for _, cmd := range []string{"tree", "trees", "json", "chart", "rules"} {
			if _, err := intp.Eval(cmd); err != nil {
				t.Errorf("command %s failed: %v", cmd, err)
			}
		}
	}
	if _, err := intp.Eval("parse she eats"); err != nil {
		t.Errorf("expected rejected input not to be an error")
	}
	if _, err := intp.Eval("tree"); err == nil {
		t.Errorf("expected tree of rejected input to fail")
	}
	if _, err := intp.Eval("parse she eats spaghetti"); err == nil {
		t.Errorf("expected unknown word to be an error in strict mode")
	}
	intp.Eval("mode drop")
	intp.Eval("parse she eats spaghetti fish")
	if intp.status != earley.Accept {
		t.Errorf("expected unknown word to be dropped")
	}
	if quit, _ := intp.Eval("quit"); !quit {
		t.Errorf("expected quit to end the session")
	}
	if _, err := intp.Eval("frobnicate"); err == nil {
		t.Errorf("expected unknown command to be rejected")
	}
}
