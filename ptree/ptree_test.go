package ptree

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/npillmayer/pearley"
	"github.com/npillmayer/pearley/grammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

type tok string

func (t tok) TokType() pearley.TokType { return 0 }
func (t tok) Lexeme() string           { return string(t) }
func (t tok) Value() interface{}       { return nil }
func (t tok) Span() pearley.Span       { return pearley.Span{} }

// Sum = Sum "+" n | n
func makeTree(t *testing.T, leftAssoc bool) *Node {
	b := grammar.NewBuilder("Sum")
	b.LHS("Sum").N("Sum").L("+").N("Sum").Weight(0.4).End()
	b.LHS("Sum").L("n").Weight(0.6).End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	plus := g.Rule(0).Right[1].(*grammar.Terminal)
	num := g.Rule(1).Right[0].(*grammar.Terminal)
	leaf := func(lexeme string, pos int) *Node {
		if lexeme == "+" {
			return NewLeaf(plus, tok(lexeme), pos)
		}
		return NewInner(g.Rule(1), []*Node{NewLeaf(num, tok(lexeme), pos)})
	}
	if leftAssoc { // (1+2)+3
		l := NewInner(g.Rule(0), []*Node{leaf("1", 0), leaf("+", 1), leaf("2", 2)})
		return NewInner(g.Rule(0), []*Node{l, leaf("+", 3), leaf("3", 4)})
	}
	r := NewInner(g.Rule(0), []*Node{leaf("2", 2), leaf("+", 3), leaf("3", 4)})
	return NewInner(g.Rule(0), []*Node{leaf("1", 0), leaf("+", 1), r})
}

type sumListener struct {
	terminals int
}

func (l *sumListener) Terminal(node *Node, ctxt RuleCtxt) interface{} {
	l.terminals++
	n, _ := strconv.Atoi(node.Token.Lexeme())
	return n
}

func (l *sumListener) Reduce(node *Node, children []interface{}, ctxt RuleCtxt) interface{} {
	sum := 0
	for _, v := range children {
		sum += v.(int)
	}
	return sum
}

func TestWalk(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.ptree")
	defer teardown()
	//
	root := makeTree(t, true)
	if root.Extent != (pearley.Span{0, 5}) {
		t.Errorf("expected root to span (0…5), spans %v", root.Extent)
	}
	l := &sumListener{}
	if v := Walk(root, l); v != 6 {
		t.Errorf("expected 1+2+3 to evaluate to 6, is %v", v)
	}
	if l.terminals != 5 {
		t.Errorf("expected 5 terminals to be visited, were %d", l.terminals)
	}
	if v := WalkDirected(root, &sumListener{}, RtoL); v != 6 {
		t.Errorf("expected right-to-left walk to evaluate to 6, is %v", v)
	}
	if len(root.Leaves()) != 5 {
		t.Errorf("expected 5 leaves, have %d", len(root.Leaves()))
	}
}

func TestSignature(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.ptree")
	defer teardown()
	//
	l1, l2 := makeTree(t, true), makeTree(t, true)
	r := makeTree(t, false)
	if l1.Signature() != l2.Signature() {
		t.Errorf("expected structurally equal trees to have equal signatures")
	}
	if l1.Signature() == r.Signature() {
		t.Errorf("expected (1+2)+3 and 1+(2+3) to have different signatures")
	}
	if l1.String() != `(Sum (Sum (Sum "1") "+" (Sum "2")) "+" (Sum "3"))` {
		t.Errorf("unexpected tree string %s", l1)
	}
}

func TestJSON(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pearley.ptree")
	defer teardown()
	//
	root := makeTree(t, false)
	data, err := json.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"category":"Sum"`) || !strings.Contains(string(data), `"token":"3"`) {
		t.Errorf("unexpected JSON: %s", data)
	}
}
