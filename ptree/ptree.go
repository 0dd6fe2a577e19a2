/*
Package ptree implements parse trees, as extracted from the chart of a
probabilistic Earley parse.

A parse tree is a plain tree of Nodes. Inner nodes carry the grammar rule
applied at that derivation point, leaves carry input tokens. Trees are
walked with a Listener, which may compute a value for every node bottom-up
(see function Walk).

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package ptree

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cnf/structhash"
	"github.com/npillmayer/pearley"
	"github.com/npillmayer/pearley/grammar"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pearley.ptree'.
func tracer() tracing.Trace {
	return tracing.Select("pearley.ptree")
}

// Node is a node of a parse tree.
//
// Extent is the span of chart positions the node covers. Leaves
// carry the token matched at that position; if a token run has been
// skipped by a synchronizing parser, Token is the first token of the run.
type Node struct {
	Category grammar.Category
	Rule     *grammar.Rule // nil for leaves
	Extent   pearley.Span
	Token    pearley.Token // nil for inner nodes
	Children []*Node
}

// NewLeaf creates a leaf node for a terminal matched by token tok at chart
// position pos.
func NewLeaf(t *grammar.Terminal, tok pearley.Token, pos int) *Node {
	return &Node{
		Category: t,
		Extent:   pearley.Span{uint64(pos), uint64(pos + 1)},
		Token:    tok,
	}
}

// NewInner creates an inner node for a rule application. The extent of the
// node is computed from the children.
func NewInner(r *grammar.Rule, children []*Node) *Node {
	n := &Node{
		Category: r.Left,
		Rule:     r,
		Children: children,
	}
	for i, ch := range children {
		if i == 0 {
			n.Extent = ch.Extent
		} else {
			n.Extent = n.Extent.Extend(ch.Extent)
		}
	}
	return n
}

// IsLeaf is true for nodes representing a scanned token.
func (n *Node) IsLeaf() bool {
	return n.Rule == nil
}

// Each visits all nodes of a tree top-down, left to right.
func (n *Node) Each(f func(node *Node, level int)) {
	n.each(f, 0)
}

func (n *Node) each(f func(node *Node, level int), level int) {
	if n == nil {
		return
	}
	f(n, level)
	for _, ch := range n.Children {
		ch.each(f, level+1)
	}
}

// Leaves returns the leaves of a tree in input order.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.Each(func(node *Node, _ int) {
		if node.IsLeaf() {
			leaves = append(leaves, node)
		}
	})
	return leaves
}

// Label returns a short textual representation of a node, without its children.
func (n *Node) Label() string {
	if n.IsLeaf() {
		if n.Token != nil {
			return fmt.Sprintf("%s %q", n.Category, n.Token.Lexeme())
		}
		return n.Category.String()
	}
	return fmt.Sprintf("%s %v", n.Category, n.Extent)
}

// String returns a bracketed representation of a tree, e.g. (S (A "a") "b").
func (n *Node) String() string {
	if n == nil {
		return "()"
	}
	if n.IsLeaf() {
		if n.Token != nil {
			return fmt.Sprintf("%q", n.Token.Lexeme())
		}
		return n.Category.String()
	}
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(n.Category.Name())
	for _, ch := range n.Children {
		b.WriteString(" ")
		b.WriteString(ch.String())
	}
	b.WriteString(")")
	return b.String()
}

// --- Signatures ------------------------------------------------------------

type signature struct {
	Cat      string
	Rule     int
	From, To uint64
	Children []signature
}

func (n *Node) signature() signature {
	s := signature{
		Cat:  n.Category.String(),
		Rule: -1,
		From: n.Extent.From(),
		To:   n.Extent.To(),
	}
	if n.Rule != nil {
		s.Rule = n.Rule.Serial
	}
	for _, ch := range n.Children {
		s.Children = append(s.Children, ch.signature())
	}
	return s
}

// Signature returns a structural hash of a tree. Trees with equal structure
// (categories, rules and extents) have equal signatures.
func (n *Node) Signature() string {
	if n == nil {
		return ""
	}
	h, err := structhash.Hash(n.signature(), 1)
	if err != nil {
		tracer().Errorf("cannot hash parse tree: %v", err)
		return n.String()
	}
	return h
}

// --- JSON ------------------------------------------------------------------

type jsonNode struct {
	Category string      `json:"category"`
	Rule     *int        `json:"rule,omitempty"`
	Span     [2]uint64   `json:"span"`
	Token    string      `json:"token,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

func (n *Node) toJSON() *jsonNode {
	j := &jsonNode{
		Category: n.Category.String(),
		Span:     n.Extent,
	}
	if n.Rule != nil {
		serial := n.Rule.Serial
		j.Rule = &serial
	}
	if n.Token != nil {
		j.Token = n.Token.Lexeme()
	}
	for _, ch := range n.Children {
		j.Children = append(j.Children, ch.toJSON())
	}
	return j
}

// MarshalJSON is part of interface json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON())
}
