package ptree

import "github.com/npillmayer/pearley"

// Listener is a type for walking a parse tree.
//
// Walk calls Terminal for every leaf and Reduce for every inner node, after
// all of the node's children have been visited. Values returned by the
// listener are handed upwards: Reduce receives the values of the children
// of a node.
type Listener interface {
	Reduce(node *Node, children []interface{}, ctxt RuleCtxt) interface{}
	Terminal(node *Node, ctxt RuleCtxt) interface{}
}

// RuleCtxt is a context structure for Listeners.
type RuleCtxt struct {
	Span      pearley.Span // span of chart positions covered by this node
	Level     int          // nesting level
	RuleIndex int          // -1 for terminals
}

// Direction lets clients decide wether children nodes should be traversed left-to-right
// (default) or right-to-left.
type Direction int

// Children nodes may be traversed left-to-right (default) or right-to-left.
const (
	LtoR Direction = 1
	RtoL Direction = -1
)

// Walk traverses a tree bottom-up, left to right, and returns the value the
// listener computed for the root.
func Walk(root *Node, listener Listener) interface{} {
	return WalkDirected(root, listener, LtoR)
}

// WalkDirected traverses a tree bottom-up, visiting children in direction dir.
// Children values are always handed to Reduce in left-to-right order.
func WalkDirected(root *Node, listener Listener, dir Direction) interface{} {
	if root == nil || listener == nil {
		return nil
	}
	return walk(root, listener, dir, 0)
}

func walk(node *Node, listener Listener, dir Direction, level int) interface{} {
	if node.IsLeaf() {
		ctxt := RuleCtxt{Span: node.Extent, Level: level, RuleIndex: -1}
		return listener.Terminal(node, ctxt)
	}
	tracer().Debugf(">>> %s", node.Label())
	values := make([]interface{}, len(node.Children))
	l := len(node.Children)
	for k := 0; k < l; k++ {
		i := k
		if dir == RtoL {
			i = l - 1 - k
		}
		values[i] = walk(node.Children[i], listener, dir, level+1)
	}
	ctxt := RuleCtxt{Span: node.Extent, Level: level, RuleIndex: node.Rule.Serial}
	value := listener.Reduce(node, values, ctxt)
	tracer().Debugf("<<< %s = %v", node.Label(), value)
	return value
}
