package ir

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/shapes"
)

// NodeID indexes a node in its Graph. IDs are assigned in creation order, so operands
// always have a smaller ID than their consumers.
type NodeID int32

// InvalidNodeID is never assigned to a node.
const InvalidNodeID NodeID = -1

// Output references one output of a node: this is what operands point to.
type Output struct {
	Node  NodeID
	Index int
}

// String implements fmt.Stringer, in the form used by graph dumps: "%3", or "%3.1" for outputs other than 0.
func (o Output) String() string {
	if o.Index == 0 {
		return fmt.Sprintf("%%%d", o.Node)
	}
	return fmt.Sprintf("%%%d.%d", o.Node, o.Index)
}

// Node is a vertex of the Graph. Nodes are immutable once created.
type Node struct {
	graph    *Graph
	id       NodeID
	op       OpKind
	operands []Output
	attrs    []int64
	hash     Hash
	shapes   []shapes.Shape
	name     string
	payload  any
}

// ID of the node in its graph.
func (n *Node) ID() NodeID { return n.id }

// Graph the node belongs to.
func (n *Node) Graph() *Graph { return n.graph }

// Op returns the node's op kind.
func (n *Node) Op() OpKind { return n.op }

// Hash returns the structural hash of the node.
func (n *Node) Hash() Hash { return n.hash }

// Name of parameters and constants. Empty for other nodes.
func (n *Node) Name() string { return n.name }

// Payload is the value attached by the layer that created the node, e.g. a dimension expression.
func (n *Node) Payload() any { return n.payload }

// Operands returns the outputs consumed by this node, in construction order.
// The returned slice is owned by the node and must not be modified.
func (n *Node) Operands() []Output { return n.operands }

// NumOperands returns the number of operands.
func (n *Node) NumOperands() int { return len(n.operands) }

// Operand returns the i-th operand. It panics if i is out of range.
func (n *Node) Operand(i int) Output {
	if i < 0 || i >= len(n.operands) {
		exceptions.Panicf("operand index %d out of range for node %s with %d operands", i, n.Output(), len(n.operands))
	}
	return n.operands[i]
}

// Attrs returns the extra integer parameters of the node, which take part in its structural identity.
// The returned slice must not be modified.
func (n *Node) Attrs() []int64 { return n.attrs }

// NumOutputs returns the number of outputs of the node.
func (n *Node) NumOutputs() int { return len(n.shapes) }

// Output returns a reference to the first output of the node.
func (n *Node) Output() Output { return Output{Node: n.id} }

// Shape of the first output. A copy is returned.
func (n *Node) Shape() shapes.Shape { return n.OutputShape(0) }

// OutputShape returns a copy of the shape of the given output. It panics if the output doesn't exist.
func (n *Node) OutputShape(index int) shapes.Shape {
	if index < 0 || index >= len(n.shapes) {
		exceptions.Panicf("output index %d out of range for node %s with %d outputs", index, n.Output(), len(n.shapes))
	}
	return n.shapes[index].Clone()
}

// String implements fmt.Stringer.
//
// If the payload implements fmt.Stringer it is used, so layers built on top of the graph control
// how their nodes are rendered.
func (n *Node) String() string {
	if s, ok := n.payload.(fmt.Stringer); ok {
		return s.String()
	}
	var sb strings.Builder
	sb.WriteString(string(n.op))
	if n.name != "" {
		fmt.Fprintf(&sb, " %q", n.name)
	}
	if len(n.operands) > 0 {
		sb.WriteByte('(')
		for ii, o := range n.operands {
			if ii > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(o.String())
		}
		sb.WriteByte(')')
	}
	for ii, shape := range n.shapes {
		if len(n.shapes) == 1 {
			sb.WriteString(" shape=")
		} else {
			fmt.Fprintf(&sb, " shape#%d=", ii)
		}
		sb.WriteString(dimensionsString(shape))
	}
	return sb.String()
}

// dimensionsString renders the axis lengths of a shape, using "?" for symbolic axes.
func dimensionsString(shape shapes.Shape) string {
	parts := make([]string, len(shape.Dimensions))
	for axis, dim := range shape.Dimensions {
		if dim < 0 {
			parts[axis] = "?"
		} else {
			parts[axis] = fmt.Sprint(dim)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
