// Package dims implements dimension expressions: graph nodes whose value is the length of a tensor
// axis, or integer arithmetic on such lengths.
//
// Reading the size of a traced value as a plain integer makes it leak out of the trace, and bakes
// a shape-specific constant into the recorded program. Instead, SizeOf records a node that reads the
// axis length, and Add, Mul and Div combine them into expressions, so an element count like
// x.shape[0]*x.shape[1] stays in the graph:
//
//	s0 := must.M1(dims.SizeOf(g, x, 0))
//	s1 := must.M1(dims.SizeOf(g, x, 1))
//	numel := must.M1(dims.Mul(s0, s1))
//	value, err := numel.StaticValue()
//
// Dimension nodes are regular ir.Node's with a *Node payload, so they are hash-consed, dumped and
// used as operands like any other node. ScalarWrap adapts a dimension to positions where a
// scalar value is expected.
//
// Values are always resolved statically from the recorded shapes: IsDynamic is always false.
package dims

import (
	"fmt"

	"github.com/gomlx/dimtrace/ir"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Node is a dimension expression: a tagged variant over Kind.
//
// Nodes are immutable, and safe for concurrent reading.
type Node struct {
	node *ir.Node
	kind Kind

	// axis read by KindSize nodes.
	axis int

	// dynamic marks values only known at execution time. No builder sets it yet:
	// resolution is always static.
	dynamic bool
}

// Lookup returns the dimension node at the output o of g, if there is one.
func Lookup(g *ir.Graph, o ir.Output) (*Node, bool) {
	if g == nil || !g.IsValidOutput(o) || o.Index != 0 {
		return nil, false
	}
	n, ok := g.Node(o.Node).Payload().(*Node)
	return n, ok
}

// Kind of the expression.
func (n *Node) Kind() Kind { return n.kind }

// Graph the node belongs to.
func (n *Node) Graph() *ir.Graph { return n.node.Graph() }

// IR returns the underlying graph node.
func (n *Node) IR() *ir.Node { return n.node }

// ID of the node in its graph.
func (n *Node) ID() ir.NodeID { return n.node.ID() }

// Output is the reference used to consume this dimension as an operand.
func (n *Node) Output() ir.Output { return n.node.Output() }

// Hash returns the structural hash of the node.
func (n *Node) Hash() ir.Hash { return n.node.Hash() }

// Axis read by a KindSize node. It panics for other kinds.
func (n *Node) Axis() int {
	if n.kind != KindSize {
		exceptions.Panicf("dims.Node.Axis() called on a %s node", n.kind)
	}
	return n.axis
}

// Operands of the node, as outputs of their producers, in construction order.
// The returned slice must not be modified.
func (n *Node) Operands() []ir.Output { return n.node.Operands() }

// NumOperands returns the number of operands.
func (n *Node) NumOperands() int { return n.node.NumOperands() }

// Operand returns the i-th operand. It panics if i is out of range.
func (n *Node) Operand(i int) ir.Output { return n.node.Operand(i) }

// operandDim returns the i-th operand as a dimension node.
// Construction guarantees it exists for every kind but KindSize.
func (n *Node) operandDim(i int) *Node {
	d, ok := Lookup(n.Graph(), n.Operand(i))
	if !ok {
		exceptions.Panicf("operand #%d of %s is not a dimension", i, n)
	}
	return d
}

// IsDynamic reports whether the value of the node is only known at execution time.
// It is always false for now.
func (n *Node) IsDynamic() bool { return n.dynamic }

// String implements fmt.Stringer. E.g.: "dim::size(%0, axis=1)", "dim::mul(%1, %2)".
func (n *Node) String() string {
	switch n.kind {
	case KindSize:
		return fmt.Sprintf("%s(%s, axis=%d)", n.kind.Op(), n.Operand(0), n.axis)
	case KindAdd, KindMul, KindDiv:
		return fmt.Sprintf("%s(%s, %s)", n.kind.Op(), n.Operand(0), n.Operand(1))
	case KindScalar:
		return fmt.Sprintf("%s(%s)", n.kind.Op(), n.Operand(0))
	default:
		return fmt.Sprintf("dim::invalid(%d)", n.kind)
	}
}

// StaticValue resolves the value of the expression from the recorded shapes.
//
// Shared operands are resolved once per call. Use a Resolver to keep the values across calls.
func (n *Node) StaticValue() (int64, error) {
	memo := make(map[ir.NodeID]int64)
	var resolve func(d *Node) (int64, error)
	resolve = func(d *Node) (int64, error) {
		if v, found := memo[d.ID()]; found {
			return v, nil
		}
		v, err := d.evaluate(resolve)
		if err != nil {
			return 0, err
		}
		memo[d.ID()] = v
		return v, nil
	}
	return resolve(n)
}

// evaluate computes the value of n, using resolve to get the value of its dimension operands.
func (n *Node) evaluate(resolve func(*Node) (int64, error)) (int64, error) {
	switch n.kind {
	case KindSize:
		o := n.Operand(0)
		length := n.Graph().AxisLength(o, n.axis)
		if length < 0 {
			return 0, errors.Wrapf(ErrNotStatic, "%s: axis %d of %s is symbolic", n, n.axis, o)
		}
		return int64(length), nil

	case KindAdd, KindMul, KindDiv:
		a, err := resolve(n.operandDim(0))
		if err != nil {
			return 0, err
		}
		b, err := resolve(n.operandDim(1))
		if err != nil {
			return 0, err
		}
		var v int64
		switch n.kind {
		case KindAdd:
			v, err = CheckedAdd(a, b)
		case KindMul:
			v, err = CheckedMul(a, b)
		default:
			v, err = CheckedDiv(a, b)
		}
		if err != nil {
			return 0, errors.WithMessagef(err, "resolving %s", n)
		}
		return v, nil

	case KindScalar:
		return resolve(n.operandDim(0))

	}
	exceptions.Panicf("dims.Node of invalid kind %s", n.kind)
	return 0, nil
}
