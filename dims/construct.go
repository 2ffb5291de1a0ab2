package dims

import (
	"github.com/gomlx/dimtrace/ir"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// New creates (or reuses a structurally identical) dimension node of the given kind.
// axis is only used by KindSize, and must be 0 otherwise.
//
// All validation happens here, so a node that is created can always be resolved, except for
// arithmetic errors (see StaticValue):
//
//   - KindSize takes one operand, any output of g, and 0 <= axis < rank of that output.
//   - KindAdd, KindMul and KindDiv take two dimension operands; KindScalar takes one.
//     Dimension operands must be dimension nodes of g, not wrapped by ScalarWrap.
func New(g *ir.Graph, kind Kind, operands []ir.Output, axis int) (*Node, error) {
	if g == nil {
		return nil, errors.Wrapf(ErrOperandKind, "dims.New(%s): nil graph", kind)
	}
	if !kind.IsValid() {
		return nil, errors.Errorf("dims.New: invalid kind %s", kind)
	}
	if len(operands) != kind.Arity() {
		return nil, errors.Wrapf(ErrArity, "dims.New(%s): got %d operands, want %d", kind, len(operands), kind.Arity())
	}

	spec := ir.NodeSpec{
		Op:       kind.Op(),
		Operands: operands,
		Shapes:   []shapes.Shape{shapes.Make(dtypes.Int64)},
	}
	if kind == KindSize {
		o := operands[0]
		if !g.IsValidOutput(o) {
			return nil, errors.Wrapf(ErrOperandKind, "dims.New(%s): operand %s is not a value of graph %q", kind, o, g.Name())
		}
		rank := g.Node(o.Node).OutputShape(o.Index).Rank()
		if axis < 0 || axis >= rank {
			return nil, errors.Wrapf(ErrAxisOutOfRange, "dims.New(%s): axis %d for %s of rank %d", kind, axis, o, rank)
		}
		spec.Seed = ir.MHash(axis)
		spec.Attrs = []int64{int64(axis)}
	} else {
		if axis != 0 {
			return nil, errors.Errorf("dims.New(%s): axis given (%d) to a kind that doesn't use it", kind, axis)
		}
		for ii, o := range operands {
			d, ok := Lookup(g, o)
			if !ok {
				return nil, errors.Wrapf(ErrOperandKind, "dims.New(%s): operand #%d (%s) is not a dimension", kind, ii, o)
			}
			if d.kind == KindScalar {
				return nil, errors.Wrapf(ErrOperandKind, "dims.New(%s): operand #%d (%s) is a scalar, not a dimension", kind, ii, o)
			}
		}
	}

	var created *Node
	spec.Payload = func(irNode *ir.Node) any {
		created = &Node{node: irNode, kind: kind, axis: axis}
		return created
	}
	irNode, reused, err := g.AddNode(spec)
	if err != nil {
		return nil, errors.WithMessagef(err, "dims.New(%s)", kind)
	}
	if !reused {
		klog.V(2).Infof("graph %q: %s = %s", g.Name(), created.Output(), created)
		return created, nil
	}
	d, ok := irNode.Payload().(*Node)
	if !ok {
		return nil, errors.Errorf("dims.New(%s): node %s reused for a dimension is not one", kind, irNode.Output())
	}
	return d, nil
}

// SizeOf returns the node that reads the length of the given axis of the value v.
func SizeOf(g *ir.Graph, v ir.Output, axis int) (*Node, error) {
	return New(g, KindSize, []ir.Output{v}, axis)
}

// Add returns the node for a+b.
func Add(a, b *Node) (*Node, error) {
	return newBinary(KindAdd, a, b)
}

// Mul returns the node for a*b.
func Mul(a, b *Node) (*Node, error) {
	return newBinary(KindMul, a, b)
}

// Div returns the node for a/b, truncated towards zero.
// A divisor that resolves to 0 is reported by StaticValue with ErrDivisionByZero.
func Div(a, b *Node) (*Node, error) {
	return newBinary(KindDiv, a, b)
}

// ScalarWrap returns the node that adapts the dimension a to be used as a scalar value.
// Its value is the value of a.
func ScalarWrap(a *Node) (*Node, error) {
	if a == nil {
		return nil, errors.Wrapf(ErrOperandKind, "dims.ScalarWrap: nil operand")
	}
	return New(a.Graph(), KindScalar, []ir.Output{a.Output()}, 0)
}

func newBinary(kind Kind, a, b *Node) (*Node, error) {
	if a == nil || b == nil {
		return nil, errors.Wrapf(ErrOperandKind, "dims.%s: nil operand", kind)
	}
	if a.Graph() != b.Graph() {
		return nil, errors.Wrapf(ErrOperandKind, "dims.%s: operands from graphs %q and %q", kind, a.Graph().Name(), b.Graph().Name())
	}
	return New(a.Graph(), kind, []ir.Output{a.Output(), b.Output()}, 0)
}
