package tracer

import (
	"fmt"

	"github.com/gomlx/dimtrace/dims"
	"github.com/pkg/errors"
)

// ErrConcreteOperand is returned when combining a concrete SymInt with a symbolic one: there is no
// node kind for constant dimensions, so the concrete value can't be recorded.
var ErrConcreteOperand = errors.New("cannot combine a concrete integer with a symbolic dimension")

// SymInt is an integer returned to the host code: either a concrete value, or a dimension node
// recorded in the trace.
//
// The zero value is the concrete 0.
type SymInt struct {
	value int64
	node  *dims.Node
}

// FromInt returns a concrete SymInt.
func FromInt(v int64) SymInt {
	return SymInt{value: v}
}

func fromNode(n *dims.Node) SymInt {
	return SymInt{node: n}
}

// IsSymbolic reports whether s is recorded as a dimension node.
func (s SymInt) IsSymbolic() bool { return s.node != nil }

// Node returns the dimension node of a symbolic SymInt, or nil.
func (s SymInt) Node() *dims.Node { return s.node }

// Value returns the concrete value, resolving the node if s is symbolic.
func (s SymInt) Value() (int64, error) {
	if s.node == nil {
		return s.value, nil
	}
	return s.node.StaticValue()
}

// String implements fmt.Stringer.
func (s SymInt) String() string {
	if s.node == nil {
		return fmt.Sprint(s.value)
	}
	return s.node.String()
}

// binaryOp applies either the concrete or the symbolic version of an operation.
func (t *Tracer) binaryOp(name string, a, b SymInt,
	concrete func(a, b int64) (int64, error), symbolic func(a, b *dims.Node) (*dims.Node, error)) (SymInt, error) {
	switch {
	case !a.IsSymbolic() && !b.IsSymbolic():
		v, err := concrete(a.value, b.value)
		if err != nil {
			return SymInt{}, errors.WithMessagef(err, "Tracer.%s", name)
		}
		return FromInt(v), nil
	case a.IsSymbolic() && b.IsSymbolic():
		n, err := symbolic(a.node, b.node)
		if err != nil {
			return SymInt{}, err
		}
		return fromNode(n), nil
	default:
		return SymInt{}, errors.Wrapf(ErrConcreteOperand, "Tracer.%s(%s, %s)", name, a, b)
	}
}

// Add returns a+b.
func (t *Tracer) Add(a, b SymInt) (SymInt, error) {
	return t.binaryOp("Add", a, b, dims.CheckedAdd, dims.Add)
}

// Mul returns a*b.
func (t *Tracer) Mul(a, b SymInt) (SymInt, error) {
	return t.binaryOp("Mul", a, b, dims.CheckedMul, dims.Mul)
}

// Div returns a/b truncated towards zero. Concrete divisions by zero fail immediately, symbolic ones
// when the node is resolved.
func (t *Tracer) Div(a, b SymInt) (SymInt, error) {
	return t.binaryOp("Div", a, b, dims.CheckedDiv, dims.Div)
}

// Int converts s to be used as a scalar value. Symbolic values are wrapped with dims.ScalarWrap.
func (t *Tracer) Int(s SymInt) (SymInt, error) {
	if !s.IsSymbolic() {
		return s, nil
	}
	n, err := dims.ScalarWrap(s.node)
	if err != nil {
		return SymInt{}, err
	}
	return fromNode(n), nil
}
