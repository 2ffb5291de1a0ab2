package dims

import (
	"fmt"

	"github.com/gomlx/dimtrace/ir"
)

// Kind enumerates the closed set of dimension expression variants.
type Kind uint8

const (
	KindInvalid Kind = iota

	// KindSize reads the length of one axis of a traced value.
	KindSize

	// KindAdd adds two dimensions.
	KindAdd

	// KindMul multiplies two dimensions.
	KindMul

	// KindDiv divides two dimensions, truncating towards zero.
	KindDiv

	// KindScalar wraps a dimension so it can be used where a scalar value is expected.
	KindScalar
)

var kindOps = [...]ir.OpKind{
	KindSize:   "dim::size",
	KindAdd:    "dim::add",
	KindMul:    "dim::mul",
	KindDiv:    "dim::div",
	KindScalar: "dim::int",
}

func init() {
	ir.ReserveNamespace("dim")
}

var kindNames = [...]string{
	KindInvalid: "Invalid",
	KindSize:    "Size",
	KindAdd:     "Add",
	KindMul:     "Mul",
	KindDiv:     "Div",
	KindScalar:  "ScalarWrap",
}

// IsValid returns whether k is one of the defined kinds.
func (k Kind) IsValid() bool {
	return k > KindInvalid && k <= KindScalar
}

// Op returns the graph op kind used by nodes of this kind.
func (k Kind) Op() ir.OpKind {
	if !k.IsValid() {
		return ""
	}
	return kindOps[k]
}

// Arity is the number of operands nodes of this kind take.
func (k Kind) Arity() int {
	switch k {
	case KindSize, KindScalar:
		return 1
	case KindAdd, KindMul, KindDiv:
		return 2
	default:
		return 0
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// KindOf returns the kind that uses the given op, or KindInvalid.
func KindOf(op ir.OpKind) Kind {
	for k := KindSize; k <= KindScalar; k++ {
		if kindOps[k] == op {
			return k
		}
	}
	return KindInvalid
}
