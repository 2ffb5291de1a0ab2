package dims

import "github.com/pkg/errors"

// Construction errors: a malformed expression is never added to the graph.
var (
	// ErrAxisOutOfRange is returned by SizeOf when the axis is not within the rank of the value.
	ErrAxisOutOfRange = errors.New("axis out of range")

	// ErrArity is returned when the number of operands doesn't match the kind.
	ErrArity = errors.New("wrong number of operands")

	// ErrOperandKind is returned when an operand is not a dimension where one is required,
	// or when operands come from different graphs.
	ErrOperandKind = errors.New("wrong operand kind")
)

// Resolution errors: they are deterministic and never worth retrying.
var (
	// ErrDivisionByZero is returned when the divisor of a Div resolves to 0.
	ErrDivisionByZero = errors.New("dimension division by zero")

	// ErrOverflow is returned when an arithmetic result doesn't fit in an int64.
	ErrOverflow = errors.New("dimension arithmetic overflow")

	// ErrNotStatic is returned when reading an axis whose length is not known in the recorded shape.
	ErrNotStatic = errors.New("dimension is not static")
)
