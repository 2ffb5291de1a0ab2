package ir

import "github.com/pkg/errors"

var (
	// ErrGraphFrozen is returned when adding nodes to a graph after Graph.Freeze.
	ErrGraphFrozen = errors.New("graph is frozen")

	// ErrInvalidOperand is returned when an operand refers to a node or output that doesn't exist.
	ErrInvalidOperand = errors.New("invalid operand")

	// ErrReservedOp is returned when Graph.Op is given an op kind of a reserved namespace.
	ErrReservedOp = errors.New("op kind in reserved namespace")
)
