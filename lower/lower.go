// Package lower converts resolved dimension expressions into GoMLX computation graphs.
//
// Dimensions are resolved statically (see dims.Resolver), so they are lowered as int64 constants.
// Only nodes wrapped with dims.ScalarWrap can be used as scalar values: bare dimensions are lowered
// as part of a shape vector.
package lower

import (
	"github.com/gomlx/dimtrace/dims"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/pkg/errors"
)

// Scalar lowers the scalar-wrapped dimension n to an int64 scalar in g.
func Scalar(g *graph.Graph, r *dims.Resolver, n *dims.Node) (*graph.Node, error) {
	if n == nil || n.Kind() != dims.KindScalar {
		return nil, errors.Wrapf(dims.ErrOperandKind, "lower.Scalar(%v): only scalar-wrapped dimensions can be used as scalars", n)
	}
	v, err := r.Resolve(n)
	if err != nil {
		return nil, errors.WithMessagef(err, "lower.Scalar(%s)", n)
	}
	return graph.Const(g, v), nil
}

// Shape lowers the dimensions to an int64 vector in g, with one element per dimension.
func Shape(g *graph.Graph, r *dims.Resolver, dimensions ...*dims.Node) (*graph.Node, error) {
	if len(dimensions) == 0 {
		return nil, errors.New("lower.Shape: at least one dimension is required")
	}
	for ii, d := range dimensions {
		if d == nil || d.Kind() == dims.KindScalar {
			return nil, errors.Wrapf(dims.ErrOperandKind, "lower.Shape: element #%d (%v) is not a dimension", ii, d)
		}
	}
	values, err := r.ResolveAll(dimensions...)
	if err != nil {
		return nil, errors.WithMessage(err, "lower.Shape")
	}
	return graph.Const(g, values), nil
}
