// Package tracer is the host-facing side of dimension tracing: it records traced values in an
// ir.Graph, and returns their sizes as SymInt.
//
// When dynamic shapes are enabled (see DynamicShapesEnabled and WithDynamicShapes), sizes and the
// arithmetic on them are recorded as dimension nodes (package dims), so they don't leak out of
// the trace. Otherwise, they are plain integers, and arithmetic on them is folded immediately.
//
// A Tracer is not safe for concurrent use: use one per goroutine.
package tracer

import (
	"github.com/gomlx/dimtrace/dims"
	"github.com/gomlx/dimtrace/ir"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Tracer records values and dimension computations of one trace.
type Tracer struct {
	graph   *ir.Graph
	dynamic bool
}

// Option configures a Tracer.
type Option func(t *Tracer)

// WithDynamicShapes overrides the process-wide DynamicShapesEnabled for this Tracer.
func WithDynamicShapes(enabled bool) Option {
	return func(t *Tracer) {
		t.dynamic = enabled
	}
}

// WithGraph makes the Tracer record into g, instead of a new graph.
func WithGraph(g *ir.Graph) Option {
	return func(t *Tracer) {
		t.graph = g
	}
}

// New creates a Tracer.
func New(opts ...Option) *Tracer {
	t := &Tracer{dynamic: DynamicShapesEnabled()}
	for _, opt := range opts {
		opt(t)
	}
	if t.graph == nil {
		t.graph = ir.NewGraph(ir.WithName("trace"))
	}
	klog.V(1).Infof("tracer for graph %q: dynamic shapes=%v", t.graph.Name(), t.dynamic)
	return t
}

// Graph where the trace is recorded.
func (t *Tracer) Graph() *ir.Graph { return t.graph }

// DynamicShapes reports whether sizes are recorded as dimension nodes.
func (t *Tracer) DynamicShapes() bool { return t.dynamic }

// Input records a new input value of the trace.
func (t *Tracer) Input(name string, shape shapes.Shape) (ir.Output, error) {
	return t.graph.Parameter(name, shape)
}

// Size returns the length of the axis of v.
func (t *Tracer) Size(v ir.Output, axis int) (SymInt, error) {
	if !t.dynamic {
		if !t.graph.IsValidOutput(v) {
			return SymInt{}, errors.Wrapf(ir.ErrInvalidOperand, "Tracer.Size(%s, %d)", v, axis)
		}
		rank := t.graph.Shape(v).Rank()
		if axis < 0 || axis >= rank {
			return SymInt{}, errors.Wrapf(dims.ErrAxisOutOfRange, "Tracer.Size(%s, %d): rank is %d", v, axis, rank)
		}
		length := t.graph.AxisLength(v, axis)
		if length < 0 {
			return SymInt{}, errors.Wrapf(dims.ErrNotStatic, "Tracer.Size(%s, %d): axis is symbolic, enable dynamic shapes to trace it", v, axis)
		}
		return FromInt(int64(length)), nil
	}
	d, err := dims.SizeOf(t.graph, v, axis)
	if err != nil {
		return SymInt{}, err
	}
	return fromNode(d), nil
}

// Sizes returns the length of all axes of v.
func (t *Tracer) Sizes(v ir.Output) ([]SymInt, error) {
	if !t.graph.IsValidOutput(v) {
		return nil, errors.Wrapf(ir.ErrInvalidOperand, "Tracer.Sizes(%s)", v)
	}
	rank := t.graph.Shape(v).Rank()
	sizes := make([]SymInt, rank)
	for axis := range rank {
		var err error
		sizes[axis], err = t.Size(v, axis)
		if err != nil {
			return nil, err
		}
	}
	return sizes, nil
}

// Numel returns the number of elements of v: the product of the length of its axes.
// It is 1 for scalars.
func (t *Tracer) Numel(v ir.Output) (SymInt, error) {
	sizes, err := t.Sizes(v)
	if err != nil {
		return SymInt{}, err
	}
	if len(sizes) == 0 {
		return FromInt(1), nil
	}
	numel := sizes[0]
	for _, size := range sizes[1:] {
		numel, err = t.Mul(numel, size)
		if err != nil {
			return SymInt{}, errors.WithMessagef(err, "Tracer.Numel(%s)", v)
		}
	}
	return numel, nil
}
