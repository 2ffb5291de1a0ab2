package dimexpr

import (
	"testing"

	"github.com/gomlx/dimtrace/dims"
	"github.com/gomlx/dimtrace/ir"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInputs(t *testing.T) (*ir.Graph, map[string]ir.Output) {
	t.Helper()
	g := ir.NewGraph()
	return g, map[string]ir.Output{
		"x": must.M1(g.Parameter("x", shapes.Make(dtypes.Float32, 3, 4))),
		"y": must.M1(g.Parameter("y", shapes.Make(dtypes.Int32, 6))),
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		expr string
		want int64
		kind dims.Kind
	}{
		{"size(x, 0)", 3, dims.KindSize},
		{"size(x, 0) * size(x, 1)", 12, dims.KindMul},
		{"size(x,0)+size(x,1)", 7, dims.KindAdd},
		{"size(x, 1) / size(x, 0)", 1, dims.KindDiv},
		{"(size(y, 0) + size(x, 0)) * size(x, 1) / size(y, 0)", 6, dims.KindDiv},
		{"int(size(x, 0) * size(x, 1))", 12, dims.KindScalar},
	}
	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			g, inputs := newInputs(t)
			n, err := Parse(g, inputs, tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, n.Kind())
			assert.Equal(t, tc.want, must.M1(n.StaticValue()))
		})
	}
}

func TestParseSharesNodes(t *testing.T) {
	g, inputs := newInputs(t)
	a := must.M1(Parse(g, inputs, "size(x, 0) * size(x, 1)"))
	b := must.M1(Parse(g, inputs, "(size(x, 0)) * (size(x, 1))"))
	assert.Same(t, a, b)
	assert.Equal(t, 5, g.NumNodes())
}

func TestParseErrors(t *testing.T) {
	g, inputs := newInputs(t)
	for _, expr := range []string{
		"size(x, 0) -",
		"size(x, 0) - size(x, 1)",
		"size(x, 0) * 2",
		"size(z, 0)",
		"size(x)",
		"size(x, a)",
		"size(1, 0)",
		"numel(x)",
		"int(size(x, 0), 1)",
		"x.size(0)",
		"-size(x, 0)",
	} {
		_, err := Parse(g, inputs, expr)
		assert.Error(t, err, "expression %q should fail", expr)
	}

	_, err := Parse(g, inputs, "size(x, 2)")
	assert.True(t, errors.Is(err, dims.ErrAxisOutOfRange), "got %v", err)
	_, err = Parse(g, inputs, "int(int(size(x, 0)))")
	assert.True(t, errors.Is(err, dims.ErrOperandKind), "got %v", err)
	_, err = Parse(g, inputs, "size(x, 0) * 2")
	assert.Contains(t, err.Error(), "column 14")
}
