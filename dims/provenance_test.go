package dims

import (
	"testing"

	"github.com/gomlx/dimtrace/ir"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
)

func TestProvenance(t *testing.T) {
	g := ir.NewGraph()
	x := must.M1(g.Parameter("x", shapes.Make(dtypes.Float32, 3, 4)))
	w := must.M1(g.Constant("w", shapes.Make(dtypes.Float32, 4, 5)))
	xw := must.M1(g.Op("aten::matmul", shapes.Make(dtypes.Float32, 3, 5), x, w))
	ww := must.M1(g.Op("aten::transpose", shapes.Make(dtypes.Float32, 5, 4), w))
	nz := must.M1(g.Op("aten::nonzero", shapes.Make(dtypes.Int64, 7, 2), x))
	opaque := must.M1(g.Op("test::random", shapes.Make(dtypes.Float32, 2)))

	xSize := must.M1(SizeOf(g, x, 0))
	wSize := must.M1(SizeOf(g, w, 1))
	nzSize := must.M1(SizeOf(g, nz, 0))

	assert.Equal(t, ProvenanceInputShape, xSize.Provenance())
	assert.Equal(t, ProvenanceConstant, wSize.Provenance())
	assert.Equal(t, ProvenanceDataDependent, nzSize.Provenance())
	assert.Equal(t, ProvenanceInputShape, must.M1(SizeOf(g, xw, 1)).Provenance())
	assert.Equal(t, ProvenanceConstant, must.M1(SizeOf(g, ww, 0)).Provenance())
	assert.Equal(t, ProvenanceUnknown, must.M1(SizeOf(g, opaque, 0)).Provenance())

	assert.Equal(t, ProvenanceInputShape, must.M1(Mul(wSize, xSize)).Provenance())
	assert.Equal(t, ProvenanceDataDependent, must.M1(ScalarWrap(must.M1(Add(xSize, nzSize)))).Provenance())
	assert.Equal(t, ProvenanceConstant, must.M1(Div(wSize, wSize)).Provenance())

	// Informational only: values are still static.
	assert.False(t, nzSize.IsDynamic())
	assert.Equal(t, int64(7), must.M1(nzSize.StaticValue()))

	assert.True(t, IsDataDependentOp("aten::unique"))
	assert.False(t, IsDataDependentOp("aten::matmul"))
	assert.Equal(t, "data_dependent", ProvenanceDataDependent.String())
	assert.Equal(t, "invalid", Provenance(10).String())
}
