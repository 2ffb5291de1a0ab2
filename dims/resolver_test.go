package dims

import (
	"testing"

	"github.com/gomlx/dimtrace/ir"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/google/go-cmp/cmp"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

func TestResolver(t *testing.T) {
	g, _, s0, s1 := numelGraph(t)
	mul := must.M1(Mul(s0, s1))

	// A deep chain of shared sub-expressions, resolved once and kept across calls.
	n := mul
	for range 64 {
		n = must.M1(Div(must.M1(Add(n, n)), must.M1(Add(s0, must.M1(Div(s0, s0))))))
	}
	g.Freeze()
	r := NewResolver(g)
	assert.Same(t, g, r.Graph())
	v, err := r.Resolve(n)
	require.NoError(t, err)
	want := int64(12)
	for range 64 {
		want = (want + want) / 4
	}
	assert.Equal(t, want, v)
	assert.Equal(t, int64(12), must.M1(r.Resolve(mul)))

	values, err := r.ResolveAll(s0, s1, mul)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 12}, values)

	_, _, other, _ := numelGraph(t)
	_, err = r.Resolve(other)
	assert.True(t, errors.Is(err, ErrOperandKind), "got %v", err)
	_, err = r.Resolve(nil)
	assert.True(t, errors.Is(err, ErrOperandKind), "got %v", err)
}

func TestResolverErrors(t *testing.T) {
	g := ir.NewGraph()
	x := must.M1(g.Parameter("x", shapes.Shape{DType: dtypes.Float32, Dimensions: []int{0, 2}}))
	zero := must.M1(SizeOf(g, x, 0))
	two := must.M1(SizeOf(g, x, 1))
	divByZero := must.M1(Div(two, zero))
	quotient := must.M1(Div(zero, two))
	big := must.M1(g.Parameter("big", shapes.Shape{DType: dtypes.Float32, Dimensions: []int{1 << 62}}))
	huge := must.M1(SizeOf(g, big, 0))
	overflow := must.M1(Mul(huge, huge))
	g.Freeze()

	r := NewResolver(g)
	values, err := r.ResolveAll(divByZero, quotient, overflow)
	require.Error(t, err)
	assert.Equal(t, []int64{0, 0, 0}, values)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.True(t, errors.Is(errs[0], ErrDivisionByZero), "got %v", errs[0])
	assert.True(t, errors.Is(errs[1], ErrOverflow), "got %v", errs[1])

	// Failures are memoized too.
	_, err = r.Resolve(divByZero)
	assert.True(t, errors.Is(err, ErrDivisionByZero), "got %v", err)

	all, err := r.ResolveGraph()
	require.Len(t, multierr.Errors(err), 2)
	assert.Equal(t, map[ir.NodeID]int64{
		zero.ID():     0,
		two.ID():      2,
		quotient.ID(): 0,
		huge.ID():     1 << 62,
	}, all)
}

// TestConcurrentReads resolves and prints a frozen graph from many goroutines.
func TestConcurrentReads(t *testing.T) {
	g, _, s0, s1 := numelGraph(t)
	mul := must.M1(Mul(s0, s1))
	wrapped := must.M1(ScalarWrap(mul))
	sum := must.M1(Add(mul, s1))
	g.Freeze()
	wantDump := g.String()

	r := NewResolver(g)
	var eg errgroup.Group
	for range 16 {
		eg.Go(func() error {
			values, err := r.ResolveAll(wrapped, sum, s0)
			if err != nil {
				return err
			}
			if diff := cmp.Diff([]int64{12, 16, 3}, values); diff != "" {
				return errors.Errorf("unexpected values (-want +got):\n%s", diff)
			}
			v, err := wrapped.StaticValue()
			if err != nil {
				return err
			}
			if v != 12 {
				return errors.Errorf("got %d, want 12", v)
			}
			if dump := g.String(); dump != wantDump {
				return errors.Errorf("dump changed:\n%s", cmp.Diff(wantDump, dump))
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
}

func TestGraphDump(t *testing.T) {
	g, _, s0, s1 := numelGraph(t, ir.WithName("numel"))
	mul := must.M1(Mul(s0, s1))
	_ = must.M1(Add(s0, s1))
	_ = must.M1(Div(s1, s0))
	wrapped := must.M1(ScalarWrap(mul))
	g.Freeze()

	gold := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	gold.Assert(t, "numel_graph", []byte(g.String()))
	gold.Assert(t, "numel_subgraph", []byte(g.Dump([]ir.NodeID{wrapped.ID()})))
}
