// Package dimexpr parses dimension expressions written in Go syntax, and records them as
// dimension nodes.
//
// The grammar is a subset of Go expressions:
//
//	size(x, 1)          the length of axis 1 of the input x
//	a + b, a * b, a / b add, multiply and divide dimensions
//	int(a)              wrap a dimension to be used as a scalar
//	(a)                 grouping
//
// Integer literals are only accepted as the axis of size: there is no constant dimension.
package dimexpr

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/gomlx/dimtrace/dims"
	"github.com/gomlx/dimtrace/ir"
	"github.com/pkg/errors"
)

// Parse parses expr and records it in g. inputs maps the names used in size calls to values of g.
func Parse(g *ir.Graph, inputs map[string]ir.Output, expr string) (*dims.Node, error) {
	fset := token.NewFileSet()
	tree, err := parser.ParseExprFrom(fset, "", expr, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing dimension expression %q", expr)
	}
	b := &builder{graph: g, inputs: inputs, fset: fset}
	n, err := b.build(tree)
	if err != nil {
		return nil, errors.WithMessagef(err, "in dimension expression %q", expr)
	}
	return n, nil
}

type builder struct {
	graph  *ir.Graph
	inputs map[string]ir.Output
	fset   *token.FileSet
}

func (b *builder) errorf(node ast.Node, format string, args ...any) error {
	return errors.Wrapf(errors.Errorf(format, args...), "column %d", b.fset.Position(node.Pos()).Column)
}

func (b *builder) build(expr ast.Expr) (*dims.Node, error) {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return b.build(e.X)
	case *ast.BinaryExpr:
		return b.buildBinary(e)
	case *ast.CallExpr:
		return b.buildCall(e)
	case *ast.BasicLit:
		return nil, b.errorf(e, "literal %s is not a dimension, only axes of size() can be literals", e.Value)
	default:
		return nil, b.errorf(e, "unsupported expression %T", e)
	}
}

func (b *builder) buildBinary(e *ast.BinaryExpr) (*dims.Node, error) {
	var fn func(x, y *dims.Node) (*dims.Node, error)
	switch e.Op {
	case token.ADD:
		fn = dims.Add
	case token.MUL:
		fn = dims.Mul
	case token.QUO:
		fn = dims.Div
	default:
		return nil, b.errorf(e, "unsupported operator %s", e.Op)
	}
	x, err := b.build(e.X)
	if err != nil {
		return nil, err
	}
	y, err := b.build(e.Y)
	if err != nil {
		return nil, err
	}
	return fn(x, y)
}

func (b *builder) buildCall(e *ast.CallExpr) (*dims.Node, error) {
	fun, ok := e.Fun.(*ast.Ident)
	if !ok {
		return nil, b.errorf(e, "unsupported function call")
	}
	switch fun.Name {
	case "size":
		if len(e.Args) != 2 {
			return nil, b.errorf(e, "size takes 2 arguments (value, axis), got %d", len(e.Args))
		}
		name, ok := e.Args[0].(*ast.Ident)
		if !ok {
			return nil, b.errorf(e.Args[0], "first argument of size must be an input name")
		}
		v, found := b.inputs[name.Name]
		if !found {
			return nil, b.errorf(name, "unknown input %q", name.Name)
		}
		lit, ok := e.Args[1].(*ast.BasicLit)
		if !ok || lit.Kind != token.INT {
			return nil, b.errorf(e.Args[1], "axis of size must be an integer literal")
		}
		axis, err := strconv.Atoi(lit.Value)
		if err != nil {
			return nil, b.errorf(lit, "invalid axis %s: %v", lit.Value, err)
		}
		return dims.SizeOf(b.graph, v, axis)
	case "int":
		if len(e.Args) != 1 {
			return nil, b.errorf(e, "int takes 1 argument, got %d", len(e.Args))
		}
		x, err := b.build(e.Args[0])
		if err != nil {
			return nil, err
		}
		return dims.ScalarWrap(x)
	default:
		return nil, b.errorf(fun, "unknown function %q", fun.Name)
	}
}
