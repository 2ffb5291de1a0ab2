package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gomlx/dimtrace/dimexpr"
	"github.com/gomlx/dimtrace/dims"
	"github.com/gomlx/dimtrace/internal/irproto"
	"github.com/gomlx/dimtrace/ir"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type evalOptions struct {
	inputs []string
	dump   bool
	json   bool
}

func newEvalCommand() *cobra.Command {
	opts := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Resolve a dimension expression",
		Long: `Records the expression over the given inputs and prints its value.

Inputs are given as name=AxBxC, with "?" for a symbolic axis, e.g. --input x=3x4 --input y=?x8.
Scalars are given with an empty shape: --input s=.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringArrayVarP(&opts.inputs, "input", "i", nil, "input as name=AxBxC, repeatable")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "print the recorded graph")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the recorded graph as JSON")
	return cmd
}

func runEval(cmd *cobra.Command, opts *evalOptions, expr string) error {
	g := ir.NewGraph(ir.WithName("eval"))
	inputs := make(map[string]ir.Output, len(opts.inputs))
	for _, spec := range opts.inputs {
		name, shape, err := parseInput(spec)
		if err != nil {
			return err
		}
		if _, found := inputs[name]; found {
			return errors.Errorf("input %q given more than once", name)
		}
		inputs[name], err = g.Parameter(name, shape)
		if err != nil {
			return err
		}
	}
	root, err := dimexpr.Parse(g, inputs, expr)
	if err != nil {
		return err
	}
	g.Freeze()

	out := cmd.OutOrStdout()
	if opts.dump {
		fmt.Fprint(out, g.Dump([]ir.NodeID{root.ID()}))
	}
	if opts.json {
		data, err := irproto.MarshalJSON(g, true)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	}
	value, err := dims.NewResolver(g).Resolve(root)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s = %d\n", root, value)
	return nil
}

// parseInput parses "name=AxBxC" into a Float32 shape. "?" axes are symbolic (-1).
func parseInput(spec string) (name string, shape shapes.Shape, err error) {
	name, dimsSpec, found := strings.Cut(spec, "=")
	name = strings.TrimSpace(name)
	if !found || name == "" {
		err = errors.Errorf("invalid input %q, want name=AxBxC", spec)
		return
	}
	shape.DType = dtypes.Float32
	dimsSpec = strings.TrimSpace(dimsSpec)
	if dimsSpec == "" {
		return
	}
	for _, part := range strings.Split(dimsSpec, "x") {
		part = strings.TrimSpace(part)
		if part == "?" {
			shape.Dimensions = append(shape.Dimensions, -1)
			continue
		}
		dim, parseErr := strconv.Atoi(part)
		if parseErr != nil || dim < 0 {
			err = errors.Errorf("invalid axis length %q in input %q", part, spec)
			return
		}
		shape.Dimensions = append(shape.Dimensions, dim)
	}
	return
}
