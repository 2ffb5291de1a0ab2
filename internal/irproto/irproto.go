// Package irproto converts a recorded graph to a protobuf Struct, for tools that want a
// language neutral dump of the graph.
package irproto

import (
	"github.com/gomlx/dimtrace/dims"
	"github.com/gomlx/dimtrace/ir"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct converts g to a structpb.Struct with the fields "name", "frozen" and "nodes".
//
// Each node has "id", "op", "hash" (hex), "operands" ("%id" or "%id.index"), "attrs", "shape"
// (dimensions, symbolic axes as negative values) and, if set, "name".
// Dimension nodes also carry their rendering in "label", and their "provenance".
func ToStruct(g *ir.Graph) (*structpb.Struct, error) {
	nodes := make([]any, 0, g.NumNodes())
	for _, node := range g.Nodes() {
		nodes = append(nodes, nodeFields(g, node))
	}
	s, err := structpb.NewStruct(map[string]any{
		"name":   g.Name(),
		"frozen": g.Frozen(),
		"nodes":  nodes,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "converting graph %q to protobuf", g.Name())
	}
	return s, nil
}

func nodeFields(g *ir.Graph, node *ir.Node) map[string]any {
	operands := make([]any, 0, node.NumOperands())
	for _, o := range node.Operands() {
		operands = append(operands, o.String())
	}
	attrs := make([]any, 0, len(node.Attrs()))
	for _, a := range node.Attrs() {
		attrs = append(attrs, float64(a))
	}
	shape := node.Shape()
	dimensions := make([]any, 0, shape.Rank())
	for _, d := range shape.Dimensions {
		dimensions = append(dimensions, float64(d))
	}
	fields := map[string]any{
		"id":       float64(node.ID()),
		"op":       node.Op().String(),
		"hash":     node.Hash().String(),
		"operands": operands,
		"attrs":    attrs,
		"shape":    dimensions,
	}
	if node.Name() != "" {
		fields["name"] = node.Name()
	}
	if d, ok := dims.Lookup(g, node.Output()); ok {
		fields["label"] = d.String()
		fields["provenance"] = d.Provenance().String()
	}
	return fields
}

// MarshalJSON returns the JSON encoding of ToStruct(g). The output is meant for humans and
// tools, and its exact formatting is not stable.
func MarshalJSON(g *ir.Graph, indent bool) ([]byte, error) {
	s, err := ToStruct(g)
	if err != nil {
		return nil, err
	}
	opts := protojson.MarshalOptions{}
	if indent {
		opts.Indent = "  "
	}
	data, err := opts.Marshal(s)
	if err != nil {
		return nil, errors.Wrapf(err, "marshaling graph %q to JSON", g.Name())
	}
	return data, nil
}
