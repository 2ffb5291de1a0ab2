package dims

import (
	"github.com/gomlx/dimtrace/ir"
	"github.com/gomlx/gomlx/pkg/support/sets"
)

// Provenance tells where the value of a dimension comes from.
// It is informational: it doesn't change how values are resolved.
type Provenance int

const (
	// ProvenanceUnknown - the value reads the shape of an op whose inputs are not traced back.
	ProvenanceUnknown Provenance = iota

	// ProvenanceConstant - the value only depends on the shapes of constants.
	ProvenanceConstant

	// ProvenanceInputShape - the value depends on the shape of graph parameters.
	ProvenanceInputShape

	// ProvenanceDataDependent - the value depends on the shape of an op whose output shape depends
	// on the contents of its inputs (e.g., nonzero).
	ProvenanceDataDependent
)

// String returns a human-readable name for the provenance.
func (p Provenance) String() string {
	switch p {
	case ProvenanceUnknown:
		return "unknown"
	case ProvenanceConstant:
		return "constant"
	case ProvenanceInputShape:
		return "input_shape"
	case ProvenanceDataDependent:
		return "data_dependent"
	default:
		return "invalid"
	}
}

// dataDependentOps is the set of op kinds whose output shape depends on tensor values.
var dataDependentOps sets.Set[ir.OpKind]

func init() {
	dataDependentOps = sets.Make[ir.OpKind]()
	dataDependentOps.Insert("aten::nonzero")       // Number of non-zero elements.
	dataDependentOps.Insert("aten::unique")        // Number of unique elements.
	dataDependentOps.Insert("aten::masked_select") // Number of selected elements.
	dataDependentOps.Insert("aten::where")         // Single input form, like nonzero.
	dataDependentOps.Insert("aten::nms")           // Non-max suppression: depends on scores.
}

// IsDataDependentOp returns true if the op produces data-dependent shapes.
func IsDataDependentOp(op ir.OpKind) bool {
	return dataDependentOps.Has(op)
}

// Provenance returns where the value of the dimension comes from: the highest provenance
// (in the order of the constants) of the values whose shapes it reads.
func (n *Node) Provenance() Provenance {
	g := n.Graph()
	visited := sets.Make[ir.NodeID]()
	var trace func(id ir.NodeID) Provenance
	trace = func(id ir.NodeID) Provenance {
		if visited.Has(id) {
			return ProvenanceUnknown
		}
		visited.Insert(id)
		node := g.Node(id)
		if d, ok := node.Payload().(*Node); ok && d.kind == KindSize {
			return valueProvenance(g, node.Operand(0).Node, visited)
		}
		result := ProvenanceUnknown
		for _, o := range node.Operands() {
			result = max(result, trace(o.Node))
		}
		return result
	}
	return trace(n.ID())
}

// valueProvenance traces where the shape of a tensor value comes from.
func valueProvenance(g *ir.Graph, id ir.NodeID, visited sets.Set[ir.NodeID]) Provenance {
	node := g.Node(id)
	switch {
	case node.Op() == ir.OpParameter:
		return ProvenanceInputShape
	case node.Op() == ir.OpConstant:
		return ProvenanceConstant
	case IsDataDependentOp(node.Op()):
		return ProvenanceDataDependent
	}
	if node.NumOperands() == 0 {
		return ProvenanceUnknown
	}

	// Generic ops: the highest provenance of its inputs.
	result := ProvenanceConstant
	for _, o := range node.Operands() {
		if visited.Has(o.Node) {
			continue
		}
		visited.Insert(o.Node)
		result = max(result, valueProvenance(g, o.Node, visited))
	}
	return result
}
