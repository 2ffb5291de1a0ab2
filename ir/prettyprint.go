package ir

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
)

// String implements fmt.Stringer, and pretty prints the graph, one node per line in topological order.
// The output is deterministic for a given graph.
func (g *Graph) String() string {
	return g.Dump(nil)
}

// Dump pretty prints the nodes needed to compute roots, or the whole graph if roots is empty.
func (g *Graph) Dump(roots []NodeID) string {
	var buf bytes.Buffer
	// w writes lines to the buffer.
	w := func(format string, args ...any) {
		if len(args) == 0 {
			buf.WriteString(format)
		} else {
			buf.WriteString(fmt.Sprintf(format, args...))
		}
	}
	nodes := g.nodes
	if len(roots) > 0 {
		nodes = g.Subgraph(roots...)
	}
	w("Graph %q:\n", g.name)
	w("\t# nodes:\t%d\n", len(nodes))
	opCounts := make(map[OpKind]int)
	for _, n := range nodes {
		opCounts[n.op]++
	}
	w("\tOp kinds:\t[")
	for ii, op := range slices.Sorted(maps.Keys(opCounts)) {
		if ii > 0 {
			w(", ")
		}
		w("%s x%d", op, opCounts[op])
	}
	w("]\n")
	if g.frozen {
		w("\tFrozen\n")
	}
	for _, n := range nodes {
		w("\t%s = %s\n", n.Output(), n)
	}
	return buf.String()
}
