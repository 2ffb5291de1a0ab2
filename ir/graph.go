// Package ir implements the graph where traced operations are recorded.
//
// Nodes live in an arena owned by the Graph and are referenced by NodeID. Operands are Output
// references to nodes created earlier, so the graph is a DAG by construction, and the creation
// order is a valid topological order.
//
// Structurally identical nodes (same op kind, same operand outputs and same attributes) are
// deduplicated (hash-consed) when created with AddNode, unless disabled with WithDeduplication.
//
// A Graph is built by a single goroutine. Once Freeze is called it can no longer change,
// and can be read concurrently.
package ir

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/support/sets"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Graph holds the arena of nodes of one trace.
type Graph struct {
	name   string
	nodes  []*Node
	cache  map[Hash][]NodeID
	dedup  bool
	frozen bool
}

// NewGraph creates an empty graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		name:  "graph",
		cache: make(map[Hash][]NodeID),
		dedup: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name of the graph.
func (g *Graph) Name() string { return g.name }

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// Nodes returns all nodes in creation (topological) order.
// The returned slice must not be modified.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Node returns the node with the given id. It panics if the id is invalid.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		exceptions.Panicf("node id %d out of range for graph %q with %d nodes", id, g.name, len(g.nodes))
	}
	return g.nodes[id]
}

// Freeze prevents any further node from being added. Reading a frozen graph concurrently is safe.
func (g *Graph) Freeze() {
	g.frozen = true
}

// Frozen reports whether Freeze was called.
func (g *Graph) Frozen() bool { return g.frozen }

// IsValidOutput reports whether o refers to an existing output of a node in g.
func (g *Graph) IsValidOutput(o Output) bool {
	if o.Node < 0 || int(o.Node) >= len(g.nodes) {
		return false
	}
	return o.Index >= 0 && o.Index < len(g.nodes[o.Node].shapes)
}

// Shape returns a copy of the shape of the given output: this is the recorded shape metadata of a
// traced value. It panics if o is not valid.
func (g *Graph) Shape(o Output) shapes.Shape {
	return g.Node(o.Node).OutputShape(o.Index)
}

// AxisLength returns the recorded length of the given axis of the output o, without copying the shape.
// It panics if o or axis are not valid.
func (g *Graph) AxisLength(o Output, axis int) int {
	n := g.Node(o.Node)
	if o.Index < 0 || o.Index >= len(n.shapes) {
		exceptions.Panicf("output index %d out of range for node %s with %d outputs", o.Index, n.Output(), len(n.shapes))
	}
	dims := n.shapes[o.Index].Dimensions
	if axis < 0 || axis >= len(dims) {
		exceptions.Panicf("axis %d out of range for output %s of rank %d", axis, o, len(dims))
	}
	return dims[axis]
}

// NodeSpec describes a node to be added with Graph.AddNode.
type NodeSpec struct {
	// Op is the kind of operation. Required.
	Op OpKind

	// Operands in order. They must refer to existing outputs in the same graph.
	Operands []Output

	// Attrs are extra integer parameters that take part in the structural identity of the node.
	Attrs []int64

	// Seed of the structural hash. If 0, HashSeed is used.
	Seed Hash

	// Shapes of the outputs. At least one is required.
	Shapes []shapes.Shape

	// Name for parameters and constants.
	Name string

	// Unique nodes are never deduplicated, e.g.: two parameters with the same shape are different values.
	Unique bool

	// Payload, if set, is called once when a new node is created, and its result is attached to
	// the node (see Node.Payload). It is not called if an existing node is reused.
	Payload func(n *Node) any
}

// AddNode adds a node to the graph, or returns an existing structurally identical node.
// reused is true if an existing node was returned.
func (g *Graph) AddNode(spec NodeSpec) (node *Node, reused bool, err error) {
	if g.frozen {
		return nil, false, errors.Wrapf(ErrGraphFrozen, "cannot add %s to graph %q", spec.Op, g.name)
	}
	if spec.Op == "" {
		return nil, false, errors.New("ir.Graph.AddNode: op kind is required")
	}
	if len(spec.Shapes) == 0 {
		return nil, false, errors.Errorf("ir.Graph.AddNode: %s must have at least one output", spec.Op)
	}
	seed := spec.Seed
	if seed == 0 {
		seed = HashSeed
	}
	hash := HashCombine(seed, spec.Op.Hash())
	for ii, o := range spec.Operands {
		if !g.IsValidOutput(o) {
			return nil, false, errors.Wrapf(ErrInvalidOperand, "operand #%d (%s) of %s in graph %q", ii, o, spec.Op, g.name)
		}
		hash = HashCombine(hash, g.nodes[o.Node].hash)
		hash = HashCombine(hash, MHash(o.Index))
	}
	if len(spec.Attrs) > 0 {
		hash = HashCombine(hash, MHash(spec.Attrs))
	}

	if g.dedup && !spec.Unique {
		for _, id := range g.cache[hash] {
			candidate := g.nodes[id]
			if candidate.sameStructure(&spec) {
				klog.V(3).Infof("graph %q: reusing %s for %s", g.name, candidate.Output(), spec.Op)
				return candidate, true, nil
			}
		}
	}

	node = &Node{
		graph:    g,
		id:       NodeID(len(g.nodes)),
		op:       spec.Op,
		operands: slices.Clone(spec.Operands),
		attrs:    slices.Clone(spec.Attrs),
		hash:     hash,
		shapes:   make([]shapes.Shape, len(spec.Shapes)),
		name:     spec.Name,
	}
	for ii, shape := range spec.Shapes {
		node.shapes[ii] = shape.Clone()
	}
	g.nodes = append(g.nodes, node)
	if !spec.Unique {
		g.cache[hash] = append(g.cache[hash], node.id)
	}
	if spec.Payload != nil {
		node.payload = spec.Payload(node)
	}
	klog.V(3).Infof("graph %q: added %s = %s", g.name, node.Output(), node.op)
	return node, false, nil
}

// sameStructure reports whether the node would be created by spec.
// Nodes with a payload are never merged with nodes without one.
func (n *Node) sameStructure(spec *NodeSpec) bool {
	if n.op != spec.Op || n.name != spec.Name || len(n.shapes) != len(spec.Shapes) {
		return false
	}
	if (n.payload != nil) != (spec.Payload != nil) {
		return false
	}
	if !slices.Equal(n.operands, spec.Operands) || !slices.Equal(n.attrs, spec.Attrs) {
		return false
	}
	for ii, shape := range n.shapes {
		if !shape.Equal(spec.Shapes[ii]) {
			return false
		}
	}
	return true
}

// Parameter adds a new input value to the graph, with the given shape.
// Each call creates a new node, even if name and shape are repeated.
func (g *Graph) Parameter(name string, shape shapes.Shape) (Output, error) {
	return g.addLeaf(OpParameter, name, shape)
}

// Constant adds a new constant tensor value to the graph. Only its shape is recorded.
func (g *Graph) Constant(name string, shape shapes.Shape) (Output, error) {
	return g.addLeaf(OpConstant, name, shape)
}

func (g *Graph) addLeaf(op OpKind, name string, shape shapes.Shape) (Output, error) {
	n, _, err := g.AddNode(NodeSpec{
		Op:     op,
		Seed:   MHash(name, len(g.nodes)),
		Shapes: []shapes.Shape{shape},
		Name:   name,
		Unique: true,
	})
	if err != nil {
		return Output{Node: InvalidNodeID}, err
	}
	return n.Output(), nil
}

// Op adds a generic single-output tensor operation with the given output shape.
// Op kinds of reserved namespaces (see ReserveNamespace) are rejected with ErrReservedOp.
func (g *Graph) Op(op OpKind, shape shapes.Shape, operands ...Output) (Output, error) {
	if op.IsReserved() {
		return Output{Node: InvalidNodeID}, errors.Wrapf(ErrReservedOp, "ir.Graph.Op(%s) in graph %q", op, g.name)
	}
	n, _, err := g.AddNode(NodeSpec{
		Op:       op,
		Operands: operands,
		Shapes:   []shapes.Shape{shape},
	})
	if err != nil {
		return Output{Node: InvalidNodeID}, err
	}
	return n.Output(), nil
}

// Subgraph returns the nodes the given roots depend on (roots included), in topological order.
// It panics if any of the roots is not a valid node id.
func (g *Graph) Subgraph(roots ...NodeID) []*Node {
	visited := sets.Make[NodeID]()
	toVisit := make([]NodeID, 0, len(roots))
	for _, id := range roots {
		toVisit = append(toVisit, g.Node(id).id)
	}
	for len(toVisit) > 0 {
		id := toVisit[len(toVisit)-1]
		toVisit = toVisit[:len(toVisit)-1]
		if visited.Has(id) {
			continue
		}
		visited.Insert(id)
		for _, o := range g.nodes[id].operands {
			if !visited.Has(o.Node) {
				toVisit = append(toVisit, o.Node)
			}
		}
	}
	ids := make([]NodeID, 0, len(visited))
	for id := range visited {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	sorted := make([]*Node, len(ids))
	for ii, id := range ids {
		sorted[ii] = g.nodes[id]
	}
	return sorted
}
