package dims

import (
	"sync"

	"github.com/gomlx/dimtrace/ir"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"
)

// Resolver resolves dimension nodes of one graph to their static values, memoizing the results, so
// shared sub-expressions are resolved only once.
//
// It is safe for concurrent use, as long as the graph is not being modified: freeze the graph
// first (ir.Graph.Freeze).
type Resolver struct {
	graph *ir.Graph

	mu     sync.Mutex
	values map[ir.NodeID]int64
	errs   map[ir.NodeID]error
}

// NewResolver creates a Resolver for the dimension nodes of g.
func NewResolver(g *ir.Graph) *Resolver {
	return &Resolver{
		graph:  g,
		values: make(map[ir.NodeID]int64),
		errs:   make(map[ir.NodeID]error),
	}
}

// Graph returns the graph whose nodes the Resolver resolves.
func (r *Resolver) Graph() *ir.Graph { return r.graph }

// Resolve returns the static value of n. Operands are resolved before n.
func (r *Resolver) Resolve(n *Node) (int64, error) {
	if n == nil {
		return 0, errors.Wrap(ErrOperandKind, "Resolver.Resolve: nil node")
	}
	if n.Graph() != r.graph {
		return 0, errors.Wrapf(ErrOperandKind, "Resolver.Resolve(%s): node of graph %q given to resolver of graph %q",
			n, n.Graph().Name(), r.graph.Name())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(n)
}

func (r *Resolver) resolveLocked(n *Node) (int64, error) {
	id := n.ID()
	if v, found := r.values[id]; found {
		return v, nil
	}
	if err, found := r.errs[id]; found {
		return 0, err
	}
	v, err := n.evaluate(r.resolveLocked)
	if err != nil {
		r.errs[id] = err
		return 0, err
	}
	r.values[id] = v
	klog.V(3).Infof("graph %q: resolved %s = %d", r.graph.Name(), n.Output(), v)
	return v, nil
}

// ResolveAll resolves all the given nodes. If any fails, the returned error combines all
// the failures (see multierr.Errors), and the values of the failed nodes are 0.
func (r *Resolver) ResolveAll(nodes ...*Node) ([]int64, error) {
	values := make([]int64, len(nodes))
	var err error
	for ii, n := range nodes {
		v, nodeErr := r.Resolve(n)
		if nodeErr != nil {
			err = multierr.Append(err, errors.WithMessagef(nodeErr, "dimension #%d", ii))
			continue
		}
		values[ii] = v
	}
	return values, err
}

// ResolveGraph resolves every dimension node in the graph, and returns the values indexed by node id.
// Nodes that fail to resolve are left out of the map, and their errors are combined in the returned error.
func (r *Resolver) ResolveGraph() (map[ir.NodeID]int64, error) {
	result := make(map[ir.NodeID]int64)
	var err error
	for _, irNode := range r.graph.Nodes() {
		d, ok := irNode.Payload().(*Node)
		if !ok {
			continue
		}
		v, nodeErr := r.Resolve(d)
		if nodeErr != nil {
			err = multierr.Append(err, nodeErr)
			continue
		}
		result[d.ID()] = v
	}
	return result, err
}
