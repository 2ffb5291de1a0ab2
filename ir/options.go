package ir

// Option configures a Graph created with NewGraph.
type Option func(g *Graph)

// WithName sets the name of the graph, used in dumps and logs.
func WithName(name string) Option {
	return func(g *Graph) {
		g.name = name
	}
}

// WithDeduplication enables or disables hash-consing of structurally identical nodes.
// It is enabled by default.
//
// Disabling it is mostly useful for tests that want to compare the structural hash of
// distinct but identical nodes.
func WithDeduplication(enabled bool) Option {
	return func(g *Graph) {
		g.dedup = enabled
	}
}
