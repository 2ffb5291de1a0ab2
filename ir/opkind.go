package ir

import (
	"strings"

	"github.com/gomlx/gomlx/pkg/support/sets"
)

// OpKind identifies the operation performed by a Node, as a namespaced symbol, e.g. "dim::size".
type OpKind string

// Well-known op kinds of leaf tensor values.
const (
	OpParameter OpKind = "prim::Parameter"
	OpConstant  OpKind = "prim::Constant"
)

// Namespace returns the part of the symbol before "::", or "" if there is none.
func (k OpKind) Namespace() string {
	ns, _, found := strings.Cut(string(k), "::")
	if !found {
		return ""
	}
	return ns
}

// reservedNamespaces can only be used by nodes created through the package that reserved them.
// It is only written during package initialization.
var reservedNamespaces = sets.Make[string]()

// ReserveNamespace marks ns as owned by a package building typed nodes on top of the graph
// (e.g. "dim"). Graph.Op rejects op kinds in reserved namespaces.
// It is not safe to call concurrently with graph construction: call it from an init function.
func ReserveNamespace(ns string) {
	reservedNamespaces.Insert(ns)
}

// IsReserved returns whether the namespace of k was reserved with ReserveNamespace.
func (k OpKind) IsReserved() bool {
	return reservedNamespaces.Has(k.Namespace())
}

// Hash of the op kind, used to seed structural hashes.
func (k OpKind) Hash() Hash {
	return MHash(k)
}

// String implements fmt.Stringer.
func (k OpKind) String() string {
	return string(k)
}
