package node

import "slices"

// Registry is the append-only, ordered store of every node created for one
// canvas. A node's ordinal is the registry length at the moment it was
// created, so ordinals are dense and never reused.
//
// A Registry is owned by a single composition root and is not safe for
// concurrent use.
type Registry struct {
	nodes []*Node
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Append adds n and returns its ordinal.
func (r *Registry) Append(n *Node) int {
	r.nodes = append(r.nodes, n)
	return len(r.nodes) - 1
}

// Len returns the number of registered nodes, which is also the next ordinal.
func (r *Registry) Len() int { return len(r.nodes) }

// At returns the node with the given ordinal.
func (r *Registry) At(ordinal int) (*Node, bool) {
	if ordinal < 0 || ordinal >= len(r.nodes) {
		return nil, false
	}
	return r.nodes[ordinal], true
}

// All returns every node in creation order.
func (r *Registry) All() []*Node {
	return slices.Clone(r.nodes)
}
