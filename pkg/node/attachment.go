package node

import "github.com/matzehuels/nodecanvas/pkg/surface"

// Attachment is an edge or relation registered on a node by the component
// that drew it. Nodes store attachments but never interpret them.
type Attachment interface {
	// EdgePath returns the drawn edge.
	EdgePath() surface.Path

	attachment()
}

// GraphEdge is an edge drawn by a graph or tree diagram.
type GraphEdge struct {
	Edge     surface.Path
	Label    string
	Position any // Layout-specific data, e.g. which end of the edge this node is
	Diagram  any // The diagram that owns the edge
}

// DependencyEdge is a relation drawn by a dependency table.
type DependencyEdge struct {
	Edge     surface.Path
	Outgoing bool
	Label    string
	Table    any // The table that owns the edge
}

func (a GraphEdge) EdgePath() surface.Path      { return a.Edge }
func (a DependencyEdge) EdgePath() surface.Path { return a.Edge }

func (GraphEdge) attachment()      {}
func (DependencyEdge) attachment() {}
