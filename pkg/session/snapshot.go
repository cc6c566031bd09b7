package session

import (
	"github.com/matzehuels/nodecanvas/pkg/interact"
	"github.com/matzehuels/nodecanvas/pkg/node"
	"github.com/matzehuels/nodecanvas/pkg/surface"
)

// Update reports the effect of one drag event.
type Update struct {
	Phase  interact.Phase `json:"phase"`
	Target string         `json:"target"`
	Nodes  []NodeState    `json:"nodes,omitempty"`
	Edges  []EdgeState    `json:"edges,omitempty"`
}

// NodeState is the position and size of a node. X and Y are relative to the
// node's parent group; AbsX and AbsY are canvas coordinates.
type NodeState struct {
	Ordinal     int       `json:"ordinal"`
	ID          string    `json:"id"`
	Kind        node.Kind `json:"kind"`
	Label       string    `json:"label,omitempty"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	AbsX        float64   `json:"abs_x"`
	AbsY        float64   `json:"abs_y"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Attachments int       `json:"attachments"`
}

// EdgeState is an edge or dependency arc in canvas coordinates.
type EdgeState struct {
	Class  string          `json:"class"`
	Label  string          `json:"label,omitempty"`
	Curved bool            `json:"curved,omitempty"`
	Points []surface.Point `json:"points"`
}

// Snapshot is the full state of a session's canvas.
type Snapshot struct {
	Layout string      `json:"layout,omitempty"`
	Title  string      `json:"title,omitempty"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Nodes  []NodeState `json:"nodes"`
	Edges  []EdgeState `json:"edges"`
}

// Snapshot captures every node in ordinal order and every edge in paint order.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		Layout: s.id,
		Title:  s.doc.Title,
		Width:  s.width,
		Height: s.height,
		Nodes:  make([]NodeState, 0, s.registry.Len()),
		Edges:  []EdgeState{},
	}
	for _, n := range s.registry.All() {
		snap.Nodes = append(snap.Nodes, nodeState(n))
	}
	s.canvas.Walk(func(e surface.Element, ox, oy float64) {
		if p, ok := e.(surface.Path); ok {
			snap.Edges = append(snap.Edges, edgeAt(p, ox, oy))
		}
	})
	return snap
}

func nodeState(n *node.Node) NodeState {
	ax, ay := surface.AbsoluteOffset(n.Group())
	st := NodeState{
		Ordinal:     n.Ordinal(),
		ID:          n.Group().ID(),
		Kind:        kindOf(n.Content()),
		X:           n.X(),
		Y:           n.Y(),
		AbsX:        ax,
		AbsY:        ay,
		Width:       n.Width(),
		Height:      n.Height(),
		Attachments: len(n.Attachments()),
	}
	if tc, ok := n.Content().(*node.TextContent); ok {
		st.Label = tc.Label()
	}
	return st
}

func kindOf(c node.Content) node.Kind {
	nc, ok := c.(*node.NestedContent)
	if !ok {
		return node.KindString
	}
	if t, ok := nc.Diagram().(interface{ Tree() bool }); ok && t.Tree() {
		return node.KindTree
	}
	return node.KindGraph
}

func edgeState(p surface.Path) EdgeState {
	var ox, oy float64
	if parent := p.Parent(); parent != nil {
		ox, oy = surface.AbsoluteOffset(parent)
	}
	return edgeAt(p, ox, oy)
}

func edgeAt(p surface.Path, ox, oy float64) EdgeState {
	pts := p.Points()
	for i := range pts {
		pts[i].X += ox
		pts[i].Y += oy
	}
	return EdgeState{Class: p.Class(), Label: p.Label(), Curved: p.Curved(), Points: pts}
}
