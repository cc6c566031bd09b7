package node

import (
	"slices"

	"github.com/matzehuels/nodecanvas/pkg/surface"
)

// ShadowOversize is the margin by which a cell shadow exceeds its content on
// every side.
const ShadowOversize = 2.0

// Position is the position record stamped when a node is created.
// ID is the node's registry ordinal.
type Position struct {
	X, Y float64
	ID   int
}

// Node is a positioned, resizable box wrapping Content.
type Node struct {
	position    Position
	group       surface.Group
	frame       surface.Rect
	content     Content
	color       string
	shadow      surface.Rect
	attachments []Attachment
}

func newNode(pos Position, g surface.Group, frame surface.Rect, c Content, color string, shadow surface.Rect) *Node {
	frame.SetStroke(color)
	return &Node{
		position:    pos,
		group:       g,
		frame:       frame,
		content:     c,
		color:       color,
		shadow:      shadow,
		attachments: []Attachment{},
	}
}

// Translate moves the node to (x, y) in its parent's coordinates.
// Attachments are not redrawn; that is the caller's job.
func (n *Node) Translate(x, y float64) {
	n.position.X = x
	n.position.Y = y
	n.group.Translate(x, y)
}

// X returns the stored horizontal position.
func (n *Node) X() float64 { return n.position.X }

// Y returns the stored vertical position.
func (n *Node) Y() float64 { return n.position.Y }

// Width returns the content width, which always equals the frame width.
func (n *Node) Width() float64 { return n.content.Width() }

// Height returns the content height, which always equals the frame height.
func (n *Node) Height() float64 { return n.content.Height() }

// SetWidth resizes the frame and shadow and re-centers the content.
// Height is fixed at creation and never changes.
func (n *Node) SetWidth(width float64) {
	n.frame.SetWidth(width)
	n.content.Recenter(width)
	if n.shadow != nil {
		n.shadow.SetWidth(width + 2*ShadowOversize)
	}
}

// Ordinal returns the node's registry ordinal.
func (n *Node) Ordinal() int { return n.position.ID }

// Position returns the node's position record.
func (n *Node) Position() Position { return n.position }

// Group returns the transform group holding the node's primitives.
func (n *Node) Group() surface.Group { return n.group }

// Frame returns the border rectangle.
func (n *Node) Frame() surface.Rect { return n.frame }

// Shadow returns the drop shadow, or nil if the node has none.
func (n *Node) Shadow() surface.Rect { return n.shadow }

// Content returns the node's content.
func (n *Node) Content() Content { return n.content }

// Color returns the border color.
func (n *Node) Color() string { return n.color }

// Bounds returns the frame box in the parent's coordinates.
func (n *Node) Bounds() surface.Box {
	return surface.Box{X: n.position.X, Y: n.position.Y, W: n.Width(), H: n.Height()}
}

// RegisterGraphEdge records an edge drawn by a graph or tree diagram.
func (n *Node) RegisterGraphEdge(edge surface.Path, label string, position any, diagram any) {
	n.attachments = append(n.attachments, GraphEdge{
		Edge:     edge,
		Label:    label,
		Position: position,
		Diagram:  diagram,
	})
}

// RegisterDependencyEdge records a relation drawn by a dependency table.
func (n *Node) RegisterDependencyEdge(edge surface.Path, outgoing bool, label string, table any) {
	n.attachments = append(n.attachments, DependencyEdge{
		Edge:     edge,
		Outgoing: outgoing,
		Label:    label,
		Table:    table,
	})
}

// Attachments returns the registered attachments in insertion order.
// The result is never nil.
func (n *Node) Attachments() []Attachment {
	return slices.Clone(n.attachments)
}
