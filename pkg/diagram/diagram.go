package diagram

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/node"
	"github.com/matzehuels/nodecanvas/pkg/surface"
)

// Layout spacing.
const (
	NodeGap  = 20.0 // Horizontal gap between nodes of a layer
	LayerGap = 50.0 // Vertical gap between layers
	LoopBend = 30.0 // Sideways bend of edges that do not point downward
)

// End records which end of a graph edge a node is.
type End string

// Edge ends.
const (
	EndSource End = "source"
	EndTarget End = "target"
)

// =============================================================================
// Builder
// =============================================================================

// Builder lays out graphs, trees and tables with nodes from Factory.
// It implements [node.DiagramBuilder], so nested GRAPH and TREE content is
// built by the same builder and shares the factory's registry.
type Builder struct {
	Factory *node.Factory

	// Binder, when set, makes every graph node draggable. Dragging moves the
	// node and re-routes its edges.
	Binder node.DragBinder

	Logger *log.Logger
}

// NewBuilder creates a builder around f and points f's nested content at it.
func NewBuilder(f *node.Factory, binder node.DragBinder, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	b := &Builder{Factory: f, Binder: binder, Logger: logger}
	f.Builder = b
	return b
}

// BuildDiagram implements [node.DiagramBuilder]. spec must be a *Graph or Graph.
func (b *Builder) BuildDiagram(spec any, parent surface.Group, tree bool, labelMargin float64) (node.Sized, error) {
	var g *Graph
	switch v := spec.(type) {
	case *Graph:
		g = v
	case Graph:
		g = &v
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedContentType, "nested diagram requires a graph, got %T", spec)
	}
	return b.Build(parent, g, tree, labelMargin)
}

// Build validates g and lays it out inside parent, anchored at the group's
// local origin. Nodes are padded by margin on every side.
func (b *Builder) Build(parent surface.Group, g *Graph, tree bool, margin float64) (*Diagram, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	d := &Diagram{
		group:  parent,
		tree:   tree,
		margin: margin,
		byID:   make(map[string]*node.Node, len(g.Nodes)),
		byPath: make(map[surface.Path]*Edge, len(g.Edges)),
	}

	for _, spec := range g.Nodes {
		n, err := b.createNode(parent, spec, d)
		if err != nil {
			return nil, err
		}
		d.nodes = append(d.nodes, n)
		d.byID[spec.ID] = n
	}

	adj := newAdjacency(g)
	var layers []int
	if tree {
		layers = adj.depth()
	} else {
		layers = adj.acyclic().longestPath()
	}
	d.place(rows(layers))

	for _, e := range g.Edges {
		d.addEdge(e)
	}

	b.Logger.Debug("diagram built", "nodes", len(d.nodes), "edges", len(d.edges),
		"tree", tree, "width", d.width, "height", d.height)
	return d, nil
}

func (b *Builder) createNode(parent surface.Group, spec NodeSpec, d *Diagram) (*node.Node, error) {
	kind, err := spec.Kind()
	if err != nil {
		return nil, err
	}
	var data any = spec.DisplayLabel()
	if kind != node.KindString {
		data = spec.Graph
	}

	opts := []node.Option{
		node.WithBold(spec.Bold),
		node.WithHighlight(spec.Highlight),
		node.WithColor(spec.Color),
	}
	if b.Binder != nil {
		opts = append(opts, node.WithDrag(b.Binder, d.drag))
	}
	return b.Factory.Create(parent, 0, 0, data, kind, opts...)
}

// =============================================================================
// Diagram
// =============================================================================

// Diagram is a laid-out graph or tree. It owns the edges it drew and
// registers each on both endpoint nodes.
type Diagram struct {
	group  surface.Group
	tree   bool
	margin float64
	width  float64
	height float64

	nodes  []*node.Node
	byID   map[string]*node.Node
	edges  []*Edge
	byPath map[surface.Path]*Edge
}

// Edge is a drawn graph edge.
type Edge struct {
	From, To string
	Label    string
	Path     surface.Path

	from, to *node.Node
}

// Width returns the laid-out width including margins.
func (d *Diagram) Width() float64 { return d.width }

// Height returns the laid-out height including margins.
func (d *Diagram) Height() float64 { return d.height }

// Group returns the group the diagram was drawn into.
func (d *Diagram) Group() surface.Group { return d.group }

// Tree reports whether the diagram uses tree layout.
func (d *Diagram) Tree() bool { return d.tree }

// Nodes returns the diagram's nodes in input order.
func (d *Diagram) Nodes() []*node.Node { return append([]*node.Node(nil), d.nodes...) }

// Node returns the node with the given spec ID.
func (d *Diagram) Node(id string) (*node.Node, bool) {
	n, ok := d.byID[id]
	return n, ok
}

// Edges returns the diagram's edges in input order.
func (d *Diagram) Edges() []*Edge { return append([]*Edge(nil), d.edges...) }

// place positions rows top to bottom, each row centered on the widest one.
func (d *Diagram) place(rows [][]int) {
	rowWidths := make([]float64, len(rows))
	rowHeights := make([]float64, len(rows))
	var maxWidth float64
	for r, row := range rows {
		for i, v := range row {
			n := d.nodes[v]
			rowWidths[r] += n.Width()
			if i > 0 {
				rowWidths[r] += NodeGap
			}
			rowHeights[r] = max(rowHeights[r], n.Height())
		}
		maxWidth = max(maxWidth, rowWidths[r])
	}

	y := d.margin
	for r, row := range rows {
		x := d.margin + (maxWidth-rowWidths[r])/2
		for _, v := range row {
			n := d.nodes[v]
			n.Translate(x, y+(rowHeights[r]-n.Height())/2)
			x += n.Width() + NodeGap
		}
		y += rowHeights[r]
		if r < len(rows)-1 {
			y += LayerGap
		}
	}

	d.width = maxWidth + 2*d.margin
	d.height = y + d.margin
}

func (d *Diagram) addEdge(spec EdgeSpec) {
	e := &Edge{
		From:  spec.From,
		To:    spec.To,
		Label: spec.Label,
		Path:  d.group.AddPath("edge"),
		from:  d.byID[spec.From],
		to:    d.byID[spec.To],
	}
	e.Path.SetLabel(spec.Label)
	route(e)

	d.edges = append(d.edges, e)
	d.byPath[e.Path] = e
	e.from.RegisterGraphEdge(e.Path, e.Label, EndSource, d)
	e.to.RegisterGraphEdge(e.Path, e.Label, EndTarget, d)
}

// route draws e from the bottom center of its source to the top center of
// its target. Edges that do not point downward bend to the right.
func route(e *Edge) {
	start := surface.Point{X: e.from.X() + e.from.Width()/2, Y: e.from.Y() + e.from.Height()}
	end := surface.Point{X: e.to.X() + e.to.Width()/2, Y: e.to.Y()}
	if end.Y > start.Y {
		e.Path.SetCurved(false)
		e.Path.SetPoints(start, end)
		return
	}
	right := max(e.from.X()+e.from.Width(), e.to.X()+e.to.Width()) + LoopBend
	e.Path.SetCurved(true)
	e.Path.SetPoints(start, surface.Point{X: right, Y: (start.Y + end.Y) / 2}, end)
}

// Refresh re-routes every edge of this diagram attached to n.
func (d *Diagram) Refresh(n *node.Node) {
	for _, a := range n.Attachments() {
		ge, ok := a.(node.GraphEdge)
		if !ok || ge.Diagram != d {
			continue
		}
		if e, ok := d.byPath[ge.Edge]; ok {
			route(e)
		}
	}
}

// drag moves n by the delta and keeps its edges attached.
func (d *Diagram) drag(n *node.Node, dx, dy float64) {
	n.Translate(n.X()+dx, n.Y()+dy)
	d.Refresh(n)
}
