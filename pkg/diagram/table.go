package diagram

import (
	"github.com/matzehuels/nodecanvas/pkg/node"
	"github.com/matzehuels/nodecanvas/pkg/surface"
)

// Table spacing.
const (
	CellGap  = 4.0  // Horizontal gap between cells
	RowGap   = 20.0 // Vertical gap between rows
	ArcBase  = 20.0 // Height of an arc between adjacent cells
	ArcLevel = 12.0 // Extra height per additional column spanned
)

// TableDiagram is a laid-out dependency table: rows of cells with labeled
// arcs above each row.
type TableDiagram struct {
	group  surface.Group
	width  float64
	height float64

	cells  [][]*node.Node
	deps   []*Dependency
	byPath map[surface.Path]*Dependency
}

// Dependency is a drawn arc between two cells of one row.
type Dependency struct {
	Row       int
	Head      int
	Dependent int
	Label     string
	Path      surface.Path

	head, dependent *node.Node
}

// BuildTable lays t out inside parent. Every column is as wide as its widest
// cell; arcs are registered on both cells, outgoing on the head.
func (b *Builder) BuildTable(parent surface.Group, t *Table) (*TableDiagram, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	td := &TableDiagram{
		group:  parent,
		byPath: make(map[surface.Path]*Dependency, len(t.Dependencies)),
	}

	var colWidths []float64
	for _, row := range t.Rows {
		cells := make([]*node.Node, 0, len(row))
		for j, spec := range row {
			n, err := b.Factory.CreateCell(parent, 0, 0, spec.Label, node.KindString,
				node.WithBold(spec.Bold), node.WithHighlight(spec.Highlight), node.WithClass("cell"))
			if err != nil {
				return nil, err
			}
			cells = append(cells, n)
			if j >= len(colWidths) {
				colWidths = append(colWidths, 0)
			}
			colWidths[j] = max(colWidths[j], n.Width())
		}
		td.cells = append(td.cells, cells)
	}

	arcSpace := make([]float64, len(t.Rows))
	for _, dep := range t.Dependencies {
		arcSpace[dep.Row] = max(arcSpace[dep.Row], arcHeight(dep.Head, dep.Dependent))
	}

	y := 0.0
	for r, row := range td.cells {
		y += arcSpace[r]
		x := 0.0
		var rowHeight float64
		for j, n := range row {
			n.SetWidth(colWidths[j])
			n.Translate(x, y)
			x += colWidths[j] + CellGap
			rowHeight = max(rowHeight, n.Height())
		}
		td.width = max(td.width, x-CellGap)
		y += rowHeight
		if r < len(td.cells)-1 {
			y += RowGap
		}
	}
	td.height = y

	for _, spec := range t.Dependencies {
		td.addDependency(spec)
	}

	b.Logger.Debug("table built", "rows", len(td.cells), "dependencies", len(td.deps))
	return td, nil
}

func arcHeight(a, b int) float64 {
	span := a - b
	if span < 0 {
		span = -span
	}
	return ArcBase + ArcLevel*float64(max(span-1, 0))
}

func (td *TableDiagram) addDependency(spec DependencySpec) {
	d := &Dependency{
		Row:       spec.Row,
		Head:      spec.Head,
		Dependent: spec.Dependent,
		Label:     spec.Label,
		Path:      td.group.AddPath("dependency"),
		head:      td.cells[spec.Row][spec.Head],
		dependent: td.cells[spec.Row][spec.Dependent],
	}
	d.Path.SetLabel(spec.Label)
	d.Path.SetCurved(true)
	d.route()

	td.deps = append(td.deps, d)
	td.byPath[d.Path] = d
	d.head.RegisterDependencyEdge(d.Path, true, d.Label, td)
	d.dependent.RegisterDependencyEdge(d.Path, false, d.Label, td)
}

// route draws an arc from the top center of the head to the top center of
// the dependent, peaking above the higher of the two.
func (d *Dependency) route() {
	start := surface.Point{X: d.head.X() + d.head.Width()/2, Y: d.head.Y()}
	end := surface.Point{X: d.dependent.X() + d.dependent.Width()/2, Y: d.dependent.Y()}
	peak := surface.Point{
		X: (start.X + end.X) / 2,
		Y: min(start.Y, end.Y) - arcHeight(d.Head, d.Dependent),
	}
	d.Path.SetPoints(start, peak, end)
}

// Width returns the table width.
func (td *TableDiagram) Width() float64 { return td.width }

// Height returns the table height including arc space.
func (td *TableDiagram) Height() float64 { return td.height }

// Group returns the group the table was drawn into.
func (td *TableDiagram) Group() surface.Group { return td.group }

// Cell returns the cell at (row, col).
func (td *TableDiagram) Cell(row, col int) (*node.Node, bool) {
	if row < 0 || row >= len(td.cells) || col < 0 || col >= len(td.cells[row]) {
		return nil, false
	}
	return td.cells[row][col], true
}

// Dependencies returns the drawn arcs in input order.
func (td *TableDiagram) Dependencies() []*Dependency {
	return append([]*Dependency(nil), td.deps...)
}

// Refresh re-routes every arc of this table attached to n.
func (td *TableDiagram) Refresh(n *node.Node) {
	for _, a := range n.Attachments() {
		de, ok := a.(node.DependencyEdge)
		if !ok || de.Table != td {
			continue
		}
		if d, ok := td.byPath[de.Edge]; ok {
			d.route()
		}
	}
}
