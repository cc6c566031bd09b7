package diagram

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/node"
	"github.com/matzehuels/nodecanvas/pkg/surface"
)

type testBinder struct {
	handlers map[string]func(dx, dy float64)
}

func (b *testBinder) OnDrag(g surface.Group, fn func(dx, dy float64)) {
	if b.handlers == nil {
		b.handlers = map[string]func(dx, dy float64){}
	}
	b.handlers[g.ID()] = fn
}

func newTestBuilder(binder node.DragBinder) (*Builder, *surface.Canvas, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	f := node.NewFactory(node.NewRegistry(), nil, logger)
	return NewBuilder(f, binder, logger), surface.NewCanvas(), &buf
}

func chain() *Graph {
	return &Graph{
		Nodes: []NodeSpec{{ID: "a"}, {ID: "b", Label: "bb"}},
		Edges: []EdgeSpec{{From: "a", To: "b", Label: "x"}},
	}
}

func TestBuildChain(t *testing.T) {
	b, c, _ := newTestBuilder(nil)

	d, err := b.Build(c.Root(), chain(), false, 20)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	a, _ := d.Node("a")
	bb, _ := d.Node("b")
	if a.X() != 23.25 || a.Y() != 20 {
		t.Errorf("a at (%v, %v), want (23.25, 20)", a.X(), a.Y())
	}
	if bb.X() != 20 || bb.Y() != 100 {
		t.Errorf("b at (%v, %v), want (20, 100)", bb.X(), bb.Y())
	}
	if d.Width() != 75 || d.Height() != 150 {
		t.Errorf("size = %vx%v, want 75x150", d.Width(), d.Height())
	}

	edges := d.Edges()
	if len(edges) != 1 {
		t.Fatalf("len(Edges()) = %d, want 1", len(edges))
	}
	pts := edges[0].Path.Points()
	want := []surface.Point{{X: 37.5, Y: 50}, {X: 37.5, Y: 100}}
	if len(pts) != 2 || pts[0] != want[0] || pts[1] != want[1] {
		t.Errorf("edge points = %v, want %v", pts, want)
	}
	if edges[0].Path.Label() != "x" {
		t.Errorf("edge label = %q, want x", edges[0].Path.Label())
	}

	for _, tc := range []struct {
		n   *node.Node
		end End
	}{{a, EndSource}, {bb, EndTarget}} {
		att := tc.n.Attachments()
		if len(att) != 1 {
			t.Fatalf("len(Attachments()) = %d, want 1", len(att))
		}
		ge, ok := att[0].(node.GraphEdge)
		if !ok || ge.Position != tc.end || ge.Diagram != d || ge.Edge != edges[0].Path {
			t.Errorf("attachment = %+v, want %s end of diagram edge", att[0], tc.end)
		}
	}
}

func TestBuildCycle(t *testing.T) {
	b, c, _ := newTestBuilder(nil)

	g := &Graph{
		Nodes: []NodeSpec{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []EdgeSpec{{From: "a", To: "b"}, {From: "b", To: "c"}, {From: "c", To: "a"}},
	}
	d, err := b.Build(c.Root(), g, false, 0)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	na, _ := d.Node("a")
	nb, _ := d.Node("b")
	nc, _ := d.Node("c")
	if !(na.Y() < nb.Y() && nb.Y() < nc.Y()) {
		t.Errorf("layers a=%v b=%v c=%v, want strictly increasing", na.Y(), nb.Y(), nc.Y())
	}

	back := d.Edges()[2]
	if !back.Path.Curved() || len(back.Path.Points()) != 3 {
		t.Errorf("back edge should be a curved three-point path, got %v", back.Path.Points())
	}
}

func TestBuildTreeDepth(t *testing.T) {
	b, c, _ := newTestBuilder(nil)

	// a -> b -> c and a -> c: longest path puts c below b, depth puts them side by side.
	g := &Graph{
		Nodes: []NodeSpec{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []EdgeSpec{{From: "a", To: "b"}, {From: "b", To: "c"}, {From: "a", To: "c"}},
	}

	graph, err := b.Build(c.Root(), g, false, 0)
	if err != nil {
		t.Fatal(err)
	}
	gb, _ := graph.Node("b")
	gc, _ := graph.Node("c")
	if gc.Y() <= gb.Y() {
		t.Errorf("graph layout: c.Y = %v, want below b.Y = %v", gc.Y(), gb.Y())
	}

	tree, err := b.Build(c.Root(), g, true, 0)
	if err != nil {
		t.Fatal(err)
	}
	tb, _ := tree.Node("b")
	tc, _ := tree.Node("c")
	if tc.Y() != tb.Y() {
		t.Errorf("tree layout: c.Y = %v, want b.Y = %v", tc.Y(), tb.Y())
	}
	if !tree.Tree() || graph.Tree() {
		t.Error("Tree() should report the layout used")
	}
}

func TestBuildNested(t *testing.T) {
	b, c, _ := newTestBuilder(nil)

	g := &Graph{
		Nodes: []NodeSpec{
			{ID: "outer", Type: "graph", Graph: chain()},
			{ID: "leaf"},
		},
		Edges: []EdgeSpec{{From: "outer", To: "leaf"}},
	}
	d, err := b.Build(c.Root(), g, false, 0)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	outer, _ := d.Node("outer")
	// The nested chain with margin 20 is 75x150.
	if outer.Width() != 75 || outer.Height() != 150 {
		t.Errorf("nested node size = %vx%v, want 75x150", outer.Width(), outer.Height())
	}
	if b.Factory.Registry.Len() != 4 {
		t.Errorf("registry length = %d, want 4", b.Factory.Registry.Len())
	}
	if outer.Ordinal() != 2 {
		t.Errorf("outer ordinal = %d, want 2 (after nested nodes)", outer.Ordinal())
	}
	nested, ok := outer.Content().(*node.NestedContent)
	if !ok {
		t.Fatalf("content = %T, want *node.NestedContent", outer.Content())
	}
	if _, ok := nested.Diagram().(*Diagram); !ok {
		t.Errorf("nested diagram = %T, want *Diagram", nested.Diagram())
	}
}

func TestBuildInvalid(t *testing.T) {
	tests := []struct {
		name string
		g    *Graph
		code errors.Code
	}{
		{"nil graph", nil, errors.ErrCodeInvalidInput},
		{"missing id", &Graph{Nodes: []NodeSpec{{Label: "x"}}}, errors.ErrCodeInvalidInput},
		{"duplicate id", &Graph{Nodes: []NodeSpec{{ID: "a"}, {ID: "a"}}}, errors.ErrCodeInvalidInput},
		{"unknown edge end", &Graph{Nodes: []NodeSpec{{ID: "a"}}, Edges: []EdgeSpec{{From: "a", To: "z"}}}, errors.ErrCodeInvalidInput},
		{"bad type", &Graph{Nodes: []NodeSpec{{ID: "a", Type: "matrix"}}}, errors.ErrCodeUnsupportedContentType},
		{"bad color", &Graph{Nodes: []NodeSpec{{ID: "a", Color: "#12"}}}, errors.ErrCodeInvalidInput},
		{"nested missing graph", &Graph{Nodes: []NodeSpec{{ID: "ok"}, {ID: "a", Type: "TREE"}}}, errors.ErrCodeInvalidInput},
		{"nested invalid", &Graph{Nodes: []NodeSpec{{ID: "a", Type: "GRAPH", Graph: &Graph{Nodes: []NodeSpec{{}}}}}}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, c, _ := newTestBuilder(nil)
			_, err := b.Build(c.Root(), tt.g, false, 0)
			if !errors.Is(err, tt.code) {
				t.Fatalf("Build() error = %v, want %s", err, tt.code)
			}
			if b.Factory.Registry.Len() != 0 {
				t.Errorf("registry length = %d, want 0", b.Factory.Registry.Len())
			}
		})
	}
}

func TestBuildInvalidKeepsCodeOnce(t *testing.T) {
	b, c, _ := newTestBuilder(nil)
	g := &Graph{Nodes: []NodeSpec{{ID: "a"}, {ID: "b"}, {ID: "c", Type: "bogus"}}}

	_, err := b.Build(c.Root(), g, false, 0)
	if !errors.Is(err, errors.ErrCodeUnsupportedContentType) {
		t.Fatalf("Build() error = %v, want %s", err, errors.ErrCodeUnsupportedContentType)
	}
	msg := err.Error()
	if !strings.Contains(msg, "graph.nodes[2]") {
		t.Errorf("error %q does not name the node", msg)
	}
	if n := strings.Count(msg, string(errors.ErrCodeUnsupportedContentType)); n != 1 {
		t.Errorf("error %q repeats its code %d times", msg, n)
	}
}

func TestBuildDiagramSpecType(t *testing.T) {
	b, c, _ := newTestBuilder(nil)

	if _, err := b.BuildDiagram(*chain(), c.Root(), false, 0); err != nil {
		t.Errorf("BuildDiagram(Graph) error = %v", err)
	}
	_, err := b.BuildDiagram("not a graph", c.Root(), false, 0)
	if !errors.Is(err, errors.ErrCodeUnsupportedContentType) {
		t.Errorf("BuildDiagram(string) error = %v, want %s", err, errors.ErrCodeUnsupportedContentType)
	}
}

func TestDragRefreshesEdges(t *testing.T) {
	binder := &testBinder{}
	b, c, _ := newTestBuilder(binder)

	d, err := b.Build(c.Root(), chain(), false, 20)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := d.Node("a")
	drag := binder.handlers[a.Group().ID()]
	if drag == nil {
		t.Fatal("node a not bound for drag")
	}

	drag(10, -5)
	if a.X() != 33.25 || a.Y() != 15 {
		t.Errorf("a at (%v, %v), want (33.25, 15)", a.X(), a.Y())
	}
	pts := d.Edges()[0].Path.Points()
	if pts[0] != (surface.Point{X: 47.5, Y: 45}) {
		t.Errorf("edge start = %v, want (47.5, 45)", pts[0])
	}
	if pts[1] != (surface.Point{X: 37.5, Y: 100}) {
		t.Errorf("edge end = %v, want unchanged (37.5, 100)", pts[1])
	}

	// Dragging the source below the target bends the edge.
	drag(0, 200)
	if !d.Edges()[0].Path.Curved() {
		t.Error("upward edge should be curved")
	}
}

func TestRefreshIgnoresForeignAttachments(t *testing.T) {
	b, c, _ := newTestBuilder(nil)

	d1, _ := b.Build(c.Root(), chain(), false, 0)
	d2, _ := b.Build(c.Root(), chain(), false, 0)

	a, _ := d1.Node("a")
	before := d2.Edges()[0].Path.Points()
	a.Translate(500, 500)
	d2.Refresh(a)
	if after := d2.Edges()[0].Path.Points(); after[0] != before[0] {
		t.Error("Refresh should only touch edges of its own diagram")
	}
}

func TestBuildTable(t *testing.T) {
	b, c, buf := newTestBuilder(nil)

	tbl := &Table{
		Rows: [][]CellSpec{
			{{Label: "the"}, {Label: "dog", Bold: true}, {Label: "barks"}},
			{{Label: "a"}, {Label: "longer"}},
		},
		Dependencies: []DependencySpec{
			{Row: 0, Head: 2, Dependent: 1, Label: "nsubj"},
			{Row: 0, Head: 1, Dependent: 0, Label: "det"},
		},
	}
	td, err := b.BuildTable(c.Root(), tbl)
	if err != nil {
		t.Fatalf("BuildTable() error = %v", err)
	}

	if !strings.Contains(buf.String(), "bold is not supported") {
		t.Error("bold cell should log a warning")
	}

	the, _ := td.Cell(0, 0)
	a, _ := td.Cell(1, 0)
	dog, _ := td.Cell(0, 1)
	longer, _ := td.Cell(1, 1)
	barks, _ := td.Cell(0, 2)
	if the.Width() != a.Width() || the.Width() != node.HypotheticalWidth("the") {
		t.Errorf("column 0 widths = %v, %v", the.Width(), a.Width())
	}
	if dog.Width() != node.HypotheticalWidth("longer") || longer.Width() != dog.Width() {
		t.Errorf("column 1 widths = %v, %v, want %v", dog.Width(), longer.Width(), node.HypotheticalWidth("longer"))
	}
	if dog.Shadow().Bounds().W != dog.Width()+2*node.ShadowOversize {
		t.Error("shadow should follow the column width")
	}
	if dog.X() != the.Width()+CellGap || barks.X() != dog.X()+dog.Width()+CellGap {
		t.Errorf("cell x = %v, %v", dog.X(), barks.X())
	}
	if the.Y() != ArcBase || a.Y() != ArcBase+node.TextHeight+RowGap {
		t.Errorf("row y = %v, %v", the.Y(), a.Y())
	}
	if td.Height() != a.Y()+node.TextHeight {
		t.Errorf("Height() = %v, want %v", td.Height(), a.Y()+node.TextHeight)
	}

	deps := td.Dependencies()
	if len(deps) != 2 {
		t.Fatalf("len(Dependencies()) = %d, want 2", len(deps))
	}
	att := dog.Attachments()
	if len(att) != 2 {
		t.Fatalf("dog attachments = %d, want 2", len(att))
	}
	if de := att[0].(node.DependencyEdge); de.Outgoing || de.Label != "nsubj" || de.Table != td {
		t.Errorf("dog attachment 0 = %+v, want incoming nsubj", de)
	}
	if de := att[1].(node.DependencyEdge); !de.Outgoing || de.Label != "det" {
		t.Errorf("dog attachment 1 = %+v, want outgoing det", de)
	}

	pts := deps[0].Path.Points()
	if len(pts) != 3 || pts[1].Y != the.Y()-ArcBase {
		t.Errorf("arc peak = %v, want y %v", pts[1], the.Y()-ArcBase)
	}
}

func TestBuildTableInvalid(t *testing.T) {
	b, c, _ := newTestBuilder(nil)

	tbl := &Table{
		Rows:         [][]CellSpec{{{Label: "x"}}},
		Dependencies: []DependencySpec{{Row: 0, Head: 0, Dependent: 3}},
	}
	if _, err := b.BuildTable(c.Root(), tbl); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("BuildTable() error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if b.Factory.Registry.Len() != 0 {
		t.Error("invalid table should register nothing")
	}
}

func TestTableRefresh(t *testing.T) {
	b, c, _ := newTestBuilder(nil)

	td, err := b.BuildTable(c.Root(), &Table{
		Rows:         [][]CellSpec{{{Label: "a"}, {Label: "b"}}},
		Dependencies: []DependencySpec{{Row: 0, Head: 0, Dependent: 1, Label: "r"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	head, _ := td.Cell(0, 0)
	head.Translate(head.X()-10, head.Y())
	td.Refresh(head)

	start := td.Dependencies()[0].Path.Points()[0]
	if start.X != head.X()+head.Width()/2 {
		t.Errorf("arc start x = %v, want %v", start.X, head.X()+head.Width()/2)
	}
}
