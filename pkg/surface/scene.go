package surface

import "slices"

// FilterInsetBlur is the id of the predefined inset blur used for cell shadows.
const FilterInsetBlur = "white-border-inset"

// Filter describes a named visual effect that primitives can reference.
type Filter struct {
	ID     string  // Reference name used by Rect.SetFilter
	Blur   float64 // Gaussian blur standard deviation
	Inset  bool    // Blur toward the inside of the shape instead of outward
	Color  string  // Flood color of the blurred border
	Margin float64 // Extra filter region around the shape, in user units
}

// Canvas is an in-memory drawing surface.
type Canvas struct {
	root    *group
	filters []Filter
}

// NewCanvas creates an empty canvas with the predefined inset blur filter.
func NewCanvas() *Canvas {
	c := &Canvas{root: &group{class: "canvas"}}
	c.DefineFilter(Filter{ID: FilterInsetBlur, Blur: 2, Inset: true, Color: "white", Margin: 4})
	return c
}

// Root returns the top-level group that diagrams attach to.
func (c *Canvas) Root() Group { return c.root }

// DefineFilter registers f, replacing any filter with the same id.
func (c *Canvas) DefineFilter(f Filter) {
	for i := range c.filters {
		if c.filters[i].ID == f.ID {
			c.filters[i] = f
			return
		}
	}
	c.filters = append(c.filters, f)
}

// Filters returns the defined filters in definition order.
func (c *Canvas) Filters() []Filter {
	return slices.Clone(c.filters)
}

// Bounds returns the extent of every primitive on the canvas in root coordinates.
func (c *Canvas) Bounds() Box {
	return groupBounds(c.root, 0, 0)
}

// Walk visits every element depth-first in paint order.
// fn receives the element and its absolute group offset.
func (c *Canvas) Walk(fn func(e Element, ox, oy float64)) {
	walk(c.root, 0, 0, fn)
}

func walk(g *group, ox, oy float64, fn func(Element, float64, float64)) {
	for _, child := range g.children {
		fn(child, ox, oy)
		if sub, ok := child.(*group); ok {
			walk(sub, ox+sub.x, oy+sub.y, fn)
		}
	}
}

func groupBounds(g *group, ox, oy float64) Box {
	var b Box
	for _, child := range g.children {
		switch e := child.(type) {
		case *group:
			b = b.Union(groupBounds(e, ox+e.x, oy+e.y))
		case *rect:
			b = b.Union(e.box.Translate(ox, oy))
		case *text:
			b = b.Union(Box{X: e.x + ox, Y: e.y + oy, W: 1, H: 1})
		case *path:
			for _, p := range e.points {
				b = b.Union(Box{X: p.X + ox, Y: p.Y + oy, W: 1, H: 1})
			}
		}
	}
	return b
}

// AbsoluteOffset returns the offset of g relative to the canvas root.
func AbsoluteOffset(g Group) (x, y float64) {
	for cur := g; cur != nil; cur = cur.Parent() {
		dx, dy := cur.Offset()
		x += dx
		y += dy
	}
	return x, y
}

// =============================================================================
// group
// =============================================================================

type group struct {
	id       string
	class    string
	x, y     float64
	parent   *group
	children []Element
}

func (g *group) Class() string { return g.class }

func (g *group) Parent() Group {
	if g.parent == nil {
		return nil
	}
	return g.parent
}

func (g *group) ID() string                 { return g.id }
func (g *group) SetID(id string)            { g.id = id }
func (g *group) Translate(x, y float64)     { g.x, g.y = x, y }
func (g *group) Offset() (float64, float64) { return g.x, g.y }

func (g *group) AddGroup(x, y float64, class string) Group {
	sub := &group{class: class, x: x, y: y, parent: g}
	g.children = append(g.children, sub)
	return sub
}

func (g *group) AddRect(class string) Rect {
	r := &rect{class: class, parent: g, fill: "none", stroke: "none"}
	g.children = append(g.children, r)
	return r
}

func (g *group) AddText(label, class string) Text {
	t := &text{class: class, parent: g, label: label, anchor: AnchorStart, pointer: true}
	g.children = append(g.children, t)
	return t
}

func (g *group) AddPath(class string) Path {
	p := &path{class: class, parent: g, stroke: "black", strokeWidth: 1}
	g.children = append(g.children, p)
	return p
}

func (g *group) Children() []Element {
	return slices.Clone(g.children)
}

func (g *group) Remove(e Element) bool {
	i := slices.Index(g.children, e)
	if i < 0 {
		return false
	}
	g.children = slices.Delete(g.children, i, i+1)
	return true
}

func (g *group) lower(e Element) {
	i := slices.Index(g.children, e)
	if i <= 0 {
		return
	}
	g.children = slices.Delete(g.children, i, i+1)
	g.children = slices.Insert(g.children, 0, e)
}

// =============================================================================
// rect
// =============================================================================

type rect struct {
	class       string
	parent      *group
	box         Box
	fill        string
	stroke      string
	strokeWidth float64
	rx, ry      float64
	filter      string
}

func (r *rect) Class() string { return r.class }
func (r *rect) Parent() Group { return r.parent }

func (r *rect) SetPos(x, y float64)  { r.box.X, r.box.Y = x, y }
func (r *rect) SetSize(w, h float64) { r.box.W, r.box.H = w, h }
func (r *rect) SetWidth(w float64)   { r.box.W = w }
func (r *rect) SetHeight(h float64)  { r.box.H = h }
func (r *rect) Bounds() Box          { return r.box }

func (r *rect) SetFill(color string)       { r.fill = color }
func (r *rect) Fill() string               { return r.fill }
func (r *rect) SetStroke(color string)     { r.stroke = color }
func (r *rect) Stroke() string             { return r.stroke }
func (r *rect) SetStrokeWidth(w float64)   { r.strokeWidth = w }
func (r *rect) StrokeWidth() float64       { return r.strokeWidth }
func (r *rect) SetRadius(rx, ry float64)   { r.rx, r.ry = rx, ry }
func (r *rect) Radius() (float64, float64) { return r.rx, r.ry }
func (r *rect) SetFilter(id string)        { r.filter = id }
func (r *rect) Filter() string             { return r.filter }

func (r *rect) Lower() { r.parent.lower(r) }

// =============================================================================
// text
// =============================================================================

type text struct {
	class    string
	parent   *group
	label    string
	x, y     float64
	anchor   Anchor
	baseline string
	pointer  bool
}

func (t *text) Class() string { return t.class }
func (t *text) Parent() Group { return t.parent }

func (t *text) Label() string                 { return t.label }
func (t *text) SetPos(x, y float64)           { t.x, t.y = x, y }
func (t *text) SetX(x float64)                { t.x = x }
func (t *text) X() float64                    { return t.x }
func (t *text) Y() float64                    { return t.y }
func (t *text) SetAnchor(a Anchor)            { t.anchor = a }
func (t *text) Anchor() Anchor                { return t.anchor }
func (t *text) SetBaseline(dy string)         { t.baseline = dy }
func (t *text) Baseline() string              { return t.baseline }
func (t *text) SetPointerEvents(enabled bool) { t.pointer = enabled }
func (t *text) PointerEvents() bool           { return t.pointer }

// =============================================================================
// path
// =============================================================================

type path struct {
	class       string
	parent      *group
	points      []Point
	stroke      string
	strokeWidth float64
	curved      bool
	label       string
}

func (p *path) Class() string { return p.class }
func (p *path) Parent() Group { return p.parent }

func (p *path) SetPoints(pts ...Point)   { p.points = slices.Clone(pts) }
func (p *path) Points() []Point          { return slices.Clone(p.points) }
func (p *path) SetStroke(color string)   { p.stroke = color }
func (p *path) Stroke() string           { return p.stroke }
func (p *path) SetStrokeWidth(w float64) { p.strokeWidth = w }
func (p *path) StrokeWidth() float64     { return p.strokeWidth }
func (p *path) SetCurved(curved bool)    { p.curved = curved }
func (p *path) Curved() bool             { return p.curved }
func (p *path) SetLabel(label string)    { p.label = label }
func (p *path) Label() string            { return p.label }
