package surface

// Point is a position in group-local coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned rectangle in group-local coordinates.
type Box struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.W }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.H }

// Union returns the smallest box containing both b and o.
// A zero box is treated as empty.
func (b Box) Union(o Box) Box {
	if b == (Box{}) {
		return o
	}
	if o == (Box{}) {
		return b
	}
	x := min(b.X, o.X)
	y := min(b.Y, o.Y)
	return Box{X: x, Y: y, W: max(b.Right(), o.Right()) - x, H: max(b.Bottom(), o.Bottom()) - y}
}

// Translate returns b shifted by (dx, dy).
func (b Box) Translate(dx, dy float64) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, W: b.W, H: b.H}
}

// Anchor is the horizontal alignment of a text label around its x position.
type Anchor string

// Text anchors.
const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Element is implemented by every primitive on the surface.
type Element interface {
	// Class returns the style-class tag of the element.
	Class() string
	// Parent returns the group containing the element, or nil for the root.
	Parent() Group
}

// Group is a transform group: a translated container of primitives.
type Group interface {
	Element

	// ID returns the group identifier used by input handlers to address it.
	ID() string
	SetID(id string)

	// Translate sets the group's offset relative to its parent.
	Translate(x, y float64)
	// Offset returns the group's offset relative to its parent.
	Offset() (x, y float64)

	AddGroup(x, y float64, class string) Group
	AddRect(class string) Rect
	AddText(label, class string) Text
	AddPath(class string) Path

	// Children returns the group's children in paint order.
	Children() []Element
	// Remove detaches a direct child. It reports whether the child was found.
	Remove(e Element) bool
}

// Rect is a rectangle primitive.
type Rect interface {
	Element

	SetPos(x, y float64)
	SetSize(w, h float64)
	SetWidth(w float64)
	SetHeight(h float64)
	Bounds() Box

	SetFill(color string)
	Fill() string
	SetStroke(color string)
	Stroke() string
	SetStrokeWidth(w float64)
	StrokeWidth() float64
	// SetRadius sets the corner radii (rx, ry).
	SetRadius(rx, ry float64)
	Radius() (rx, ry float64)
	// SetFilter applies the named filter defined on the canvas.
	SetFilter(id string)
	Filter() string

	// Lower sends the rectangle to the back of its group.
	Lower()
}

// Text is a text label primitive.
type Text interface {
	Element

	Label() string
	SetPos(x, y float64)
	SetX(x float64)
	X() float64
	Y() float64
	SetAnchor(a Anchor)
	Anchor() Anchor
	// SetBaseline sets the vertical shift applied to the baseline (e.g. ".3em").
	SetBaseline(dy string)
	Baseline() string
	SetPointerEvents(enabled bool)
	PointerEvents() bool
}

// Path is a polyline primitive used for edges.
type Path interface {
	Element

	SetPoints(pts ...Point)
	Points() []Point
	SetStroke(color string)
	Stroke() string
	SetStrokeWidth(w float64)
	StrokeWidth() float64
	// SetCurved renders the points as a quadratic curve through the middle point.
	SetCurved(curved bool)
	Curved() bool
	SetLabel(label string)
	Label() string
}
