package node

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/surface"
)

// Decoration defaults.
const (
	DefaultClass   = "node"
	DefaultColor   = "black"
	FillNormal     = "white"
	FillHighlight  = "#56e37c"
	FillShadow     = "#cccccc"
	CornerRadius   = 10.0
	StrokeNormal   = 2.0
	StrokeBold     = 4.0
	GroupIDPrefix  = "node-"
	shadowClassTag = "shadow"
)

// DragBinder attaches a drag handler to a group. The handler receives the
// pointer delta of each drag step. Implementations own the gesture state.
type DragBinder interface {
	OnDrag(g surface.Group, fn func(dx, dy float64))
}

// DragHandler is called with the node being dragged and the step delta.
// A nil handler translates the node by the delta.
type DragHandler func(n *Node, dx, dy float64)

// Option configures a single Create or CreateCell call.
type Option func(*options)

type options struct {
	bold      bool
	highlight bool
	color     string
	class     string
	binder    DragBinder
	handler   DragHandler
}

// WithBold draws a thicker border. Ignored for cells.
func WithBold(b bool) Option { return func(o *options) { o.bold = b } }

// WithHighlight fills the frame with the highlight color.
func WithHighlight(h bool) Option { return func(o *options) { o.highlight = h } }

// WithColor sets the border color. Ignored for cells.
func WithColor(c string) Option { return func(o *options) { o.color = c } }

// WithClass sets the style class applied to every primitive of the node.
func WithClass(c string) Option { return func(o *options) { o.class = c } }

// WithDrag binds the node's group through b. Ignored for cells.
func WithDrag(b DragBinder, h DragHandler) Option {
	return func(o *options) {
		o.binder = b
		o.handler = h
	}
}

// Factory creates nodes and registers them.
type Factory struct {
	Registry *Registry
	Builder  DiagramBuilder
	Logger   *log.Logger
}

// NewFactory creates a factory. A nil registry is replaced by an empty one and
// a nil logger by log.Default().
func NewFactory(reg *Registry, b DiagramBuilder, logger *log.Logger) *Factory {
	if reg == nil {
		reg = NewRegistry()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Factory{Registry: reg, Builder: b, Logger: logger}
}

// Create builds an interactive node at (x, y) inside parent.
func (f *Factory) Create(parent surface.Group, x, y float64, data any, kind Kind, opts ...Option) (*Node, error) {
	o := f.options(opts)
	return f.build(parent, x, y, data, kind, o, false)
}

// CreateCell builds a static, shadowed table cell at (x, y) inside parent.
// Cells are never bold; a bold request is logged and ignored.
func (f *Factory) CreateCell(parent surface.Group, x, y float64, data any, kind Kind, opts ...Option) (*Node, error) {
	o := f.options(opts)
	boldRequested := o.bold
	o.bold = false
	o.color = DefaultColor
	o.binder = nil
	n, err := f.build(parent, x, y, data, kind, o, true)
	if err != nil {
		return nil, err
	}
	if boldRequested {
		f.logger().Warn("bold is not supported for cells",
			"code", errors.ErrCodeInvalidConfiguration, "ordinal", n.Ordinal())
	}
	return n, nil
}

func (f *Factory) options(opts []Option) options {
	o := options{color: DefaultColor, class: DefaultClass}
	for _, opt := range opts {
		opt(&o)
	}
	if o.color == "" {
		o.color = DefaultColor
	}
	return o
}

func (f *Factory) logger() *log.Logger {
	if f.Logger == nil {
		return log.Default()
	}
	return f.Logger
}

func (f *Factory) build(parent surface.Group, x, y float64, data any, kind Kind, o options, cell bool) (*Node, error) {
	if f.Registry == nil {
		f.Registry = NewRegistry()
	}
	pos := Position{X: x, Y: y}

	g := parent.AddGroup(x, y, o.class)

	c, err := newContent(data, kind, g, o.class, f.Builder)
	if err != nil {
		parent.Remove(g)
		return nil, err
	}

	frame := g.AddRect(o.class)
	frame.SetSize(c.Width(), c.Height())
	frame.SetFill(fill(o.highlight))
	switch {
	case cell:
		frame.SetStrokeWidth(0)
	case o.bold:
		frame.SetStrokeWidth(StrokeBold)
	default:
		frame.SetStrokeWidth(StrokeNormal)
	}
	if !cell {
		frame.SetRadius(CornerRadius, CornerRadius)
	}
	frame.Lower()

	var shadow surface.Rect
	if cell {
		shadow = g.AddRect(o.class + " " + shadowClassTag)
		shadow.SetPos(-ShadowOversize, -ShadowOversize)
		shadow.SetSize(c.Width()+2*ShadowOversize, c.Height()+2*ShadowOversize)
		shadow.SetFill(FillShadow)
		shadow.SetStrokeWidth(0)
		shadow.SetFilter(surface.FilterInsetBlur)
		shadow.Lower()
	}

	// Nested content registers its own nodes while being built, so the
	// ordinal is taken only once the node is complete.
	n := newNode(pos, g, frame, c, o.color, shadow)
	n.position.ID = f.Registry.Append(n)
	g.SetID(fmt.Sprintf("%s%d", GroupIDPrefix, n.position.ID))

	if o.binder != nil {
		h := o.handler
		o.binder.OnDrag(g, func(dx, dy float64) {
			if h != nil {
				h(n, dx, dy)
				return
			}
			n.Translate(n.X()+dx, n.Y()+dy)
		})
	}

	f.logger().Debug("node created", "ordinal", n.Ordinal(), "kind", kind, "cell", cell,
		"width", n.Width(), "height", n.Height())
	return n, nil
}

func fill(highlight bool) string {
	if highlight {
		return FillHighlight
	}
	return FillNormal
}
