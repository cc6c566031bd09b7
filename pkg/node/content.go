package node

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/surface"
)

// Sizing constants for text content.
const (
	// CharWidth is the estimated width of one label character.
	CharWidth = 6.5
	// TextPadding is the horizontal padding added around a label.
	TextPadding = 22.0
	// TextHeight is the fixed height of text content.
	TextHeight = 30.0
	// GraphLabelMargin is the label margin passed to nested diagram builders.
	GraphLabelMargin = 20.0
)

// Kind is the content-type tag attached to node data.
type Kind string

// Content kinds.
const (
	KindString Kind = "STRING"
	KindGraph  Kind = "GRAPH"
	KindTree   Kind = "TREE"
)

// ParseKind converts a tag such as "string" or "GRAPH" into a Kind.
func ParseKind(tag string) (Kind, error) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(tag))); k {
	case KindString, KindGraph, KindTree:
		return k, nil
	}
	return "", errors.New(errors.ErrCodeUnsupportedContentType, "unsupported content type %q", tag)
}

// HypotheticalWidth returns the width a text node with the given label would
// have. It lets callers plan a layout before any node exists. Length is
// counted in characters, not bytes.
func HypotheticalWidth(label string) float64 {
	return float64(utf8.RuneCountInString(label))*CharWidth + TextPadding
}

// Content is the interior of a node.
type Content interface {
	Width() float64
	Height() float64
	// Recenter adapts the content to an externally imposed width.
	// The reported height never changes.
	Recenter(width float64)

	content()
}

// Sized is anything that reports a width and height. Diagram builders return
// one for nested content.
type Sized interface {
	Width() float64
	Height() float64
}

// DiagramBuilder builds a nested diagram inside parent, anchored at the
// group's local origin. tree selects tree layout instead of general graph
// layout; labelMargin pads the diagram's content.
type DiagramBuilder interface {
	BuildDiagram(spec any, parent surface.Group, tree bool, labelMargin float64) (Sized, error)
}

// =============================================================================
// TextContent
// =============================================================================

// TextContent is a single centered label.
type TextContent struct {
	text   surface.Text
	width  float64
	height float64
}

// newTextContent sizes the label before drawing it, then places the text
// primitive at the center of that box.
func newTextContent(label string, parent surface.Group, class string) *TextContent {
	w := HypotheticalWidth(label)
	h := TextHeight

	t := parent.AddText(label, class)
	t.SetAnchor(surface.AnchorMiddle)
	t.SetPos(w/2, h/2)
	t.SetBaseline(".3em")
	t.SetPointerEvents(false)

	return &TextContent{text: t, width: w, height: h}
}

func (c *TextContent) Width() float64  { return c.width }
func (c *TextContent) Height() float64 { return c.height }

// Recenter moves the label to the middle of the new width.
func (c *TextContent) Recenter(width float64) {
	c.width = width
	c.text.SetX(width / 2)
}

// Label returns the rendered label.
func (c *TextContent) Label() string { return c.text.Label() }

// Text returns the text primitive.
func (c *TextContent) Text() surface.Text { return c.text }

func (*TextContent) content() {}

// =============================================================================
// NestedContent
// =============================================================================

// NestedContent wraps a diagram drawn inside the node's group.
type NestedContent struct {
	diagram Sized
	group   surface.Group
	natural float64
	width   float64
	height  float64
}

func newNestedContent(spec any, tree bool, parent surface.Group, class string, b DiagramBuilder) (*NestedContent, error) {
	if b == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "nested content requires a diagram builder")
	}
	g := parent.AddGroup(0, 0, class)
	d, err := b.BuildDiagram(spec, g, tree, GraphLabelMargin)
	if err != nil {
		return nil, err
	}
	return &NestedContent{
		diagram: d,
		group:   g,
		natural: d.Width(),
		width:   d.Width(),
		height:  d.Height(),
	}, nil
}

func (c *NestedContent) Width() float64  { return c.width }
func (c *NestedContent) Height() float64 { return c.height }

// Recenter keeps the diagram horizontally centered inside the wider frame.
func (c *NestedContent) Recenter(width float64) {
	c.width = width
	_, y := c.group.Offset()
	c.group.Translate((width-c.natural)/2, y)
}

// Diagram returns the nested diagram as reported by the builder.
func (c *NestedContent) Diagram() Sized { return c.diagram }

func (*NestedContent) content() {}

// =============================================================================
// Construction
// =============================================================================

// newContent builds the content for (data, kind) inside parent.
// STRING accepts a string, a *string or nil; GRAPH and TREE hand data to the
// diagram builder unchanged.
func newContent(data any, kind Kind, parent surface.Group, class string, b DiagramBuilder) (Content, error) {
	switch kind {
	case KindString:
		label, err := labelOf(data)
		if err != nil {
			return nil, err
		}
		return newTextContent(label, parent, class), nil
	case KindGraph:
		return newNestedContent(data, false, parent, class, b)
	case KindTree:
		return newNestedContent(data, true, parent, class, b)
	}
	return nil, errors.New(errors.ErrCodeUnsupportedContentType, "unsupported content type %q", kind)
}

func labelOf(data any) (string, error) {
	switch v := data.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case *string:
		if v == nil {
			return "", nil
		}
		return *v, nil
	}
	return "", errors.New(errors.ErrCodeUnsupportedContentType, "STRING content requires a string label, got %T", data)
}
