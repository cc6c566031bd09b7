// Package svg serializes a drawing surface as an SVG document.
//
// The scene is written as nested groups, one per [surface.Group], so group
// IDs survive serialization and a browser client can address nodes by the
// same IDs the drag dispatcher uses. Filters defined on the canvas are
// emitted in a defs block.
package svg

import (
	"bytes"
	"fmt"
	"strings"

	svgo "github.com/ajstarks/svgo/float"

	"github.com/matzehuels/nodecanvas/pkg/surface"
)

const defaultCSS = `
    text { font-family: "DejaVu Sans Mono", monospace; font-size: 11px; fill: black; }
    .edge, .dependency { fill: none; }
    .edge-label, .dependency-label { font-size: 9px; fill: #555; }
    .slice-title { font-size: 14px; font-weight: bold; }`

// Option configures Render.
type Option func(*renderer)

type renderer struct {
	padding  float64
	minWidth float64
}

// WithPadding sets the space around the scene bounds.
func WithPadding(p float64) Option { return func(r *renderer) { r.padding = p } }

// WithMinWidth widens the document to at least w.
func WithMinWidth(w float64) Option { return func(r *renderer) { r.minWidth = w } }

// Render writes c as a standalone SVG document.
func Render(c *surface.Canvas, opts ...Option) []byte {
	r := renderer{padding: 10}
	for _, opt := range opts {
		opt(&r)
	}

	b := c.Bounds()
	width := max(b.W+2*r.padding, r.minWidth)
	height := b.H + 2*r.padding

	var buf bytes.Buffer
	canvas := svgo.New(&buf)
	canvas.Start(width, height,
		fmt.Sprintf(`viewBox="%s %s %s %s"`, num(b.X-r.padding), num(b.Y-r.padding), num(width), num(height)))

	canvas.Def()
	for _, f := range c.Filters() {
		writeFilter(canvas, f)
	}
	canvas.DefEnd()
	fmt.Fprintf(canvas.Writer, "<style>%s\n</style>\n", defaultCSS)

	for _, e := range c.Root().Children() {
		writeElement(canvas, e)
	}

	canvas.End()
	return buf.Bytes()
}

func writeElement(canvas *svgo.SVG, e surface.Element) {
	switch v := e.(type) {
	case surface.Group:
		writeGroup(canvas, v)
	case surface.Rect:
		writeRect(canvas, v)
	case surface.Text:
		writeText(canvas, v)
	case surface.Path:
		writePath(canvas, v)
	}
}

func writeGroup(canvas *svgo.SVG, g surface.Group) {
	x, y := g.Offset()
	attrs := []string{fmt.Sprintf(`transform="translate(%s,%s)"`, num(x), num(y))}
	if g.ID() != "" {
		attrs = append(attrs, attr("id", g.ID()))
	}
	if g.Class() != "" {
		attrs = append(attrs, attr("class", g.Class()))
	}
	canvas.Group(attrs...)
	for _, child := range g.Children() {
		writeElement(canvas, child)
	}
	canvas.Gend()
}

func writeRect(canvas *svgo.SVG, r surface.Rect) {
	b := r.Bounds()
	attrs := []string{
		attr("fill", r.Fill()),
		attr("stroke", r.Stroke()),
		attr("stroke-width", num(r.StrokeWidth())),
	}
	if rx, ry := r.Radius(); rx > 0 || ry > 0 {
		attrs = append(attrs, attr("rx", num(rx)), attr("ry", num(ry)))
	}
	if f := r.Filter(); f != "" {
		attrs = append(attrs, attr("filter", "url(#"+f+")"))
	}
	if r.Class() != "" {
		attrs = append(attrs, attr("class", r.Class()))
	}
	canvas.Rect(b.X, b.Y, b.W, b.H, attrs...)
}

func writeText(canvas *svgo.SVG, t surface.Text) {
	attrs := []string{attr("text-anchor", string(t.Anchor()))}
	if t.Baseline() != "" {
		attrs = append(attrs, attr("dy", t.Baseline()))
	}
	if !t.PointerEvents() {
		attrs = append(attrs, attr("pointer-events", "none"))
	}
	if t.Class() != "" {
		attrs = append(attrs, attr("class", t.Class()))
	}
	canvas.Text(t.X(), t.Y(), t.Label(), attrs...)
}

func writePath(canvas *svgo.SVG, p surface.Path) {
	pts := p.Points()
	if len(pts) < 2 {
		return
	}
	attrs := []string{
		attr("fill", "none"),
		attr("stroke", p.Stroke()),
		attr("stroke-width", num(p.StrokeWidth())),
	}
	if p.Class() != "" {
		attrs = append(attrs, attr("class", p.Class()))
	}
	canvas.Path(pathData(pts, p.Curved()), attrs...)

	if p.Label() != "" {
		mid := labelPoint(pts)
		canvas.Text(mid.X, mid.Y, p.Label(),
			attr("text-anchor", "middle"), attr("dy", "-.3em"), attr("class", p.Class()+"-label"))
	}
}

// pathData builds the d attribute. A curved path with three points is a
// quadratic curve through the middle point; otherwise points are joined by
// straight segments.
func pathData(pts []surface.Point, curved bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "M%s,%s", num(pts[0].X), num(pts[0].Y))
	if curved && len(pts) == 3 {
		c := control(pts[0], pts[1], pts[2])
		fmt.Fprintf(&sb, " Q%s,%s %s,%s", num(c.X), num(c.Y), num(pts[2].X), num(pts[2].Y))
		return sb.String()
	}
	for _, p := range pts[1:] {
		fmt.Fprintf(&sb, " L%s,%s", num(p.X), num(p.Y))
	}
	return sb.String()
}

// control returns the quadratic control point that makes the curve pass
// through mid at t=0.5.
func control(start, mid, end surface.Point) surface.Point {
	return surface.Point{
		X: 2*mid.X - (start.X+end.X)/2,
		Y: 2*mid.Y - (start.Y+end.Y)/2,
	}
}

func labelPoint(pts []surface.Point) surface.Point {
	if len(pts)%2 == 1 {
		return pts[len(pts)/2]
	}
	a, b := pts[len(pts)/2-1], pts[len(pts)/2]
	return surface.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func writeFilter(canvas *svgo.SVG, f surface.Filter) {
	m := f.Margin
	fmt.Fprintf(canvas.Writer,
		`<filter id="%s" x="%s" y="%s" width="%s" height="%s" filterUnits="userSpaceOnUse">`+"\n",
		f.ID, num(-m), num(-m), "100%", "100%")
	if f.Inset {
		fmt.Fprintf(canvas.Writer, `<feFlood flood-color="%s" result="flood"/>`+"\n", f.Color)
		fmt.Fprintln(canvas.Writer, `<feComposite in="flood" in2="SourceAlpha" operator="out" result="outside"/>`)
		fmt.Fprintf(canvas.Writer, `<feGaussianBlur in="outside" stdDeviation="%s" result="blur"/>`+"\n", num(f.Blur))
		fmt.Fprintln(canvas.Writer, `<feComposite in="blur" in2="SourceGraphic" operator="atop"/>`)
	} else {
		fmt.Fprintf(canvas.Writer, `<feGaussianBlur in="SourceGraphic" stdDeviation="%s"/>`+"\n", num(f.Blur))
	}
	fmt.Fprintln(canvas.Writer, `</filter>`)
}

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, escape(value))
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

func escape(s string) string { return attrEscaper.Replace(s) }

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
