// Package render turns a drawing surface into output formats.
//
// # Overview
//
//   - SVG serialization of a [surface.Canvas] (in [svg] subpackage)
//   - Graphviz node-link export of graph inputs (in [nodelink] subpackage)
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	out := svg.Render(canvas)
//	pdf, err := render.ToPDF(out)
//	png, err := render.ToPNG(out, 2.0)  // 2x scale
//
// Install librsvg with brew install librsvg (macOS) or apt install
// librsvg2-bin (Linux).
//
// [surface.Canvas]: github.com/matzehuels/nodecanvas/pkg/surface.Canvas
package render
