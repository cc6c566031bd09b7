// Package nodelink exports graph inputs as traditional node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// nodes appear as boxes connected by arrows. It is an alternative to the
// layered canvas rendering when a reader wants Graphviz's own layout, or
// wants the DOT source to edit by hand.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(dot)
//
// For PDF or PNG output, convert the SVG with the render package:
//
//	pdf, err := render.ToPDF(svg)
//
// # Nested Content
//
// A node whose content is a nested GRAPH or TREE becomes a cluster
// subgraph. Inner node IDs are prefixed with the cluster's path
// ("outer/inner") so IDs stay unique at every depth.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
