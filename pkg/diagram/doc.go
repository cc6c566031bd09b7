// Package diagram lays out graphs, trees and dependency tables as nodes on a
// drawing surface.
//
// # Graphs and Trees
//
// [Builder.Build] creates one node per [NodeSpec] through a [node.Factory],
// assigns layers and places each layer left to right, centered on the widest
// layer:
//
//   - Graph layout uses the longest path from the sources. Cycles are broken
//     by a depth-first search in input order before layering; the dropped back
//     edges are still drawn.
//   - Tree layout uses the breadth-first depth from the roots.
//
// Edges run from the bottom center of the source to the top center of the
// target. Each edge is registered on both endpoint nodes as a
// [node.GraphEdge] whose Position is the [End] the node sits on.
//
// Because [Builder] implements [node.DiagramBuilder], a node of type GRAPH or
// TREE holds a nested diagram built by the same builder, to any depth.
//
// # Tables
//
// [Builder.BuildTable] draws rows of cells created with
// [node.Factory.CreateCell]. Columns are widened to their widest cell with
// [node.Node.SetWidth], and each dependency is an arc above its row,
// registered on the head (outgoing) and on the dependent.
//
// # Dragging
//
// When [Builder.Binder] is set, every graph node is bound for drag. The
// handler moves the node by the delta and calls [Diagram.Refresh], which
// re-routes the edges the diagram registered on it.
package diagram
