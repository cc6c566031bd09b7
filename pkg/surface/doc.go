// Package surface provides the retained 2-D drawing surface that diagrams are
// built on.
//
// A [Canvas] is an in-memory scene: a root [Group] holding nested groups,
// rectangles, text labels and edge paths. Every primitive stays mutable after
// creation, so a node can be moved or resized long after it was drawn and the
// next render reflects the change. Renderers (see pkg/render/svg) walk the
// scene with [Group.Children] and a type switch over [Group], [Rect], [Text]
// and [Path].
//
// # Coordinates
//
// Each group carries a translation relative to its parent. Primitive
// coordinates are local to their group, so moving a group moves everything
// inside it, including nested diagrams.
//
// # Z-order
//
// Children are painted in insertion order. [Rect.Lower] moves a rectangle to
// the first position of its group so it is painted behind its siblings; this
// is how frames end up behind labels even though the label is created first.
//
// # Concurrency
//
// A Canvas is not safe for concurrent use. Callers serialize all mutation
// onto one goroutine or behind one lock (see pkg/session).
package surface
