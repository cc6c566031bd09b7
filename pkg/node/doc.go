// Package node implements the positioned, resizable boxes that every
// nodecanvas diagram is built from.
//
// A [Node] owns a position, a transform group on the drawing surface, a frame
// rectangle, an optional drop shadow, and its [Content]: either a text label
// ([TextContent]) or a complete nested diagram ([NestedContent]). Because a
// nested diagram is itself made of nodes, nesting depth is unbounded and each
// level is the same Node/Content pair.
//
// # Invariants
//
//   - The frame is always exactly as large as the content.
//   - A shadow, when present, is the content size plus [ShadowOversize] on
//     every side and sits at (-ShadowOversize, -ShadowOversize).
//   - The stored position and the group transform change together in
//     [Node.Translate].
//   - Every node gets a dense, never reused ordinal from its [Registry].
//
// # Construction
//
// Nodes are created through a [Factory], which follows one pipeline for both
// flavors: stamp a position with the next ordinal, create the group, build
// the content, draw the frame (and for cells the shadow), bind an optional
// drag handler, then register the node.
//
//	f := node.NewFactory(node.NewRegistry(), builder, logger)
//	n, err := f.Create(canvas.Root(), 10, 20, "hello", node.KindString,
//	    node.WithHighlight(true))
//	if err != nil {
//	    return err
//	}
//	n.SetWidth(100) // frame is 100 wide, label re-centered at x=50
//
// # Attachments
//
// Layout components register the edges they draw with
// [Node.RegisterGraphEdge] and [Node.RegisterDependencyEdge]. The node never
// interprets them; when it moves, the caller walks [Node.Attachments] to
// decide what to redraw.
//
// Nodes and registries are not safe for concurrent use. All mutation must be
// serialized by the owner (see pkg/session).
package node
