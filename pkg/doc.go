// Package pkg is the library half of nodecanvas: a node model for nested
// diagrams, a retained drawing surface, and the layers that render, store and
// serve them.
//
// # Architecture
//
// Packages build on each other bottom-up:
//
//  1. [surface] - Retained scene of groups, rects, texts and paths
//  2. [node] - Nodes with STRING, GRAPH or TREE content, created by a Factory
//  3. [diagram] - Layered graph/tree layout and dependency tables of nodes
//  4. [interact] - Drag gestures dispatched to nodes by group ID
//  5. [document] - Input documents (JSON, YAML, TOML) made of slices
//  6. [session] - One laid-out document with its canvas, registry and drags
//  7. [pipeline] - Sessions rendered to artifacts through a [cache]
//  8. [store] - Uploaded documents kept by layout ID (file or MongoDB)
//
// Rendering lives under [render]: [render/svg] serializes a canvas and
// [render/nodelink] exports graph slices to Graphviz. PNG and PDF are
// converted from SVG with rsvg-convert.
//
// # Quick Start
//
//	doc, err := document.Load("sentence.yaml")
//	if err != nil {
//	    return err
//	}
//	s, err := session.New(ctx, doc, session.Options{})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("sentence.svg", s.SVG(), 0644)
//
// # Cross-cutting Packages
//
// [errors] carries error codes that the server maps to HTTP statuses.
// [observability] holds hooks for layout, render, cache and drag events;
// the server installs Prometheus collectors there. [buildinfo] records the
// version set at build time.
//
// [surface]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/surface
// [node]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/node
// [diagram]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/diagram
// [interact]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/interact
// [document]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/document
// [session]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/session
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/store
// [render]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/render
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/render/svg
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/buildinfo
package pkg
