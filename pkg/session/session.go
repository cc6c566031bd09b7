// Package session is the composition root of an interactive canvas.
//
// A [Session] owns everything one rendered document needs: the drawing
// surface, the node registry, the factory and builder that populate it, and
// the drag dispatcher. Slices of the document are stacked top to bottom,
// each under a title line.
//
// Node and registry types take no locks. A Session serializes every external
// entry point (drag events, snapshots, SVG renders) behind one mutex, so
// events for a session are applied one at a time in arrival order.
package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecanvas/pkg/diagram"
	"github.com/matzehuels/nodecanvas/pkg/document"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/interact"
	"github.com/matzehuels/nodecanvas/pkg/node"
	"github.com/matzehuels/nodecanvas/pkg/observability"
	"github.com/matzehuels/nodecanvas/pkg/render/svg"
	"github.com/matzehuels/nodecanvas/pkg/surface"
)

// Canvas spacing.
const (
	Margin        = 20.0 // Space left of and above the first slice
	TitleHeight   = 24.0 // Height reserved for a slice title
	SliceGap      = 40.0 // Vertical gap between slices
	DiagramMargin = 10.0 // Padding around top-level graph and tree slices
)

// Options configures a Session.
type Options struct {
	// LayoutID identifies the stored document, if any. It is only reported.
	LayoutID string
	Logger   *log.Logger
}

// Session is one laid-out document with its interactive state.
type Session struct {
	mu sync.Mutex

	id         string
	doc        *document.Document
	canvas     *surface.Canvas
	registry   *node.Registry
	factory    *node.Factory
	builder    *diagram.Builder
	dispatcher *interact.Dispatcher
	slices     []*Slice
	width      float64
	height     float64
	logger     *log.Logger
}

// Slice is one laid-out document slice. Exactly one of Node, Diagram and
// Table is set, depending on Type.
type Slice struct {
	Name    string
	Type    string
	Group   surface.Group
	Node    *node.Node
	Diagram *diagram.Diagram
	Table   *diagram.TableDiagram
	Width   float64
	Height  float64
}

// New lays doc out on a fresh canvas.
func New(ctx context.Context, doc *document.Document, opts Options) (*Session, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Session{
		id:         opts.LayoutID,
		doc:        doc,
		canvas:     surface.NewCanvas(),
		registry:   node.NewRegistry(),
		dispatcher: interact.NewDispatcher(),
		logger:     logger,
	}
	s.factory = node.NewFactory(s.registry, nil, logger)
	s.builder = diagram.NewBuilder(s.factory, s.dispatcher, logger)

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(doc.Slices))
	err := s.layout()
	observability.Pipeline().OnLayoutComplete(ctx, s.registry.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	logger.Debug("session laid out", "layout", s.id, "slices", len(s.slices),
		"nodes", s.registry.Len(), "width", s.width, "height", s.height)
	return s, nil
}

func (s *Session) layout() error {
	root := s.canvas.Root()
	y := Margin
	for i, spec := range s.doc.Slices {
		title := root.AddText(spec.Heading(), "slice-title")
		title.SetPos(Margin, y+TitleHeight/2)
		title.SetBaseline(".3em")
		y += TitleHeight

		g := root.AddGroup(Margin, y, "slice slice-"+spec.Type)
		g.SetID("slice-" + strconv.Itoa(i))

		sl, err := s.buildSlice(g, spec)
		if err != nil {
			return fmt.Errorf("slice %q: %w", spec.Name, err)
		}
		s.slices = append(s.slices, sl)
		s.width = max(s.width, Margin+sl.Width)
		y += sl.Height + SliceGap
	}
	s.height = y - SliceGap + Margin
	s.width += Margin
	return nil
}

func (s *Session) buildSlice(g surface.Group, spec document.Slice) (*Slice, error) {
	sl := &Slice{Name: spec.Name, Type: spec.Type, Group: g}
	switch spec.Type {
	case document.TypeString:
		n, err := s.factory.Create(g, 0, 0, spec.Label, node.KindString, node.WithDrag(s.dispatcher, nil))
		if err != nil {
			return nil, err
		}
		sl.Node, sl.Width, sl.Height = n, n.Width(), n.Height()
	case document.TypeGraph, document.TypeTree:
		d, err := s.builder.Build(g, spec.HighlightedGraph(), spec.Type == document.TypeTree, DiagramMargin)
		if err != nil {
			return nil, err
		}
		sl.Diagram, sl.Width, sl.Height = d, d.Width(), d.Height()
	case document.TypeTable:
		t, err := s.builder.BuildTable(g, spec.Table)
		if err != nil {
			return nil, err
		}
		sl.Table, sl.Width, sl.Height = t, t.Width(), t.Height()
	default:
		return nil, errors.New(errors.ErrCodeInvalidDocument, "unknown slice type %q", spec.Type)
	}
	return sl, nil
}

// ID returns the layout ID given in Options.
func (s *Session) ID() string { return s.id }

// Document returns the document the session was built from.
func (s *Session) Document() *document.Document { return s.doc }

// Slices returns the laid-out slices in document order.
func (s *Session) Slices() []*Slice {
	return append([]*Slice(nil), s.slices...)
}

// Size returns the canvas extent including margins.
func (s *Session) Size() (width, height float64) { return s.width, s.height }

// Len returns the number of nodes on the canvas.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Len()
}

// Node returns the node with the given ordinal.
func (s *Session) Node(ordinal int) (*node.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.At(ordinal)
}

// Canvas returns the drawing surface. Callers must not mutate it while the
// session is serving events.
func (s *Session) Canvas() *surface.Canvas { return s.canvas }

// SVG renders the current state of the canvas.
func (s *Session) SVG(opts ...svg.Option) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return svg.Render(s.canvas, opts...)
}

// Apply dispatches one drag event. When the event moved a node, the update
// carries that node and every edge attached to it.
func (s *Session) Apply(ctx context.Context, ev interact.Event) (*Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved, err := s.dispatcher.Dispatch(ev)
	observability.Drag().OnDrag(ctx, string(ev.Phase), moved, err)
	if err != nil {
		return nil, err
	}
	u := &Update{Phase: ev.Phase, Target: ev.Target}
	if !moved {
		return u, nil
	}

	n, err := s.target(ev.Target)
	if err != nil {
		return nil, err
	}
	u.Nodes = []NodeState{nodeState(n)}
	for _, a := range n.Attachments() {
		u.Edges = append(u.Edges, edgeState(a.EdgePath()))
	}
	s.logger.Debug("drag applied", "target", ev.Target, "x", n.X(), "y", n.Y(), "edges", len(u.Edges))
	return u, nil
}

func (s *Session) target(id string) (*node.Node, error) {
	rest, ok := strings.CutPrefix(id, node.GroupIDPrefix)
	if ok {
		if ordinal, err := strconv.Atoi(rest); err == nil {
			if n, ok := s.registry.At(ordinal); ok {
				return n, nil
			}
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no node for drag target %q", id)
}
