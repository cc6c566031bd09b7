// Package interact routes pointer drag events to the handlers nodes were
// bound with.
//
// A [Dispatcher] implements [node.DragBinder]: the node factory binds each
// interactive node's group through it, keyed by the group ID. Transport
// layers (the websocket server, tests) then feed it [Event] values.
//
// Each target follows the gesture machine idle -> dragging -> idle. A drag
// event on an idle target starts a gesture implicitly; an end event on an
// idle target is a no-op. The Dispatcher is not safe for concurrent use; its
// owner serializes events.
package interact

import (
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/surface"
)

// Phase is the stage of a drag gesture.
type Phase string

// Drag phases.
const (
	PhaseStart Phase = "start"
	PhaseDrag  Phase = "drag"
	PhaseEnd   Phase = "end"
)

// Event is one pointer event addressed to a group.
type Event struct {
	Phase  Phase   `json:"phase"`
	Target string  `json:"target"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
}

// State is a target's gesture state.
type State int

// Gesture states.
const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

type binding struct {
	group surface.Group
	fn    func(dx, dy float64)
	state State
}

// Dispatcher delivers drag events to bound handlers.
type Dispatcher struct {
	bindings map[string]*binding
	order    []string
}

// NewDispatcher creates a dispatcher with no bindings.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{bindings: make(map[string]*binding)}
}

// OnDrag implements node.DragBinder. Binding the same group ID again
// replaces the handler.
func (d *Dispatcher) OnDrag(g surface.Group, fn func(dx, dy float64)) {
	id := g.ID()
	if _, ok := d.bindings[id]; !ok {
		d.order = append(d.order, id)
	}
	d.bindings[id] = &binding{group: g, fn: fn}
}

// Targets returns the bound group IDs in binding order.
func (d *Dispatcher) Targets() []string {
	return append([]string(nil), d.order...)
}

// State returns the gesture state of target.
func (d *Dispatcher) State(target string) (State, bool) {
	b, ok := d.bindings[target]
	if !ok {
		return Idle, false
	}
	return b.state, true
}

// Dispatch applies ev. It reports whether the event moved its target.
func (d *Dispatcher) Dispatch(ev Event) (bool, error) {
	b, ok := d.bindings[ev.Target]
	if !ok {
		return false, errors.New(errors.ErrCodeNotFound, "no drag target %q", ev.Target)
	}

	switch ev.Phase {
	case PhaseStart:
		b.state = Dragging
		return false, nil
	case PhaseDrag:
		b.state = Dragging
		if ev.DX == 0 && ev.DY == 0 {
			return false, nil
		}
		b.fn(ev.DX, ev.DY)
		return true, nil
	case PhaseEnd:
		b.state = Idle
		return false, nil
	}
	return false, errors.New(errors.ErrCodeInvalidInput, "unknown drag phase %q", ev.Phase)
}
