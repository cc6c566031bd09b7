package diagram

import (
	"fmt"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/node"
)

// =============================================================================
// Graph - Node-Link Diagram Input
// =============================================================================

// Graph describes a graph or tree diagram. Node order is significant: it
// decides placement within a layer and which edge of a cycle is treated as the
// back edge.
type Graph struct {
	Nodes []NodeSpec `json:"nodes" yaml:"nodes" toml:"nodes" bson:"nodes" validate:"dive"`
	Edges []EdgeSpec `json:"edges,omitempty" yaml:"edges,omitempty" toml:"edges,omitempty" bson:"edges,omitempty" validate:"dive"`
}

// NodeSpec describes one node. Type selects the content: STRING (default)
// renders Label, GRAPH and TREE render the nested Graph.
type NodeSpec struct {
	ID        string `json:"id" yaml:"id" toml:"id" bson:"id" validate:"required"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty" bson:"label,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty" bson:"type,omitempty"`
	Graph     *Graph `json:"graph,omitempty" yaml:"graph,omitempty" toml:"graph,omitempty" bson:"graph,omitempty"`
	Bold      bool   `json:"bold,omitempty" yaml:"bold,omitempty" toml:"bold,omitempty" bson:"bold,omitempty"`
	Highlight bool   `json:"highlight,omitempty" yaml:"highlight,omitempty" toml:"highlight,omitempty" bson:"highlight,omitempty"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty" bson:"color,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n NodeSpec) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Kind returns the content kind. An empty type means STRING.
func (n NodeSpec) Kind() (node.Kind, error) {
	if n.Type == "" {
		return node.KindString, nil
	}
	return node.ParseKind(n.Type)
}

// EdgeSpec is a directed, optionally labeled edge between two node IDs.
type EdgeSpec struct {
	From  string `json:"from" yaml:"from" toml:"from" bson:"from" validate:"required"`
	To    string `json:"to" yaml:"to" toml:"to" bson:"to" validate:"required"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty" bson:"label,omitempty"`
}

// Validate checks the graph and every nested graph. Builders call it before
// creating any node, so an invalid spec leaves the canvas untouched.
func (g *Graph) Validate() error {
	return g.validate("graph")
}

func (g *Graph) validate(path string) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s: missing graph", path)
	}
	ids := make(map[string]struct{}, len(g.Nodes))
	for i, n := range g.Nodes {
		at := fmt.Sprintf("%s.nodes[%d]", path, i)
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "%s: missing id", at)
		}
		if _, dup := ids[n.ID]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "%s: duplicate id %q", at, n.ID)
		}
		ids[n.ID] = struct{}{}

		kind, err := n.Kind()
		if err != nil {
			return fmt.Errorf("%s: %w", at, err)
		}
		if err := errors.ValidateColor(n.Color); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", at)
		}
		if kind != node.KindString {
			if err := n.Graph.validate(at + ".graph"); err != nil {
				return err
			}
		}
	}
	for i, e := range g.Edges {
		at := fmt.Sprintf("%s.edges[%d]", path, i)
		if _, ok := ids[e.From]; !ok {
			return errors.New(errors.ErrCodeInvalidInput, "%s: unknown node %q", at, e.From)
		}
		if _, ok := ids[e.To]; !ok {
			return errors.New(errors.ErrCodeInvalidInput, "%s: unknown node %q", at, e.To)
		}
	}
	return nil
}

// =============================================================================
// Table - Dependency Table Input
// =============================================================================

// Table describes rows of cells with labeled dependency arcs between cells
// of the same row.
type Table struct {
	Rows         [][]CellSpec     `json:"rows" yaml:"rows" toml:"rows" bson:"rows"`
	Dependencies []DependencySpec `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies,omitempty" bson:"dependencies,omitempty" validate:"dive"`
}

// CellSpec is one table cell.
type CellSpec struct {
	Label     string `json:"label" yaml:"label" toml:"label" bson:"label"`
	Highlight bool   `json:"highlight,omitempty" yaml:"highlight,omitempty" toml:"highlight,omitempty" bson:"highlight,omitempty"`
	Bold      bool   `json:"bold,omitempty" yaml:"bold,omitempty" toml:"bold,omitempty" bson:"bold,omitempty"`
}

// DependencySpec is an arc from the head cell to the dependent cell of a row.
// Head and Dependent are column indices.
type DependencySpec struct {
	Row       int    `json:"row" yaml:"row" toml:"row" bson:"row" validate:"min=0"`
	Head      int    `json:"head" yaml:"head" toml:"head" bson:"head" validate:"min=0"`
	Dependent int    `json:"dependent" yaml:"dependent" toml:"dependent" bson:"dependent" validate:"min=0"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty" bson:"label,omitempty"`
}

// Validate checks that every dependency addresses existing cells.
func (t *Table) Validate() error {
	if t == nil {
		return errors.New(errors.ErrCodeInvalidInput, "table: missing table")
	}
	for i, d := range t.Dependencies {
		if d.Row < 0 || d.Row >= len(t.Rows) {
			return errors.New(errors.ErrCodeInvalidInput, "table.dependencies[%d]: row %d out of range", i, d.Row)
		}
		n := len(t.Rows[d.Row])
		if d.Head < 0 || d.Head >= n || d.Dependent < 0 || d.Dependent >= n {
			return errors.New(errors.ErrCodeInvalidInput, "table.dependencies[%d]: cell out of range in row %d", i, d.Row)
		}
	}
	return nil
}
