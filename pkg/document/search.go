package document

import (
	"slices"
	"strings"

	"github.com/matzehuels/nodecanvas/pkg/diagram"
	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// Filter selects instances that contain a node whose label contains Label,
// ignoring case. A non-empty Slice limits the match to the slice of that
// name. Graph and tree nodes match on their nested content too.
type Filter struct {
	Slice string `json:"slice,omitempty" bson:"slice,omitempty"`
	Label string `json:"label" bson:"label" validate:"required"`
}

// Search returns the instances that match every filter, in corpus order.
// Each result is a copy with the matching top-level graph nodes and table
// cells highlighted; string slices match as a whole and are not marked.
func Search(instances []*Document, filters []Filter) ([]*Document, error) {
	if len(filters) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "search needs at least one filter")
	}
	for i, f := range filters {
		if err := validate.Struct(f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, formatValidationError(err), "filters[%d]", i)
		}
	}

	var out []*Document
	for _, doc := range instances {
		if hit, ok := searchDocument(doc, filters); ok {
			out = append(out, hit)
		}
	}
	return out, nil
}

func searchDocument(doc *Document, filters []Filter) (*Document, bool) {
	hit := doc.clone()
	for _, f := range filters {
		needle := strings.ToLower(f.Label)
		matched := false
		for i := range hit.Slices {
			s := &hit.Slices[i]
			if f.Slice != "" && s.Name != f.Slice {
				continue
			}
			if s.mark(needle) {
				matched = true
			}
		}
		if !matched {
			return nil, false
		}
	}
	return hit, true
}

// mark highlights the parts of s matching needle and reports whether any
// did.
func (s *Slice) mark(needle string) bool {
	switch s.Type {
	case TypeString:
		return strings.Contains(strings.ToLower(s.Label), needle)
	case TypeGraph, TypeTree:
		found := false
		for _, n := range s.Graph.Nodes {
			if !nodeMatches(n, needle) {
				continue
			}
			found = true
			if !slices.Contains(s.Highlights, n.ID) {
				s.Highlights = append(s.Highlights, n.ID)
			}
		}
		return found
	case TypeTable:
		found := false
		for _, row := range s.Table.Rows {
			for j := range row {
				if strings.Contains(strings.ToLower(row[j].Label), needle) {
					row[j].Highlight = true
					found = true
				}
			}
		}
		return found
	}
	return false
}

func nodeMatches(n diagram.NodeSpec, needle string) bool {
	if strings.Contains(strings.ToLower(n.DisplayLabel()), needle) {
		return true
	}
	if n.Graph == nil {
		return false
	}
	for _, inner := range n.Graph.Nodes {
		if nodeMatches(inner, needle) {
			return true
		}
	}
	return false
}

// clone copies d deeply enough for mark: highlight lists and table rows are
// fresh, graphs are shared.
func (d *Document) clone() *Document {
	out := &Document{Title: d.Title, Slices: make([]Slice, len(d.Slices))}
	for i, s := range d.Slices {
		s.Highlights = slices.Clone(s.Highlights)
		if s.Table != nil {
			t := *s.Table
			t.Rows = make([][]diagram.CellSpec, len(s.Table.Rows))
			for j, row := range s.Table.Rows {
				t.Rows[j] = slices.Clone(row)
			}
			s.Table = &t
		}
		out.Slices[i] = s
	}
	return out
}
