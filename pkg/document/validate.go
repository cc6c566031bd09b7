package document

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

var validate = validator.New()

// Validate checks struct constraints first, then the references inside each
// slice: graph edges and highlights must name existing nodes and table
// dependencies must address existing cells.
func (d *Document) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidDocument, "document is empty")
	}
	if err := validate.Struct(d); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDocument, formatValidationError(err), "invalid document")
	}

	names := make(map[string]struct{}, len(d.Slices))
	for i, s := range d.Slices {
		if _, dup := names[s.Name]; dup {
			return errors.New(errors.ErrCodeInvalidDocument, "slices[%d]: duplicate name %q", i, s.Name)
		}
		names[s.Name] = struct{}{}

		if err := s.validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "slice %q", s.Name)
		}
	}
	return nil
}

func (s Slice) validate() error {
	switch s.Type {
	case TypeString:
		if s.Graph != nil || s.Table != nil {
			return fmt.Errorf("string slice cannot carry a graph or table")
		}
	case TypeGraph, TypeTree:
		if s.Graph == nil {
			return fmt.Errorf("%s slice requires a graph", s.Type)
		}
		if err := s.Graph.Validate(); err != nil {
			return err
		}
		ids := make(map[string]struct{}, len(s.Graph.Nodes))
		for _, n := range s.Graph.Nodes {
			ids[n.ID] = struct{}{}
		}
		for _, h := range s.Highlights {
			if _, ok := ids[h]; !ok {
				return fmt.Errorf("highlight %q is not a node", h)
			}
		}
		return nil
	case TypeTable:
		if s.Table == nil {
			return fmt.Errorf("table slice requires a table")
		}
		if len(s.Highlights) > 0 {
			return errHighlights
		}
		return s.Table.Validate()
	}
	if len(s.Highlights) > 0 {
		return errHighlights
	}
	return nil
}

var errHighlights = fmt.Errorf("highlights need a graph or tree slice; mark table cells with highlight instead")

// formatValidationError turns validator field errors into one readable error.
func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
