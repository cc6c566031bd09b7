package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/nodecanvas/pkg/diagram"
	"github.com/matzehuels/nodecanvas/pkg/document"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/node"
	"github.com/matzehuels/nodecanvas/pkg/render"
	"github.com/matzehuels/nodecanvas/pkg/render/nodelink"
	"github.com/matzehuels/nodecanvas/pkg/render/svg"
	"github.com/matzehuels/nodecanvas/pkg/session"
)

// Render serializes s in each requested format. opts must already be
// validated.
func Render(ctx context.Context, s *session.Session, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var svgData []byte
	svgOnce := func() []byte {
		if svgData == nil {
			svgData = s.SVG(svg.WithMinWidth(opts.MinWidth))
		}
		return svgData
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svgOnce()
		case FormatPNG:
			data, err = render.ToPNGContext(ctx, svgOnce(), opts.Scale)
		case FormatPDF:
			data, err = render.ToPDFContext(ctx, svgOnce())
		case FormatJSON:
			data, err = json.MarshalIndent(s.Snapshot(), "", "  ")
		case FormatDOT, FormatNodelink:
			g := DocumentGraph(s.Document())
			if len(g.Nodes) == 0 {
				return nil, errors.New(errors.ErrCodeUnsupported, "%s output needs a string, graph or tree slice; tables have no node-link form", format)
			}
			dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed})
			if format == FormatDOT {
				data = []byte(dot)
			} else {
				data, err = nodelink.RenderSVG(dot)
			}
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// DocumentGraph folds the document into one graph for node-link export.
// Graph and tree slices become nested nodes, string slices plain nodes.
// Table slices have no node-link form and are skipped.
func DocumentGraph(doc *document.Document) *diagram.Graph {
	g := &diagram.Graph{}
	for _, s := range doc.Slices {
		spec := diagram.NodeSpec{ID: s.Name, Label: s.Heading()}
		switch s.Type {
		case document.TypeString:
			spec.Label = s.Label
		case document.TypeGraph:
			spec.Type = string(node.KindGraph)
			spec.Graph = s.HighlightedGraph()
		case document.TypeTree:
			spec.Type = string(node.KindTree)
			spec.Graph = s.HighlightedGraph()
		default:
			continue
		}
		g.Nodes = append(g.Nodes, spec)
	}
	return g
}
