package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/nodecanvas/pkg/diagram"
	"github.com/matzehuels/nodecanvas/pkg/node"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the node ID and content type in node labels.
	// When false, only the display label is shown.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Nodes with nested GRAPH or TREE content become clusters; edges touching
// them are clipped at the cluster border.
func ToDOT(g *diagram.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=monospace, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	writeGraph(&buf, g, "", "  ", opts)

	buf.WriteString("}\n")
	return buf.String()
}

func writeGraph(buf *bytes.Buffer, g *diagram.Graph, prefix, indent string, opts Options) {
	if g == nil {
		return
	}
	for _, n := range g.Nodes {
		id := prefix + n.ID
		if isCluster(n) {
			fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+id)
			fmt.Fprintf(buf, "%s  label=%q;\n", indent, fmtLabel(n, opts.Detailed))
			fmt.Fprintf(buf, "%s  style=rounded;\n", indent)
			writeGraph(buf, n.Graph, id+"/", indent+"  ", opts)
			fmt.Fprintf(buf, "%s}\n", indent)
			continue
		}
		fmt.Fprintf(buf, "%s%q [%s];\n", indent, id, strings.Join(fmtAttrs(n, fmtLabel(n, opts.Detailed)), ", "))
	}

	if len(g.Edges) > 0 {
		buf.WriteString("\n")
	}
	byID := make(map[string]diagram.NodeSpec, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	for _, e := range g.Edges {
		from, fromCluster := endpoint(byID[e.From], prefix)
		to, toCluster := endpoint(byID[e.To], prefix)
		var attrs []string
		if e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
		}
		if fromCluster != "" {
			attrs = append(attrs, fmt.Sprintf("ltail=%q", fromCluster))
		}
		if toCluster != "" {
			attrs = append(attrs, fmt.Sprintf("lhead=%q", toCluster))
		}
		if len(attrs) > 0 {
			fmt.Fprintf(buf, "%s%q -> %q [%s];\n", indent, from, to, strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(buf, "%s%q -> %q;\n", indent, from, to)
		}
	}
}

func isCluster(n diagram.NodeSpec) bool {
	kind, err := n.Kind()
	return err == nil && kind != node.KindString && n.Graph != nil && len(n.Graph.Nodes) > 0
}

// endpoint returns the DOT node an edge should attach to and, for clusters,
// the cluster name to clip at.
func endpoint(n diagram.NodeSpec, prefix string) (id, cluster string) {
	id = prefix + n.ID
	if !isCluster(n) {
		return id, ""
	}
	inner, _ := endpoint(n.Graph.Nodes[0], id+"/")
	return inner, "cluster_" + id
}

func fmtLabel(n diagram.NodeSpec, detailed bool) string {
	if !detailed {
		return n.DisplayLabel()
	}
	kind, _ := n.Kind()
	return fmt.Sprintf("%s\nid: %s\ntype: %s", n.DisplayLabel(), n.ID, kind)
}

func fmtAttrs(n diagram.NodeSpec, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Highlight {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", node.FillHighlight))
	}
	if n.Bold {
		attrs = append(attrs, "penwidth=2")
	}
	if n.Color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", n.Color))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// PNG and PDF are converted from this SVG by the render package.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
