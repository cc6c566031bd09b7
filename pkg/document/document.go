package document

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/nodecanvas/pkg/diagram"
	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// Slice types.
const (
	TypeString = "string"
	TypeGraph  = "graph"
	TypeTree   = "tree"
	TypeTable  = "table"
)

// Document is a titled sequence of slices, each rendered as one row of the
// canvas.
type Document struct {
	Title  string  `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty" bson:"title,omitempty"`
	Slices []Slice `json:"slices" yaml:"slices" toml:"slices" bson:"slices" validate:"required,min=1,dive"`
}

// Slice is one view of the input: a plain string, a graph, a tree or a
// dependency table.
type Slice struct {
	Name  string         `json:"name" yaml:"name" toml:"name" bson:"name" validate:"required,max=100"`
	Type  string         `json:"type" yaml:"type" toml:"type" bson:"type" validate:"required,oneof=string graph tree table"`
	Label string         `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty" bson:"label,omitempty"`
	Graph *diagram.Graph `json:"graph,omitempty" yaml:"graph,omitempty" toml:"graph,omitempty" bson:"graph,omitempty"`
	Table *diagram.Table `json:"table,omitempty" yaml:"table,omitempty" toml:"table,omitempty" bson:"table,omitempty"`
	// Highlights lists top-level node IDs drawn with the highlight fill.
	Highlights []string `json:"highlights,omitempty" yaml:"highlights,omitempty" toml:"highlights,omitempty" bson:"highlights,omitempty" validate:"dive,required"`
}

// IsDiagram reports whether the slice is a graph or a tree.
func (s Slice) IsDiagram() bool { return s.Type == TypeGraph || s.Type == TypeTree }

// Heading is the title line shown above the slice: the label of a diagram
// or table slice, otherwise the name.
func (s Slice) Heading() string {
	if s.Type != TypeString && s.Label != "" {
		return s.Label
	}
	return s.Name
}

// HighlightedGraph returns the slice graph with the Highlights nodes marked.
// The slice itself is not modified.
func (s Slice) HighlightedGraph() *diagram.Graph {
	g := s.Graph
	if g == nil || len(s.Highlights) == 0 {
		return g
	}
	want := make(map[string]bool, len(s.Highlights))
	for _, id := range s.Highlights {
		want[id] = true
	}
	out := &diagram.Graph{Nodes: make([]diagram.NodeSpec, len(g.Nodes)), Edges: g.Edges}
	for i, n := range g.Nodes {
		if want[n.ID] {
			n.Highlight = true
		}
		out.Nodes[i] = n
	}
	return out
}

// Format is a document serialization format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported document extension %q (use .json, .yaml, .yml or .toml)", filepath.Ext(path))
}

// DetectFormat guesses the format of data without a file name. JSON starts
// with '{'; TOML has a top-level table header or key assignment; anything
// else is read as YAML.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		return FormatJSON
	}
	for _, line := range strings.Split(string(trimmed), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") || strings.Contains(line, " = ") {
			return FormatTOML
		}
		break
	}
	return FormatYAML
}

// Parse decodes and validates a document. Unknown fields are rejected.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	if err := decode(data, format, &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// decode strictly unmarshals data into v.
func decode(data []byte, format Format, v any) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode json")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && err != io.EOF {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode yaml")
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return errors.New(errors.ErrCodeInvalidDocument, "decode toml: unknown field %q", undecoded[0].String())
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported document format %q", format)
	}
	return nil
}

// Read decodes a document from r.
func Read(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(data, format)
}

// Load reads the document at path, choosing the format from its extension.
func Load(path string) (*Document, error) {
	data, format, err := readFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// LoadCorpus reads the document or corpus at path.
func LoadCorpus(path string) ([]*Document, error) {
	data, format, err := readFile(path)
	if err != nil {
		return nil, err
	}
	docs, err := ParseCorpus(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

func readFile(path string) ([]byte, Format, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return data, format, nil
}

// Canonical returns the compact JSON encoding used for hashing and storage.
func (d *Document) Canonical() ([]byte, error) {
	return json.Marshal(d)
}

// Select returns a copy of d restricted to the named slices, in the order
// given. Unknown names are an error.
func (d *Document) Select(names ...string) (*Document, error) {
	if len(names) == 0 {
		return d, nil
	}
	byName := make(map[string]Slice, len(d.Slices))
	for _, s := range d.Slices {
		byName[s.Name] = s
	}
	out := &Document{Title: d.Title}
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "no slice named %q", name)
		}
		out.Slices = append(out.Slices, s)
	}
	return out, nil
}

// Names returns the slice names in order.
func (d *Document) Names() []string {
	names := make([]string, len(d.Slices))
	for i, s := range d.Slices {
		names[i] = s.Name
	}
	return names
}

//go:embed example.json
var exampleJSON []byte

// Example returns the built-in sample document shown when no layout is
// requested.
func Example() *Document {
	doc, err := Parse(exampleJSON, FormatJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded example document: %v", err))
	}
	return doc
}
