package document

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

func TestLoadFormats(t *testing.T) {
	for _, path := range []string{"testdata/small.json", "testdata/small.yaml", "testdata/small.toml"} {
		t.Run(path, func(t *testing.T) {
			doc, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if doc.Title != "Small" {
				t.Errorf("Title = %q, want Small", doc.Title)
			}
			if got := strings.Join(doc.Names(), ","); got != "words,g" {
				t.Errorf("Names = %s, want words,g", got)
			}
			g := doc.Slices[1].Graph
			if g == nil || len(g.Nodes) != 2 || len(g.Edges) != 1 {
				t.Fatalf("graph = %+v", g)
			}
			if g.Nodes[1].Label != "bb" {
				t.Errorf("label = %q, want bb", g.Nodes[1].Label)
			}
			if len(doc.Slices[1].Highlights) != 1 || doc.Slices[1].Highlights[0] != "b" {
				t.Errorf("highlights = %v", doc.Slices[1].Highlights)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.json", FormatJSON, false},
		{"a.YAML", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"dir/a.toml", FormatTOML, false},
		{"a.txt", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		`  {"slices": []}`:               FormatJSON,
		"title = \"x\"\n":                FormatTOML,
		"# comment\n[[slices]]\nname=1":  FormatTOML,
		"title: x\nslices: []\n":         FormatYAML,
		"":                               FormatYAML,
	}
	for in, want := range tests {
		if got := DetectFormat([]byte(in)); got != want {
			t.Errorf("DetectFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		code   errors.Code
	}{
		{"malformed json", `{`, FormatJSON, errors.ErrCodeInvalidDocument},
		{"unknown json field", `{"slices":[{"name":"a","type":"string"}],"extra":1}`, FormatJSON, errors.ErrCodeInvalidDocument},
		{"unknown yaml field", "slices:\n  - name: a\n    type: string\n    colour: red\n", FormatYAML, errors.ErrCodeInvalidDocument},
		{"unknown toml field", "bogus = 1\n[[slices]]\nname = \"a\"\ntype = \"string\"\n", FormatTOML, errors.ErrCodeInvalidDocument},
		{"no slices", `{"slices":[]}`, FormatJSON, errors.ErrCodeInvalidDocument},
		{"missing name", `{"slices":[{"type":"string"}]}`, FormatJSON, errors.ErrCodeInvalidDocument},
		{"bad type", `{"slices":[{"name":"a","type":"chart"}]}`, FormatJSON, errors.ErrCodeInvalidDocument},
		{"duplicate name", `{"slices":[{"name":"a","type":"string"},{"name":"a","type":"string"}]}`, FormatJSON, errors.ErrCodeInvalidDocument},
		{"graph missing", `{"slices":[{"name":"a","type":"graph"}]}`, FormatJSON, errors.ErrCodeInvalidDocument},
		{"string with graph", `{"slices":[{"name":"a","type":"string","graph":{"nodes":[]}}]}`, FormatJSON, errors.ErrCodeInvalidDocument},
		{"unknown edge end", `{"slices":[{"name":"a","type":"graph","graph":{"nodes":[{"id":"x"}],"edges":[{"from":"x","to":"y"}]}}]}`, FormatJSON, errors.ErrCodeInvalidDocument},
		{"table highlights", `{"slices":[{"name":"a","type":"table","table":{"rows":[[{"label":"x"}]]},"highlights":["x"]}]}`, FormatJSON, errors.ErrCodeInvalidDocument},
		{"string highlights", `{"slices":[{"name":"a","type":"string","label":"x","highlights":["x"]}]}`, FormatJSON, errors.ErrCodeInvalidDocument},
		{"unknown highlight", `{"slices":[{"name":"a","type":"tree","graph":{"nodes":[{"id":"x"}]},"highlights":["z"]}]}`, FormatJSON, errors.ErrCodeInvalidDocument},
		{"table out of range", `{"slices":[{"name":"a","type":"table","table":{"rows":[[{"label":"x"}]],"dependencies":[{"row":0,"head":0,"dependent":3}]}}]}`, FormatJSON, errors.ErrCodeInvalidDocument},
		{"unknown format", `{}`, Format("xml"), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %s, want %s (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestValidationMessage(t *testing.T) {
	_, err := Parse([]byte(`{"slices":[{"type":"chart"}]}`), FormatJSON)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"Name is required", "Type must be one of"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestReadAndCanonical(t *testing.T) {
	doc, err := Read(strings.NewReader(`{"slices":[{"name":"a","type":"string","label":"x"}]}`), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	got, err := doc.Canonical()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"slices":[{"name":"a","type":"string","label":"x"}]}`
	if string(got) != want {
		t.Errorf("Canonical() = %s, want %s", got, want)
	}

	again, err := Parse(got, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	got2, _ := again.Canonical()
	if !bytes.Equal(got, got2) {
		t.Errorf("canonical form not stable: %s vs %s", got, got2)
	}
}

func TestSelect(t *testing.T) {
	doc := Example()

	sub, err := doc.Select("dependencies", "sentence")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(sub.Names(), ","); got != "dependencies,sentence" {
		t.Errorf("Select names = %s", got)
	}
	if sub.Title != doc.Title {
		t.Errorf("Select dropped title")
	}

	all, err := doc.Select()
	if err != nil || all != doc {
		t.Errorf("Select() with no names should return the document itself")
	}

	if _, err := doc.Select("nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Select(nope) error = %v, want NOT_FOUND", err)
	}
}

func TestExample(t *testing.T) {
	doc := Example()
	if len(doc.Slices) != 4 {
		t.Fatalf("example has %d slices, want 4", len(doc.Slices))
	}
	types := map[string]bool{}
	for _, s := range doc.Slices {
		types[s.Type] = true
	}
	for _, typ := range []string{TypeString, TypeGraph, TypeTree, TypeTable} {
		if !types[typ] {
			t.Errorf("example lacks a %s slice", typ)
		}
	}
	if !doc.Slices[1].IsDiagram() || doc.Slices[3].IsDiagram() {
		t.Errorf("IsDiagram wrong for example slices")
	}
}
