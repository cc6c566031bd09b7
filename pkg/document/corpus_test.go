package document

import (
	"strings"
	"testing"

	"github.com/matzehuels/nodecanvas/pkg/diagram"
	"github.com/matzehuels/nodecanvas/pkg/errors"
)

func TestParseCorpus(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		want   []string
	}{
		{
			"json corpus",
			`{"instances":[{"slices":[{"name":"s","type":"string","label":"one"}]},{"slices":[{"name":"s","type":"string","label":"two"}]}]}`,
			FormatJSON, []string{"one", "two"},
		},
		{
			"yaml corpus",
			"instances:\n  - slices:\n      - name: s\n        type: string\n        label: one\n",
			FormatYAML, []string{"one"},
		},
		{
			"toml corpus",
			"[[instances]]\n[[instances.slices]]\nname = \"s\"\ntype = \"string\"\nlabel = \"one\"\n\n[[instances]]\n[[instances.slices]]\nname = \"s\"\ntype = \"string\"\nlabel = \"two\"\n",
			FormatTOML, []string{"one", "two"},
		},
		{
			"single document",
			`{"slices":[{"name":"s","type":"string","label":"only"}]}`,
			FormatJSON, []string{"only"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := ParseCorpus([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatal(err)
			}
			if len(docs) != len(tt.want) {
				t.Fatalf("got %d instances, want %d", len(docs), len(tt.want))
			}
			for i, want := range tt.want {
				if got := docs[i].Slices[0].Label; got != want {
					t.Errorf("instances[%d] label = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestParseCorpusInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty corpus", `{"instances":[]}`},
		{"invalid instance", `{"instances":[{"slices":[{"name":"s","type":"string"}]},{"slices":[]}]}`},
		{"unknown field", `{"instances":[{"slices":[{"name":"s","type":"string"}]}],"extra":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCorpus([]byte(tt.data), FormatJSON)
			if !errors.Is(err, errors.ErrCodeInvalidDocument) {
				t.Errorf("error = %v, want INVALID_DOCUMENT", err)
			}
		})
	}

	_, err := ParseCorpus([]byte(`{"instances":[{"slices":[{"name":"s","type":"string"}]},{"slices":[]}]}`), FormatJSON)
	if err == nil || !strings.Contains(err.Error(), "instances[1]") {
		t.Errorf("error %v does not name the instance", err)
	}
}

func TestSearch(t *testing.T) {
	corpus := []*Document{
		Example(),
		{Slices: []Slice{{Name: "sentence", Type: TypeString, Label: "A cat sleeps."}}},
		{Slices: []Slice{{
			Name: "deps",
			Type: TypeTable,
			Table: &diagram.Table{Rows: [][]diagram.CellSpec{{
				{Label: "Dogs"}, {Label: "run"},
			}}},
		}}},
	}

	hits, err := Search(corpus, []Filter{{Label: "DOG"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}

	amr := hits[0].Slices[1]
	if len(amr.Highlights) != 1 || amr.Highlights[0] != "d" {
		t.Errorf("amr highlights = %v, want [d]", amr.Highlights)
	}
	if tree := hits[0].Slices[2]; len(tree.Highlights) != 1 || tree.Highlights[0] != "dog" {
		t.Errorf("tree highlights = %v, want [dog]", tree.Highlights)
	}
	cells := hits[1].Slices[0].Table.Rows[0]
	if !cells[0].Highlight || cells[1].Highlight {
		t.Errorf("table highlights = %v", cells)
	}

	// The corpus itself stays untouched.
	if corpus[2].Slices[0].Table.Rows[0][0].Highlight {
		t.Error("Search modified the input table")
	}
	if got := corpus[0].Slices[2].Highlights; len(got) != 0 {
		t.Errorf("Search modified input highlights: %v", got)
	}
}

func TestSearchFilters(t *testing.T) {
	corpus := []*Document{Example()}

	hits, err := Search(corpus, []Filter{{Slice: "sentence", Label: "barks"}, {Slice: "amr", Label: "loud"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("all filters match, got %d hits", len(hits))
	}

	hits, err = Search(corpus, []Filter{{Slice: "sentence", Label: "bark-01"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("label from another slice matched: %d hits", len(hits))
	}

	if _, err := Search(corpus, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("no filters error = %v, want INVALID_INPUT", err)
	}
	if _, err := Search(corpus, []Filter{{Slice: "amr"}}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty label error = %v, want INVALID_INPUT", err)
	}
}

func TestSearchNestedContent(t *testing.T) {
	doc := &Document{Slices: []Slice{{
		Name: "g",
		Type: TypeGraph,
		Graph: &diagram.Graph{Nodes: []diagram.NodeSpec{
			{ID: "outer", Type: "TREE", Graph: &diagram.Graph{Nodes: []diagram.NodeSpec{{ID: "leaf", Label: "needle"}}}},
			{ID: "other"},
		}},
	}}}
	hits, err := Search([]*Document{doc}, []Filter{{Label: "needle"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || len(hits[0].Slices[0].Highlights) != 1 || hits[0].Slices[0].Highlights[0] != "outer" {
		t.Errorf("nested match should highlight the containing node: %+v", hits)
	}
}
