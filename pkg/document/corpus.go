package document

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// Corpus is a sequence of instances: documents shown one at a time, such as
// the analyses of every sentence in a dataset.
type Corpus struct {
	Instances []*Document `json:"instances" yaml:"instances" toml:"instances"`
}

// ParseCorpus decodes either a corpus (a top-level "instances" list) or a
// single document, which becomes a corpus of one instance. Every instance is
// validated.
func ParseCorpus(data []byte, format Format) ([]*Document, error) {
	if !isCorpus(data, format) {
		doc, err := Parse(data, format)
		if err != nil {
			return nil, err
		}
		return []*Document{doc}, nil
	}

	var c Corpus
	if err := decode(data, format, &c); err != nil {
		return nil, err
	}
	if len(c.Instances) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "corpus has no instances")
	}
	for i, doc := range c.Instances {
		if err := doc.Validate(); err != nil {
			return nil, fmt.Errorf("instances[%d]: %w", i, err)
		}
	}
	return c.Instances, nil
}

func isCorpus(data []byte, format Format) bool {
	var top map[string]any
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &top)
	case FormatYAML:
		err = yaml.Unmarshal(data, &top)
	case FormatTOML:
		_, err = toml.Decode(string(data), &top)
	default:
		return false
	}
	if err != nil {
		return false
	}
	_, ok := top["instances"]
	return ok
}
