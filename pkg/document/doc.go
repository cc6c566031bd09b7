// Package document reads the input documents that describe a canvas.
//
// A [Document] is an ordered list of slices. Each slice is one row of the
// rendered canvas: a plain string, a graph, a tree or a dependency table.
// Documents can be written as JSON, YAML or TOML:
//
//	doc, err := document.Load("sentence.yaml")
//	if err != nil {
//	    return err
//	}
//
// Every reader rejects unknown fields and runs [Document.Validate], so a
// successfully parsed document is safe to hand to the layout builders.
//
// A corpus is a list of such documents under a top-level "instances" key,
// one per instance. [ParseCorpus] reads both forms, and [Search] narrows a
// corpus to the instances whose node labels match a set of filters.
package document
