package parse

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	multicode "github.com/redvampir/multicode-sub002"
)

// SchemaDraft is the JSON Schema dialect of DocumentSchema
const SchemaDraft = "https://json-schema.org/draft/2020-12/schema"

// DocumentSchema returns the JSON schema of Document. Graphs nest through
// function bodies, so the graph and function schemas are written as
// definitions referring to each other; the leaf types are inferred from
// their Go declarations.
func DocumentSchema() (*jsonschema.Schema, error) {
	node, err := jsonschema.For[multicode.Node](nil)
	if err != nil {
		return nil, fmt.Errorf("node schema: %w", err)
	}
	edge, err := jsonschema.For[multicode.Edge](nil)
	if err != nil {
		return nil, fmt.Errorf("edge schema: %w", err)
	}
	param, err := jsonschema.For[multicode.Parameter](nil)
	if err != nil {
		return nil, fmt.Errorf("parameter schema: %w", err)
	}
	opts, err := jsonschema.For[multicode.Options](nil)
	if err != nil {
		return nil, fmt.Errorf("options schema: %w", err)
	}

	ref := func(name string) *jsonschema.Schema {
		return &jsonschema.Schema{Ref: "#/$defs/" + name}
	}
	array := func(items *jsonschema.Schema) *jsonschema.Schema {
		return &jsonschema.Schema{Type: "array", Items: items}
	}
	str := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{Type: "string", Description: desc}
	}

	graph := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id":        str("graph id"),
			"name":      str("graph name shown in the file header"),
			"nodes":     array(ref("node")),
			"edges":     array(ref("edge")),
			"functions": array(ref("function")),
		},
		Required: []string{"nodes"},
	}
	function := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id":            str("function id referenced by call nodes"),
			"name":          str("function name"),
			"nameLocalized": str("localized function name"),
			"description":   str("function description"),
			"parameters":    array(ref("parameter")),
			"graph":         ref("graph"),
		},
		Required: []string{"id", "name"},
	}

	return &jsonschema.Schema{
		Schema:      SchemaDraft,
		Title:       "multicode document",
		Description: "Node graph document translated to C++ by multicode",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"version":  str("document format version"),
			"graph":    ref("graph"),
			"options":  ref("options"),
			"packages": {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "node package directories, relative to the document"},
		},
		Required: []string{"graph"},
		Defs: map[string]*jsonschema.Schema{
			"graph":     graph,
			"function":  function,
			"node":      node,
			"edge":      edge,
			"parameter": param,
			"options":   opts,
		},
	}, nil
}
