// Package parse decodes and validates multicode graph documents.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	multicode "github.com/redvampir/multicode-sub002"
)

// CurrentVersion is written by editors that know the document envelope
const CurrentVersion = "1"

// Document is the file the editor saves: the main graph with its
// functions, optional generation options and the node packages it uses.
type Document struct {
	Version  string             `json:"version,omitempty" jsonschema:"document format version"`
	Graph    *multicode.Graph   `json:"graph" validate:"required" jsonschema:"main graph with its user functions"`
	Options  *multicode.Options `json:"options,omitempty" jsonschema:"generation options; defaults apply when absent"`
	Packages []string           `json:"packages,omitempty" jsonschema:"node package directories, relative to the document"`
}

// GenerationOptions returns the document options or the defaults
func (d *Document) GenerationOptions() multicode.Options {
	if d.Options == nil {
		return multicode.DefaultOptions()
	}
	return *d.Options
}

// Parser decodes documents
type Parser struct {
	// Validators to run after parsing
	validators []Validator
}

// NewParser creates a parser running the structural and reference
// validators
func NewParser() *Parser {
	return &Parser{
		validators: []Validator{
			&RequiredFieldsValidator{},
			&ReferenceValidator{},
		},
	}
}

// AddValidator adds a custom validator
func (p *Parser) AddValidator(v Validator) {
	p.validators = append(p.validators, v)
}

// ParseFile parses a single document file
func (p *Parser) ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return p.Parse(data, path)
}

// Parse decodes a document. Besides the envelope it accepts a bare graph
// object, which older editors write.
func (p *Parser) Parse(data []byte, source string) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, syntaxError(data, source, err)
	}

	doc := &Document{}
	switch {
	case raw["graph"] != nil:
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, syntaxError(data, source, err)
		}
		if doc.Options != nil {
			// fields missing from the file keep their defaults
			opts := multicode.DefaultOptions()
			if err := json.Unmarshal(raw["options"], &opts); err != nil {
				return nil, syntaxError(data, source, err)
			}
			doc.Options = &opts
		}
	case raw["nodes"] != nil:
		var graph multicode.Graph
		if err := json.Unmarshal(data, &graph); err != nil {
			return nil, syntaxError(data, source, err)
		}
		doc.Graph = &graph
	default:
		return nil, NewParseError(source, "document has neither a graph nor nodes", nil)
	}

	if err := p.validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseGraph decodes a bare graph without running validators
func ParseGraph(data []byte) (*multicode.Graph, error) {
	var graph multicode.Graph
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, syntaxError(data, "graph", err)
	}
	return &graph, nil
}

// validate runs all validators on the document
func (p *Parser) validate(doc *Document) error {
	var errs []error
	for _, v := range p.validators {
		if err := v.Validate(doc); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

func syntaxError(data []byte, source string, err error) error {
	perr := NewParseError(source, err.Error(), err)

	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntax):
		perr.Line, perr.Column = position(data, syntax.Offset)
	case errors.As(err, &typeErr):
		perr.Line, perr.Column = position(data, typeErr.Offset)
	}
	return perr
}
