// Package mcp provides the MCP (Model Context Protocol) server for multicode.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	multicode "github.com/redvampir/multicode-sub002"
	"github.com/redvampir/multicode-sub002/codegen"
	"github.com/redvampir/multicode-sub002/internal/pipeline"
	"github.com/redvampir/multicode-sub002/parse"
)

// Tool names
const (
	ToolGenerate  = "multicode_generate"
	ToolValidate  = "multicode_validate"
	ToolListNodes = "multicode_list_nodes"
)

// Server represents the MCP server.
type Server struct {
	pipeline *pipeline.Pipeline
	packages []string
	logger   zerolog.Logger
	server   *mcp.Server
}

// GenerateInput are the arguments of the generate tool
type GenerateInput struct {
	Document string             `json:"document" jsonschema:"graph document JSON: the editor envelope or a bare graph"`
	Packages []string           `json:"packages,omitempty" jsonschema:"extra node package directories"`
	Options  *multicode.Options `json:"options,omitempty" jsonschema:"generation options replacing those of the document"`
}

// GenerateOutput is the result of the generate tool
type GenerateOutput struct {
	Code        string                  `json:"code"`
	Includes    []string                `json:"includes,omitempty"`
	Diagnostics []multicode.Diagnostic  `json:"diagnostics,omitempty"`
	SourceMap   []codegen.SourceMapping `json:"sourceMap,omitempty"`
	Cached      bool                    `json:"cached"`
}

// ValidateInput are the arguments of the validate tool
type ValidateInput struct {
	Document string   `json:"document" jsonschema:"graph document JSON"`
	Packages []string `json:"packages,omitempty" jsonschema:"extra node package directories"`
	Strict   bool     `json:"strict,omitempty" jsonschema:"reject calls to undefined functions"`
}

// ValidateOutput is the result of the validate tool
type ValidateOutput struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ListNodesInput are the arguments of the list_nodes tool
type ListNodesInput struct {
	Category string   `json:"category,omitempty" jsonschema:"only list nodes of this category"`
	Packages []string `json:"packages,omitempty" jsonschema:"node package directories to include"`
}

// ListNodesOutput is the result of the list_nodes tool
type ListNodesOutput struct {
	Nodes []pipeline.NodeInfo `json:"nodes,omitempty"`
}

// NewServer creates a new MCP server. packages are loaded for every call
// in addition to those named by the request.
func NewServer(p *pipeline.Pipeline, packages []string, version string, logger zerolog.Logger) *Server {
	s := &Server{
		pipeline: p,
		packages: packages,
		logger:   logger,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "multicode",
		Version: version,
	}, nil)

	s.registerTools()
	return s
}

// Run serves requests over stdin/stdout until the client disconnects
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over t
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolGenerate,
		Description: "Generate a C++17 translation unit from a multicode graph document. Returns the code, diagnostics and a source map from code lines to node ids.",
	}, s.handleGenerate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolValidate,
		Description: "Check a graph document for structural errors and generation warnings without returning code.",
	}, s.handleValidate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolListNodes,
		Description: "List the node types available to documents: the built-in catalog plus loaded packages.",
		InputSchema: listNodesSchema(),
	}, s.handleListNodes)
}

// listNodesSchema allows the tool to be called without arguments
func listNodesSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"category": {Type: "string", Description: "Only list nodes of this category"},
			"packages": {
				Type:        "array",
				Items:       &jsonschema.Schema{Type: "string"},
				Description: "Node package directories to include",
			},
		},
	}
}

func (s *Server) handleGenerate(ctx context.Context, req *mcp.CallToolRequest, in GenerateInput) (*mcp.CallToolResult, GenerateOutput, error) {
	out, err := s.Generate(in)
	if err != nil {
		return errorResult(err), GenerateOutput{}, nil
	}
	return textResult(formatGenerate(out)), out, nil
}

func (s *Server) handleValidate(ctx context.Context, req *mcp.CallToolRequest, in ValidateInput) (*mcp.CallToolResult, ValidateOutput, error) {
	out := s.Validate(in)
	return textResult(formatValidate(out)), out, nil
}

func (s *Server) handleListNodes(ctx context.Context, req *mcp.CallToolRequest, in ListNodesInput) (*mcp.CallToolResult, ListNodesOutput, error) {
	out, err := s.ListNodes(in)
	if err != nil {
		return errorResult(err), ListNodesOutput{}, nil
	}
	return textResult(formatNodes(out.Nodes)), out, nil
}

// Generate runs the generate tool
func (s *Server) Generate(in GenerateInput) (GenerateOutput, error) {
	doc, err := parse.NewParser().Parse([]byte(in.Document), "document")
	if err != nil {
		return GenerateOutput{}, err
	}
	opts := doc.GenerationOptions()
	if in.Options != nil {
		opts = *in.Options
	}

	res, err := s.pipeline.Run(pipeline.Request{
		Document: doc,
		Packages: append(append([]string{}, s.packages...), in.Packages...),
		Options:  opts,
	})
	if err != nil {
		return GenerateOutput{}, err
	}
	s.logger.Debug().Bool("cached", res.Cached).Int("diagnostics", len(res.Diagnostics)).Msg("generate tool")
	return GenerateOutput{
		Code:        res.Code,
		Includes:    res.Includes,
		Diagnostics: res.Diagnostics,
		SourceMap:   res.SourceMap,
		Cached:      res.Cached,
	}, nil
}

// Validate runs the validate tool
func (s *Server) Validate(in ValidateInput) ValidateOutput {
	parser := parse.NewParser()
	if in.Strict {
		parser.AddValidator(&parse.FunctionCallValidator{})
	}
	doc, err := parser.Parse([]byte(in.Document), "document")
	if err != nil {
		return ValidateOutput{Errors: parse.Messages(err)}
	}

	res, err := s.pipeline.Run(pipeline.Request{
		Document: doc,
		Packages: append(append([]string{}, s.packages...), in.Packages...),
		Options:  doc.GenerationOptions(),
	})
	if err != nil {
		return ValidateOutput{Errors: []string{err.Error()}}
	}

	out := ValidateOutput{Valid: true}
	for _, d := range res.Diagnostics {
		msg := formatDiagnostic(d)
		if d.Severity == multicode.SeverityError {
			out.Valid = false
			out.Errors = append(out.Errors, msg)
			continue
		}
		out.Warnings = append(out.Warnings, msg)
	}
	return out
}

// ListNodes runs the list_nodes tool
func (s *Server) ListNodes(in ListNodesInput) (ListNodesOutput, error) {
	nodes, err := s.pipeline.Nodes(in.Category, append(append([]string{}, s.packages...), in.Packages...)...)
	if err != nil {
		return ListNodesOutput{}, err
	}
	return ListNodesOutput{Nodes: nodes}, nil
}

// Helper functions

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errorResult(err error) *mcp.CallToolResult {
	res := textResult("Error: " + err.Error())
	res.IsError = true
	return res
}

func formatDiagnostic(d multicode.Diagnostic) string {
	return fmt.Sprintf("%s [%s] node %s: %s", d.Severity, d.Code, d.NodeID, d.Message)
}

func formatGenerate(out GenerateOutput) string {
	var sb strings.Builder
	sb.WriteString("```cpp\n")
	sb.WriteString(out.Code)
	sb.WriteString("```\n")
	if len(out.Diagnostics) > 0 {
		sb.WriteString(fmt.Sprintf("\n## Diagnostics (%d)\n\n", len(out.Diagnostics)))
		for _, d := range out.Diagnostics {
			sb.WriteString("- " + formatDiagnostic(d) + "\n")
		}
	}
	return sb.String()
}

func formatValidate(out ValidateOutput) string {
	var sb strings.Builder
	if out.Valid {
		sb.WriteString("Document is valid.\n")
	} else {
		sb.WriteString(fmt.Sprintf("Document has %d error(s):\n", len(out.Errors)))
		for _, e := range out.Errors {
			sb.WriteString("- " + e + "\n")
		}
	}
	if len(out.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("\nWarnings (%d):\n", len(out.Warnings)))
		for _, w := range out.Warnings {
			sb.WriteString("- " + w + "\n")
		}
	}
	return sb.String()
}

func formatNodes(nodes []pipeline.NodeInfo) string {
	if len(nodes) == 0 {
		return "No node types found"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Node Types (%d)\n", len(nodes)))
	category := "\x00"
	for _, n := range nodes {
		if n.Category != category {
			category = n.Category
			name := category
			if name == "" {
				name = "Uncategorized"
			}
			sb.WriteString("\n### " + name + "\n")
		}
		sb.WriteString("- **" + n.Type + "**")
		if n.Description != "" {
			sb.WriteString(": " + n.Description)
		}
		if n.Source != pipeline.SourceBuiltin {
			sb.WriteString(" (" + n.Source + ")")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
