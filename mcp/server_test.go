package mcp

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	multicode "github.com/redvampir/multicode-sub002"
	"github.com/redvampir/multicode-sub002/codegen"
	"github.com/redvampir/multicode-sub002/internal/pipeline"
)

const helloDocument = `{
	"graph": {
		"name": "hello",
		"nodes": [
			{"id": "start", "type": "Start"},
			{"id": "print", "type": "Print", "inputs": [{"id": "print-value", "dataType": "string", "value": "Hi"}]}
		],
		"edges": [
			{"sourceNode": "start", "sourcePort": "start-exec-out", "targetNode": "print", "targetPort": "print-exec-in"}
		]
	},
	"options": {"includeComments": false}
}`

const brokenCallDocument = `{
	"graph": {
		"nodes": [
			{"id": "start", "type": "Start"},
			{"id": "call", "type": "CallUserFunction"}
		],
		"edges": [
			{"sourceNode": "start", "sourcePort": "start-exec-out", "targetNode": "call", "targetPort": "call-exec-in"}
		]
	}
}`

func newTestServer(t *testing.T, packages ...string) *Server {
	t.Helper()
	return NewServer(pipeline.New(nil, zerolog.Nop()), packages, "test", zerolog.Nop())
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	out, err := s.Generate(GenerateInput{Document: helloDocument})
	require.NoError(t, err)
	assert.Contains(t, out.Code, `std::cout << "Hi" << std::endl;`)
	assert.NotContains(t, out.Code, "// Generated by")
	assert.Equal(t, []string{"<iostream>"}, out.Includes)
	assert.Empty(t, out.Diagnostics)
	// #include, blank line, int main(), then the print statement
	assert.Contains(t, out.SourceMap, codegen.SourceMapping{Line: 4, NodeID: "print"})

	opts := multicode.DefaultOptions()
	opts.WrapInMain = false
	out, err = s.Generate(GenerateInput{Document: helloDocument, Options: &opts})
	require.NoError(t, err)
	assert.NotContains(t, out.Code, "int main()")

	_, err = s.Generate(GenerateInput{Document: "{"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	tests := []struct {
		name      string
		in        ValidateInput
		wantValid bool
		wantError string
	}{
		{name: "valid", in: ValidateInput{Document: helloDocument}, wantValid: true},
		{name: "syntax", in: ValidateInput{Document: `{"graph": `}, wantError: "document:"},
		{name: "generation error", in: ValidateInput{Document: brokenCallDocument}, wantError: string(multicode.ErrMissingFunctionReference)},
		{name: "strict", in: ValidateInput{Document: brokenCallDocument, Strict: true}, wantError: "call has no functionId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := s.Validate(tt.in)
			assert.Equal(t, tt.wantValid, out.Valid)
			if tt.wantError == "" {
				assert.Empty(t, out.Errors)
				return
			}
			require.NotEmpty(t, out.Errors)
			assert.Contains(t, out.Errors[0], tt.wantError)
		})
	}
}

func TestListNodes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "log.hcl"), []byte(`node "Log" {
  category = "Debug"
  template = "std::clog << {{input.message}};"
}`), 0o644))

	s := newTestServer(t, dir)
	out, err := s.ListNodes(ListNodesInput{Category: "debug"})
	require.NoError(t, err)
	require.Len(t, out.Nodes, 1)
	assert.Equal(t, "Log", out.Nodes[0].Type)
	assert.True(t, out.Nodes[0].Templated)

	text := formatNodes(out.Nodes)
	assert.Contains(t, text, "### Debug")
	assert.Contains(t, text, "log.hcl:1")
	assert.Equal(t, "No node types found", formatNodes(nil))
}

func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := s.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestSessionListTools(t *testing.T) {
	t.Parallel()

	cs := connect(t, newTestServer(t))
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{ToolGenerate, ToolListNodes, ToolValidate}, names)
}

func TestSessionCallGenerate(t *testing.T) {
	t.Parallel()

	cs := connect(t, newTestServer(t))
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolGenerate,
		Arguments: map[string]any{"document": helloDocument},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "```cpp\n#include <iostream>")
}

func TestSessionCallGenerateError(t *testing.T) {
	t.Parallel()

	cs := connect(t, newTestServer(t))
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolGenerate,
		Arguments: map[string]any{"document": `{"rules": []}`},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "neither a graph nor nodes")
}
