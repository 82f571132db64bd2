package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

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
			{"id": "print", "type": "Print", "label": "Print", "inputs": [{"id": "print-value", "dataType": "string", "value": "Hi"}]}
		],
		"edges": [
			{"sourceNode": "start", "sourcePort": "start-exec-out", "targetNode": "print", "targetPort": "print-exec-in"}
		]
	}
}`

const brokenCallDocument = `{
	"nodes": [
		{"id": "start", "type": "Start"},
		{"id": "call", "type": "CallUserFunction"}
	],
	"edges": [
		{"sourceNode": "start", "sourcePort": "start-exec-out", "targetNode": "call", "targetPort": "call-exec-in"}
	]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = NewCLI().Execute(args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestGenerateToStdout(t *testing.T) {
	t.Parallel()

	input := writeFile(t, t.TempDir(), "hello.json", helloDocument)
	stdout, stderr, err := execute(t, "generate", input, "--no-comments", "--indent", "2")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	assert.Equal(t, "#include <iostream>\n\nint main() {\n  std::cout << \"Hi\" << std::endl;\n  return 0;\n}\n", stdout)
}

func TestGenerateToFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "hello.json", helloDocument)
	output := filepath.Join(dir, "out", "hello.cpp")

	stdout, stderr, err := execute(t, "generate", input, "-o", output, "--locale", "ru",
		"--cache-dir", filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Generated "+output)

	code, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(code), "// Сгенерировано multicode из графа: hello")
	assert.Contains(t, string(code), "    // Print\n")

	// second run is served from the cache
	_, stderr, err = execute(t, "generate", input, "-o", output, "--locale", "ru",
		"--cache-dir", filepath.Join(dir, "cache"))
	require.NoError(t, err)
	assert.Contains(t, stderr, "(cached)")
}

func TestGenerateWritesSourceMap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "hello.json", helloDocument)
	mapPath := filepath.Join(dir, "maps", "hello.map.json")

	stdout, _, err := execute(t, "generate", input, "--no-comments", "--source-map", mapPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "std::cout")

	data, err := os.ReadFile(mapPath)
	require.NoError(t, err)
	var mapping []codegen.SourceMapping
	require.NoError(t, json.Unmarshal(data, &mapping))
	assert.Contains(t, mapping, codegen.SourceMapping{Line: 4, NodeID: "print"})
}

func TestGenerateReportsErrors(t *testing.T) {
	t.Parallel()

	input := writeFile(t, t.TempDir(), "broken.json", brokenCallDocument)
	stdout, stderr, err := execute(t, "generate", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation reported 1 error(s)")
	assert.Contains(t, stdout, "/* error:")
	assert.Contains(t, stderr, "["+string(multicode.ErrMissingFunctionReference)+"] node call:")
}

func TestGenerateInvalidOptions(t *testing.T) {
	t.Parallel()

	input := writeFile(t, t.TempDir(), "hello.json", helloDocument)
	_, _, err := execute(t, "generate", input, "--indent", "40")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid options")
}

func TestGenerateWithPackage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "nodes/square.hcl", `node "Square" {
  input "x" { type = "int" }
  output "result" { type = "int" }
  expression = "({{input.x}} * {{input.x}})"
}`)
	input := writeFile(t, dir, "square.json", `{
		"nodes": [
			{"id": "start", "type": "Start"},
			{"id": "sq", "type": "Square", "inputs": [{"id": "sq-x", "dataType": "int32", "value": 5}]},
			{"id": "print", "type": "Print"}
		],
		"edges": [
			{"sourceNode": "start", "sourcePort": "start-exec-out", "targetNode": "print", "targetPort": "print-exec-in"},
			{"sourceNode": "sq", "sourcePort": "sq-result", "targetNode": "print", "targetPort": "print-value", "kind": "data"}
		]
	}`)

	stdout, _, err := execute(t, "generate", input, "-p", filepath.Join(dir, "nodes"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "std::cout << (5 * 5) << std::endl;")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", helloDocument)
	broken := writeFile(t, dir, "broken.json", brokenCallDocument)
	malformed := writeFile(t, dir, "malformed.json", "{\n  \"graph\": [,]\n}")

	stdout, _, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, good+" is valid")

	_, stderr, err := execute(t, "validate", good, broken, malformed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 document(s) invalid")
	assert.Contains(t, stderr, string(multicode.ErrMissingFunctionReference))
	assert.Contains(t, stderr, "malformed.json:2:")

	_, stderr, err = execute(t, "validate", "--strict", broken)
	require.Error(t, err)
	assert.Contains(t, stderr, `main: node "call": call has no functionId`)
}

func TestNodes(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "nodes", "--json", "--category", "Math")
	require.NoError(t, err)

	var nodes []pipeline.NodeInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &nodes))
	require.NotEmpty(t, nodes)
	for _, n := range nodes {
		assert.Equal(t, "Math", n.Category)
		assert.Equal(t, pipeline.SourceBuiltin, n.Source)
	}

	stdout, _, err = execute(t, "nodes")
	require.NoError(t, err)
	assert.Contains(t, stdout, string(multicode.NodeBranch))

	stdout, _, err = execute(t, "nodes", "--category", "nothing")
	require.NoError(t, err)
	assert.Equal(t, "No node types found\n", stdout)
}

func TestSchema(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &schema))
	assert.Equal(t, "multicode document", schema["title"])
	assert.Contains(t, schema, "$defs")
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "compile")
	assert.Error(t, err)

	_, _, err = execute(t, "generate", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestOptionFlagsApply(t *testing.T) {
	t.Parallel()

	base := multicode.DefaultOptions()
	assert.Equal(t, base, OptionFlags{}.Apply(base))

	got := OptionFlags{
		Indent: 2, Locale: "ru", Name: "demo", MaxDepth: 8,
		NoComments: true, SourceMarkers: true, NoHeaders: true, NoMain: true,
	}.Apply(base)
	assert.Equal(t, multicode.Options{
		IndentWidth:          2,
		Locale:               multicode.LocaleRussian,
		GraphName:            "demo",
		MaxDepth:             8,
		IncludeSourceMarkers: true,
	}, got)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadEnvFile(filepath.Join(dir, "absent.env")))

	path := writeFile(t, dir, "test.env", "MULTICODE_TEST_INDENT=3\n")
	t.Setenv("MULTICODE_TEST_INDENT", "")
	require.NoError(t, os.Unsetenv("MULTICODE_TEST_INDENT"))
	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "3", os.Getenv("MULTICODE_TEST_INDENT"))

	// a directory cannot be read as an env file
	assert.Error(t, loadEnvFile(dir))
}
