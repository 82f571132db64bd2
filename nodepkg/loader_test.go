package nodepkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	multicode "github.com/redvampir/multicode-sub002"
	"github.com/redvampir/multicode-sub002/codegen"
)

const mathPackage = `
node "Clamp" {
  label           = "Clamp"
  label_localized = "Ограничить"
  category        = "Math"
  includes        = ["algorithm"]

  input "value" {
    type     = "double"
    required = true
  }
  input "hi" {
    type    = "number"
    default = 10
  }
  output "result" { type = "f64" }

  template = <<-EOT
    double {{output.result}} = std::clamp({{input.value}}, 0.0, {{input.hi}});
  EOT
}

node "Square" {
  input "x" { type = "int" }
  output "result" { type = "int" }
  expression = "({{input.x}} * {{input.x}})"
}
`

const ioPackage = `
node "Log" {
  category = "I/O"

  property "level" {
    type    = "string"
    default = "info"
  }
  property "tags" {
    default = ["a", "b"]
  }
  property "limits" {
    default = { max = 3, strict = true }
  }

  before   = "// log"
  template = "std::clog << \"[{{prop.level}}] \" << {{input.message}} << std::endl;"
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "math.hcl", mathPackage)
	writeFile(t, dir, "io/log.hcl", ioPackage)
	writeFile(t, dir, "README.md", "not a package")

	pkg, err := NewLoader(zerolog.Nop()).Load(dir, filepath.Join(dir, "missing"))
	require.NoError(t, err)

	assert.Len(t, pkg.Files, 2)
	assert.Equal(t, []string{dir, filepath.Join(dir, "io")}, pkg.Dirs)
	require.Len(t, pkg.Definitions(), 3)

	clamp, ok := pkg.Definition("Clamp")
	require.True(t, ok)
	assert.Equal(t, "Ограничить", clamp.LabelLocalized)
	assert.Equal(t, "Math", clamp.Category)
	assert.Equal(t, []string{"algorithm"}, clamp.Includes)
	assert.Equal(t, "double {{output.result}} = std::clamp({{input.value}}, 0.0, {{input.hi}});", clamp.Template)
	require.Len(t, clamp.Inputs, 2)
	assert.True(t, clamp.Inputs[0].Required)
	assert.Nil(t, clamp.Inputs[0].Default)
	assert.Equal(t, multicode.PortDouble, clamp.Inputs[1].DataType)
	assert.Equal(t, 10.0, clamp.Inputs[1].Default)
	assert.Equal(t, multicode.PortDouble, clamp.Outputs[0].DataType)

	square, ok := pkg.Definition("Square")
	require.True(t, ok)
	assert.Equal(t, multicode.PortInt32, square.Inputs[0].DataType)
	assert.Equal(t, "({{input.x}} * {{input.x}})", square.Expression)

	log, ok := pkg.Definition("Log")
	require.True(t, ok)
	require.Len(t, log.Properties, 3)
	assert.Equal(t, "info", log.Properties[0].Default)
	assert.Equal(t, multicode.PortAny, log.Properties[1].Type)
	assert.Equal(t, []any{"a", "b"}, log.Properties[1].Default)
	assert.Equal(t, map[string]any{"max": 3.0, "strict": true}, log.Properties[2].Default)
	assert.Equal(t, "// log", log.Before)

	origin, ok := pkg.Origin("Log")
	require.True(t, ok)
	assert.Contains(t, origin, "log.hcl:2")
}

func TestLoadDuplicateType(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `node "Twice" {}`)
	writeFile(t, dir, "b.hcl", `node "Twice" {}`)

	_, err := NewLoader(zerolog.Nop()).Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `node "Twice" already defined at`)
	assert.Contains(t, err.Error(), "a.hcl")
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "syntax", content: `node "Broken" {`, want: "parse"},
		{name: "unknown attribute", content: `node "X" { colour = "red" }`, want: "decode"},
		{name: "default references a variable", content: `node "X" {
  input "a" { default = var.x }
}`, want: `input "a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, t.TempDir(), "pkg.hcl", tt.content)
			_, err := NewLoader(zerolog.Nop()).Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadNothing(t *testing.T) {
	t.Parallel()

	pkg, err := NewLoader(zerolog.Nop()).Load(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Empty(t, pkg.Definitions())
	assert.Empty(t, pkg.Files)
}

func TestPackageDrivesGeneration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "math.hcl", mathPackage)
	pkg, err := NewLoader(zerolog.Nop()).Load(dir)
	require.NoError(t, err)

	graph := &multicode.Graph{
		Name: "clamp",
		Nodes: []*multicode.Node{
			{ID: "start", Type: multicode.NodeStart},
			{ID: "c", Type: "Clamp", Inputs: []*multicode.Port{
				{ID: "c-value", DataType: multicode.PortDouble, Value: 12.5},
			}},
			{ID: "p", Type: multicode.NodePrint},
		},
		Edges: []*multicode.Edge{
			{SourceNode: "start", SourcePort: "start-exec-out", TargetNode: "c", TargetPort: "c-exec-in"},
			{SourceNode: "c", SourcePort: "c-exec-out", TargetNode: "p", TargetPort: "p-exec-in"},
			{SourceNode: "c", SourcePort: "c-result", TargetNode: "p", TargetPort: "p-value", Kind: multicode.EdgeData},
		},
	}

	opts := multicode.DefaultOptions()
	opts.IncludeComments = false
	reg := codegen.NewLayeredRegistry(pkg, zerolog.Nop())
	out, err := codegen.NewDriver(reg, opts, zerolog.Nop()).WithDefinitions(pkg).Generate(graph)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"    double tpl_c_result = std::clamp(12.5, 0.0, 10.0);",
		"    std::cout << tpl_c_result << std::endl;",
	}, out.Lines)
	assert.Equal(t, []string{"<algorithm>", "<iostream>"}, out.Includes)
}
