package codegen

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	multicode "github.com/redvampir/multicode-sub002"
)

// graphBuilder assembles graphs with editor-style port ids ("<node>-<port>")
type graphBuilder struct {
	g *multicode.Graph
}

func newGraph(name string) *graphBuilder {
	return &graphBuilder{g: &multicode.Graph{ID: name, Name: name}}
}

type nodeOption func(*multicode.Node)

func withLabel(label string) nodeOption {
	return func(n *multicode.Node) { n.Label = label }
}

func withProp(key string, value any) nodeOption {
	return func(n *multicode.Node) {
		if n.Properties == nil {
			n.Properties = make(map[string]any)
		}
		n.Properties[key] = value
	}
}

// withInput declares a data input; value may be nil
func withInput(port string, t multicode.PortType, value any) nodeOption {
	return func(n *multicode.Node) {
		n.Inputs = append(n.Inputs, &multicode.Port{
			ID: n.ID + "-" + port, Name: port, DataType: t, Direction: multicode.DirectionInput, Value: value,
		})
	}
}

func withOutput(port string, t multicode.PortType) nodeOption {
	return func(n *multicode.Node) {
		n.Outputs = append(n.Outputs, &multicode.Port{
			ID: n.ID + "-" + port, Name: port, DataType: t, Direction: multicode.DirectionOutput,
		})
	}
}

func (b *graphBuilder) node(id string, t multicode.NodeType, opts ...nodeOption) *multicode.Node {
	n := &multicode.Node{ID: id, Type: t}
	for _, opt := range opts {
		opt(n)
	}
	b.g.Nodes = append(b.g.Nodes, n)
	return n
}

func (b *graphBuilder) exec(from, port, to string) *graphBuilder {
	return b.execTo(from, port, to, multicode.PortExecIn)
}

// execTo connects an execution output to a named execution input
func (b *graphBuilder) execTo(from, port, to, toPort string) *graphBuilder {
	b.g.Edges = append(b.g.Edges, &multicode.Edge{
		SourceNode: from, SourcePort: from + "-" + port,
		TargetNode: to, TargetPort: to + "-" + toPort,
		Kind: multicode.EdgeExecution,
	})
	return b
}

// flow chains nodes through exec-out
func (b *graphBuilder) flow(ids ...string) *graphBuilder {
	for i := 0; i+1 < len(ids); i++ {
		b.exec(ids[i], multicode.PortExecOut, ids[i+1])
	}
	return b
}

func (b *graphBuilder) data(from, fromPort, to, toPort string) *graphBuilder {
	b.g.Edges = append(b.g.Edges, &multicode.Edge{
		SourceNode: from, SourcePort: from + "-" + fromPort,
		TargetNode: to, TargetPort: to + "-" + toPort,
		Kind: multicode.EdgeData,
	})
	return b
}

func (b *graphBuilder) function(fn *multicode.Function) *graphBuilder {
	b.g.Functions = append(b.g.Functions, fn)
	return b
}

func (b *graphBuilder) build() *multicode.Graph {
	return b.g
}

// testOptions are the defaults without the header comment block
func testOptions() multicode.Options {
	opts := multicode.DefaultOptions()
	opts.IncludeComments = false
	return opts
}

func generate(t *testing.T, g *multicode.Graph) *Output {
	t.Helper()
	return generateWith(t, NewStandardRegistry(zerolog.Nop()), testOptions(), g)
}

func generateWith(t *testing.T, reg *Registry, opts multicode.Options, g *multicode.Graph) *Output {
	t.Helper()
	out, err := NewDriver(reg, opts, zerolog.Nop()).Generate(g)
	require.NoError(t, err)
	return out
}

func codes(diags []multicode.Diagnostic) []string {
	result := make([]string, 0, len(diags))
	for _, d := range diags {
		result = append(result, d.Code)
	}
	return result
}

func countLines(code, substr string) int {
	n := 0
	for _, l := range strings.Split(code, "\n") {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}
