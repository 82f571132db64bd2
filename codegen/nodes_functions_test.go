package codegen

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	multicode "github.com/redvampir/multicode-sub002"
)

func param(id, name string, dir multicode.Direction, t multicode.PortType) multicode.Parameter {
	return multicode.Parameter{ID: id, Name: name, Direction: dir, DataType: t}
}

func in(name string, t multicode.PortType) multicode.Parameter {
	return param("p-"+name, name, multicode.DirectionInput, t)
}

func outParam(name string, t multicode.PortType) multicode.Parameter {
	return param("p-"+name, name, multicode.DirectionOutput, t)
}

// ============================================================================
// Signatures
// ============================================================================

func TestSignature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fn     *multicode.Function
		want   string
		result string
	}{
		{
			name: "two outputs synthesize a result type",
			fn: &multicode.Function{ID: "f1", Name: "getMinMax", Parameters: []multicode.Parameter{
				outParam("min", multicode.PortInt32), outParam("max", multicode.PortInt32),
			}},
			want:   "getMinMaxResult getMinMax()",
			result: "getMinMaxResult",
		},
		{
			name: "no outputs is void",
			fn: &multicode.Function{ID: "f2", Name: "log", Parameters: []multicode.Parameter{
				in("level", multicode.PortInt32), in("text", multicode.PortString),
			}},
			want:   "void log(int level, std::string text)",
			result: "void",
		},
		{
			name: "one output returns its type",
			fn: &multicode.Function{ID: "f3", Name: "half", Parameters: []multicode.Parameter{
				outParam("value", multicode.PortDouble), in("x", multicode.PortDouble),
			}},
			want:   "double half(double x)",
			result: "double",
		},
		{
			name: "names are sanitized and deduplicated",
			fn: &multicode.Function{ID: "f4", Name: "моя функция", Parameters: []multicode.Parameter{
				in("a b", multicode.PortBool), in("a_b", multicode.PortBool), in("class", multicode.PortInt64),
			}},
			want:   "void moya_funktsiya(bool a_b, bool a_b_1, long long class_)",
			result: "void",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Signature(tt.fn))
			assert.Equal(t, tt.result, ReturnType(tt.fn))
		})
	}
}

func TestResultTypeDeclaration(t *testing.T) {
	t.Parallel()

	fn := &multicode.Function{ID: "f", Name: "getMinMax", Parameters: []multicode.Parameter{
		outParam("min", multicode.PortInt32), in("ignored", multicode.PortBool), outParam("max", multicode.PortInt32),
	}}
	assert.Equal(t, []string{
		"struct getMinMaxResult {",
		"    int min;",
		"    int max;",
		"};",
	}, ResultTypeDeclaration(fn, "    "))

	single := &multicode.Function{ID: "g", Name: "one", Parameters: []multicode.Parameter{outParam("v", multicode.PortInt32)}}
	assert.Nil(t, ResultTypeDeclaration(single, "    "))
}

// ============================================================================
// Calls and returns
// ============================================================================

func statsFunction() *multicode.Function {
	body := newGraph("stats")
	body.node("entry", multicode.NodeFunctionEntry)
	// port order deliberately differs from parameter order
	body.node("ret", multicode.NodeFunctionReturn,
		withInput("valid", multicode.PortBool, true),
		withInput("min", multicode.PortInt32, 3),
		withInput("name", multicode.PortString, "x"),
	)
	body.flow("entry", "ret")

	return &multicode.Function{
		ID:   "fn-stats",
		Name: "stats",
		Parameters: []multicode.Parameter{
			outParam("min", multicode.PortInt32),
			outParam("name", multicode.PortString),
			outParam("valid", multicode.PortBool),
		},
		Graph: body.build(),
	}
}

func TestMultiOutputCallProjectsByParameterOrder(t *testing.T) {
	t.Parallel()

	b := newGraph("main")
	b.function(statsFunction())
	b.node("start", multicode.NodeStart)
	b.node("c1", multicode.NodeCallUserFunction,
		withProp("functionId", "fn-stats"),
		withOutput("valid", multicode.PortBool),
		withOutput("min", multicode.PortInt32),
		withOutput("name", multicode.PortString),
	)
	b.node("print", multicode.NodePrint)
	b.flow("start", "c1", "print")
	b.data("c1", "min", "print", "value")

	out := generate(t, b.build())

	want := strings.Join([]string{
		"#include <iostream>",
		"#include <string>",
		"",
		"struct statsResult {",
		"    int min;",
		"    std::string name;",
		"    bool valid;",
		"};",
		"",
		"statsResult stats();",
		"",
		"statsResult stats() {",
		`    return statsResult{3, "x", true};`,
		"}",
		"",
		"int main() {",
		"    statsResult call_c1 = stats();",
		"    int call_c1_min = call_c1.min;",
		"    std::string call_c1_name = call_c1.name;",
		"    bool call_c1_valid = call_c1.valid;",
		"    std::cout << call_c1_min << std::endl;",
		"    return 0;",
		"}",
		"",
	}, "\n")
	assert.Equal(t, want, out.Code())
	assert.Empty(t, out.Diagnostics)

	require.Len(t, out.Functions, 1)
	assert.Equal(t, "fn-stats", out.Functions[0].FunctionID)
	assert.Equal(t, "statsResult stats()", out.Functions[0].Signature)
}

func TestSingleOutputCallUsesParameterOrder(t *testing.T) {
	t.Parallel()

	body := newGraph("scale")
	body.node("entry", multicode.NodeFunctionEntry)
	body.node("mul", multicode.NodeMultiply)
	body.node("ret", multicode.NodeFunctionReturn)
	body.flow("entry", "ret")
	body.data("entry", "x", "mul", "a")
	body.data("entry", "factor", "mul", "b")
	body.data("mul", "result", "ret", "result")

	fn := &multicode.Function{
		ID:   "fn-scale",
		Name: "scale",
		Parameters: []multicode.Parameter{
			in("x", multicode.PortDouble),
			in("factor", multicode.PortInt32),
			outParam("result", multicode.PortDouble),
		},
		Graph: body.build(),
	}

	b := newGraph("main")
	b.function(fn)
	b.node("start", multicode.NodeStart)
	b.node("c2", multicode.NodeCallUserFunction,
		withProp("functionId", "fn-scale"),
		withInput("factor", multicode.PortInt32, 3),
		withInput("x", multicode.PortDouble, 1.5),
		withOutput("result", multicode.PortDouble),
	)
	b.node("print", multicode.NodePrint)
	b.flow("start", "c2", "print")
	b.data("c2", "result", "print", "value")

	out := generate(t, b.build())
	code := out.Code()
	assert.Contains(t, code, "double scale(double x, int factor);\n")
	assert.Contains(t, code, "double scale(double x, int factor) {\n    return (x * factor);\n}\n")
	assert.Contains(t, code, "    double call_c2 = scale(1.5, 3);\n    std::cout << call_c2 << std::endl;\n")
	assert.Empty(t, out.Diagnostics)
}

func TestFunctionReturnDefaults(t *testing.T) {
	t.Parallel()

	body := newGraph("one")
	body.node("entry", multicode.NodeFunctionEntry)
	body.node("ret", multicode.NodeFunctionReturn)
	body.flow("entry", "ret")

	b := newGraph("main")
	b.function(&multicode.Function{
		ID: "fn-one", Name: "one",
		Parameters: []multicode.Parameter{outParam("value", multicode.PortInt32)},
		Graph:      body.build(),
	})

	out := generate(t, b.build())
	assert.Contains(t, out.Code(), "int one() {\n    return 0;\n}\n")
	assert.Equal(t, 1, strings.Count(out.Functions[0].Lines[1], "return 0;"))
	assert.Len(t, out.Functions[0].Lines, 3)
}

func TestFunctionWithoutReturnGetsDefault(t *testing.T) {
	t.Parallel()

	body := newGraph("pair")
	body.node("entry", multicode.NodeFunctionEntry)

	b := newGraph("main")
	b.function(&multicode.Function{
		ID: "fn-pair", Name: "pair",
		Parameters: []multicode.Parameter{outParam("ok", multicode.PortBool), outParam("ratio", multicode.PortFloat)},
		Graph:      body.build(),
	})

	out := generate(t, b.build())
	assert.Contains(t, out.Code(), "pairResult pair() {\n    return pairResult{false, 0.0f};\n}\n")
}

func TestVoidFunctionBody(t *testing.T) {
	t.Parallel()

	body := newGraph("greet")
	body.node("entry", multicode.NodeFunctionEntry)
	body.node("print", multicode.NodePrint)
	body.node("ret", multicode.NodeFunctionReturn)
	body.flow("entry", "print", "ret")
	body.data("entry", "who", "print", "value")

	b := newGraph("main")
	b.function(&multicode.Function{
		ID: "fn-greet", Name: "greet",
		Parameters: []multicode.Parameter{in("who", multicode.PortString)},
		Graph:      body.build(),
	})
	b.node("start", multicode.NodeStart)
	b.node("call", multicode.NodeCallUserFunction, withProp("functionId", "fn-greet"),
		withInput("who", multicode.PortString, "Ann"))
	b.flow("start", "call")

	out := generate(t, b.build())
	assert.Contains(t, out.Code(), "void greet(std::string who) {\n    std::cout << who << std::endl;\n    return;\n}\n")
	assert.Contains(t, out.Code(), "    greet(\"Ann\");\n")
}

func TestOrphanReturnWarns(t *testing.T) {
	t.Parallel()

	b := newGraph("main")
	b.node("start", multicode.NodeStart)
	b.node("ret", multicode.NodeFunctionReturn)
	b.flow("start", "ret")

	out := generate(t, b.build())
	assert.Equal(t, []string{string(multicode.WarnOrphanReturn)}, codes(out.Warnings()))
	assert.Empty(t, out.Errors())
	assert.Equal(t, 1, strings.Count(out.Code(), "return 0;"))

	opts := testOptions()
	opts.WrapInMain = false
	out = generateWith(t, NewStandardRegistry(zerolog.Nop()), opts, b.build())
	assert.Contains(t, out.Code(), "return;\n")
}

func TestCallWithoutFunctionReferenceFails(t *testing.T) {
	t.Parallel()

	b := newGraph("main")
	b.node("start", multicode.NodeStart)
	b.node("call", multicode.NodeCallUserFunction, withLabel("Call"))
	printNode(b, "p", "still here")
	b.flow("start", "call", "p")

	out := generate(t, b.build())
	require.True(t, out.HasErrors())
	assert.Equal(t, []string{string(multicode.ErrMissingFunctionReference)}, codes(out.Errors()))
	assert.Contains(t, out.Code(), "    /* error: Call has no function reference */\n")
	assert.Contains(t, out.Code(), `"still here"`)
}

func TestUnresolvedCallUsesPortOrder(t *testing.T) {
	t.Parallel()

	b := newGraph("main")
	b.node("start", multicode.NodeStart)
	b.node("c3", multicode.NodeCallUserFunction,
		withProp("functionId", "fn-missing"), withProp("functionName", "remote"),
		withInput("a", multicode.PortInt32, 1), withInput("b", multicode.PortInt32, 2),
		withOutput("lo", multicode.PortInt32), withOutput("hi", multicode.PortInt32),
	)
	b.node("print", multicode.NodePrint)
	b.flow("start", "c3", "print")
	b.data("c3", "hi", "print", "value")

	out := generate(t, b.build())
	assert.Equal(t, []string{string(multicode.WarnUnresolvedFunction)}, codes(out.Warnings()))
	assert.Contains(t, out.Code(), strings.Join([]string{
		"    auto call_c3 = remote(1, 2);",
		"    auto call_c3_lo = std::get<0>(call_c3);",
		"    auto call_c3_hi = std::get<1>(call_c3);",
		"    std::cout << call_c3_hi << std::endl;",
	}, "\n"))
	assert.Contains(t, out.Includes, "<tuple>")
}
