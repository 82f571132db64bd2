package codegen

import (
	"sort"

	multicode "github.com/redvampir/multicode-sub002"
)

// DefinitionMap is an in-memory DefinitionLookup
type DefinitionMap map[multicode.NodeType]*multicode.NodeDefinition

// NewDefinitionMap indexes defs by type. Later definitions replace
// earlier ones of the same type.
func NewDefinitionMap(defs ...*multicode.NodeDefinition) DefinitionMap {
	m := make(DefinitionMap, len(defs))
	for _, d := range defs {
		m.Add(d)
	}
	return m
}

// Add stores def under its type
func (m DefinitionMap) Add(def *multicode.NodeDefinition) {
	if def == nil || def.Type == "" {
		return
	}
	m[def.Type] = def
}

func (m DefinitionMap) Definition(t multicode.NodeType) (*multicode.NodeDefinition, bool) {
	def, ok := m[t]
	return def, ok
}

// Definitions returns all definitions sorted by type
func (m DefinitionMap) Definitions() []*multicode.NodeDefinition {
	result := make([]*multicode.NodeDefinition, 0, len(m))
	for _, d := range m {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// ============================================================================
// Built-in catalog
// ============================================================================
//
// Editor-facing descriptions of the node types with standard generators.
// None of them carry a template, so layering them over a registry never
// replaces a standard generator.

func execIn() multicode.PortDefinition {
	return multicode.PortDefinition{ID: multicode.PortExecIn, DataType: multicode.PortExecution}
}

// execInput is an execution input other than exec-in
func execInput(id string) multicode.PortDefinition {
	return multicode.PortDefinition{ID: id, DataType: multicode.PortExecution}
}

func execOut(id string) multicode.PortDefinition {
	return multicode.PortDefinition{ID: id, DataType: multicode.PortExecution}
}

func dataPort(id string, t multicode.PortType, def any) multicode.PortDefinition {
	return multicode.PortDefinition{ID: id, DataType: t, Default: def}
}

func flowNode(t multicode.NodeType, category, desc string, inputs []multicode.PortDefinition, outputs ...multicode.PortDefinition) *multicode.NodeDefinition {
	return &multicode.NodeDefinition{
		Type:        t,
		Category:    category,
		Description: desc,
		Inputs:      append([]multicode.PortDefinition{execIn()}, inputs...),
		Outputs:     outputs,
	}
}

func pureBinary(t multicode.NodeType, category, desc string, operand, result multicode.PortType, a, b any) *multicode.NodeDefinition {
	return &multicode.NodeDefinition{
		Type:        t,
		Category:    category,
		Description: desc,
		Inputs:      []multicode.PortDefinition{dataPort("a", operand, a), dataPort("b", operand, b)},
		Outputs:     []multicode.PortDefinition{dataPort("result", result, nil)},
	}
}

var builtinCatalog = NewDefinitionMap(
	// Control flow
	&multicode.NodeDefinition{
		Type: multicode.NodeStart, Category: "Flow", Description: "Program entry point",
		Outputs: []multicode.PortDefinition{execOut(multicode.PortExecOut)},
	},
	flowNode(multicode.NodeEnd, "Flow", "Returns from the program or function",
		[]multicode.PortDefinition{dataPort("value", multicode.PortInt32, nil)}),
	flowNode(multicode.NodeBranch, "Flow", "If/else on a condition",
		[]multicode.PortDefinition{dataPort("condition", multicode.PortBool, true)},
		execOut(multicode.PortTrue), execOut(multicode.PortFalse)),
	flowNode(multicode.NodeForLoop, "Flow", "Counted loop from first to last (exclusive)",
		[]multicode.PortDefinition{dataPort("first", multicode.PortInt32, 0), dataPort("last", multicode.PortInt32, 10)},
		execOut(multicode.PortLoopBody), dataPort("index", multicode.PortInt32, nil), execOut(multicode.PortCompleted)),
	flowNode(multicode.NodeWhileLoop, "Flow", "Loop while the condition holds",
		[]multicode.PortDefinition{dataPort("condition", multicode.PortBool, false)},
		execOut(multicode.PortLoopBody), execOut(multicode.PortCompleted)),
	flowNode(multicode.NodeDoWhile, "Flow", "Loop body first, then test the condition",
		[]multicode.PortDefinition{dataPort("condition", multicode.PortBool, false)},
		execOut(multicode.PortLoopBody), execOut(multicode.PortCompleted)),
	flowNode(multicode.NodeForEach, "Flow", "Iterate over the elements of an array",
		[]multicode.PortDefinition{dataPort("array", multicode.PortVector, nil)},
		execOut(multicode.PortLoopBody), dataPort("element", multicode.PortDouble, nil),
		dataPort("index", multicode.PortInt64, nil), execOut(multicode.PortCompleted)),
	flowNode(multicode.NodeSequence, "Flow", "Run then-N outputs in order", nil,
		execOut("then-0"), execOut("then-1")),
	flowNode(multicode.NodeParallel, "Flow", "Run thread-N outputs on threads and join", nil,
		execOut("thread-0"), execOut("thread-1"), execOut(multicode.PortCompleted)),
	flowNode(multicode.NodeSwitch, "Flow", "Dispatch on an integer selection",
		[]multicode.PortDefinition{dataPort("selection", multicode.PortInt32, 0)},
		execOut("case-0"), execOut("case-1"), execOut(multicode.PortDefault)),
	flowNode(multicode.NodeBreak, "Flow", "Leave the innermost loop or switch", nil),
	flowNode(multicode.NodeContinue, "Flow", "Skip to the next loop iteration", nil),

	// Stateful flow
	&multicode.NodeDefinition{
		Type: multicode.NodeGate, Category: "Flow Control", Description: "Passes execution while open",
		Inputs: []multicode.PortDefinition{
			execIn(), execInput(multicode.PortOpen), execInput(multicode.PortClose), execInput(multicode.PortToggle),
		},
		Outputs:    []multicode.PortDefinition{execOut(multicode.PortExit), dataPort("isOpen", multicode.PortBool, nil)},
		Properties: []multicode.PropertyDefinition{{ID: "startClosed", Type: multicode.PortBool, Default: false}},
	},
	flowNode(multicode.NodeDoN, "Flow Control", "Passes execution the first N times",
		[]multicode.PortDefinition{dataPort("n", multicode.PortInt32, 1)},
		execOut(multicode.PortExit), dataPort("counter", multicode.PortInt32, nil)),
	flowNode(multicode.NodeDoOnce, "Flow Control", "Passes execution only once", nil,
		execOut(multicode.PortCompleted)),
	flowNode(multicode.NodeFlipFlop, "Flow Control", "Alternates between a and b", nil,
		execOut(multicode.PortA), execOut(multicode.PortB), dataPort("isA", multicode.PortBool, nil)),
	&multicode.NodeDefinition{
		Type: multicode.NodeMultiGate, Category: "Flow Control", Description: "Picks one out-N output per call",
		Inputs:  []multicode.PortDefinition{execIn()},
		Outputs: []multicode.PortDefinition{execOut("out-0"), execOut("out-1")},
		Properties: []multicode.PropertyDefinition{
			{ID: "isRandom", Type: multicode.PortBool, Default: false},
			{ID: "loop", Type: multicode.PortBool, Default: false},
			{ID: "startIndex", Type: multicode.PortInt32, Default: 0},
			{ID: "seed", Type: multicode.PortInt64},
		},
	},

	// Variables
	&multicode.NodeDefinition{
		Type: multicode.NodeVariable, Category: "Variables", Description: "Declares a variable",
		Inputs:  []multicode.PortDefinition{execIn(), dataPort("initialValue", multicode.PortAny, nil)},
		Outputs: []multicode.PortDefinition{execOut(multicode.PortExecOut), dataPort("value", multicode.PortAny, nil)},
		Properties: []multicode.PropertyDefinition{
			{ID: "variableId", Type: multicode.PortString},
			{ID: "variableName", Type: multicode.PortString},
			{ID: "dataType", Type: multicode.PortString, Default: "int32"},
			{ID: "initialValue", Type: multicode.PortAny},
		},
	},
	&multicode.NodeDefinition{
		Type: multicode.NodeGetVariable, Category: "Variables", Description: "Reads a variable",
		Outputs:    []multicode.PortDefinition{dataPort("value", multicode.PortAny, nil)},
		Properties: []multicode.PropertyDefinition{{ID: "variableId", Type: multicode.PortString}, {ID: "variableName", Type: multicode.PortString}},
	},
	&multicode.NodeDefinition{
		Type: multicode.NodeSetVariable, Category: "Variables", Description: "Assigns a variable",
		Inputs:     []multicode.PortDefinition{execIn(), dataPort("value", multicode.PortAny, nil)},
		Outputs:    []multicode.PortDefinition{execOut(multicode.PortExecOut), dataPort("value", multicode.PortAny, nil)},
		Properties: []multicode.PropertyDefinition{{ID: "variableId", Type: multicode.PortString}, {ID: "variableName", Type: multicode.PortString}},
	},

	// Math
	pureBinary(multicode.NodeAdd, "Math", "a + b", multicode.PortDouble, multicode.PortDouble, 0, 0),
	pureBinary(multicode.NodeSubtract, "Math", "a - b", multicode.PortDouble, multicode.PortDouble, 0, 0),
	pureBinary(multicode.NodeMultiply, "Math", "a * b", multicode.PortDouble, multicode.PortDouble, 1, 1),
	pureBinary(multicode.NodeDivide, "Math", "a / b", multicode.PortDouble, multicode.PortDouble, 0, 1),
	pureBinary(multicode.NodeModulo, "Math", "a % b, std::fmod for floating operands", multicode.PortInt32, multicode.PortInt32, 0, 1),
	pureBinary(multicode.NodePower, "Math", "std::pow(a, b)", multicode.PortDouble, multicode.PortDouble, 0, 1),
	pureBinary(multicode.NodeMin, "Math", "std::min(a, b)", multicode.PortDouble, multicode.PortDouble, 0, 0),
	pureBinary(multicode.NodeMax, "Math", "std::max(a, b)", multicode.PortDouble, multicode.PortDouble, 0, 0),
	&multicode.NodeDefinition{
		Type: multicode.NodeAbs, Category: "Math", Description: "std::abs(a)",
		Inputs:  []multicode.PortDefinition{dataPort("a", multicode.PortDouble, 0)},
		Outputs: []multicode.PortDefinition{dataPort("result", multicode.PortDouble, nil)},
	},

	// Comparison
	pureBinary(multicode.NodeEqual, "Comparison", "a == b", multicode.PortDouble, multicode.PortBool, 0, 0),
	pureBinary(multicode.NodeNotEqual, "Comparison", "a != b", multicode.PortDouble, multicode.PortBool, 0, 0),
	pureBinary(multicode.NodeGreater, "Comparison", "a > b", multicode.PortDouble, multicode.PortBool, 0, 0),
	pureBinary(multicode.NodeGreaterEqual, "Comparison", "a >= b", multicode.PortDouble, multicode.PortBool, 0, 0),
	pureBinary(multicode.NodeLess, "Comparison", "a < b", multicode.PortDouble, multicode.PortBool, 0, 0),
	pureBinary(multicode.NodeLessEqual, "Comparison", "a <= b", multicode.PortDouble, multicode.PortBool, 0, 0),

	// Logic
	pureBinary(multicode.NodeAnd, "Logic", "a && b", multicode.PortBool, multicode.PortBool, false, false),
	pureBinary(multicode.NodeOr, "Logic", "a || b", multicode.PortBool, multicode.PortBool, false, false),
	&multicode.NodeDefinition{
		Type: multicode.NodeNot, Category: "Logic", Description: "!a",
		Inputs:  []multicode.PortDefinition{dataPort("a", multicode.PortBool, false)},
		Outputs: []multicode.PortDefinition{dataPort("result", multicode.PortBool, nil)},
	},

	// I/O
	flowNode(multicode.NodePrint, "I/O", "Writes a value to standard output",
		[]multicode.PortDefinition{dataPort("value", multicode.PortString, "")},
		execOut(multicode.PortExecOut)),
	flowNode(multicode.NodeInput, "I/O", "Reads a line from standard input",
		[]multicode.PortDefinition{dataPort("prompt", multicode.PortString, "")},
		execOut(multicode.PortExecOut), dataPort("value", multicode.PortString, nil)),

	// User functions
	&multicode.NodeDefinition{
		Type: multicode.NodeFunctionEntry, Category: "Functions", Description: "Entry of a user function; outputs are its input parameters",
		Outputs: []multicode.PortDefinition{execOut(multicode.PortExecOut)},
	},
	flowNode(multicode.NodeFunctionReturn, "Functions", "Returns the output parameters of the function", nil),
	&multicode.NodeDefinition{
		Type: multicode.NodeCallUserFunction, Category: "Functions", Description: "Calls a user function",
		Inputs:  []multicode.PortDefinition{execIn()},
		Outputs: []multicode.PortDefinition{execOut(multicode.PortExecOut)},
		Properties: []multicode.PropertyDefinition{
			{ID: "functionId", Type: multicode.PortString},
			{ID: "functionName", Type: multicode.PortString},
		},
	},

	// Misc
	&multicode.NodeDefinition{
		Type: multicode.NodeComment, Category: "Misc", Description: "Emits a // comment",
		Inputs:     []multicode.PortDefinition{execIn()},
		Outputs:    []multicode.PortDefinition{execOut(multicode.PortExecOut)},
		Properties: []multicode.PropertyDefinition{{ID: "text", Type: multicode.PortString}},
	},
	&multicode.NodeDefinition{
		Type: multicode.NodeReroute, Category: "Misc", Description: "Passes its input through",
		Inputs:  []multicode.PortDefinition{dataPort("in", multicode.PortAny, nil)},
		Outputs: []multicode.PortDefinition{dataPort("out", multicode.PortAny, nil)},
	},
	&multicode.NodeDefinition{
		Type: multicode.NodeConstant, Category: "Misc", Description: "A literal value",
		Outputs:    []multicode.PortDefinition{dataPort("value", multicode.PortAny, nil)},
		Properties: []multicode.PropertyDefinition{{ID: "value"}, {ID: "dataType", Type: multicode.PortString}},
	},
)

// Catalog returns the built-in node definitions
func Catalog() DefinitionMap {
	m := make(DefinitionMap, len(builtinCatalog))
	for t, d := range builtinCatalog {
		m[t] = d
	}
	return m
}
