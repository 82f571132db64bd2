package codegen

import (
	"fmt"

	multicode "github.com/redvampir/multicode-sub002"
)

// ============================================================================
// Control Flow Nodes
// ============================================================================

func init() {
	mustRegisterStandard(&StartGenerator{})
	mustRegisterStandard(&EndGenerator{})
	mustRegisterStandard(&BranchGenerator{})
	mustRegisterStandard(&ForLoopGenerator{})
	mustRegisterStandard(&WhileLoopGenerator{})
	mustRegisterStandard(&ForEachGenerator{})
	mustRegisterStandard(&SequenceGenerator{})
	mustRegisterStandard(&SwitchGenerator{})
	mustRegisterStandard(&LoopControlGenerator{})
}

// StartGenerator anchors traversal and emits nothing
type StartGenerator struct{}

func (*StartGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeStart}
}

func (*StartGenerator) Generate(*multicode.Node, *Context, Helpers) Result {
	return Continue()
}

// EndGenerator emits a return statement
type EndGenerator struct{}

func (*EndGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeEnd}
}

func (*EndGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	fn := ctx.Function
	if fn != nil && len(fn.Outputs()) == 0 {
		return Stop(line(h, "return;"))
	}

	expr, ok := h.InputExpression(node, "value")
	if ok && expr != "" && !isPortDefault(node, "value", expr) {
		return Stop(line(h, "return %s;", expr))
	}
	if fn != nil {
		return Stop(line(h, "return %s;", defaultReturnValue(fn)))
	}
	return Stop(line(h, "return 0;"))
}

func isPortDefault(node *multicode.Node, port, expr string) bool {
	p := node.Input(port)
	if p == nil || !p.DataType.Known() {
		return false
	}
	return isLiteral(expr, multicode.DefaultLiteral(p.DataType))
}

// BranchGenerator emits if/else over the condition input
type BranchGenerator struct{}

func (*BranchGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeBranch}
}

func (*BranchGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	cond := inputOr(h, node, "condition", "true")

	trueTarget := h.ExecutionTarget(node, multicode.PortTrue)
	if trueTarget == nil {
		h.Warn(node.ID, multicode.WarnEmptyBranch, label(node))
	}

	lines := []string{line(h, "if (%s) {", cond)}
	lines = append(lines, nested(h, trueTarget)...)
	lines = append(lines, line(h, "} else {"))
	lines = append(lines, nestedPort(h, node, multicode.PortFalse)...)
	lines = append(lines, line(h, "}"))
	return Custom(lines)
}

// ============================================================================
// Loops
// ============================================================================

// ForLoopGenerator emits a counted loop from first (inclusive) to last
// (exclusive)
type ForLoopGenerator struct{}

func (*ForLoopGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeForLoop}
}

func (*ForLoopGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	first := inputOr(h, node, "first", "0")
	last := inputOr(h, node, "last", "10")
	index := declareBlockVar(ctx, node, "index", nodeName("index", node), "int")

	lines := []string{line(h, "for (int %[1]s = %[2]s; %[1]s < %[3]s; ++%[1]s) {", index.Name, first, last)}
	lines = append(lines, nestedPort(h, node, multicode.PortLoopBody)...)
	lines = append(lines, line(h, "}"))
	lines = append(lines, h.GenerateFrom(h.ExecutionTarget(node, multicode.PortCompleted))...)
	return Custom(lines)
}

func (*ForLoopGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	if PortIs(portID, "index") {
		return symbolOr(ctx, node, "index", "0")
	}
	return ""
}

// WhileLoopGenerator emits pre- and post-condition loops
type WhileLoopGenerator struct{}

func (*WhileLoopGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeWhileLoop, multicode.NodeDoWhile}
}

func (*WhileLoopGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	cond := inputOr(h, node, "condition", "false")
	// Literal match only; no constant folding
	if isLiteral(cond, "true") {
		h.Warn(node.ID, multicode.WarnPotentialInfiniteLoop, label(node))
	}

	var lines []string
	if node.Type == multicode.NodeDoWhile {
		lines = append(lines, line(h, "do {"))
		lines = append(lines, nestedPort(h, node, multicode.PortLoopBody)...)
		lines = append(lines, line(h, "} while (%s);", cond))
	} else {
		lines = append(lines, line(h, "while (%s) {", cond))
		lines = append(lines, nestedPort(h, node, multicode.PortLoopBody)...)
		lines = append(lines, line(h, "}"))
	}
	lines = append(lines, h.GenerateFrom(h.ExecutionTarget(node, multicode.PortCompleted))...)
	return Custom(lines)
}

// ForEachGenerator iterates an array by reference with a manual index
type ForEachGenerator struct{}

func (*ForEachGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeForEach}
}

func (*ForEachGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	array, ok := h.InputExpression(node, "array")
	if !ok || array == "" {
		array = multicode.DefaultLiteral(multicode.PortVector)
		ctx.AddInclude(multicode.RequiredIncludes(multicode.PortVector)...)
	} else if p := node.Input("array"); p != nil {
		ctx.AddInclude(multicode.RequiredIncludes(p.DataType)...)
	}
	ctx.AddInclude("<cstddef>")

	element := declareBlockVar(ctx, node, "element", nodeName("element", node), "auto&")
	index := declareNodeVar(ctx, node, "index", nodeName("index", node), "std::size_t")

	lines := []string{
		line(h, "std::size_t %s = 0;", index.Name),
		line(h, "for (auto& %s : %s) {", element.Name, array),
	}
	lines = append(lines, nestedPort(h, node, multicode.PortLoopBody)...)
	h.PushIndent()
	lines = append(lines, line(h, "++%s;", index.Name))
	h.PopIndent()
	lines = append(lines, line(h, "}"))
	lines = append(lines, h.GenerateFrom(h.ExecutionTarget(node, multicode.PortCompleted))...)
	return Custom(lines)
}

func (*ForEachGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	switch {
	case PortIs(portID, "element"):
		return symbolOr(ctx, node, "element", "0.0")
	case PortIs(portID, "index"):
		return symbolOr(ctx, node, "index", "0")
	}
	return ""
}

// ============================================================================
// Fan-out
// ============================================================================

// SequenceGenerator emits every connected then-N branch in order of N
type SequenceGenerator struct{}

func (*SequenceGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeSequence}
}

func (*SequenceGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	var lines []string
	for _, b := range h.ConnectedExecutionPorts(node, multicode.PrefixThen) {
		lines = append(lines, h.GenerateBranch(b)...)
	}
	return Custom(lines)
}

// SwitchGenerator dispatches on an integer selection over case-N outputs
type SwitchGenerator struct{}

func (*SwitchGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeSwitch}
}

func (*SwitchGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	selection := inputOr(h, node, "selection", "0")

	lines := []string{line(h, "switch (%s) {", selection)}
	h.PushIndent()
	for _, b := range h.ConnectedExecutionPorts(node, multicode.PrefixCase) {
		lines = append(lines, caseBlock(h, fmt.Sprintf("case %d:", b.Ordinal), b)...)
	}
	lines = append(lines, caseBlock(h, "default:", Branch{Target: h.ExecutionTarget(node, multicode.PortDefault)})...)
	h.PopIndent()
	lines = append(lines, line(h, "}"))
	return Custom(lines)
}

// caseBlock emits "<label> { body; break; }" at the current indentation
func caseBlock(h Helpers, caseLabel string, b Branch) []string {
	lines := []string{line(h, "%s {", caseLabel)}
	lines = append(lines, nestedBranch(h, b)...)
	h.PushIndent()
	lines = append(lines, line(h, "break;"))
	h.PopIndent()
	lines = append(lines, line(h, "}"))
	return lines
}

// LoopControlGenerator emits break and continue
type LoopControlGenerator struct{}

func (*LoopControlGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeBreak, multicode.NodeContinue}
}

func (*LoopControlGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	if node.Type == multicode.NodeContinue {
		return Stop(line(h, "continue;"))
	}
	return Stop(line(h, "break;"))
}
