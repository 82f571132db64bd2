package codegen

import (
	multicode "github.com/redvampir/multicode-sub002"
)

// ============================================================================
// I/O Nodes
// ============================================================================

func init() {
	mustRegisterStandard(&PrintGenerator{})
	mustRegisterStandard(&InputGenerator{})
}

// PrintGenerator writes a value to std::cout
type PrintGenerator struct{}

func (*PrintGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodePrint}
}

func (*PrintGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	ctx.AddInclude("<iostream>")
	value := inputOr(h, node, "value", `""`)
	return Continue(line(h, "std::cout << %s << std::endl;", value))
}

// InputGenerator reads one line from std::cin into a string variable.
// Inside a nested block the variable is hoisted so later nodes can read it.
type InputGenerator struct{}

func (*InputGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeInput}
}

func (*InputGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	ctx.AddInclude("<iostream>", "<string>")

	var lines []string
	if prompt, ok := h.InputExpression(node, "prompt"); ok && prompt != "" && !isLiteral(prompt, `""`) {
		lines = append(lines, line(h, "std::cout << %s;", prompt))
	}

	if ctx.Depth() > ctx.UnitDepth() {
		name := ctx.NewName(nodeName("input", node))
		sym := ctx.Hoist(PortKey(node.ID, "result"), Symbol{Name: name, Type: "std::string", NodeID: node.ID}, "std::string "+name+";")
		return Continue(append(lines, line(h, "std::getline(std::cin, %s);", sym.Name))...)
	}

	sym := declareNodeVar(ctx, node, "result", nodeName("input", node), "std::string")
	lines = append(lines,
		line(h, "std::string %s;", sym.Name),
		line(h, "std::getline(std::cin, %s);", sym.Name),
	)
	return Continue(lines...)
}

func (*InputGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	return symbolOr(ctx, node, "result", `std::string()`)
}
