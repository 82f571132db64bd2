package codegen

import (
	"strings"

	multicode "github.com/redvampir/multicode-sub002"
)

// ============================================================================
// Miscellaneous Nodes
// ============================================================================

func init() {
	mustRegisterStandard(&CommentGenerator{})
	mustRegisterStandard(&RerouteGenerator{})
	mustRegisterStandard(&ConstantGenerator{})
}

// CommentGenerator copies the node's text into the output as // lines
type CommentGenerator struct{}

func (*CommentGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeComment}
}

func (*CommentGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	text := node.StringProperty("text", node.DisplayLabel(ctx.Localized()))
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return Continue()
	}
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimRight(line(h, "// %s", l), " "))
	}
	return Continue(lines...)
}

// RerouteGenerator passes its "in" input through unchanged. On an
// execution path it is transparent.
type RerouteGenerator struct{}

func (*RerouteGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeReroute}
}

func (*RerouteGenerator) Generate(*multicode.Node, *Context, Helpers) Result {
	return Continue()
}

func (*RerouteGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	return inputDefault(h, node, "in", "")
}

// ConstantGenerator is a literal typed by its output port
type ConstantGenerator struct{}

func (*ConstantGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeConstant}
}

func (*ConstantGenerator) Generate(*multicode.Node, *Context, Helpers) Result {
	return Continue()
}

func (*ConstantGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	pt := multicode.ParsePortType(node.StringProperty("dataType", ""))
	if p := node.Output(portID); p != nil && p.DataType.Known() {
		pt = p.DataType
	}
	ctx.AddInclude(multicode.RequiredIncludes(pt)...)
	v, ok := node.Property("value")
	if !ok {
		return multicode.DefaultLiteral(pt)
	}
	return multicode.FormatLiteral(pt, v)
}

// ============================================================================
// Fallback
// ============================================================================

// FallbackGenerator handles node types nothing is registered for. It
// leaves a visible placeholder and lets execution continue.
type FallbackGenerator struct{}

func (*FallbackGenerator) NodeTypes() []multicode.NodeType {
	return nil
}

func (*FallbackGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	h.Warn(node.ID, multicode.WarnUnknownNodeType, string(node.Type))
	return Continue(line(h, "/* unsupported node type: %s */", commentText(string(node.Type))))
}
