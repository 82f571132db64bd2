package codegen

import (
	"fmt"
	"sort"

	multicode "github.com/redvampir/multicode-sub002"
)

// ============================================================================
// Math, Comparison and Logic Nodes
// ============================================================================
//
// All of these are pure: they emit no statements and resolve to an
// expression over the a and b inputs.

type binaryOp struct {
	op    string
	left  string // default for an unconnected a
	right string // default for an unconnected b
}

var arithmeticOps = map[multicode.NodeType]binaryOp{
	multicode.NodeAdd:      {"+", "0", "0"},
	multicode.NodeSubtract: {"-", "0", "0"},
	multicode.NodeMultiply: {"*", "1", "1"},
	multicode.NodeDivide:   {"/", "0", "1"},
	multicode.NodeModulo:   {"%", "0", "1"},
}

var comparisonOps = map[multicode.NodeType]binaryOp{
	multicode.NodeEqual:        {"==", "0", "0"},
	multicode.NodeNotEqual:     {"!=", "0", "0"},
	multicode.NodeGreater:      {">", "0", "0"},
	multicode.NodeGreaterEqual: {">=", "0", "0"},
	multicode.NodeLess:         {"<", "0", "0"},
	multicode.NodeLessEqual:    {"<=", "0", "0"},
}

var logicOps = map[multicode.NodeType]binaryOp{
	multicode.NodeAnd: {"&&", "false", "false"},
	multicode.NodeOr:  {"||", "false", "false"},
}

func init() {
	mustRegisterStandard(&MathGenerator{})
	mustRegisterStandard(&ComparisonGenerator{})
	mustRegisterStandard(&LogicGenerator{})
}

func opTypes(ops map[multicode.NodeType]binaryOp, extra ...multicode.NodeType) []multicode.NodeType {
	types := append([]multicode.NodeType(nil), extra...)
	for t := range ops {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// binary renders "(a op b)" with the operator's defaults
func binary(node *multicode.Node, op binaryOp, h Helpers) string {
	a := inputOr(h, node, "a", op.left)
	b := inputOr(h, node, "b", op.right)
	return fmt.Sprintf("(%s %s %s)", a, op.op, b)
}

// MathGenerator handles arithmetic and the <cmath> helpers
type MathGenerator struct{}

func (*MathGenerator) NodeTypes() []multicode.NodeType {
	return opTypes(arithmeticOps, multicode.NodePower, multicode.NodeMin, multicode.NodeMax, multicode.NodeAbs)
}

func (*MathGenerator) Generate(*multicode.Node, *Context, Helpers) Result {
	return Continue()
}

func (*MathGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	switch node.Type {
	case multicode.NodePower:
		ctx.AddInclude("<cmath>")
		return fmt.Sprintf("std::pow(%s, %s)", inputOr(h, node, "a", "0"), inputOr(h, node, "b", "1"))
	case multicode.NodeMin, multicode.NodeMax:
		ctx.AddInclude("<algorithm>")
		fn := "std::min"
		if node.Type == multicode.NodeMax {
			fn = "std::max"
		}
		return fmt.Sprintf("%s(%s, %s)", fn, inputOr(h, node, "a", "0"), inputOr(h, node, "b", "0"))
	case multicode.NodeAbs:
		ctx.AddInclude("<cmath>")
		return fmt.Sprintf("std::abs(%s)", inputOr(h, node, "a", "0"))
	}

	op, ok := arithmeticOps[node.Type]
	if !ok {
		return ""
	}
	a := inputOr(h, node, "a", op.left)
	b := inputOr(h, node, "b", op.right)
	if (node.Type == multicode.NodeDivide || node.Type == multicode.NodeModulo) && isZeroLiteral(b) {
		h.Warn(node.ID, multicode.WarnDivisionByZero, label(node))
	}
	if node.Type == multicode.NodeModulo && isFloatingNode(node) {
		ctx.AddInclude("<cmath>")
		return fmt.Sprintf("std::fmod(%s, %s)", a, b)
	}
	return fmt.Sprintf("(%s %s %s)", a, op.op, b)
}

func isZeroLiteral(expr string) bool {
	for _, zero := range []string{"0", "0.0", "0.0f", "0LL", "(0)"} {
		if isLiteral(expr, zero) {
			return true
		}
	}
	return false
}

func isFloatingNode(node *multicode.Node) bool {
	for _, p := range []*multicode.Port{node.Input("a"), node.Input("b"), node.Output("result")} {
		if p != nil && p.DataType.IsFloating() {
			return true
		}
	}
	return false
}

// ComparisonGenerator handles ==, !=, <, <=, > and >=
type ComparisonGenerator struct{}

func (*ComparisonGenerator) NodeTypes() []multicode.NodeType {
	return opTypes(comparisonOps)
}

func (*ComparisonGenerator) Generate(*multicode.Node, *Context, Helpers) Result {
	return Continue()
}

func (*ComparisonGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	op, ok := comparisonOps[node.Type]
	if !ok {
		return ""
	}
	return binary(node, op, h)
}

// LogicGenerator handles And, Or and the unary Not
type LogicGenerator struct{}

func (*LogicGenerator) NodeTypes() []multicode.NodeType {
	return opTypes(logicOps, multicode.NodeNot)
}

func (*LogicGenerator) Generate(*multicode.Node, *Context, Helpers) Result {
	return Continue()
}

func (*LogicGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	if node.Type == multicode.NodeNot {
		return fmt.Sprintf("(!%s)", inputOr(h, node, "a", "false"))
	}
	op, ok := logicOps[node.Type]
	if !ok {
		return ""
	}
	return binary(node, op, h)
}
