package codegen

import (
	multicode "github.com/redvampir/multicode-sub002"
)

// ============================================================================
// Variable Nodes
// ============================================================================
//
// Variables are identified by the variableId property when present and by
// their sanitized name otherwise, so Variable, GetVariable and SetVariable
// nodes of the same variable share one symbol.

func init() {
	mustRegisterStandard(&VariableGenerator{})
	mustRegisterStandard(&GetVariableGenerator{})
	mustRegisterStandard(&SetVariableGenerator{})
}

// VariableKey returns the symbol key of the variable a node refers to
func VariableKey(node *multicode.Node) string {
	if id := node.StringProperty("variableId", ""); id != "" {
		return "var:" + id
	}
	if name := multicode.Transliterate(variableDisplayName(node)); name != "" {
		return "var:" + name
	}
	return "var:" + node.ID
}

func variableDisplayName(node *multicode.Node) string {
	if name := node.StringProperty("variableName", ""); name != "" {
		return name
	}
	return node.Label
}

func variableIdentifier(node *multicode.Node) string {
	return Identifier(variableDisplayName(node), "var_"+multicode.ShortID(node.ID))
}

// variableType reads the dataType property, then the value ports
func variableType(node *multicode.Node) multicode.PortType {
	if dt := node.StringProperty("dataType", ""); dt != "" {
		return multicode.ParsePortType(dt)
	}
	for _, p := range []*multicode.Port{node.Output("value"), node.Input("value")} {
		if p != nil && p.DataType != "" && p.DataType != multicode.PortExecution {
			return p.DataType
		}
	}
	return ""
}

// VariableGenerator declares a variable once per run. Inside a nested
// block the declaration is hoisted and the initial value assigned in place.
type VariableGenerator struct{}

func (*VariableGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeVariable}
}

func (*VariableGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	key := VariableKey(node)
	if sym, ok := ctx.Symbol(key); ok {
		ctx.Declare(ResultKey(node.ID), sym)
		return Continue()
	}

	pt := variableType(node)
	initial := multicode.DefaultLiteral(pt)
	if v, ok := node.Property("initialValue"); ok {
		initial = multicode.FormatLiteral(pt, v)
	}
	initial = inputOr(h, node, "initialValue", initial)
	ctx.AddInclude(multicode.RequiredIncludes(pt)...)

	sym, stmt := bindVar(ctx, h, key, Symbol{
		Name:   ctx.NewName(variableIdentifier(node)),
		Type:   multicode.TargetType(pt),
		NodeID: node.ID,
	}, multicode.DefaultLiteral(pt), initial)
	ctx.Declare(ResultKey(node.ID), sym)
	return Continue(stmt)
}

func (*VariableGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	if sym, ok := ctx.Symbol(VariableKey(node)); ok {
		return sym.Name
	}
	return variableIdentifier(node)
}

// GetVariableGenerator reads a variable. It never fails: an undeclared
// variable resolves to the sanitized label.
type GetVariableGenerator struct{}

func (*GetVariableGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeGetVariable}
}

func (*GetVariableGenerator) Generate(*multicode.Node, *Context, Helpers) Result {
	return Continue()
}

func (*GetVariableGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	if sym, ok := ctx.Symbol(VariableKey(node)); ok {
		return sym.Name
	}
	return Identifier(node.Label, variableIdentifier(node))
}

// SetVariableGenerator assigns a variable, declaring it on first use.
// A variable first set inside a nested block is hoisted to the top of the
// enclosing function or main.
type SetVariableGenerator struct{}

func (*SetVariableGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeSetVariable}
}

func (*SetVariableGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	key := VariableKey(node)
	value := inputDefault(h, node, "value", "0")

	sym, ok := ctx.Symbol(key)
	if !ok {
		sym, ok = ctx.Symbol(ResultKey(node.ID))
	}
	if ok {
		ctx.Declare(ResultKey(node.ID), sym)
		return Continue(line(h, "%s = %s;", sym.Name, value))
	}

	pt := variableType(node)
	ctx.AddInclude(multicode.RequiredIncludes(pt)...)
	sym, stmt := bindVar(ctx, h, key, Symbol{
		Name:   ctx.NewName(variableIdentifier(node)),
		Type:   multicode.TargetType(pt),
		NodeID: node.ID,
	}, multicode.DefaultLiteral(pt), value)
	ctx.Declare(ResultKey(node.ID), sym)
	return Continue(stmt)
}

func (*SetVariableGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	if sym, ok := ctx.Symbol(ResultKey(node.ID)); ok {
		return sym.Name
	}
	if sym, ok := ctx.Symbol(VariableKey(node)); ok {
		return sym.Name
	}
	return variableIdentifier(node)
}
