package codegen

import (
	"fmt"
	"strings"

	multicode "github.com/redvampir/multicode-sub002"
)

// ============================================================================
// User Functions
// ============================================================================
//
// A function body is generated by the driver as its own unit. The nodes
// here only bind ports to parameters. Parameters are always taken in the
// order of Function.Parameters, never in the order of the node's ports.

func init() {
	mustRegisterStandard(&FunctionEntryGenerator{})
	mustRegisterStandard(&FunctionReturnGenerator{})
	mustRegisterStandard(&CallUserFunctionGenerator{})
}

// FunctionName returns the C++ name of a user function
func FunctionName(fn *multicode.Function) string {
	return Identifier(fn.Name, "function_"+multicode.ShortID(fn.ID))
}

// ResultTypeName returns the name of the aggregate returned by a function
// with two or more outputs
func ResultTypeName(fn *multicode.Function) string {
	return FunctionName(fn) + "Result"
}

// ReturnType returns the C++ return type of fn
func ReturnType(fn *multicode.Function) string {
	outs := fn.Outputs()
	switch len(outs) {
	case 0:
		return "void"
	case 1:
		return multicode.TargetType(outs[0].DataType)
	default:
		return ResultTypeName(fn)
	}
}

// Signature returns "<return type> <name>(<params>)"
func Signature(fn *multicode.Function) string {
	ins := fn.Inputs()
	names := parameterNames(ins)
	params := make([]string, len(ins))
	for i, p := range ins {
		params[i] = multicode.TargetType(p.DataType) + " " + names[i]
	}
	return fmt.Sprintf("%s %s(%s)", ReturnType(fn), FunctionName(fn), strings.Join(params, ", "))
}

// ResultTypeDeclaration returns the struct declaration for a function with
// two or more outputs, or nil
func ResultTypeDeclaration(fn *multicode.Function, indent string) []string {
	outs := fn.Outputs()
	if len(outs) < 2 {
		return nil
	}
	fields := parameterNames(outs)
	lines := []string{"struct " + ResultTypeName(fn) + " {"}
	for i, p := range outs {
		lines = append(lines, fmt.Sprintf("%s%s %s;", indent, multicode.TargetType(p.DataType), fields[i]))
	}
	return append(lines, "};")
}

func parameterNames(params []multicode.Parameter) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return uniqueNames(names, "arg")
}

// defaultReturnValue is the value returned when nothing reaches a return
func defaultReturnValue(fn *multicode.Function) string {
	outs := fn.Outputs()
	if len(outs) == 1 {
		return valueDefault(outs[0].DataType)
	}
	values := make([]string, len(outs))
	for i, p := range outs {
		values[i] = valueDefault(p.DataType)
	}
	return ResultTypeName(fn) + "{" + strings.Join(values, ", ") + "}"
}

func valueDefault(t multicode.PortType) string {
	if lit := multicode.DefaultLiteral(t); lit != "" {
		return lit
	}
	return "{}"
}

// parameterPort finds the node port bound to a parameter
func parameterPort(ports []*multicode.Port, p multicode.Parameter) *multicode.Port {
	for _, port := range ports {
		if port != nil && !port.IsExecution() && p.Matches(port) {
			return port
		}
	}
	return nil
}

// parameterValue resolves the expression feeding the input bound to p,
// falling back to the parameter type's default literal
func parameterValue(h Helpers, node *multicode.Node, p multicode.Parameter) string {
	candidates := []string{p.ID, p.Name}
	if port := parameterPort(node.Inputs, p); port != nil {
		candidates = append([]string{port.ID}, candidates...)
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if expr, ok := h.InputExpression(node, c); ok && expr != "" {
			return expr
		}
	}
	return valueDefault(p.DataType)
}

// localPortID strips the "<nodeId>-" prefix editors put on port ids
func localPortID(node *multicode.Node, portID string) string {
	return strings.TrimPrefix(portID, node.ID+"-")
}

// ============================================================================
// FunctionEntry
// ============================================================================

// FunctionEntryGenerator exposes the function's input parameters
type FunctionEntryGenerator struct{}

func (*FunctionEntryGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeFunctionEntry}
}

func (*FunctionEntryGenerator) Generate(*multicode.Node, *Context, Helpers) Result {
	return Continue()
}

func (*FunctionEntryGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	fn := ctx.Function
	if fn == nil {
		fn = ctx.FindFunction(node.StringProperty("functionId", ""))
	}
	port := node.Port(portID)
	if port == nil {
		port = &multicode.Port{ID: portID, Name: localPortID(node, portID)}
	}
	if fn != nil {
		ins := fn.Inputs()
		names := parameterNames(ins)
		for i, p := range ins {
			if p.Matches(port) {
				return names[i]
			}
		}
	}
	return Identifier(port.Name, localPortID(node, portID))
}

// ============================================================================
// FunctionReturn
// ============================================================================

// FunctionReturnGenerator returns the output parameters of the enclosing
// function
type FunctionReturnGenerator struct{}

func (*FunctionReturnGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeFunctionReturn}
}

func (*FunctionReturnGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	fn := ctx.Function
	if fn == nil {
		h.Warn(node.ID, multicode.WarnOrphanReturn, label(node))
		if ctx.Options.WrapInMain {
			// int main() cannot return void
			return Stop(line(h, "return 0;"))
		}
		return Stop(line(h, "return;"))
	}

	outs := fn.Outputs()
	values := make([]string, len(outs))
	for i, p := range outs {
		values[i] = parameterValue(h, node, p)
	}

	switch len(outs) {
	case 0:
		return Stop(line(h, "return;"))
	case 1:
		return Stop(line(h, "return %s;", values[0]))
	default:
		return Stop(line(h, "return %s{%s};", ResultTypeName(fn), strings.Join(values, ", ")))
	}
}

// ============================================================================
// CallUserFunction
// ============================================================================

// CallUserFunctionGenerator calls a user function. The result is stored
// in call_<shortid>; with two or more outputs each field is also copied
// into its own variable so downstream nodes read it by name. Typed results
// of calls inside nested blocks are hoisted like variables.
type CallUserFunctionGenerator struct{}

func (*CallUserFunctionGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeCallUserFunction}
}

func (g *CallUserFunctionGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	fnID := node.StringProperty("functionId", "")
	if fnID == "" {
		h.Fail(node.ID, multicode.ErrMissingFunctionReference, label(node))
		return Continue(line(h, "/* error: %s has no function reference */", commentText(label(node))))
	}

	fn := ctx.FindFunction(fnID)
	if fn == nil {
		return g.generateUnresolved(node, fnID, ctx, h)
	}

	ins := fn.Inputs()
	args := make([]string, len(ins))
	for i, p := range ins {
		args[i] = parameterValue(h, node, p)
	}
	call := fmt.Sprintf("%s(%s)", FunctionName(fn), strings.Join(args, ", "))

	outs := fn.Outputs()
	if len(outs) == 0 {
		return Continue(line(h, "%s;", call))
	}

	result, stmt := bindVar(ctx, h, PortKey(node.ID, "result"), Symbol{
		Name:   ctx.NewName(nodeName("call", node)),
		Type:   ReturnType(fn),
		NodeID: node.ID,
	}, defaultReturnValue(fn), call)
	lines := []string{stmt}

	if len(outs) == 1 {
		g.bindOutput(ctx, node, outs[0], result)
		return Continue(lines...)
	}

	fields := parameterNames(outs)
	for i, p := range outs {
		sym, stmt := bindVar(ctx, h, PortKey(node.ID, "field-"+p.ID), Symbol{
			Name:   ctx.NewName(result.Name + "_" + fields[i]),
			Type:   multicode.TargetType(p.DataType),
			NodeID: node.ID,
		}, multicode.DefaultLiteral(p.DataType), result.Name+"."+fields[i])
		lines = append(lines, stmt)
		g.bindOutput(ctx, node, p, sym)
	}
	return Continue(lines...)
}

// bindOutput makes the node port bound to p resolve to sym
func (*CallUserFunctionGenerator) bindOutput(ctx *Context, node *multicode.Node, p multicode.Parameter, sym Symbol) {
	ctx.Declare(PortKey(node.ID, p.ID), sym)
	if port := parameterPort(node.Outputs, p); port != nil {
		ctx.Declare(PortKey(node.ID, localPortID(node, port.ID)), sym)
	}
}

// generateUnresolved calls a function that is not in scope, passing the
// node's data inputs in port order
func (*CallUserFunctionGenerator) generateUnresolved(node *multicode.Node, fnID string, ctx *Context, h Helpers) Result {
	name := node.StringProperty("functionName", node.Label)
	if name == "" {
		name = fnID
	}
	h.Warn(node.ID, multicode.WarnUnresolvedFunction, name)

	var args []string
	for _, p := range node.Inputs {
		if p == nil || p.IsExecution() {
			continue
		}
		if expr, ok := h.InputExpression(node, p.ID); ok && expr != "" {
			args = append(args, expr)
		} else {
			args = append(args, valueDefault(p.DataType))
		}
	}
	call := fmt.Sprintf("%s(%s)", Identifier(name, "function_"+multicode.ShortID(fnID)), strings.Join(args, ", "))

	var outs []*multicode.Port
	for _, p := range node.Outputs {
		if p != nil && !p.IsExecution() {
			outs = append(outs, p)
		}
	}
	if len(outs) == 0 {
		return Continue(line(h, "%s;", call))
	}

	result := declareNodeVar(ctx, node, "result", nodeName("call", node), "auto")
	lines := []string{line(h, "auto %s = %s;", result.Name, call)}
	if len(outs) == 1 {
		ctx.Declare(PortKey(node.ID, localPortID(node, outs[0].ID)), result)
		return Continue(lines...)
	}

	ctx.AddInclude("<tuple>")
	for i, p := range outs {
		local := localPortID(node, p.ID)
		sym := declareNodeVar(ctx, node, "field-"+local, result.Name+"_"+Identifier(p.Name, local), "auto")
		ctx.Declare(PortKey(node.ID, local), sym)
		lines = append(lines, line(h, "auto %s = std::get<%d>(%s);", sym.Name, i, result.Name))
	}
	return Continue(lines...)
}

func (*CallUserFunctionGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	if fn := ctx.FindFunction(node.StringProperty("functionId", "")); fn != nil {
		port := node.Port(portID)
		if port == nil {
			port = &multicode.Port{ID: portID}
		}
		outs := fn.Outputs()
		for _, p := range outs {
			if !p.Matches(port) {
				continue
			}
			if len(outs) == 1 {
				return symbolOr(ctx, node, "result", "")
			}
			return symbolOr(ctx, node, "field-"+p.ID, "")
		}
	}
	if sym, ok := ctx.Symbol(PortKey(node.ID, "field-"+localPortID(node, portID))); ok {
		return sym.Name
	}
	if sym, ok := ctx.Symbol(PortKey(node.ID, localPortID(node, portID))); ok {
		return sym.Name
	}
	return symbolOr(ctx, node, "result", "")
}
