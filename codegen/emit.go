package codegen

import (
	"fmt"
	"strings"

	multicode "github.com/redvampir/multicode-sub002"
)

// inputOr resolves an input port or returns def when it is not connected
func inputOr(h Helpers, node *multicode.Node, port, def string) string {
	if expr, ok := h.InputExpression(node, port); ok && expr != "" {
		return expr
	}
	return def
}

// inputDefault is inputOr with the port's typed default, or def when the
// port is not declared on the node
func inputDefault(h Helpers, node *multicode.Node, port, def string) string {
	if p := node.Input(port); p != nil && p.DataType.Known() && p.DataType != multicode.PortExecution {
		def = multicode.DefaultLiteral(p.DataType)
	}
	return inputOr(h, node, port, def)
}

// nested generates the chain at target one level deeper
func nested(h Helpers, target *multicode.Node) []string {
	if target == nil {
		return nil
	}
	h.PushIndent()
	defer h.PopIndent()
	return h.GenerateFrom(target)
}

// nestedBranch generates a connected branch one level deeper
func nestedBranch(h Helpers, b Branch) []string {
	if b.Target == nil {
		return nil
	}
	h.PushIndent()
	defer h.PopIndent()
	return h.GenerateBranch(b)
}

// nestedPort generates the chain connected to an execution output one
// level deeper
func nestedPort(h Helpers, node *multicode.Node, port string) []string {
	return nested(h, h.ExecutionTarget(node, port))
}

// line formats one statement at the current indentation
func line(h Helpers, format string, args ...any) string {
	return h.Indent() + fmt.Sprintf(format, args...)
}

// declareNodeVar reserves a variable name for a node purpose and records
// it under PortKey(node.ID, purpose). A name declared earlier in the run
// is returned unchanged.
func declareNodeVar(ctx *Context, node *multicode.Node, purpose, base, cppType string) Symbol {
	key := PortKey(node.ID, purpose)
	if sym, ok := ctx.Symbol(key); ok {
		return sym
	}
	return ctx.Declare(key, Symbol{
		Name:   ctx.NewName(base),
		Type:   cppType,
		NodeID: node.ID,
	})
}

// declareBlockVar is declareNodeVar for a variable declared in the header
// of the block that follows, such as a loop counter
func declareBlockVar(ctx *Context, node *multicode.Node, purpose, base, cppType string) Symbol {
	key := PortKey(node.ID, purpose)
	if sym, ok := ctx.Symbol(key); ok {
		return sym
	}
	return ctx.Declare(key, Symbol{
		Name:   ctx.NewName(base),
		Type:   cppType,
		NodeID: node.ID,
		Depth:  ctx.Depth() + 1,
	})
}

// bindVar declares sym under key holding value and returns the statement
// to emit in place. Inside a nested block a typed variable is hoisted to
// the top of the unit, initialized with zero, and assigned here, so it
// stays readable after the block closes. Untyped variables stay in their
// block.
func bindVar(ctx *Context, h Helpers, key string, sym Symbol, zero, value string) (Symbol, string) {
	if ctx.Depth() <= ctx.UnitDepth() || sym.Type == "auto" || zero == "" {
		sym = ctx.Declare(key, sym)
		return sym, line(h, "%s %s = %s;", sym.Type, sym.Name, value)
	}
	sym = ctx.Hoist(key, sym, fmt.Sprintf("%s %s = %s;", sym.Type, sym.Name, zero))
	return sym, line(h, "%s = %s;", sym.Name, value)
}

// stateName builds "<kind>_<shortid>_<field>" for persistent node state
func stateName(kind string, node *multicode.Node, field string) string {
	return nodeName(kind, node) + "_" + field
}

// symbolOr returns the name of a declared node variable or def
func symbolOr(ctx *Context, node *multicode.Node, purpose, def string) string {
	if sym, ok := ctx.Symbol(PortKey(node.ID, purpose)); ok {
		return sym.Name
	}
	return def
}

// label returns the display label of a node used in diagnostics
func label(node *multicode.Node) string {
	if l := node.DisplayLabel(false); l != "" {
		return l
	}
	return string(node.Type) + " " + node.ID
}

// isLiteral reports whether expr is exactly the given literal text
func isLiteral(expr, literal string) bool {
	return strings.TrimSpace(expr) == literal
}
