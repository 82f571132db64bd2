// Package codegen turns a multicode graph into C++ source text.
//
// Every node type is handled by a Generator looked up in a Registry. The
// Driver walks execution edges, calls generators in order and gives them a
// Helpers implementation for resolving data inputs, nested blocks,
// indentation, symbols and diagnostics.
package codegen

import (
	"strings"

	multicode "github.com/redvampir/multicode-sub002"
)

// Result is what a generator produced for one node
type Result struct {
	// Lines are fully indented statement lines
	Lines []string
	// FollowExecution asks the driver to continue with the exec-out target
	FollowExecution bool
	// CustomExecution marks generators that generated their successors
	// themselves through Helpers.GenerateFrom
	CustomExecution bool
}

// Continue returns a result that lets the driver follow exec-out
func Continue(lines ...string) Result {
	return Result{Lines: lines, FollowExecution: true}
}

// Stop returns a terminal result (return, break, continue)
func Stop(lines ...string) Result {
	return Result{Lines: lines}
}

// Custom returns a result for generators that own their successors
func Custom(lines []string) Result {
	return Result{Lines: lines, CustomExecution: true}
}

// Generator emits statements for the node types it declares.
// Generators must be stateless: all per-run state lives in the Context.
type Generator interface {
	NodeTypes() []multicode.NodeType
	Generate(node *multicode.Node, ctx *Context, h Helpers) Result
}

// ExpressionGenerator is implemented by generators whose output ports
// resolve to an expression: pure nodes, and impure nodes that declared
// a result variable.
type ExpressionGenerator interface {
	Generator
	OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string
}

// Branch is a connected execution output with its parsed ordinal
type Branch struct {
	Ordinal int
	PortID  string
	Target  *multicode.Node
	// Entry is the local id of the target input the edge ends at
	Entry string
}

// Helpers is the driver surface available to generators
type Helpers interface {
	// Indent returns the indentation of the current block
	Indent() string
	PushIndent()
	PopIndent()

	// InputExpression resolves the expression feeding an input port.
	// ok is false when nothing is connected and the port has no inline value.
	InputExpression(node *multicode.Node, port string) (expr string, ok bool)
	// OutputExpression resolves an output port of any node
	OutputExpression(node *multicode.Node, port string) string
	// ExecutionTarget returns the node connected to an execution output
	ExecutionTarget(node *multicode.Node, port string) *multicode.Node
	// ConnectedExecutionPorts lists connected "<prefix>-N" outputs by N
	ConnectedExecutionPorts(node *multicode.Node, prefix string) []Branch
	// GenerateFrom generates the execution chain starting at node as a
	// nested block at the current indentation
	GenerateFrom(node *multicode.Node) []string
	// GenerateBranch is GenerateFrom entering b.Target through b.Entry
	GenerateBranch(b Branch) []string
	// EntryPort returns the local id of the execution input the node is
	// generated for. It is "exec-in" unless the edge that reached the node
	// ends at another execution input.
	EntryPort(node *multicode.Node) string

	Warn(nodeID string, code multicode.WarningCode, args ...any)
	Fail(nodeID string, code multicode.ErrorCode, args ...any)

	Symbol(key string) (Symbol, bool)
	// Declare stores a symbol. An existing entry is kept and returned.
	Declare(key string, sym Symbol) Symbol
}

// DefinitionLookup is the package loader surface
type DefinitionLookup interface {
	Definition(t multicode.NodeType) (*multicode.NodeDefinition, bool)
	Definitions() []*multicode.NodeDefinition
}

// PortIs reports whether a full port id refers to the given suffix
func PortIs(portID, suffix string) bool {
	return portID == suffix || strings.HasSuffix(portID, "-"+suffix)
}

// ResultKey is the symbol key of a node's main result variable
func ResultKey(nodeID string) string {
	return nodeID + "-result"
}

// PortKey is the symbol key of a node output bound to a variable
func PortKey(nodeID, purpose string) string {
	return nodeID + "-" + purpose
}
