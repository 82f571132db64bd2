package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	multicode "github.com/redvampir/multicode-sub002"
)

// ============================================================================
// Driver
// ============================================================================

// Driver generates C++ for whole graphs. It is safe for concurrent use:
// every call to Generate builds its own Context.
type Driver struct {
	registry    *Registry
	opts        multicode.Options
	logger      zerolog.Logger
	definitions DefinitionLookup
	fallback    Generator
}

// NewDriver creates a driver over a registry
func NewDriver(registry *Registry, opts multicode.Options, logger zerolog.Logger) *Driver {
	return &Driver{
		registry: registry,
		opts:     opts,
		logger:   logger,
		fallback: &FallbackGenerator{},
	}
}

// WithDefinitions makes package definitions visible to generators
func (d *Driver) WithDefinitions(lookup DefinitionLookup) *Driver {
	d.definitions = lookup
	return d
}

// Generate produces the C++ translation unit for graph. Problems in the
// graph never fail the run; they are reported as diagnostics. The error
// is only returned for invalid options.
func (d *Driver) Generate(graph *multicode.Graph) (*Output, error) {
	if err := d.opts.Validate(); err != nil {
		return nil, err
	}
	if graph == nil {
		graph = &multicode.Graph{}
	}

	logger := d.logger.With().Str("graph", graph.Name).Logger()
	logger.Debug().
		Int("nodes", len(graph.Nodes)).
		Int("edges", len(graph.Edges)).
		Int("functions", len(graph.Functions)).
		Msg("generation started")

	ctx := NewContext(d.opts, graph, logger)
	ctx.Definitions = d.definitions

	out := &Output{}

	// Phase 1: function units
	for _, fn := range graph.Functions {
		if decl := ResultTypeDeclaration(fn, d.opts.IndentUnit()); decl != nil {
			out.Declarations = append(out.Declarations, decl...)
			out.Declarations = append(out.Declarations, "")
		}
		out.Functions = append(out.Functions, d.generateFunction(ctx, fn))
	}

	// Phase 2: main body
	body := d.generateMain(ctx, graph)

	out.Includes = ctx.Includes()
	out.Diagnostics = ctx.Diagnostics()
	out.assemble(d.opts, d.graphName(graph), body)

	logger.Debug().
		Int("lines", len(out.file)).
		Int("warnings", len(out.Warnings())).
		Int("errors", len(out.Errors())).
		Msg("generation finished")
	return out, nil
}

func (d *Driver) graphName(graph *multicode.Graph) string {
	if d.opts.GraphName != "" {
		return d.opts.GraphName
	}
	if graph.Name != "" {
		return graph.Name
	}
	return "graph"
}

// generateMain emits the statements reachable from the first Start node
func (d *Driver) generateMain(ctx *Context, graph *multicode.Graph) []string {
	if d.opts.WrapInMain {
		ctx.beginUnit(1)
	}
	starts := graph.NodesOfType(multicode.NodeStart)
	if len(starts) == 0 {
		ctx.Logger.Debug().Msg("graph has no Start node")
		return nil
	}
	e := d.newEmitter(ctx, graph)
	body := e.chain(starts[0])
	return append(ctx.Hoisted(), body...)
}

// generateFunction emits one function definition
func (d *Driver) generateFunction(parent *Context, fn *multicode.Function) FunctionUnit {
	ctx := parent.Fork(fn)
	unit := FunctionUnit{
		FunctionID: fn.ID,
		Name:       FunctionName(fn),
		Signature:  Signature(fn),
	}

	for _, p := range fn.Parameters {
		parent.AddInclude(multicode.RequiredIncludes(p.DataType)...)
	}

	ctx.beginUnit(1)
	var body []string
	if fn.Graph != nil {
		e := d.newEmitter(ctx, fn.Graph)
		if entries := fn.Graph.NodesOfType(multicode.NodeFunctionEntry); len(entries) > 0 {
			chain := e.chain(entries[0])
			body = append(ctx.Hoisted(), chain...)
		}
	}
	if len(fn.Outputs()) > 0 && !endsWithReturn(body, ctx.Indent()) {
		body = append(body, ctx.Indent()+"return "+defaultReturnValue(fn)+";")
	}

	unit.Lines = append(unit.Lines, unit.Signature+" {")
	unit.Lines = append(unit.Lines, body...)
	unit.Lines = append(unit.Lines, "}")
	return unit
}

// endsWithReturn reports whether the last statement at the given
// indentation is a return
func endsWithReturn(lines []string, indent string) bool {
	for i := len(lines) - 1; i >= 0; i-- {
		if isMarker(lines[i]) {
			continue
		}
		line := lines[i]
		return strings.HasPrefix(line, indent+"return") &&
			!strings.HasPrefix(line, indent+" ") && !strings.HasPrefix(line, indent+"\t")
	}
	return false
}

// ============================================================================
// Emitter - Helpers implementation for one unit
// ============================================================================

type edgeRef struct {
	edge *multicode.Edge
	kind multicode.EdgeKind
}

type emitter struct {
	d          *Driver
	ctx        *Context
	graph      *multicode.Graph
	nodes      map[string]*multicode.Node
	incoming   map[string][]edgeRef // target node id -> edges
	outgoing   map[string][]edgeRef // source node id -> edges
	depth      int
	evaluating map[string]bool
	// entries holds the execution input each node was last reached through
	entries map[string]string
}

func (d *Driver) newEmitter(ctx *Context, graph *multicode.Graph) *emitter {
	e := &emitter{
		d:          d,
		ctx:        ctx,
		graph:      graph,
		nodes:      make(map[string]*multicode.Node, len(graph.Nodes)),
		incoming:   make(map[string][]edgeRef),
		outgoing:   make(map[string][]edgeRef),
		evaluating: make(map[string]bool),
		entries:    make(map[string]string),
	}
	for _, n := range graph.Nodes {
		if n == nil {
			continue
		}
		if _, dup := e.nodes[n.ID]; !dup {
			e.nodes[n.ID] = n
		}
	}
	for _, edge := range graph.Edges {
		if edge == nil {
			continue
		}
		ref := edgeRef{edge: edge, kind: graph.KindOf(edge)}
		e.incoming[edge.TargetNode] = append(e.incoming[edge.TargetNode], ref)
		e.outgoing[edge.SourceNode] = append(e.outgoing[edge.SourceNode], ref)
	}
	return e
}

func (e *emitter) generatorFor(node *multicode.Node) Generator {
	if g, ok := e.d.registry.Get(node.Type); ok {
		return g
	}
	return e.d.fallback
}

// chain generates start and then follows exec-out until a generator stops
// the flow or an already processed node is reached
func (e *emitter) chain(start *multicode.Node) []string {
	var lines []string
	for current := start; current != nil; {
		if e.ctx.IsProcessed(e.processKey(current)) {
			break
		}
		result := e.emitNode(current)
		lines = append(lines, result.Lines...)
		if !result.FollowExecution {
			break
		}
		current = e.ExecutionTarget(current, multicode.PortExecOut)
	}
	return lines
}

// processKey identifies one emission of a node. Nodes entered through an
// execution input other than exec-in are emitted once per input.
func (e *emitter) processKey(node *multicode.Node) string {
	if entry := e.EntryPort(node); entry != multicode.PortExecIn {
		return node.ID + "@" + entry
	}
	return node.ID
}

// emitNode runs the node's generator once and wraps its lines in
// source-map markers
func (e *emitter) emitNode(node *multicode.Node) (result Result) {
	e.ctx.MarkProcessed(e.processKey(node))
	gen := e.generatorFor(node)
	indent := e.ctx.Indent()
	depth := e.ctx.Depth()

	defer func() {
		if r := recover(); r != nil {
			e.ctx.setDepth(depth)
			e.ctx.Logger.Error().
				Str("node", node.ID).
				Str("type", string(node.Type)).
				Interface("panic", r).
				Msg("generator panicked")
			e.Fail(node.ID, multicode.ErrGeneratorPanic, string(node.Type), r)
			result = Continue(
				beginMarker(indent, node),
				indent+fmt.Sprintf("/* error: generator for %s failed */", node.Type),
				endMarker(indent, node),
			)
		}
	}()

	result = gen.Generate(node, e.ctx, e)
	if e.ctx.Depth() != depth {
		e.ctx.Logger.Warn().
			Str("node", node.ID).
			Int("expected", depth).
			Int("actual", e.ctx.Depth()).
			Msg("generator left indentation unbalanced")
		e.ctx.setDepth(depth)
	}
	if len(result.Lines) == 0 {
		return result
	}

	wrapped := make([]string, 0, len(result.Lines)+3)
	wrapped = append(wrapped, beginMarker(indent, node))
	if e.ctx.Options.IncludeComments && node.Type != multicode.NodeComment {
		if label := node.DisplayLabel(e.ctx.Localized()); label != "" {
			wrapped = append(wrapped, indent+"// "+commentText(label))
		}
	}
	wrapped = append(wrapped, result.Lines...)
	wrapped = append(wrapped, endMarker(indent, node))
	result.Lines = wrapped
	return result
}

// ============================================================================
// Helpers
// ============================================================================

func (e *emitter) Indent() string {
	return e.ctx.Indent()
}

func (e *emitter) PushIndent() {
	e.ctx.PushIndent()
}

func (e *emitter) PopIndent() {
	e.ctx.PopIndent()
}

func (e *emitter) InputExpression(node *multicode.Node, port string) (string, bool) {
	for _, ref := range e.incoming[node.ID] {
		if ref.kind != multicode.EdgeData || !PortIs(ref.edge.TargetPort, port) {
			continue
		}
		source := e.nodes[ref.edge.SourceNode]
		if source == nil {
			continue
		}
		return e.OutputExpression(source, ref.edge.SourcePort), true
	}
	if p := node.Input(port); p != nil && p.Value != nil {
		return multicode.FormatLiteral(p.DataType, p.Value), true
	}
	return "", false
}

func (e *emitter) OutputExpression(node *multicode.Node, port string) (expr string) {
	key := node.ID + "\x00" + port
	fallback := multicode.DefaultLiteral(outputType(node, port))
	if fallback == "" {
		fallback = "0"
	}
	if e.evaluating[key] {
		// data cycle
		return fallback
	}
	e.evaluating[key] = true
	defer delete(e.evaluating, key)

	defer func() {
		if r := recover(); r != nil {
			e.Fail(node.ID, multicode.ErrGeneratorPanic, string(node.Type), r)
			expr = fallback
		}
	}()

	if g, ok := e.generatorFor(node).(ExpressionGenerator); ok {
		if value := g.OutputExpression(node, port, e.ctx, e); value != "" {
			return value
		}
		return fallback
	}
	if sym, ok := e.lookupOutput(node, port); ok {
		return sym.Name
	}
	return fallback
}

// lookupOutput finds a variable declared for a node output by generators
// that do not implement ExpressionGenerator
func (e *emitter) lookupOutput(node *multicode.Node, port string) (Symbol, bool) {
	if sym, ok := e.ctx.Symbol(PortKey(node.ID, port)); ok {
		return sym, true
	}
	if p := node.Port(port); p != nil {
		if sym, ok := e.ctx.Symbol(PortKey(node.ID, strings.TrimPrefix(p.ID, node.ID+"-"))); ok {
			return sym, true
		}
	}
	return e.ctx.Symbol(ResultKey(node.ID))
}

func outputType(node *multicode.Node, port string) multicode.PortType {
	if p := node.Port(port); p != nil {
		return p.DataType
	}
	if p := node.Output(port); p != nil {
		return p.DataType
	}
	return ""
}

func (e *emitter) ExecutionTarget(node *multicode.Node, port string) *multicode.Node {
	for _, ref := range e.outgoing[node.ID] {
		if ref.kind != multicode.EdgeExecution || !PortIs(ref.edge.SourcePort, port) {
			continue
		}
		if target := e.nodes[ref.edge.TargetNode]; target != nil {
			e.entries[target.ID] = entryPort(target, ref.edge.TargetPort)
			return target
		}
	}
	return nil
}

func (e *emitter) ConnectedExecutionPorts(node *multicode.Node, prefix string) []Branch {
	var branches []Branch
	seen := make(map[int]bool)
	for _, ref := range e.outgoing[node.ID] {
		if ref.kind != multicode.EdgeExecution {
			continue
		}
		port := node.Port(ref.edge.SourcePort)
		if port == nil {
			port = &multicode.Port{ID: ref.edge.SourcePort}
		}
		ord, ok := port.Ordinal(prefix)
		if !ok || seen[ord] {
			continue
		}
		target := e.nodes[ref.edge.TargetNode]
		if target == nil {
			continue
		}
		seen[ord] = true
		branches = append(branches, Branch{
			Ordinal: ord,
			PortID:  port.ID,
			Target:  target,
			Entry:   entryPort(target, ref.edge.TargetPort),
		})
	}
	sort.SliceStable(branches, func(i, j int) bool {
		return branches[i].Ordinal < branches[j].Ordinal
	})
	return branches
}

func (e *emitter) GenerateFrom(node *multicode.Node) []string {
	if node == nil {
		return nil
	}
	if e.depth >= e.ctx.Options.MaxDepth {
		e.Warn(node.ID, multicode.WarnMaxDepthExceeded, e.ctx.Options.MaxDepth)
		return []string{e.ctx.Indent() + "// nesting limit reached"}
	}
	e.depth++
	defer func() { e.depth-- }()
	return e.chain(node)
}

func (e *emitter) GenerateBranch(b Branch) []string {
	if b.Target == nil {
		return nil
	}
	if b.Entry != "" {
		e.entries[b.Target.ID] = b.Entry
	}
	return e.GenerateFrom(b.Target)
}

func (e *emitter) EntryPort(node *multicode.Node) string {
	if entry, ok := e.entries[node.ID]; ok {
		return entry
	}
	return multicode.PortExecIn
}

// entryPort strips the node prefix from an execution input id
func entryPort(node *multicode.Node, portID string) string {
	if portID == "" || PortIs(portID, multicode.PortExecIn) {
		return multicode.PortExecIn
	}
	return localPortID(node, portID)
}

func (e *emitter) Warn(nodeID string, code multicode.WarningCode, args ...any) {
	e.ctx.AddDiagnostic(multicode.NewWarning(nodeID, code, args...))
}

func (e *emitter) Fail(nodeID string, code multicode.ErrorCode, args ...any) {
	e.ctx.AddDiagnostic(multicode.NewError(nodeID, code, args...))
}

func (e *emitter) Symbol(key string) (Symbol, bool) {
	return e.ctx.Symbol(key)
}

func (e *emitter) Declare(key string, sym Symbol) Symbol {
	return e.ctx.Declare(key, sym)
}
