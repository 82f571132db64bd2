package codegen

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	multicode "github.com/redvampir/multicode-sub002"
)

// Symbol is a declared C++ variable
type Symbol struct {
	Name   string
	Type   string
	NodeID string
	// Depth is the block depth the symbol is visible in. It is dropped
	// when the block at that depth closes.
	Depth int
}

// runState is shared by every unit (function bodies, main) of one run
type runState struct {
	diagnostics []multicode.Diagnostic
	seen        map[string]bool
	includes    map[string]bool
}

// Context holds the state of one generation unit. A fresh Context is
// created per run; function bodies get a forked Context that shares the
// diagnostics and include set but has its own symbols and indentation.
type Context struct {
	Options     multicode.Options
	Function    *multicode.Function
	Functions   []*multicode.Function
	Definitions DefinitionLookup
	Logger      zerolog.Logger

	graph     *multicode.Graph
	run       *runState
	indent    int
	base      int
	hoisted   []string
	symbols   map[string]Symbol
	names     map[string]bool
	processed map[string]bool
}

// NewContext creates the context of a new run
func NewContext(opts multicode.Options, graph *multicode.Graph, logger zerolog.Logger) *Context {
	ctx := &Context{
		Options: opts,
		Logger:  logger,
		graph:   graph,
		run: &runState{
			seen:     make(map[string]bool),
			includes: make(map[string]bool),
		},
	}
	if graph != nil {
		ctx.Functions = graph.Functions
	}
	ctx.reset()
	return ctx
}

// Fork returns a context for generating the body of fn
func (c *Context) Fork(fn *multicode.Function) *Context {
	child := &Context{
		Options:     c.Options,
		Function:    fn,
		Functions:   c.Functions,
		Definitions: c.Definitions,
		Logger:      c.Logger.With().Str("function", fn.Name).Logger(),
		graph:       fn.Graph,
		run:         c.run,
	}
	child.reset()

	// parameters live in the function's outermost block
	ins := fn.Inputs()
	for i, name := range parameterNames(ins) {
		child.Declare(parameterKey(ins[i]), Symbol{
			Name:  name,
			Type:  multicode.TargetType(ins[i].DataType),
			Depth: 1,
		})
	}
	return child
}

// parameterKey makes a parameter share the symbol of the variable with
// the same name
func parameterKey(p multicode.Parameter) string {
	if name := multicode.Transliterate(p.Name); name != "" {
		return "var:" + name
	}
	return "var:" + p.ID
}

func (c *Context) reset() {
	c.indent = 0
	c.base = 0
	c.hoisted = nil
	c.symbols = make(map[string]Symbol)
	c.names = make(map[string]bool)
	c.processed = make(map[string]bool)
	// reserved by the emitted program skeleton
	c.names["main"] = true
}

// Graph returns the graph being generated
func (c *Context) Graph() *multicode.Graph {
	return c.graph
}

// ============================================================================
// Indentation
// ============================================================================

// Indent returns the indentation string of the current depth
func (c *Context) Indent() string {
	return strings.Repeat(c.Options.IndentUnit(), c.indent)
}

// Depth returns the indentation depth
func (c *Context) Depth() int {
	return c.indent
}

func (c *Context) PushIndent() {
	c.indent++
}

// PopIndent closes the current block and every symbol declared in it
func (c *Context) PopIndent() {
	if c.indent == 0 {
		c.Logger.Warn().Msg("unbalanced indentation pop")
		return
	}
	c.indent--
	c.closeScopes()
}

func (c *Context) setDepth(depth int) {
	c.indent = depth
	c.closeScopes()
}

// beginUnit sets the depth of the unit's outermost block
func (c *Context) beginUnit(depth int) {
	c.setDepth(depth)
	c.base = depth
}

// UnitDepth returns the depth of the outermost block of the unit
func (c *Context) UnitDepth() int {
	return c.base
}

func (c *Context) closeScopes() {
	for key, sym := range c.symbols {
		if sym.Depth > c.indent {
			delete(c.symbols, key)
		}
	}
}

// ============================================================================
// Symbols
// ============================================================================

// Symbol looks up a declared symbol
func (c *Context) Symbol(key string) (Symbol, bool) {
	sym, ok := c.symbols[key]
	return sym, ok
}

// Declare stores sym under key. The first declaration wins so that a
// name, once handed out, never changes during the run.
func (c *Context) Declare(key string, sym Symbol) Symbol {
	if existing, ok := c.symbols[key]; ok {
		return existing
	}
	if sym.Depth == 0 {
		sym.Depth = c.indent
	}
	c.symbols[key] = sym
	c.names[sym.Name] = true
	return sym
}

// Hoist declares sym in the unit's outermost block. decl is the
// declaration statement without indentation; it is emitted at the top of
// the unit by Hoisted. An existing entry is kept and returned.
func (c *Context) Hoist(key string, sym Symbol, decl string) Symbol {
	if existing, ok := c.symbols[key]; ok {
		return existing
	}
	sym.Depth = c.base
	c.symbols[key] = sym
	c.names[sym.Name] = true
	c.hoisted = append(c.hoisted, strings.Repeat(c.Options.IndentUnit(), c.base)+decl)
	return sym
}

// Hoisted returns the hoisted declarations in declaration order
func (c *Context) Hoisted() []string {
	return append([]string(nil), c.hoisted...)
}

// NewName reserves an identifier unique within the unit. base must
// already be a valid identifier.
func (c *Context) NewName(base string) string {
	name := base
	for i := 2; c.names[name]; i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	c.names[name] = true
	return name
}

// ============================================================================
// Processed nodes
// ============================================================================

// IsProcessed reports whether the node's statements were already emitted
func (c *Context) IsProcessed(nodeID string) bool {
	return c.processed[nodeID]
}

// MarkProcessed records the node and reports whether it was new
func (c *Context) MarkProcessed(nodeID string) bool {
	if c.processed[nodeID] {
		return false
	}
	c.processed[nodeID] = true
	return true
}

// ============================================================================
// Diagnostics and includes
// ============================================================================

// AddDiagnostic appends a diagnostic. Repeats of the same code and message
// for the same node are dropped, because expressions may be resolved many
// times per run.
func (c *Context) AddDiagnostic(d multicode.Diagnostic) {
	key := d.NodeID + "\x00" + d.Code + "\x00" + d.Message
	if c.run.seen[key] {
		return
	}
	c.run.seen[key] = true
	c.run.diagnostics = append(c.run.diagnostics, d)

	event := c.Logger.Debug()
	if d.IsError() {
		event = c.Logger.Warn()
	}
	event.Str("node", d.NodeID).Str("code", d.Code).Msg(d.Message)
}

// Diagnostics returns the diagnostics collected so far
func (c *Context) Diagnostics() []multicode.Diagnostic {
	return append([]multicode.Diagnostic(nil), c.run.diagnostics...)
}

// AddInclude records a header such as "<iostream>"
func (c *Context) AddInclude(headers ...string) {
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if !strings.HasPrefix(h, "<") && !strings.HasPrefix(h, `"`) {
			h = "<" + h + ">"
		}
		c.run.includes[h] = true
	}
}

// Includes returns the collected headers, sorted
func (c *Context) Includes() []string {
	result := make([]string, 0, len(c.run.includes))
	for h := range c.run.includes {
		result = append(result, h)
	}
	sort.Strings(result)
	return result
}

// FindFunction resolves a function in scope by id
func (c *Context) FindFunction(id string) *multicode.Function {
	for _, fn := range c.Functions {
		if fn.ID == id {
			return fn
		}
	}
	return nil
}

// Localized reports whether comments should use localized labels
func (c *Context) Localized() bool {
	return c.Options.Localized()
}
