package codegen

import (
	"fmt"
	"math"

	multicode "github.com/redvampir/multicode-sub002"
)

// ============================================================================
// Stateful Flow Nodes
// ============================================================================
//
// Gate, DoN, DoOnce, FlipFlop and MultiGate keep state between calls of
// the generated function. The state lives in function-local statics of the
// generated program, never in the generator.

func init() {
	mustRegisterStandard(&GateGenerator{})
	mustRegisterStandard(&DoNGenerator{})
	mustRegisterStandard(&DoOnceGenerator{})
	mustRegisterStandard(&FlipFlopGenerator{})
	mustRegisterStandard(&MultiGateGenerator{})
	mustRegisterStandard(&ParallelGenerator{})
}

// GateGenerator is a persistent latch in front of exit. Entering through
// open, close or toggle sets the latch; entering through exec-in passes
// to exit while it is open. Property startClosed sets the initial state.
// The latch is a static hoisted to the top of the unit so every entry
// sees the same variable.
type GateGenerator struct{}

func (*GateGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeGate}
}

func (*GateGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	key := PortKey(node.ID, "open")
	open, ok := ctx.Symbol(key)
	if !ok {
		name := ctx.NewName(stateName("gate", node, "open"))
		initial := !node.BoolProperty("startClosed", false)
		open = ctx.Hoist(key, Symbol{Name: name, Type: "bool", NodeID: node.ID},
			fmt.Sprintf("static bool %s = %t;", name, initial))
	}

	switch h.EntryPort(node) {
	case multicode.PortOpen:
		return Stop(line(h, "%s = true;", open.Name))
	case multicode.PortClose:
		return Stop(line(h, "%s = false;", open.Name))
	case multicode.PortToggle:
		return Stop(line(h, "%[1]s = !%[1]s;", open.Name))
	}

	lines := []string{line(h, "if (%s) {", open.Name)}
	lines = append(lines, nestedPort(h, node, multicode.PortExit)...)
	lines = append(lines, line(h, "}"))
	return Custom(lines)
}

func (*GateGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	if PortIs(portID, "isOpen") {
		return symbolOr(ctx, node, "open", "false")
	}
	return ""
}

// DoNGenerator lets the first N executions through to exit
type DoNGenerator struct{}

func (*DoNGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeDoN}
}

func (*DoNGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	counter := declareNodeVar(ctx, node, "counter", stateName("doN", node, "counter"), "int")
	limit := declareNodeVar(ctx, node, "limit", stateName("doN", node, "limit"), "int")
	n := inputOr(h, node, "n", "1")

	lines := []string{
		line(h, "static int %s = 0;", counter.Name),
		line(h, "int %s = %s;", limit.Name, n),
		line(h, "if (%s < 0) {", limit.Name),
	}
	h.PushIndent()
	lines = append(lines, line(h, "%s = 0;", limit.Name))
	h.PopIndent()
	lines = append(lines,
		line(h, "}"),
		line(h, "if (%s < %s) {", counter.Name, limit.Name),
	)
	h.PushIndent()
	lines = append(lines, line(h, "++%s;", counter.Name))
	h.PopIndent()
	lines = append(lines, nestedPort(h, node, multicode.PortExit)...)
	lines = append(lines, line(h, "}"))
	return Custom(lines)
}

func (*DoNGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	if PortIs(portID, "counter") {
		return symbolOr(ctx, node, "counter", "0")
	}
	return ""
}

// DoOnceGenerator runs completed only on the first call
type DoOnceGenerator struct{}

func (*DoOnceGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeDoOnce}
}

func (*DoOnceGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	done := declareNodeVar(ctx, node, "done", stateName("doOnce", node, "done"), "bool")

	lines := []string{
		line(h, "static bool %s = false;", done.Name),
		line(h, "if (!%s) {", done.Name),
	}
	h.PushIndent()
	lines = append(lines, line(h, "%s = true;", done.Name))
	h.PopIndent()
	lines = append(lines, nestedPort(h, node, multicode.PortCompleted)...)
	lines = append(lines, line(h, "}"))
	return Custom(lines)
}

// FlipFlopGenerator alternates between a and b, starting with a
type FlipFlopGenerator struct{}

func (*FlipFlopGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeFlipFlop}
}

func (*FlipFlopGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	isA := declareNodeVar(ctx, node, "isA", stateName("flipFlop", node, "isA"), "bool")

	lines := []string{
		line(h, "static bool %s = false;", isA.Name),
		line(h, "%[1]s = !%[1]s;", isA.Name),
		line(h, "if (%s) {", isA.Name),
	}
	lines = append(lines, nestedPort(h, node, multicode.PortA)...)
	lines = append(lines, line(h, "} else {"))
	lines = append(lines, nestedPort(h, node, multicode.PortB)...)
	lines = append(lines, line(h, "}"))
	return Custom(lines)
}

func (*FlipFlopGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	if PortIs(portID, "isA") {
		return symbolOr(ctx, node, "isA", "false")
	}
	return ""
}

// MultiGateGenerator picks one connected out-N branch per call, either
// round-robin or at random. Properties: isRandom, loop, startIndex, seed.
type MultiGateGenerator struct{}

func (*MultiGateGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeMultiGate}
}

func (*MultiGateGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	branches := h.ConnectedExecutionPorts(node, multicode.PrefixOut)
	declared := len(node.OutputsWithPrefix(multicode.PrefixOut))
	count := len(branches)

	if count == 0 {
		h.Warn(node.ID, multicode.WarnNoBranches, label(node))
		return Custom(nil)
	}
	if count < declared {
		h.Warn(node.ID, multicode.WarnMissingBranches, label(node), count, declared)
	}

	var lines []string
	var selector string
	if node.BoolProperty("isRandom", false) {
		ctx.AddInclude("<random>")
		rng := declareNodeVar(ctx, node, "rng", stateName("multiGate", node, "rng"), "std::mt19937")
		dist := declareNodeVar(ctx, node, "dist", stateName("multiGate", node, "dist"), "std::uniform_int_distribution<int>")
		lines = append(lines,
			line(h, "static std::mt19937 %s(%du);", rng.Name, multiGateSeed(ctx, node)),
			line(h, "std::uniform_int_distribution<int> %s(0, %d);", dist.Name, count-1),
		)
		selector = fmt.Sprintf("%s(%s)", dist.Name, rng.Name)
	} else {
		index := declareNodeVar(ctx, node, "index", stateName("multiGate", node, "index"), "int")
		current := declareNodeVar(ctx, node, "current", stateName("multiGate", node, "current"), "int")
		start := node.IntProperty("startIndex", 0)
		if start < 0 {
			start = 0
		}
		if start > count-1 {
			start = count - 1
		}

		lines = append(lines,
			line(h, "static int %s = %d;", index.Name, start),
			line(h, "int %s = %s;", current.Name, index.Name),
		)
		if node.BoolProperty("loop", false) {
			lines = append(lines, line(h, "%[1]s = (%[1]s + 1) %% %[2]d;", index.Name, count))
		} else {
			// without loop the gate stays on the last branch
			lines = append(lines, line(h, "if (%s < %d) {", index.Name, count-1))
			h.PushIndent()
			lines = append(lines, line(h, "++%s;", index.Name))
			h.PopIndent()
			lines = append(lines, line(h, "}"))
		}
		selector = current.Name
	}

	lines = append(lines, line(h, "switch (%s) {", selector))
	h.PushIndent()
	for i, b := range branches {
		lines = append(lines, caseBlock(h, fmt.Sprintf("case %d:", i), b)...)
	}
	lines = append(lines, caseBlock(h, "default:", Branch{})...)
	h.PopIndent()
	lines = append(lines, line(h, "}"))
	return Custom(lines)
}

// multiGateSeed uses the seed property when it is an integer in the
// uint32 range, otherwise a hash of the node id so regenerating the same
// graph yields the same program
func multiGateSeed(ctx *Context, node *multicode.Node) uint32 {
	if v, ok := node.Property("seed"); ok {
		seed := node.IntProperty("seed", -1)
		if seed >= 0 && int64(seed) <= math.MaxUint32 {
			return uint32(seed)
		}
		ctx.Logger.Warn().
			Str("node", node.ID).
			Interface("seed", v).
			Msg("multigate seed is not a uint32, using the node id")
	}
	return multicode.Seed(node.ID)
}

// ============================================================================
// Parallel
// ============================================================================

// ParallelGenerator runs each connected thread-N branch on its own
// std::thread, joins them all and rethrows the first captured exception.
type ParallelGenerator struct{}

func (*ParallelGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{multicode.NodeParallel}
}

func (*ParallelGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	branches := h.ConnectedExecutionPorts(node, multicode.PrefixThread)
	declared := len(node.OutputsWithPrefix(multicode.PrefixThread))
	if len(branches) < declared {
		h.Warn(node.ID, multicode.WarnMissingBranches, label(node), len(branches), declared)
	}

	var lines []string
	if len(branches) > 0 {
		ctx.AddInclude("<exception>", "<mutex>", "<thread>", "<vector>")
		errVar := declareNodeVar(ctx, node, "error", stateName("parallel", node, "error"), "std::exception_ptr")
		mutex := declareNodeVar(ctx, node, "mutex", stateName("parallel", node, "mutex"), "std::mutex")
		threads := declareNodeVar(ctx, node, "threads", stateName("parallel", node, "threads"), "std::vector<std::thread>")

		lines = append(lines,
			line(h, "std::exception_ptr %s = nullptr;", errVar.Name),
			line(h, "std::mutex %s;", mutex.Name),
			line(h, "std::vector<std::thread> %s;", threads.Name),
		)
		for _, b := range branches {
			lines = append(lines, line(h, "%s.emplace_back([&]() {", threads.Name))
			h.PushIndent()
			lines = append(lines, line(h, "try {"))
			lines = append(lines, nestedBranch(h, b)...)
			lines = append(lines, line(h, "} catch (...) {"))
			h.PushIndent()
			lines = append(lines,
				line(h, "std::lock_guard<std::mutex> lock(%s);", mutex.Name),
				line(h, "if (!%s) {", errVar.Name),
			)
			h.PushIndent()
			lines = append(lines, line(h, "%s = std::current_exception();", errVar.Name))
			h.PopIndent()
			lines = append(lines, line(h, "}"))
			h.PopIndent()
			lines = append(lines, line(h, "}"))
			h.PopIndent()
			lines = append(lines, line(h, "});"))
		}
		lines = append(lines, line(h, "for (auto& worker : %s) {", threads.Name))
		h.PushIndent()
		lines = append(lines, line(h, "worker.join();"))
		h.PopIndent()
		lines = append(lines,
			line(h, "}"),
			line(h, "if (%s) {", errVar.Name),
		)
		h.PushIndent()
		lines = append(lines, line(h, "std::rethrow_exception(%s);", errVar.Name))
		h.PopIndent()
		lines = append(lines, line(h, "}"))
	}

	lines = append(lines, h.GenerateFrom(h.ExecutionTarget(node, multicode.PortCompleted))...)
	return Custom(lines)
}
