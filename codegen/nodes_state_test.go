package codegen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	multicode "github.com/redvampir/multicode-sub002"
)

func TestGateLatch(t *testing.T) {
	t.Parallel()

	b := newGraph("gate")
	b.node("start", multicode.NodeStart)
	b.node("seq", multicode.NodeSequence)
	b.node("g1", multicode.NodeGate, withProp("startClosed", true))
	b.node("print", multicode.NodePrint)
	b.flow("start", "seq")
	b.execTo("seq", "then-0", "g1", multicode.PortOpen)
	b.exec("seq", "then-1", "g1")
	b.execTo("seq", "then-2", "g1", multicode.PortClose)
	b.execTo("seq", "then-3", "g1", multicode.PortToggle)
	b.exec("g1", multicode.PortExit, "print")
	b.data("g1", "isOpen", "print", "value")

	out := generate(t, b.build())
	assert.Contains(t, out.Code(), strings.Join([]string{
		"int main() {",
		"    static bool gate_g1_open = false;",
		"    gate_g1_open = true;",
		"    if (gate_g1_open) {",
		"        std::cout << gate_g1_open << std::endl;",
		"    }",
		"    gate_g1_open = false;",
		"    gate_g1_open = !gate_g1_open;",
		"    return 0;",
		"}",
	}, "\n"))
	assert.Empty(t, out.Diagnostics)
}

func TestGateEntryIsEmittedOnce(t *testing.T) {
	t.Parallel()

	b := newGraph("gate")
	b.node("start", multicode.NodeStart)
	b.node("seq", multicode.NodeSequence)
	b.node("g1", multicode.NodeGate, withProp("startClosed", true))
	b.flow("start", "seq")
	b.execTo("seq", "then-0", "g1", multicode.PortOpen)
	b.execTo("seq", "then-1", "g1", multicode.PortOpen)

	out := generate(t, b.build())
	assert.Equal(t, 1, strings.Count(out.Code(), "static bool gate_g1_open = false;"))
	assert.Equal(t, 1, strings.Count(out.Code(), "gate_g1_open = true;"), "the open entry is generated once")
	assert.NotContains(t, out.Code(), "if (gate_g1_open)")
}

func TestDoNClampsLimit(t *testing.T) {
	t.Parallel()

	b := newGraph("don")
	b.node("start", multicode.NodeStart)
	b.node("dn", multicode.NodeDoN, withInput("n", multicode.PortInt32, 3))
	printNode(b, "p", "go")
	b.flow("start", "dn")
	b.exec("dn", multicode.PortExit, "p")

	out := generate(t, b.build())
	assert.Contains(t, out.Code(), strings.Join([]string{
		"    static int doN_dn_counter = 0;",
		"    int doN_dn_limit = 3;",
		"    if (doN_dn_limit < 0) {",
		"        doN_dn_limit = 0;",
		"    }",
		"    if (doN_dn_counter < doN_dn_limit) {",
		"        ++doN_dn_counter;",
		`        std::cout << "go" << std::endl;`,
		"    }",
	}, "\n"))
}

func TestDoNDefaultsToOne(t *testing.T) {
	t.Parallel()

	b := newGraph("don")
	b.node("start", multicode.NodeStart)
	b.node("dn", multicode.NodeDoN)
	b.flow("start", "dn")

	out := generate(t, b.build())
	assert.Contains(t, out.Code(), "int doN_dn_limit = 1;")
}

func TestDoOnce(t *testing.T) {
	t.Parallel()

	b := newGraph("once")
	b.node("start", multicode.NodeStart)
	b.node("once", multicode.NodeDoOnce)
	printNode(b, "p", "first")
	b.flow("start", "once")
	b.exec("once", multicode.PortCompleted, "p")

	out := generate(t, b.build())
	assert.Contains(t, out.Code(), strings.Join([]string{
		"    static bool doOnce_once_done = false;",
		"    if (!doOnce_once_done) {",
		"        doOnce_once_done = true;",
		`        std::cout << "first" << std::endl;`,
		"    }",
	}, "\n"))
}

func TestFlipFlopAlternates(t *testing.T) {
	t.Parallel()

	b := newGraph("flipflop")
	b.node("start", multicode.NodeStart)
	b.node("ff", multicode.NodeFlipFlop)
	printNode(b, "pa", "A")
	printNode(b, "pb", "B")
	b.flow("start", "ff")
	b.exec("ff", multicode.PortA, "pa")
	b.exec("ff", multicode.PortB, "pb")

	out := generate(t, b.build())
	assert.Contains(t, out.Code(), strings.Join([]string{
		"    static bool flipFlop_ff_isA = false;",
		"    flipFlop_ff_isA = !flipFlop_ff_isA;",
		"    if (flipFlop_ff_isA) {",
		`        std::cout << "A" << std::endl;`,
		"    } else {",
		`        std::cout << "B" << std::endl;`,
		"    }",
	}, "\n"))
}

// ============================================================================
// MultiGate
// ============================================================================

func multiGateGraph(connected int, opts ...nodeOption) *multicode.Graph {
	b := newGraph("multigate")
	b.node("start", multicode.NodeStart)
	opts = append(opts,
		withOutput("out-0", multicode.PortExecution),
		withOutput("out-1", multicode.PortExecution),
		withOutput("out-2", multicode.PortExecution),
	)
	b.node("mg", multicode.NodeMultiGate, opts...)
	b.flow("start", "mg")
	for i := 0; i < connected; i++ {
		id := fmt.Sprintf("p%d", i)
		printNode(b, id, id)
		b.exec("mg", fmt.Sprintf("out-%d", i), id)
	}
	return b.build()
}

func TestMultiGateRoundRobinStopsAtLastBranch(t *testing.T) {
	t.Parallel()

	out := generate(t, multiGateGraph(2))
	assert.Equal(t, []string{string(multicode.WarnMissingBranches)}, codes(out.Warnings()))
	assert.Contains(t, out.Warnings()[0].Message, "2 of 3")
	assert.Contains(t, out.Code(), strings.Join([]string{
		"    static int multiGate_mg_index = 0;",
		"    int multiGate_mg_current = multiGate_mg_index;",
		"    if (multiGate_mg_index < 1) {",
		"        ++multiGate_mg_index;",
		"    }",
		"    switch (multiGate_mg_current) {",
		"        case 0: {",
		`            std::cout << "p0" << std::endl;`,
		"            break;",
		"        }",
		"        case 1: {",
		`            std::cout << "p1" << std::endl;`,
		"            break;",
		"        }",
		"        default: {",
		"            break;",
		"        }",
		"    }",
	}, "\n"))
}

func TestMultiGateLoopWraps(t *testing.T) {
	t.Parallel()

	out := generate(t, multiGateGraph(3, withProp("loop", true), withProp("startIndex", float64(7))))
	assert.Empty(t, out.Warnings())
	assert.Contains(t, out.Code(), "static int multiGate_mg_index = 2;")
	assert.Contains(t, out.Code(), "multiGate_mg_index = (multiGate_mg_index + 1) % 3;")
}

func TestMultiGateRandom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []nodeOption
		seed string
	}{
		{
			name: "explicit seed",
			opts: []nodeOption{withProp("isRandom", true), withProp("seed", float64(42))},
			seed: "42u",
		},
		{
			name: "seed from node id",
			opts: []nodeOption{withProp("isRandom", true)},
			seed: fmt.Sprintf("%du", multicode.Seed("mg")),
		},
		{
			name: "negative seed uses node id",
			opts: []nodeOption{withProp("isRandom", true), withProp("seed", float64(-1))},
			seed: fmt.Sprintf("%du", multicode.Seed("mg")),
		},
		{
			name: "seed above uint32 uses node id",
			opts: []nodeOption{withProp("isRandom", true), withProp("seed", float64(1<<33))},
			seed: fmt.Sprintf("%du", multicode.Seed("mg")),
		},
		{
			name: "largest uint32 seed",
			opts: []nodeOption{withProp("isRandom", true), withProp("seed", float64(4294967295))},
			seed: "4294967295u",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := generate(t, multiGateGraph(3, tt.opts...))
			code := out.Code()
			assert.Contains(t, code, "    static std::mt19937 multiGate_mg_rng("+tt.seed+");")
			assert.Contains(t, code, "    std::uniform_int_distribution<int> multiGate_mg_dist(0, 2);")
			assert.Contains(t, code, "    switch (multiGate_mg_dist(multiGate_mg_rng)) {")
			assert.Contains(t, out.Includes, "<random>")
		})
	}
}

func TestMultiGateWithoutBranches(t *testing.T) {
	t.Parallel()

	out := generate(t, multiGateGraph(0))
	assert.Equal(t, []string{string(multicode.WarnNoBranches)}, codes(out.Warnings()))
	assert.NotContains(t, out.Code(), "switch")
}

// ============================================================================
// Parallel
// ============================================================================

func TestParallelJoinsAndRethrows(t *testing.T) {
	t.Parallel()

	b := newGraph("parallel")
	b.node("start", multicode.NodeStart)
	b.node("par", multicode.NodeParallel,
		withOutput("thread-0", multicode.PortExecution),
		withOutput("thread-1", multicode.PortExecution),
		withOutput("thread-2", multicode.PortExecution),
	)
	printNode(b, "pa", "A")
	printNode(b, "pb", "B")
	printNode(b, "done", "done")
	b.flow("start", "par")
	b.exec("par", "thread-0", "pa")
	b.exec("par", "thread-1", "pb")
	b.exec("par", multicode.PortCompleted, "done")

	out := generate(t, b.build())
	code := out.Code()

	assert.Equal(t, []string{string(multicode.WarnMissingBranches)}, codes(out.Warnings()))
	assert.Equal(t, 2, strings.Count(code, "parallel_par_threads.emplace_back([&]() {"))
	assert.Contains(t, code, strings.Join([]string{
		"    parallel_par_threads.emplace_back([&]() {",
		"        try {",
		`            std::cout << "A" << std::endl;`,
		"        } catch (...) {",
		"            std::lock_guard<std::mutex> lock(parallel_par_mutex);",
		"            if (!parallel_par_error) {",
		"                parallel_par_error = std::current_exception();",
		"            }",
		"        }",
		"    });",
	}, "\n"))
	assert.Contains(t, code, strings.Join([]string{
		"    for (auto& worker : parallel_par_threads) {",
		"        worker.join();",
		"    }",
		"    if (parallel_par_error) {",
		"        std::rethrow_exception(parallel_par_error);",
		"    }",
		`    std::cout << "done" << std::endl;`,
	}, "\n"))
	for _, inc := range []string{"<exception>", "<mutex>", "<thread>", "<vector>"} {
		assert.Contains(t, out.Includes, inc)
	}
}

func TestParallelWithoutThreadsRunsCompleted(t *testing.T) {
	t.Parallel()

	b := newGraph("parallel")
	b.node("start", multicode.NodeStart)
	b.node("par", multicode.NodeParallel)
	printNode(b, "done", "done")
	b.flow("start", "par")
	b.exec("par", multicode.PortCompleted, "done")

	out := generate(t, b.build())
	require.Empty(t, out.Warnings())
	assert.NotContains(t, out.Code(), "std::thread")
	assert.Contains(t, out.Code(), `std::cout << "done"`)
}
