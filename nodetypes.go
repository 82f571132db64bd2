package multicode

// NodeType is the type tag of a node
type NodeType string

const (
	// Control flow
	NodeStart     NodeType = "Start"
	NodeEnd       NodeType = "End"
	NodeBranch    NodeType = "Branch"
	NodeForLoop   NodeType = "ForLoop"
	NodeWhileLoop NodeType = "WhileLoop"
	NodeDoWhile   NodeType = "DoWhile"
	NodeForEach   NodeType = "ForEach"
	NodeSequence  NodeType = "Sequence"
	NodeParallel  NodeType = "Parallel"
	NodeGate      NodeType = "Gate"
	NodeDoN       NodeType = "DoN"
	NodeDoOnce    NodeType = "DoOnce"
	NodeFlipFlop  NodeType = "FlipFlop"
	NodeMultiGate NodeType = "MultiGate"
	NodeSwitch    NodeType = "Switch"
	NodeBreak     NodeType = "Break"
	NodeContinue  NodeType = "Continue"

	// Variables
	NodeVariable    NodeType = "Variable"
	NodeGetVariable NodeType = "GetVariable"
	NodeSetVariable NodeType = "SetVariable"

	// Math
	NodeAdd      NodeType = "Add"
	NodeSubtract NodeType = "Subtract"
	NodeMultiply NodeType = "Multiply"
	NodeDivide   NodeType = "Divide"
	NodeModulo   NodeType = "Modulo"
	NodePower    NodeType = "Power"
	NodeMin      NodeType = "Min"
	NodeMax      NodeType = "Max"
	NodeAbs      NodeType = "Abs"

	// Comparison
	NodeEqual        NodeType = "Equal"
	NodeNotEqual     NodeType = "NotEqual"
	NodeGreater      NodeType = "Greater"
	NodeGreaterEqual NodeType = "GreaterEqual"
	NodeLess         NodeType = "Less"
	NodeLessEqual    NodeType = "LessEqual"

	// Logic
	NodeAnd NodeType = "And"
	NodeOr  NodeType = "Or"
	NodeNot NodeType = "Not"

	// I/O
	NodePrint NodeType = "Print"
	NodeInput NodeType = "Input"

	// User functions
	NodeFunctionEntry    NodeType = "FunctionEntry"
	NodeFunctionReturn   NodeType = "FunctionReturn"
	NodeCallUserFunction NodeType = "CallUserFunction"

	// Misc
	NodeComment  NodeType = "Comment"
	NodeReroute  NodeType = "Reroute"
	NodeConstant NodeType = "Constant"
)

// Well-known execution port suffixes
const (
	PortExecIn    = "exec-in"
	PortExecOut   = "exec-out"
	PortTrue      = "true"
	PortFalse     = "false"
	PortLoopBody  = "loop-body"
	PortCompleted = "completed"
	PortExit      = "exit"
	PortA         = "a"
	PortB         = "b"
	PortDefault   = "default"
	PortOpen      = "open"
	PortClose     = "close"
	PortToggle    = "toggle"

	PrefixThen   = "then"
	PrefixThread = "thread"
	PrefixOut    = "out"
	PrefixCase   = "case"
)
