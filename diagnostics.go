package multicode

import "fmt"

// Severity of a diagnostic
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// WarningCode identifies a non-fatal problem. Generation continues.
type WarningCode string

const (
	WarnEmptyBranch           WarningCode = "EMPTY_BRANCH"
	WarnPotentialInfiniteLoop WarningCode = "POTENTIAL_INFINITE_LOOP"
	WarnDivisionByZero        WarningCode = "DIVISION_BY_ZERO"
	WarnMissingBranches       WarningCode = "MISSING_BRANCHES"
	WarnNoBranches            WarningCode = "NO_BRANCHES"
	WarnOrphanReturn          WarningCode = "ORPHAN_RETURN"
	WarnUnresolvedFunction    WarningCode = "UNRESOLVED_FUNCTION"
	WarnUnknownNodeType       WarningCode = "UNKNOWN_NODE_TYPE"
	WarnMaxDepthExceeded      WarningCode = "MAX_DEPTH_EXCEEDED"
)

// ErrorCode identifies a per-node failure. The node's code is replaced by
// a placeholder and the run is reported as failed.
type ErrorCode string

const (
	ErrMissingFunctionReference ErrorCode = "MISSING_FUNCTION_REFERENCE"
	ErrGeneratorPanic           ErrorCode = "GENERATOR_PANIC"
)

// message formats in English and Russian. The argument list of each code
// is fixed and documented next to it.
var messages = map[string][2]string{
	// label
	string(WarnEmptyBranch): {
		"branch %q has nothing connected to its true output",
		"у ветвления %q не подключён выход true",
	},
	// label
	string(WarnPotentialInfiniteLoop): {
		"loop %q has a constant true condition and may never terminate",
		"цикл %q имеет постоянно истинное условие и может не завершиться",
	},
	// label
	string(WarnDivisionByZero): {
		"%q divides by a literal zero",
		"%q выполняет деление на ноль",
	},
	// label, connected, declared
	string(WarnMissingBranches): {
		"%q has %d of %d branches connected",
		"у %q подключено %d из %d ветвей",
	},
	// label
	string(WarnNoBranches): {
		"%q has no connected branches and does nothing",
		"у %q нет подключённых ветвей, узел ничего не делает",
	},
	// label
	string(WarnOrphanReturn): {
		"return node %q is not inside a function",
		"узел возврата %q находится вне функции",
	},
	// function name or id
	string(WarnUnresolvedFunction): {
		"function %q could not be resolved, arguments follow port order",
		"функция %q не найдена, аргументы взяты в порядке портов",
	},
	// node type
	string(WarnUnknownNodeType): {
		"no generator for node type %q",
		"нет генератора для типа узла %q",
	},
	// depth limit
	string(WarnMaxDepthExceeded): {
		"nesting deeper than %d levels was cut off",
		"вложенность глубже %d уровней отброшена",
	},
	// label
	string(ErrMissingFunctionReference): {
		"call node %q does not reference a function",
		"узел вызова %q не ссылается на функцию",
	},
	// node type, recovered value
	string(ErrGeneratorPanic): {
		"generator for %q failed: %v",
		"генератор для %q завершился с ошибкой: %v",
	},
}

// Diagnostic is a warning or error attached to a node
type Diagnostic struct {
	NodeID           string   `json:"nodeId"`
	Severity         Severity `json:"severity"`
	Code             string   `json:"code"`
	Message          string   `json:"message"`
	MessageLocalized string   `json:"messageLocalized"`
}

// NewWarning builds a warning diagnostic with messages in both locales
func NewWarning(nodeID string, code WarningCode, args ...any) Diagnostic {
	return newDiagnostic(nodeID, SeverityWarning, string(code), args)
}

// NewError builds an error diagnostic with messages in both locales
func NewError(nodeID string, code ErrorCode, args ...any) Diagnostic {
	return newDiagnostic(nodeID, SeverityError, string(code), args)
}

func newDiagnostic(nodeID string, severity Severity, code string, args []any) Diagnostic {
	d := Diagnostic{NodeID: nodeID, Severity: severity, Code: code}
	if format, ok := messages[code]; ok {
		d.Message = fmt.Sprintf(format[0], args...)
		d.MessageLocalized = fmt.Sprintf(format[1], args...)
	} else {
		d.Message = code
		d.MessageLocalized = code
	}
	return d
}

// Text returns the message for the locale
func (d Diagnostic) Text(locale Locale) string {
	if locale == LocaleRussian && d.MessageLocalized != "" {
		return d.MessageLocalized
	}
	return d.Message
}

// IsError reports whether the diagnostic fails the run
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s [%s]: %s", d.Severity, d.Code, d.NodeID, d.Message)
}
