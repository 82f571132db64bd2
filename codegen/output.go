package codegen

import (
	"strings"

	multicode "github.com/redvampir/multicode-sub002"
)

// FunctionUnit is the generated definition of one user function
type FunctionUnit struct {
	FunctionID string   `json:"functionId"`
	Name       string   `json:"name"`
	Signature  string   `json:"signature"`
	Lines      []string `json:"lines"`
}

// SourceMapping ties a line of Code() (1-based) to the node that produced it
type SourceMapping struct {
	Line   int    `json:"line"`
	NodeID string `json:"nodeId"`
}

// Output is the result of one generation run
type Output struct {
	// Lines is the main body
	Lines []string `json:"lines"`
	// Includes are the deduplicated headers required by the run
	Includes []string `json:"includes"`
	// Declarations are result struct declarations of multi-output functions
	Declarations []string               `json:"declarations,omitempty"`
	Functions    []FunctionUnit         `json:"functions,omitempty"`
	Diagnostics  []multicode.Diagnostic `json:"diagnostics"`
	SourceMap    []SourceMapping        `json:"sourceMap"`

	file []string
}

// Code returns the complete translation unit
func (o *Output) Code() string {
	if len(o.file) == 0 {
		return ""
	}
	return strings.Join(o.file, "\n") + "\n"
}

// HasErrors reports whether any node failed
func (o *Output) HasErrors() bool {
	return len(o.Errors()) > 0
}

// Warnings returns warning diagnostics
func (o *Output) Warnings() []multicode.Diagnostic {
	return o.filter(multicode.SeverityWarning)
}

// Errors returns error diagnostics
func (o *Output) Errors() []multicode.Diagnostic {
	return o.filter(multicode.SeverityError)
}

func (o *Output) filter(sev multicode.Severity) []multicode.Diagnostic {
	var result []multicode.Diagnostic
	for _, d := range o.Diagnostics {
		if d.Severity == sev {
			result = append(result, d)
		}
	}
	return result
}

// NodeLines returns the line numbers of Code() produced by a node
func (o *Output) NodeLines(nodeID string) []int {
	var lines []int
	for _, m := range o.SourceMap {
		if m.NodeID == nodeID {
			lines = append(lines, m.Line)
		}
	}
	return lines
}

// ============================================================================
// Assembly
// ============================================================================

func (o *Output) assemble(opts multicode.Options, graphName string, body []string) {
	var file []string

	if opts.IncludeComments {
		file = append(file,
			"// Generated by multicode from graph: "+commentText(graphName),
			"// Сгенерировано multicode из графа: "+commentText(graphName),
			"",
		)
	}

	if opts.IncludeHeaders && len(o.Includes) > 0 {
		for _, inc := range o.Includes {
			file = append(file, "#include "+inc)
		}
		file = append(file, "")
	}

	if len(o.Declarations) > 0 {
		file = append(file, o.Declarations...)
	}

	if len(o.Functions) > 0 {
		for _, fn := range o.Functions {
			file = append(file, fn.Signature+";")
		}
		file = append(file, "")
		for i := range o.Functions {
			file = append(file, o.Functions[i].Lines...)
			file = append(file, "")
			o.Functions[i].Lines, _ = resolveMarkers(o.Functions[i].Lines, opts, 0)
		}
	}

	if opts.WrapInMain {
		file = append(file, "int main() {")
		file = append(file, body...)
		if !endsWithReturn(body, opts.IndentUnit()) {
			file = append(file, opts.IndentUnit()+"return 0;")
		}
		file = append(file, "}")
	} else {
		file = append(file, body...)
	}

	o.Lines, _ = resolveMarkers(body, opts, 0)
	o.file, o.SourceMap = resolveMarkers(file, opts, 1)
}

// ============================================================================
// Source markers
// ============================================================================
//
// emitNode wraps the lines of each node in begin/end marker lines. Nested
// blocks carry their markers through the generators untouched, so the
// final pass can attribute every line to the innermost node that produced
// it. Markers never reach the output.

const markerPrefix = "\x00node:"

func beginMarker(indent string, node *multicode.Node) string {
	return indent + markerPrefix + "+" + node.ID + "\x00" + string(node.Type)
}

func endMarker(indent string, node *multicode.Node) string {
	return indent + markerPrefix + "-" + node.ID
}

func isMarker(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), markerPrefix)
}

// resolveMarkers strips marker lines, optionally replacing begin markers
// with visible "// [node:<id>]" comments, and returns the source map.
// firstLine is the number of the first line; 0 disables mapping.
func resolveMarkers(lines []string, opts multicode.Options, firstLine int) ([]string, []SourceMapping) {
	result := make([]string, 0, len(lines))
	var mapping []SourceMapping
	var stack []string

	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(trimmed, markerPrefix) {
			result = append(result, line)
			if firstLine > 0 && len(stack) > 0 {
				mapping = append(mapping, SourceMapping{
					Line:   firstLine + len(result) - 1,
					NodeID: stack[len(stack)-1],
				})
			}
			continue
		}

		indent := line[:len(line)-len(trimmed)]
		rest := trimmed[len(markerPrefix):]
		switch {
		case strings.HasPrefix(rest, "+"):
			id, nodeType, _ := strings.Cut(rest[1:], "\x00")
			stack = append(stack, id)
			if opts.IncludeSourceMarkers {
				result = append(result, indent+"// [node:"+id+"] "+nodeType)
				if firstLine > 0 {
					mapping = append(mapping, SourceMapping{Line: firstLine + len(result) - 1, NodeID: id})
				}
			}
		case strings.HasPrefix(rest, "-"):
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return result, mapping
}

// commentText keeps a label on one comment line
func commentText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
