package multicode

import "strings"

// PortType is the declared data type of a port or parameter
type PortType string

const (
	PortExecution PortType = "execution"
	PortBool      PortType = "bool"
	PortInt32     PortType = "int32"
	PortInt64     PortType = "int64"
	PortFloat     PortType = "float"
	PortDouble    PortType = "double"
	PortString    PortType = "string"
	PortVector    PortType = "vector"
	PortPointer   PortType = "pointer"
	PortObject    PortType = "object"
	PortAny       PortType = "any"
)

type portTypeInfo struct {
	cppType  string
	zero     string
	includes []string
}

var portTypes = map[PortType]portTypeInfo{
	PortExecution: {cppType: "void"},
	PortBool:      {cppType: "bool", zero: "false"},
	PortInt32:     {cppType: "int", zero: "0"},
	PortInt64:     {cppType: "long long", zero: "0LL"},
	PortFloat:     {cppType: "float", zero: "0.0f"},
	PortDouble:    {cppType: "double", zero: "0.0"},
	PortString:    {cppType: "std::string", zero: `""`, includes: []string{"<string>"}},
	PortVector:    {cppType: "std::vector<double>", zero: "std::vector<double>{}", includes: []string{"<vector>"}},
	PortPointer:   {cppType: "void*", zero: "nullptr"},
	PortObject:    {cppType: "std::shared_ptr<void>", zero: "nullptr", includes: []string{"<memory>"}},
	PortAny:       {cppType: "std::any", zero: "std::any{}", includes: []string{"<any>"}},
}

// AllPortTypes lists the known port types in table order
func AllPortTypes() []PortType {
	return []PortType{
		PortExecution, PortBool, PortInt32, PortInt64, PortFloat, PortDouble,
		PortString, PortVector, PortPointer, PortObject, PortAny,
	}
}

// Known reports whether t is in the port-type table
func (t PortType) Known() bool {
	_, ok := portTypes[t]
	return ok
}

// IsNumeric reports whether t is an integer or floating point type
func (t PortType) IsNumeric() bool {
	switch t {
	case PortInt32, PortInt64, PortFloat, PortDouble:
		return true
	}
	return false
}

// IsFloating reports whether t is float or double
func (t PortType) IsFloating() bool {
	return t == PortFloat || t == PortDouble
}

// TargetType maps a port type to its C++ type name.
// Unknown types map to auto.
func TargetType(t PortType) string {
	if info, ok := portTypes[t]; ok {
		return info.cppType
	}
	return "auto"
}

// DefaultLiteral returns the zero literal for a port type.
// Execution has no data default; unknown types degrade to 0.
func DefaultLiteral(t PortType) string {
	if t == PortExecution {
		return ""
	}
	if info, ok := portTypes[t]; ok {
		return info.zero
	}
	return "0"
}

// RequiredIncludes returns the standard headers a port type needs
func RequiredIncludes(t PortType) []string {
	info, ok := portTypes[t]
	if !ok || len(info.includes) == 0 {
		return nil
	}
	return append([]string(nil), info.includes...)
}

var portTypeAliases = map[string]PortType{
	"exec":    PortExecution,
	"flow":    PortExecution,
	"boolean": PortBool,
	"int":     PortInt32,
	"integer": PortInt32,
	"i32":     PortInt32,
	"long":    PortInt64,
	"i64":     PortInt64,
	"f32":     PortFloat,
	"f64":     PortDouble,
	"number":  PortDouble,
	"text":    PortString,
	"str":     PortString,
	"array":   PortVector,
	"list":    PortVector,
	"ptr":     PortPointer,
	"generic": PortAny,
}

// ParsePortType normalizes a type name written by hand (package files,
// CLI flags). Unrecognised names are returned unchanged so they still
// degrade through the lenient table defaults.
func ParsePortType(s string) PortType {
	name := strings.ToLower(strings.TrimSpace(s))
	if t := PortType(name); t.Known() {
		return t
	}
	if t, ok := portTypeAliases[name]; ok {
		return t
	}
	return PortType(s)
}
