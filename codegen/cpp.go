package codegen

import (
	"strconv"

	multicode "github.com/redvampir/multicode-sub002"
)

var cppKeywords = map[string]bool{
	"alignas": true, "alignof": true, "and": true, "and_eq": true, "asm": true,
	"auto": true, "bitand": true, "bitor": true, "bool": true, "break": true,
	"case": true, "catch": true, "char": true, "char16_t": true, "char32_t": true,
	"class": true, "compl": true, "const": true, "constexpr": true, "const_cast": true,
	"continue": true, "decltype": true, "default": true, "delete": true, "do": true,
	"double": true, "dynamic_cast": true, "else": true, "enum": true, "explicit": true,
	"export": true, "extern": true, "false": true, "float": true, "for": true,
	"friend": true, "goto": true, "if": true, "inline": true, "int": true,
	"long": true, "mutable": true, "namespace": true, "new": true, "noexcept": true,
	"not": true, "not_eq": true, "nullptr": true, "operator": true, "or": true,
	"or_eq": true, "private": true, "protected": true, "public": true, "register": true,
	"reinterpret_cast": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "static_assert": true, "static_cast": true, "struct": true, "switch": true,
	"template": true, "this": true, "thread_local": true, "throw": true, "true": true,
	"try": true, "typedef": true, "typeid": true, "typename": true, "union": true,
	"unsigned": true, "using": true, "virtual": true, "void": true, "volatile": true,
	"wchar_t": true, "while": true, "xor": true, "xor_eq": true,
	// names the generated program relies on
	"main": true, "std": true,
}

// Identifier turns a display name into a usable C++ identifier.
// Empty transliterations use fallback; names starting with a digit get a
// leading underscore; keywords get a trailing one.
func Identifier(name, fallback string) string {
	id := multicode.Transliterate(name)
	if id == "" {
		id = multicode.Transliterate(fallback)
	}
	if id == "" {
		id = "value"
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	if cppKeywords[id] {
		id += "_"
	}
	return id
}

// nodeName builds "<kind>_<shortid>" for a node
func nodeName(kind string, node *multicode.Node) string {
	return kind + "_" + multicode.ShortID(node.ID)
}

// uniqueNames sanitizes names and resolves collisions with positional
// suffixes, keeping the order of the input.
func uniqueNames(names []string, fallback string) []string {
	result := make([]string, len(names))
	used := make(map[string]bool, len(names))
	for i, n := range names {
		id := Identifier(n, fallback+strconv.Itoa(i))
		if used[id] {
			id = id + "_" + strconv.Itoa(i)
		}
		used[id] = true
		result[i] = id
	}
	return result
}
