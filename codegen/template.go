package codegen

import (
	"regexp"
	"strings"

	multicode "github.com/redvampir/multicode-sub002"
)

// ============================================================================
// Template Generator
// ============================================================================
//
// Package node definitions describe their code as plain text with a fixed
// set of placeholders:
//
//	{{input.<port>}}       upstream expression of an input port
//	{{output.<port>}}      variable name for an output port
//	{{prop.<property>}}    node property, else the definition's default
//	{{node.label}}         definition label
//	{{node.labelLocalized}} (alias {{node.labelRu}}) localized label
//
// Anything else is left in the text as written.

var placeholderRe = regexp.MustCompile(`\{\{\s*(input|output|prop|node)\.([A-Za-z0-9_\-]+)\s*\}\}`)

// TemplateGenerator renders the template of one node definition
type TemplateGenerator struct {
	def *multicode.NodeDefinition
}

// NewTemplateGenerator creates a generator for def
func NewTemplateGenerator(def *multicode.NodeDefinition) *TemplateGenerator {
	return &TemplateGenerator{def: def}
}

// Definition returns the rendered definition
func (g *TemplateGenerator) Definition() *multicode.NodeDefinition {
	return g.def
}

func (g *TemplateGenerator) NodeTypes() []multicode.NodeType {
	return []multicode.NodeType{g.def.Type}
}

// Generate emits Before, Template and After. A definition without a
// statement template emits nothing and lets execution continue.
func (g *TemplateGenerator) Generate(node *multicode.Node, ctx *Context, h Helpers) Result {
	if strings.TrimSpace(g.def.Template) == "" {
		return Continue()
	}
	ctx.AddInclude(g.def.Includes...)

	var lines []string
	for _, text := range []string{g.def.Before, g.def.Template, g.def.After} {
		if strings.TrimSpace(text) == "" {
			continue
		}
		rendered := g.render(text, node, ctx, h)
		for _, l := range strings.Split(strings.TrimRight(rendered, "\n"), "\n") {
			l = strings.TrimRight(l, " \t\r")
			if l == "" {
				lines = append(lines, "")
				continue
			}
			lines = append(lines, h.Indent()+l)
		}
	}
	return Continue(lines...)
}

// OutputExpression returns the variable a statement template declared for
// the port, or renders the definition's expression template
func (g *TemplateGenerator) OutputExpression(node *multicode.Node, portID string, ctx *Context, h Helpers) string {
	if sym, ok := ctx.Symbol(PortKey(node.ID, localPortID(node, portID))); ok {
		return sym.Name
	}
	if g.def.Expression == "" {
		return ""
	}
	ctx.AddInclude(g.def.Includes...)
	expr := g.render(g.def.Expression, node, ctx, h)
	return strings.Join(strings.Fields(expr), " ")
}

func (g *TemplateGenerator) render(text string, node *multicode.Node, ctx *Context, h Helpers) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		parts := placeholderRe.FindStringSubmatch(match)
		kind, id := parts[1], parts[2]
		switch kind {
		case "input":
			return g.inputValue(node, id, h)
		case "output":
			return g.outputName(node, id, ctx).Name
		case "prop":
			return g.propValue(node, id)
		case "node":
			switch id {
			case "label":
				return g.def.DisplayLabel(false)
			case "labelLocalized", "labelRu":
				return g.def.DisplayLabel(true)
			}
		}
		return match
	})
}

func (g *TemplateGenerator) inputValue(node *multicode.Node, id string, h Helpers) string {
	if expr, ok := h.InputExpression(node, id); ok && expr != "" {
		return expr
	}
	if pd := g.def.Input(id); pd != nil && pd.Default != nil {
		return multicode.FormatLiteral(pd.DataType, pd.Default)
	}
	return "/* missing input: " + id + " */"
}

// outputName declares tpl_<shortid>_<port> under the port's symbol key
func (g *TemplateGenerator) outputName(node *multicode.Node, id string, ctx *Context) Symbol {
	var cppType string
	if pd := g.def.Output(id); pd != nil {
		cppType = multicode.TargetType(pd.DataType)
	}
	return declareNodeVar(ctx, node, id, nodeName("tpl", node)+"_"+Identifier(id, "out"), cppType)
}

// propValue inserts string properties verbatim so templates can splice
// them into code; other values are formatted as literals
func (g *TemplateGenerator) propValue(node *multicode.Node, id string) string {
	pd := g.def.Property(id)
	var pt multicode.PortType
	if pd != nil {
		pt = pd.Type
	}

	v, ok := node.Property(id)
	if !ok && pd != nil && pd.Default != nil {
		v, ok = pd.Default, true
	}
	if !ok {
		return "/* missing prop: " + id + " */"
	}
	if s, isString := v.(string); isString {
		return s
	}
	return multicode.FormatLiteral(pt, v)
}
