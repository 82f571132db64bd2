package nodepkg

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	multicode "github.com/redvampir/multicode-sub002"
)

// translateNode converts a decoded block into the format-agnostic
// definition and validates it
func translateNode(b *nodeBlock) (*multicode.NodeDefinition, error) {
	def := &multicode.NodeDefinition{
		Type:           multicode.NodeType(b.Type),
		Label:          b.Label,
		LabelLocalized: b.LabelLocalized,
		Category:       b.Category,
		Description:    b.Description,
		Includes:       b.Includes,
		Template:       strings.TrimRight(b.Template, "\n"),
		Expression:     strings.TrimSpace(b.Expression),
		Before:         strings.TrimRight(b.Before, "\n"),
		After:          strings.TrimRight(b.After, "\n"),
	}

	for _, in := range b.Inputs {
		port, err := translatePort(in)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", in.ID, err)
		}
		def.Inputs = append(def.Inputs, port)
	}
	for _, out := range b.Outputs {
		port, err := translatePort(out)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", out.ID, err)
		}
		def.Outputs = append(def.Outputs, port)
	}
	for _, p := range b.Properties {
		value, err := evalDefault(p.Default)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", p.ID, err)
		}
		def.Properties = append(def.Properties, multicode.PropertyDefinition{
			ID:      p.ID,
			Name:    p.Name,
			Type:    parseType(p.Type),
			Default: value,
		})
	}

	if err := multicode.Validator().Struct(def); err != nil {
		return nil, fmt.Errorf("node %q: %w", b.Type, err)
	}
	return def, nil
}

func translatePort(b *portBlock) (multicode.PortDefinition, error) {
	value, err := evalDefault(b.Default)
	if err != nil {
		return multicode.PortDefinition{}, err
	}
	return multicode.PortDefinition{
		ID:       b.ID,
		Name:     b.Name,
		DataType: parseType(b.Type),
		Required: b.Required,
		Default:  value,
	}, nil
}

func parseType(s string) multicode.PortType {
	if s == "" {
		return multicode.PortAny
	}
	return multicode.ParsePortType(s)
}

// evalDefault evaluates a literal default. Defaults cannot reference
// variables or functions.
func evalDefault(expr hcl.Expression) (any, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	return ctyToNative(val)
}

// ctyToNative converts a cty value into the Go values JSON decoding
// produces, so package defaults and document values format the same way
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("convert number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		items := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			items = append(items, native)
		}
		return items, nil

	case ty.IsObjectType() || ty.IsMapType():
		fields := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			fields[key.AsString()] = native
		}
		return fields, nil
	}
	return nil, fmt.Errorf("unsupported default of type %s", ty.FriendlyName())
}
