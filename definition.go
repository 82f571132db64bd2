package multicode

// NodeDefinition describes a node type supplied by a package.
// Template, Before and After are statement templates; Expression is an
// optional value template used when another node reads an output of the
// node and no statement template declared that output.
type NodeDefinition struct {
	Type           NodeType             `json:"type" validate:"required"`
	Label          string               `json:"label,omitempty"`
	LabelLocalized string               `json:"labelLocalized,omitempty"`
	Category       string               `json:"category,omitempty"`
	Description    string               `json:"description,omitempty"`
	Inputs         []PortDefinition     `json:"inputs,omitempty" validate:"dive"`
	Outputs        []PortDefinition     `json:"outputs,omitempty" validate:"dive"`
	Properties     []PropertyDefinition `json:"properties,omitempty" validate:"dive"`
	Template       string               `json:"template,omitempty"`
	Expression     string               `json:"expression,omitempty"`
	Before         string               `json:"before,omitempty"`
	After          string               `json:"after,omitempty"`
	Includes       []string             `json:"includes,omitempty"`
}

// PortDefinition describes an input or output port of a node type
type PortDefinition struct {
	ID       string   `json:"id" validate:"required"`
	Name     string   `json:"name,omitempty"`
	DataType PortType `json:"dataType"`
	Required bool     `json:"required,omitempty"`
	Default  any      `json:"default,omitempty"`
}

// PropertyDefinition describes a node property and its default value
type PropertyDefinition struct {
	ID      string   `json:"id" validate:"required"`
	Name    string   `json:"name,omitempty"`
	Type    PortType `json:"type,omitempty"`
	Default any      `json:"default,omitempty"`
}

// HasTemplate reports whether the definition carries any emission rule
func (d *NodeDefinition) HasTemplate() bool {
	return d != nil && (d.Template != "" || d.Expression != "")
}

// Property returns the property definition with the given id, or nil
func (d *NodeDefinition) Property(id string) *PropertyDefinition {
	if d == nil {
		return nil
	}
	for i := range d.Properties {
		if d.Properties[i].ID == id {
			return &d.Properties[i]
		}
	}
	return nil
}

// Output returns the output port definition with the given id, or nil
func (d *NodeDefinition) Output(id string) *PortDefinition {
	if d == nil {
		return nil
	}
	for i := range d.Outputs {
		if d.Outputs[i].ID == id {
			return &d.Outputs[i]
		}
	}
	return nil
}

// Input returns the input port definition with the given id, or nil
func (d *NodeDefinition) Input(id string) *PortDefinition {
	if d == nil {
		return nil
	}
	for i := range d.Inputs {
		if d.Inputs[i].ID == id {
			return &d.Inputs[i]
		}
	}
	return nil
}

// DisplayLabel returns the label in the requested locale
func (d *NodeDefinition) DisplayLabel(localized bool) string {
	if localized && d.LabelLocalized != "" {
		return d.LabelLocalized
	}
	if d.Label != "" {
		return d.Label
	}
	return string(d.Type)
}
