package multicode

// Function is a user-defined function with its own body graph.
// Parameter order is authoritative: it fixes the C++ parameter order and
// the field order of the result struct, whatever order the ports of the
// entry, return and call nodes happen to be in.
type Function struct {
	ID            string      `json:"id" validate:"required"`
	Name          string      `json:"name" validate:"required"`
	NameLocalized string      `json:"nameLocalized,omitempty"`
	Description   string      `json:"description,omitempty"`
	Parameters    []Parameter `json:"parameters,omitempty" validate:"dive"`
	Graph         *Graph      `json:"graph,omitempty"`
}

// Parameter is a function input or output
type Parameter struct {
	ID            string    `json:"id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	NameLocalized string    `json:"nameLocalized,omitempty"`
	Direction     Direction `json:"direction" validate:"oneof=input output"`
	DataType      PortType  `json:"dataType"`
}

// Inputs returns the input parameters in declaration order
func (f *Function) Inputs() []Parameter {
	return f.filter(DirectionInput)
}

// Outputs returns the output parameters in declaration order
func (f *Function) Outputs() []Parameter {
	return f.filter(DirectionOutput)
}

func (f *Function) filter(dir Direction) []Parameter {
	var result []Parameter
	for _, p := range f.Parameters {
		if p.Direction == dir {
			result = append(result, p)
		}
	}
	return result
}

// DisplayName returns the name in the requested locale
func (f *Function) DisplayName(localized bool) string {
	if localized && f.NameLocalized != "" {
		return f.NameLocalized
	}
	return f.Name
}

// Matches reports whether a node port belongs to this parameter.
// Ports are bound to parameters by id, falling back to the parameter name.
func (p Parameter) Matches(port *Port) bool {
	if port == nil {
		return false
	}
	return port.Matches(p.ID) || (p.Name != "" && (port.Matches(p.Name) || port.Name == p.Name))
}
