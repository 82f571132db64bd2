package pipeline

import (
	"sort"
	"strings"

	multicode "github.com/redvampir/multicode-sub002"
	"github.com/redvampir/multicode-sub002/codegen"
)

// SourceBuiltin marks node types described by the built-in catalog
const SourceBuiltin = "builtin"

// NodeInfo summarizes a node type available to documents
type NodeInfo struct {
	Type           string   `json:"type"`
	Label          string   `json:"label,omitempty"`
	LabelLocalized string   `json:"labelLocalized,omitempty"`
	Category       string   `json:"category,omitempty"`
	Description    string   `json:"description,omitempty"`
	Inputs         []string `json:"inputs,omitempty"`
	Outputs        []string `json:"outputs,omitempty"`
	Templated      bool     `json:"templated"`
	// Source is "builtin" or the file:line a package defined the node at
	Source string `json:"source"`
}

// Nodes lists the built-in catalog merged with the definitions loaded from
// dirs, sorted by category and type. category filters case-insensitively
// when not empty.
func (p *Pipeline) Nodes(category string, dirs ...string) ([]NodeInfo, error) {
	pkg, err := p.LoadPackages(dirs...)
	if err != nil {
		return nil, err
	}

	merged := codegen.Catalog()
	sources := make(map[multicode.NodeType]string, len(merged))
	for t := range merged {
		sources[t] = SourceBuiltin
	}
	for _, def := range pkg.Definitions() {
		merged.Add(def)
		sources[def.Type], _ = pkg.Origin(def.Type)
	}

	var nodes []NodeInfo
	for _, def := range merged.Definitions() {
		if category != "" && !strings.EqualFold(def.Category, category) {
			continue
		}
		nodes = append(nodes, NodeInfo{
			Type:           string(def.Type),
			Label:          def.Label,
			LabelLocalized: def.LabelLocalized,
			Category:       def.Category,
			Description:    def.Description,
			Inputs:         portList(def.Inputs),
			Outputs:        portList(def.Outputs),
			Templated:      def.HasTemplate(),
			Source:         sources[def.Type],
		})
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Category != nodes[j].Category {
			return nodes[i].Category < nodes[j].Category
		}
		return nodes[i].Type < nodes[j].Type
	})
	return nodes, nil
}

// portList renders ports as "id: type"
func portList(ports []multicode.PortDefinition) []string {
	if len(ports) == 0 {
		return nil
	}
	out := make([]string, len(ports))
	for i, p := range ports {
		out[i] = p.ID + ": " + string(p.DataType)
	}
	return out
}
