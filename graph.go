// Package multicode defines the node graph model translated to C++ by the
// codegen package: graphs, nodes, ports, user functions, node definitions,
// the port type table and generation options.
package multicode

import (
	"sort"
	"strconv"
	"strings"
)

// Direction of a port or a function parameter
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// EdgeKind classifies an edge as control flow or value flow
type EdgeKind string

const (
	EdgeExecution EdgeKind = "execution"
	EdgeData      EdgeKind = "data"
)

// Graph is a set of nodes and the edges connecting their ports.
// The main graph of a document also carries the user-defined functions.
type Graph struct {
	ID        string      `json:"id,omitempty"`
	Name      string      `json:"name,omitempty"`
	Nodes     []*Node     `json:"nodes" validate:"dive,required"`
	Edges     []*Edge     `json:"edges" validate:"dive,required"`
	Functions []*Function `json:"functions,omitempty" validate:"dive,required"`
}

// Node is a single node of a graph
type Node struct {
	ID             string         `json:"id" validate:"required"`
	Type           NodeType       `json:"type" validate:"required"`
	Label          string         `json:"label,omitempty"`
	LabelLocalized string         `json:"labelLocalized,omitempty"`
	Properties     map[string]any `json:"properties,omitempty"`
	Inputs         []*Port        `json:"inputs,omitempty" validate:"dive,required"`
	Outputs        []*Port        `json:"outputs,omitempty" validate:"dive,required"`
}

// Port is an input or output socket of a node.
// Value holds an inline literal entered in the editor; it is used when
// the port has no incoming edge.
type Port struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name,omitempty"`
	DataType  PortType  `json:"dataType"`
	Direction Direction `json:"direction,omitempty"`
	Index     int       `json:"index,omitempty"`
	Value     any       `json:"value,omitempty"`
}

// Edge connects an output port to an input port
type Edge struct {
	ID         string   `json:"id,omitempty"`
	SourceNode string   `json:"sourceNode" validate:"required"`
	SourcePort string   `json:"sourcePort" validate:"required"`
	TargetNode string   `json:"targetNode" validate:"required"`
	TargetPort string   `json:"targetPort" validate:"required"`
	Kind       EdgeKind `json:"kind,omitempty" validate:"omitempty,oneof=execution data"`
}

// ============================================================================
// Ports
// ============================================================================

// Matches reports whether the port answers to the given id suffix.
// Editor port ids are usually prefixed with the node id ("n1-exec-out"),
// so "exec-out" matches both "exec-out" and "n1-exec-out".
func (p *Port) Matches(suffix string) bool {
	if p == nil || suffix == "" {
		return false
	}
	return p.ID == suffix || strings.HasSuffix(p.ID, "-"+suffix)
}

// IsExecution reports whether the port carries control flow
func (p *Port) IsExecution() bool {
	return p != nil && p.DataType == PortExecution
}

// Ordinal extracts N from a port named "<prefix>-N". When the id has the
// prefix but no numeric tail, the positional Index is used instead.
func (p *Port) Ordinal(prefix string) (int, bool) {
	if p == nil {
		return 0, false
	}
	marker := prefix + "-"
	pos := strings.LastIndex(p.ID, marker)
	if pos < 0 || (pos > 0 && p.ID[pos-1] != '-') {
		return 0, false
	}
	tail := p.ID[pos+len(marker):]
	if n, err := strconv.Atoi(tail); err == nil {
		return n, true
	}
	if tail == "" {
		return p.Index, true
	}
	return 0, false
}

// ============================================================================
// Nodes
// ============================================================================

// Input returns the input port matching the id suffix, or nil
func (n *Node) Input(suffix string) *Port {
	return findPort(n.Inputs, suffix)
}

// Output returns the output port matching the id suffix, or nil
func (n *Node) Output(suffix string) *Port {
	return findPort(n.Outputs, suffix)
}

// Port returns the input or output port with the given exact id, or nil
func (n *Node) Port(id string) *Port {
	for _, p := range n.Inputs {
		if p.ID == id {
			return p
		}
	}
	for _, p := range n.Outputs {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func findPort(ports []*Port, suffix string) *Port {
	for _, p := range ports {
		if p.ID == suffix {
			return p
		}
	}
	for _, p := range ports {
		if p.Matches(suffix) {
			return p
		}
	}
	return nil
}

// IndexedPort pairs a port with the ordinal parsed from its id
type IndexedPort struct {
	Ordinal int
	Port    *Port
}

// OutputsWithPrefix returns output ports named "<prefix>-N" in ascending N
func (n *Node) OutputsWithPrefix(prefix string) []IndexedPort {
	var result []IndexedPort
	for _, p := range n.Outputs {
		if ord, ok := p.Ordinal(prefix); ok {
			result = append(result, IndexedPort{Ordinal: ord, Port: p})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Ordinal < result[j].Ordinal
	})
	return result
}

// DisplayLabel returns the label in the requested locale.
// A missing localized label falls back to the primary one.
func (n *Node) DisplayLabel(localized bool) string {
	if localized && n.LabelLocalized != "" {
		return n.LabelLocalized
	}
	if n.Label != "" {
		return n.Label
	}
	return n.LabelLocalized
}

// Property returns a raw property value
func (n *Node) Property(key string) (any, bool) {
	if n.Properties == nil {
		return nil, false
	}
	v, ok := n.Properties[key]
	return v, ok && v != nil
}

// StringProperty returns a property as string or def
func (n *Node) StringProperty(key, def string) string {
	v, ok := n.Property(key)
	if !ok {
		return def
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	}
	return def
}

// BoolProperty returns a property as bool or def
func (n *Node) BoolProperty(key string, def bool) bool {
	v, ok := n.Property(key)
	if !ok {
		return def
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	case float64:
		return val != 0
	case int:
		return val != 0
	}
	return def
}

// IntProperty returns a property as int or def. JSON numbers decode as
// float64 and are truncated.
func (n *Node) IntProperty(key string, def int) int {
	v, ok := n.Property(key)
	if !ok {
		return def
	}
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return i
		}
	}
	return def
}

// ============================================================================
// Graph lookups
// ============================================================================

// FindNode finds a node by ID
func (g *Graph) FindNode(id string) *Node {
	if g == nil {
		return nil
	}
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// NodesOfType returns all nodes with the given type tag in document order
func (g *Graph) NodesOfType(t NodeType) []*Node {
	if g == nil {
		return nil
	}
	var result []*Node
	for _, n := range g.Nodes {
		if n.Type == t {
			result = append(result, n)
		}
	}
	return result
}

// FindFunction finds a user function by ID
func (g *Graph) FindFunction(id string) *Function {
	if g == nil {
		return nil
	}
	for _, f := range g.Functions {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// KindOf classifies an edge. An explicit Kind wins; otherwise the edge is
// an execution edge when its source port has the execution type. Edges
// whose source port is not declared on the node are classified by the
// well-known exec-out and exec-in port names.
func (g *Graph) KindOf(e *Edge) EdgeKind {
	if e.Kind != "" {
		return e.Kind
	}
	if src := g.FindNode(e.SourceNode); src != nil {
		if p := src.Port(e.SourcePort); p != nil {
			if p.IsExecution() {
				return EdgeExecution
			}
			return EdgeData
		}
	}
	byName := &Port{ID: e.SourcePort}
	if byName.Matches(PortExecOut) || (&Port{ID: e.TargetPort}).Matches(PortExecIn) {
		return EdgeExecution
	}
	return EdgeData
}
