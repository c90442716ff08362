// Package asg defines the source job graph model: ETL stages (nodes),
// their connection endpoints (pins), and the directed links between them
// (edges), plus job-level parameters and contexts. The graph is immutable
// once loaded; the lowering pass only reads it.
package asg

import "encoding/json"

// PinDirection indicates which way data flows through a pin.
type PinDirection string

const (
	DirectionInput  PinDirection = "input"
	DirectionOutput PinDirection = "output"
)

// Graph is a parsed ASG document.
type Graph struct {
	JobName    string             `json:"job_name"`
	Nodes      []Node             `json:"nodes"`
	Pins       []Pin              `json:"pins"`
	Edges      []Edge             `json:"edges"`
	Parameters []JobParameter     `json:"job_parameters,omitempty"`
	Contexts   map[string]Context `json:"contexts,omitempty"`

	pinIndex  map[string]*Pin
	nodeIndex map[string]*Node
}

// Node is one ETL stage.
type Node struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Kind   string          `json:"kind"`
	Config json.RawMessage `json:"configuration,omitempty"`
	PinIDs []string        `json:"pins,omitempty"`
}

// Pin is a directional connection endpoint on a node. Schema is optional;
// in this model schema information is authoritative on the producing
// (output) side of a link, so input pins frequently carry none.
type Pin struct {
	ID        string          `json:"id"`
	NodeID    string          `json:"node_id"`
	Name      string          `json:"name,omitempty"`
	Direction PinDirection    `json:"direction"`
	Schema    []Column        `json:"schema,omitempty"`
	Config    json.RawMessage `json:"configuration,omitempty"`
}

// DisplayName returns the pin's name, falling back to its id.
func (p Pin) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Edge is a directed link between two pins on two distinct nodes.
type Edge struct {
	FromPin string `json:"from_pin"`
	ToPin   string `json:"to_pin"`
}

// Column is a named field within a pin's schema. Derivation, when present,
// is the raw expression text defining how the column's value is computed
// from upstream columns.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Length     int    `json:"length,omitempty"`
	Scale      int    `json:"scale,omitempty"`
	Precision  int    `json:"precision,omitempty"`
	Nullable   bool   `json:"nullable"`
	Derivation string `json:"derivation,omitempty"`
}

// JobParameter is a job-level parameter declaration.
type JobParameter struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Default  string `json:"default,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// Context is a named set of resolved values for the job's parameters.
type Context map[string]string

// buildIndexes populates the pin and node lookup maps. Called once by the
// loader; duplicate ids keep the first occurrence.
func (g *Graph) buildIndexes() {
	g.pinIndex = make(map[string]*Pin, len(g.Pins))
	for i := range g.Pins {
		if _, ok := g.pinIndex[g.Pins[i].ID]; !ok {
			g.pinIndex[g.Pins[i].ID] = &g.Pins[i]
		}
	}
	g.nodeIndex = make(map[string]*Node, len(g.Nodes))
	for i := range g.Nodes {
		if _, ok := g.nodeIndex[g.Nodes[i].ID]; !ok {
			g.nodeIndex[g.Nodes[i].ID] = &g.Nodes[i]
		}
	}
}

// PinByID returns the pin with the given id.
func (g *Graph) PinByID(id string) (*Pin, bool) {
	p, ok := g.pinIndex[id]
	return p, ok
}

// NodeByID returns the node with the given id.
func (g *Graph) NodeByID(id string) (*Node, bool) {
	n, ok := g.nodeIndex[id]
	return n, ok
}

// PinsOf returns the node's pins in declaration order. Pin ids that do not
// resolve are reported through missing; ordering of the resolved pins is
// preserved exactly as declared, which carries semantic meaning for
// multi-pin stages such as lookups and joins.
func (g *Graph) PinsOf(n *Node) (pins []Pin, missing []string) {
	for _, id := range n.PinIDs {
		p, ok := g.pinIndex[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		pins = append(pins, *p)
	}
	return pins, missing
}
