// Package lower implements the ASG → IR lowering pass: role
// classification, pin/schema reconciliation, property resolution,
// transformation extraction, and edge resolution, driven over the whole
// graph with an explicit diagnostics accumulator. The pass is a pure,
// deterministic function of the source graph; it fails outright only when
// the graph has no nodes, and otherwise degrades per node or per edge.
package lower

import (
	"log/slog"
	"time"

	"stagelower/internal/asg"
	"stagelower/internal/ir"
)

// Options configures one lowering pass.
type Options struct {
	// Logger receives per-node debug records. Nil discards them.
	Logger *slog.Logger
	// Source describes the input document (typically its file name) and
	// lands in the IR metadata.
	Source string
	// Mappings overrides the target component table. Nil uses defaults.
	Mappings *Mappings
	// Now stamps the document; nil uses time.Now. Tests pin it.
	Now func() time.Time
}

// Lower runs the lowering pass over the source graph. Every node yields a
// component, even when its kind could not be classified; every edge either
// resolves to a connection or is dropped with a diagnostic. The returned
// diagnostics accompany a fully-formed document: a non-empty list is
// degradation, not failure.
func Lower(g *asg.Graph, opts Options) (*ir.Document, Diagnostics, error) {
	if g == nil || len(g.Nodes) == 0 {
		return nil, nil, asg.ErrEmptyGraph("cannot lower a graph with no nodes")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mappings := opts.Mappings
	if mappings == nil {
		mappings = DefaultMappings()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var diags Diagnostics
	doc := &ir.Document{
		Metadata: ir.Metadata{
			Version:     ir.FormatVersion,
			GeneratedAt: now().UTC().Format(time.RFC3339),
			Source:      ir.Source{Type: "asg", JobName: g.JobName},
		},
		Components:  []ir.Component{},
		Connections: []ir.Connection{},
		Schemas:     map[string]ir.ComponentSchema{},
	}

	job := extractJob(g)
	declared := make(map[string]bool, len(job.Parameters))
	for _, p := range job.Parameters {
		declared[p.Name] = true
	}
	doc.Job = job

	// Phase 1: lower every node to a component, building the pin index
	// the edge phase resolves against.
	pinIndex := make(map[string]ir.Endpoint)
	var totalColumns, totalTransformations int
	for i := range g.Nodes {
		node := &g.Nodes[i]
		comp := lowerNode(g, node, mappings, declared, &diags, logger)
		doc.Components = append(doc.Components, comp)

		for _, ps := range comp.InputPins {
			pinIndex[ps.ID] = ir.Endpoint{ComponentID: comp.ID, Pin: ps.Name, PinID: ps.ID}
			totalColumns += len(ps.Columns)
			totalTransformations += countTransformations(ps.Columns)
		}
		for _, ps := range comp.OutputPins {
			pinIndex[ps.ID] = ir.Endpoint{ComponentID: comp.ID, Pin: ps.Name, PinID: ps.ID}
			totalColumns += len(ps.Columns)
			totalTransformations += countTransformations(ps.Columns)
		}
		doc.Schemas[comp.ID] = componentSchema(comp)
	}

	// Phase 2: resolve edges through the pin index. An edge naming a pin
	// that does not resolve is dropped, never emitted dangling.
	for _, edge := range g.Edges {
		from, okFrom := pinIndex[edge.FromPin]
		if !okFrom {
			diags.Errorf("", "", "edge references unknown source pin %q; dropped", edge.FromPin)
		}
		to, okTo := pinIndex[edge.ToPin]
		if !okTo {
			diags.Errorf("", "", "edge references unknown destination pin %q; dropped", edge.ToPin)
		}
		if !okFrom || !okTo {
			continue
		}
		doc.Connections = append(doc.Connections, ir.Connection{
			ID:        "conn_" + componentSourceID(from.ComponentID) + "_" + componentSourceID(to.ComponentID),
			From:      from,
			To:        to,
			SchemaRef: edge.FromPin,
		})
	}

	// Phase 3: structural validation. Connection endpoints were built from
	// the component set, but the invariant is load-bearing downstream, so
	// verify it rather than assume it.
	validate(doc, &diags)

	doc.Summary = ir.Summary{
		Components:      len(doc.Components),
		Connections:     len(doc.Connections),
		Columns:         totalColumns,
		Transformations: totalTransformations,
		Parameters:      len(doc.Job.Parameters),
		Diagnostics:     len(diags),
	}

	logger.Debug("lowering complete",
		"job", g.JobName,
		"components", len(doc.Components),
		"connections", len(doc.Connections),
		"diagnostics", len(diags))
	return doc, diags, nil
}

// lowerNode builds one component: classification, pin reconciliation,
// property resolution, parameter cross-check.
func lowerNode(g *asg.Graph, node *asg.Node, mappings *Mappings, declared map[string]bool, diags *Diagnostics, logger *slog.Logger) ir.Component {
	pins, missing := g.PinsOf(node)
	for _, id := range missing {
		diags.Errorf(node.ID, "", "node references unknown pin %q", id)
	}

	cls := Classify(node.Kind, pins, mappings)
	if cls.Warning != "" {
		diags.Warnf(node.ID, "", "%s", cls.Warning)
	}
	if cls.Role == ir.RoleUnknown {
		diags.Warnf(node.ID, "", "unrecognized stage kind %q; semantic type unknown", node.Kind)
	}

	set := reconcilePins(pins)
	props := resolveProperties(node, pins, cls.Role, diags)
	checkParamRefs(node.ID, props.paramRefs, declared, diags)

	logger.Debug("lowered node",
		"node", node.ID,
		"name", node.Name,
		"kind", node.Kind,
		"role", cls.Role,
		"target", cls.Target,
		"inputs", len(set.inputs),
		"outputs", len(set.outputs))

	return ir.Component{
		ID:              "comp_" + node.ID,
		SourceID:        node.ID,
		Name:            node.Name,
		Type:            cls.Role,
		Category:        cls.Category,
		TargetComponent: cls.Target,
		InputPins:       set.inputs,
		OutputPins:      set.outputs,
		Config:          props.config,
		TargetMeta:      props.targetMeta,
	}
}

// validate runs the post-lowering structural checks: every connection
// endpoint must name an emitted component. Unknown-role components were
// already reported during node lowering and are not failures.
func validate(doc *ir.Document, diags *Diagnostics) {
	compIDs := make(map[string]bool, len(doc.Components))
	for _, c := range doc.Components {
		compIDs[c.ID] = true
	}

	kept := doc.Connections[:0]
	for _, conn := range doc.Connections {
		if !compIDs[conn.From.ComponentID] || !compIDs[conn.To.ComponentID] {
			diags.Errorf("", "", "connection %s references a missing component; dropped", conn.ID)
			continue
		}
		kept = append(kept, conn)
	}
	doc.Connections = kept
}

func componentSchema(comp ir.Component) ir.ComponentSchema {
	cs := ir.ComponentSchema{
		Inputs:  map[string]ir.PinColumns{},
		Outputs: map[string]ir.PinColumns{},
	}
	for _, ps := range comp.InputPins {
		cs.Inputs[ps.Name] = ir.PinColumns{PinID: ps.ID, Columns: ps.Columns}
	}
	for _, ps := range comp.OutputPins {
		cs.Outputs[ps.Name] = ir.PinColumns{PinID: ps.ID, Columns: ps.Columns}
	}
	return cs
}

func countTransformations(cols []ir.Column) int {
	n := 0
	for _, c := range cols {
		if c.Transformation != nil {
			n++
		}
	}
	return n
}

// componentSourceID strips the component id prefix back to the source
// node id for connection naming.
func componentSourceID(componentID string) string {
	const prefix = "comp_"
	if len(componentID) > len(prefix) && componentID[:len(prefix)] == prefix {
		return componentID[len(prefix):]
	}
	return componentID
}
