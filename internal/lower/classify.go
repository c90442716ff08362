package lower

import (
	"strings"

	"stagelower/internal/asg"
	"stagelower/internal/ir"
)

// Classification is the classifier's verdict for one node.
type Classification struct {
	Role     ir.Role
	Category ir.Category
	Target   string
	// Warning is non-empty when a heuristic was applied, e.g. a storage
	// stage with pins in both directions.
	Warning string
}

// stage kind families, matched case-insensitively as substrings of the
// declared kind. Order matters: transform and processor families win over
// storage families regardless of pin count.
var (
	transformKinds = []string{"transformer"}
	lookupKinds    = []string{"lookup"}
	joinKinds      = []string{"join"}
	mergeKinds     = []string{"merge", "funnel"}
	dedupKinds     = []string{"remdup", "dedup"}
	customKinds    = []string{"custom"}
)

// connectorFamilies maps a database connector family name to its kind
// keywords. The family name keys the target-component table.
var connectorFamilies = []struct {
	Family   string
	Keywords []string
}{
	{"db2", []string{"db2"}},
	{"odbc", []string{"odbc"}},
	{"oracle", []string{"oracle"}},
	{"mysql", []string{"mysql"}},
}

var fileKinds = []string{"sequential", "file"}

// Classify decides a node's semantic role and target component from its
// declared kind and pin directions. An unrecognized kind yields
// ir.RoleUnknown with an empty target; that is not fatal — the node is
// still lowered with whatever schema and configuration were resolved.
func Classify(kind string, pins []asg.Pin, m *Mappings) Classification {
	lower := strings.ToLower(kind)
	hasInput, hasOutput := pinDirections(pins)
	isSink := hasInput && !hasOutput
	isSource := hasOutput && !hasInput

	switch {
	case matchesAny(lower, transformKinds):
		return Classification{ir.RoleTransform, ir.CategoryProcessor, m.processor(ir.RoleTransform), ""}
	case matchesAny(lower, lookupKinds):
		return Classification{ir.RoleLookup, ir.CategoryProcessor, m.processor(ir.RoleLookup), ""}
	case matchesAny(lower, joinKinds):
		return Classification{ir.RoleJoin, ir.CategoryProcessor, m.processor(ir.RoleJoin), ""}
	case matchesAny(lower, mergeKinds):
		return Classification{ir.RoleMerge, ir.CategoryProcessor, m.processor(ir.RoleMerge), ""}
	case matchesAny(lower, dedupKinds):
		return Classification{ir.RoleDedup, ir.CategoryProcessor, m.processor(ir.RoleDedup), ""}
	}

	if family := matchConnector(lower); family != "" {
		return classifyStorage(family, ir.RoleDatabaseRead, ir.RoleDatabaseWrite, isSink, hasInput && hasOutput, m)
	}
	if matchesAny(lower, fileKinds) {
		return classifyStorage("file", ir.RoleFileRead, ir.RoleFileWrite, isSink, hasInput && hasOutput, m)
	}

	if matchesAny(lower, customKinds) {
		switch {
		case isSink:
			return Classification{ir.RoleCustomWrite, ir.CategoryOutput, m.Generic, ""}
		case isSource:
			return Classification{ir.RoleCustomRead, ir.CategoryInput, m.Generic, ""}
		default:
			return Classification{ir.RoleCustomXform, ir.CategoryProcessor, m.Generic, ""}
		}
	}

	return Classification{ir.RoleUnknown, ir.CategoryProcessor, "", ""}
}

// classifyStorage resolves a storage connector's direction from its pins.
// A stage with pins in both directions is treated as a read at its primary
// output pin; that resolution is a heuristic, so it carries a warning.
func classifyStorage(family string, read, write ir.Role, isSink, bidirectional bool, m *Mappings) Classification {
	if isSink {
		return Classification{write, ir.CategoryOutput, m.connector(family, false), ""}
	}
	c := Classification{read, ir.CategoryInput, m.connector(family, true), ""}
	if bidirectional {
		c.Warning = "storage stage has both input and output pins; treated as read at the primary output pin"
	}
	return c
}

func pinDirections(pins []asg.Pin) (hasInput, hasOutput bool) {
	for _, p := range pins {
		switch p.Direction {
		case asg.DirectionInput:
			hasInput = true
		case asg.DirectionOutput:
			hasOutput = true
		}
	}
	return hasInput, hasOutput
}

func matchesAny(kind string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(kind, kw) {
			return true
		}
	}
	return false
}

func matchConnector(kind string) string {
	for _, fam := range connectorFamilies {
		if matchesAny(kind, fam.Keywords) {
			return fam.Family
		}
	}
	return ""
}
