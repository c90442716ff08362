package lower

import (
	"strings"

	"stagelower/internal/asg"
	"stagelower/internal/deriv"
	"stagelower/internal/ir"
)

// typeMap translates declared SQL types to target platform type names.
// Unlisted types default to String.
var typeMap = map[string]string{
	"VARCHAR":   "String",
	"CHAR":      "String",
	"TEXT":      "String",
	"INTEGER":   "Integer",
	"INT":       "Integer",
	"BIGINT":    "Long",
	"SMALLINT":  "Short",
	"TINYINT":   "Byte",
	"DECIMAL":   "BigDecimal",
	"NUMERIC":   "BigDecimal",
	"FLOAT":     "Float",
	"DOUBLE":    "Double",
	"REAL":      "Float",
	"DATE":      "Date",
	"TIME":      "Object",
	"TIMESTAMP": "Date",
	"DATETIME":  "Date",
	"BOOLEAN":   "Boolean",
	"BIT":       "Boolean",
	"BLOB":      "byte[]",
	"CLOB":      "String",
}

func mapColumnType(declared string) string {
	if t, ok := typeMap[strings.ToUpper(declared)]; ok {
		return t
	}
	return "String"
}

// pinSet is the reconciled pin view of one node.
type pinSet struct {
	inputs          []ir.PinSchema
	outputs         []ir.PinSchema
	columns         int
	transformations int
}

// reconcilePins partitions a node's pins by direction and attaches column
// schemas. Declaration order is authoritative and preserved on both sides:
// for multi-pin stages the first input is the primary stream and the rest
// are reference streams. A pin without a schema gets zero columns, which
// on the input side is the normal case, not an error. Nodes with several
// output pins are passed through as declared, never renumbered.
func reconcilePins(pins []asg.Pin) pinSet {
	var set pinSet

	// Input-side column names feed the derivation extractor's upstream set.
	var upstream []string
	for _, p := range pins {
		if p.Direction != asg.DirectionInput {
			continue
		}
		for _, col := range p.Schema {
			upstream = append(upstream, col.Name)
		}
	}

	for _, p := range pins {
		ps := ir.PinSchema{
			ID:        p.ID,
			Name:      p.DisplayName(),
			Direction: string(p.Direction),
			Columns:   []ir.Column{},
		}
		for _, col := range p.Schema {
			ps.Columns = append(ps.Columns, lowerColumn(col, upstream, &set))
		}
		set.columns += len(ps.Columns)

		switch p.Direction {
		case asg.DirectionInput:
			set.inputs = append(set.inputs, ps)
		case asg.DirectionOutput:
			set.outputs = append(set.outputs, ps)
		}
	}

	if set.inputs == nil {
		set.inputs = []ir.PinSchema{}
	}
	if set.outputs == nil {
		set.outputs = []ir.PinSchema{}
	}
	return set
}

func lowerColumn(col asg.Column, upstream []string, set *pinSet) ir.Column {
	out := ir.Column{
		Name:      col.Name,
		Type:      mapColumnType(col.Type),
		Length:    col.Length,
		Scale:     col.Scale,
		Precision: col.Precision,
		Nullable:  col.Nullable,
	}
	if col.Derivation != "" {
		tr := deriv.Extract(col.Derivation, upstream)
		out.Transformation = &tr
		set.transformations++
	}
	return out
}
