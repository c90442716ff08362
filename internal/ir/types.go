// Package ir defines the lowered intermediate representation consumed by
// the downstream job generator, and its JSON writer.
package ir

import "stagelower/internal/deriv"

// FormatVersion identifies the IR document layout.
const FormatVersion = "2.0"

// Document is the complete IR for one lowered job.
type Document struct {
	Metadata    Metadata                   `json:"metadata"`
	Job         Job                        `json:"job"`
	Components  []Component                `json:"components"`
	Connections []Connection               `json:"connections"`
	Schemas     map[string]ComponentSchema `json:"schemas"`
	Summary     Summary                    `json:"metadata_info"`
}

// Metadata describes the generation run and the source document.
type Metadata struct {
	Version     string `json:"version"`
	GeneratedAt string `json:"generated_at"`
	Source      Source `json:"source"`
}

// Source identifies where the IR came from.
type Source struct {
	Type    string `json:"type"`
	JobName string `json:"job_name"`
}

// Job carries job-level identity, parameters, and contexts.
type Job struct {
	ID         string                       `json:"id"`
	Name       string                       `json:"name"`
	Parameters []Parameter                  `json:"parameters"`
	Contexts   map[string]map[string]string `json:"contexts"`
}

// Parameter is a job parameter declaration copied from the source graph.
type Parameter struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Default  string `json:"default_value"`
	Prompt   string `json:"prompt"`
	Required bool   `json:"required"`
}

// Component is the lowered form of one source node. Created once during
// lowering and never mutated afterward.
type Component struct {
	ID              string         `json:"id"`
	SourceID        string         `json:"source_id"`
	Name            string         `json:"name"`
	Type            Role           `json:"type"`
	Category        Category       `json:"category"`
	TargetComponent string         `json:"target_component,omitempty"`
	InputPins       []PinSchema    `json:"input_pins"`
	OutputPins      []PinSchema    `json:"output_pins"`
	Config          map[string]any `json:"configuration"`
	TargetMeta      map[string]any `json:"target_specific"`
}

// Role is a component's semantic type as decided by the classifier.
type Role string

const (
	RoleTransform     Role = "transform"
	RoleLookup        Role = "lookup"
	RoleJoin          Role = "join"
	RoleMerge         Role = "merge"
	RoleDedup         Role = "dedup"
	RoleDatabaseRead  Role = "database_read"
	RoleDatabaseWrite Role = "database_write"
	RoleFileRead      Role = "file_read"
	RoleFileWrite     Role = "file_write"
	RoleCustomRead    Role = "custom_read"
	RoleCustomWrite   Role = "custom_write"
	RoleCustomXform   Role = "custom_transform"
	RoleUnknown       Role = "unknown"
)

// Category is the coarse placement of a component in the flow.
type Category string

const (
	CategoryInput     Category = "input"
	CategoryOutput    Category = "output"
	CategoryProcessor Category = "processor"
)

// PinSchema is a named, ordered column list attached to one side of a
// component. Pin order is preserved from the source declaration; for
// multi-pin stages it conveys semantic role (primary stream first,
// reference streams after).
type PinSchema struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Direction string   `json:"direction"`
	Columns   []Column `json:"columns"`
}

// Column is a lowered schema field. Transformation is present only when
// the source column carried a derivation.
type Column struct {
	Name           string                `json:"name"`
	Type           string                `json:"type"`
	Length         int                   `json:"length,omitempty"`
	Scale          int                   `json:"scale,omitempty"`
	Precision      int                   `json:"precision,omitempty"`
	Nullable       bool                  `json:"nullable"`
	Transformation *deriv.Transformation `json:"transformation,omitempty"`
}

// Connection is the lowered form of one source edge.
type Connection struct {
	ID        string   `json:"id"`
	From      Endpoint `json:"from"`
	To        Endpoint `json:"to"`
	SchemaRef string   `json:"schema_ref,omitempty"`
}

// Endpoint names one side of a connection.
type Endpoint struct {
	ComponentID string `json:"component_id"`
	Pin         string `json:"pin"`
	PinID       string `json:"pin_id"`
}

// ComponentSchema groups a component's pin schemas by pin name.
type ComponentSchema struct {
	Inputs  map[string]PinColumns `json:"inputs"`
	Outputs map[string]PinColumns `json:"outputs"`
}

// PinColumns is one pin's column list within a ComponentSchema.
type PinColumns struct {
	PinID   string   `json:"pin_id"`
	Columns []Column `json:"columns"`
}

// Summary holds the counters aggregated over the whole pass.
type Summary struct {
	Components      int `json:"total_components"`
	Connections     int `json:"total_connections"`
	Columns         int `json:"total_columns"`
	Transformations int `json:"total_transformations"`
	Parameters      int `json:"total_parameters"`
	Diagnostics     int `json:"total_diagnostics"`
}
