package lower

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stagelower/internal/ir"
)

// SupportedMappingsVersion is the accepted apiVersion of a mappings file.
const SupportedMappingsVersion = "stagelower/v1"

// KindNameComponentMappings is the accepted kind of a mappings file.
const KindNameComponentMappings = "ComponentMappings"

// ConnectorTarget names the target components for a connector family's
// read and write directions.
type ConnectorTarget struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// Mappings is the declared-kind × semantic-role target component table.
// Unmapped but classified combinations fall back to Generic; the unknown
// role always maps to an empty target.
type Mappings struct {
	Connectors map[string]ConnectorTarget
	Processors map[ir.Role]string
	Generic    string
}

// DefaultMappings returns the built-in target component table.
func DefaultMappings() *Mappings {
	return &Mappings{
		Connectors: map[string]ConnectorTarget{
			"db2":    {Input: "tDB2Input", Output: "tDB2Output"},
			"odbc":   {Input: "tODBCInput", Output: "tODBCOutput"},
			"oracle": {Input: "tOracleInput", Output: "tOracleOutput"},
			"mysql":  {Input: "tMysqlInput", Output: "tMysqlOutput"},
			"file":   {Input: "tFileInputDelimited", Output: "tFileOutputDelimited"},
		},
		Processors: map[ir.Role]string{
			ir.RoleTransform: "tMap",
			ir.RoleLookup:    "tMap",
			ir.RoleJoin:      "tMap",
			ir.RoleMerge:     "tConcat",
			ir.RoleDedup:     "tUniqRow",
		},
		Generic: "tJavaRow",
	}
}

func (m *Mappings) connector(family string, input bool) string {
	if t, ok := m.Connectors[family]; ok {
		if input {
			if t.Input != "" {
				return t.Input
			}
		} else if t.Output != "" {
			return t.Output
		}
	}
	return m.Generic
}

func (m *Mappings) processor(role ir.Role) string {
	if t, ok := m.Processors[role]; ok && t != "" {
		return t
	}
	return m.Generic
}

// mappingsDoc is the YAML document layout of a mappings override file.
type mappingsDoc struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Connectors []struct {
		Family string `yaml:"family"`
		Input  string `yaml:"input"`
		Output string `yaml:"output"`
	} `yaml:"connectors"`
	Processors map[string]string `yaml:"processors"`
	Generic    string            `yaml:"generic"`
}

// LoadMappings reads a YAML mappings file and merges it over the defaults.
// Entries override per family / per role; omitted entries keep their
// built-in targets. Unknown fields are rejected.
func LoadMappings(path string) (*Mappings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // intentional: reading a user-specified config file
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc mappingsDoc
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.APIVersion != SupportedMappingsVersion {
		return nil, fmt.Errorf("%s: unsupported apiVersion %q (expected %q)", path, doc.APIVersion, SupportedMappingsVersion)
	}
	if doc.Kind != KindNameComponentMappings {
		return nil, fmt.Errorf("%s: unexpected kind %q (expected %q)", path, doc.Kind, KindNameComponentMappings)
	}

	m := DefaultMappings()
	for _, c := range doc.Connectors {
		if c.Family == "" {
			return nil, fmt.Errorf("%s: connector mapping with empty family", path)
		}
		cur := m.Connectors[c.Family]
		if c.Input != "" {
			cur.Input = c.Input
		}
		if c.Output != "" {
			cur.Output = c.Output
		}
		m.Connectors[c.Family] = cur
	}
	for role, target := range doc.Processors {
		m.Processors[ir.Role(role)] = target
	}
	if doc.Generic != "" {
		m.Generic = doc.Generic
	}
	return m, nil
}
