package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stagelower/internal/asg"
	"stagelower/internal/ir"
)

func inPin(id string) asg.Pin  { return asg.Pin{ID: id, Direction: asg.DirectionInput} }
func outPin(id string) asg.Pin { return asg.Pin{ID: id, Direction: asg.DirectionOutput} }

func TestClassify(t *testing.T) {
	m := DefaultMappings()

	tests := []struct {
		name         string
		kind         string
		pins         []asg.Pin
		wantRole     ir.Role
		wantCategory ir.Category
		wantTarget   string
	}{
		{
			name: "transformer", kind: "CTransformerStage",
			pins:     []asg.Pin{inPin("in"), outPin("out")},
			wantRole: ir.RoleTransform, wantCategory: ir.CategoryProcessor, wantTarget: "tMap",
		},
		{
			name: "lookup", kind: "PxLookup",
			pins:     []asg.Pin{inPin("in"), inPin("ref"), outPin("out")},
			wantRole: ir.RoleLookup, wantCategory: ir.CategoryProcessor, wantTarget: "tMap",
		},
		{
			name: "join", kind: "PxJoin",
			pins:     []asg.Pin{inPin("l"), inPin("r"), outPin("out")},
			wantRole: ir.RoleJoin, wantCategory: ir.CategoryProcessor, wantTarget: "tMap",
		},
		{
			name: "funnel is merge", kind: "PxFunnel",
			pins:     []asg.Pin{inPin("a"), inPin("b"), outPin("out")},
			wantRole: ir.RoleMerge, wantCategory: ir.CategoryProcessor, wantTarget: "tConcat",
		},
		{
			name: "remdup is dedup", kind: "PxRemDup",
			pins:     []asg.Pin{inPin("in"), outPin("out")},
			wantRole: ir.RoleDedup, wantCategory: ir.CategoryProcessor, wantTarget: "tUniqRow",
		},
		{
			name: "db2 source", kind: "DB2ConnectorPX",
			pins:     []asg.Pin{outPin("out")},
			wantRole: ir.RoleDatabaseRead, wantCategory: ir.CategoryInput, wantTarget: "tDB2Input",
		},
		{
			name: "db2 sink", kind: "DB2ConnectorPX",
			pins:     []asg.Pin{inPin("in")},
			wantRole: ir.RoleDatabaseWrite, wantCategory: ir.CategoryOutput, wantTarget: "tDB2Output",
		},
		{
			name: "oracle sink", kind: "OracleConnectorPX",
			pins:     []asg.Pin{inPin("in")},
			wantRole: ir.RoleDatabaseWrite, wantCategory: ir.CategoryOutput, wantTarget: "tOracleOutput",
		},
		{
			name: "odbc source", kind: "ODBCConnectorPX",
			pins:     []asg.Pin{outPin("out")},
			wantRole: ir.RoleDatabaseRead, wantCategory: ir.CategoryInput, wantTarget: "tODBCInput",
		},
		{
			name: "sequential file source", kind: "PxSequentialFile",
			pins:     []asg.Pin{outPin("out")},
			wantRole: ir.RoleFileRead, wantCategory: ir.CategoryInput, wantTarget: "tFileInputDelimited",
		},
		{
			name: "sequential file sink", kind: "PxSequentialFile",
			pins:     []asg.Pin{inPin("in")},
			wantRole: ir.RoleFileWrite, wantCategory: ir.CategoryOutput, wantTarget: "tFileOutputDelimited",
		},
		{
			name: "custom source", kind: "CustomStage",
			pins:     []asg.Pin{outPin("out")},
			wantRole: ir.RoleCustomRead, wantCategory: ir.CategoryInput, wantTarget: "tJavaRow",
		},
		{
			name: "custom sink", kind: "CustomStage",
			pins:     []asg.Pin{inPin("in")},
			wantRole: ir.RoleCustomWrite, wantCategory: ir.CategoryOutput, wantTarget: "tJavaRow",
		},
		{
			name: "custom mid-stream", kind: "CustomStage",
			pins:     []asg.Pin{inPin("in"), outPin("out")},
			wantRole: ir.RoleCustomXform, wantCategory: ir.CategoryProcessor, wantTarget: "tJavaRow",
		},
		{
			name: "unrecognized kind", kind: "SomethingNovel",
			pins:     []asg.Pin{inPin("in"), outPin("out")},
			wantRole: ir.RoleUnknown, wantCategory: ir.CategoryProcessor, wantTarget: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.kind, tt.pins, m)
			assert.Equal(t, tt.wantRole, got.Role)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, tt.wantTarget, got.Target)
		})
	}
}

func TestClassify_BidirectionalStorageWarns(t *testing.T) {
	got := Classify("DB2ConnectorPX", []asg.Pin{inPin("in"), outPin("out")}, DefaultMappings())

	assert.Equal(t, ir.RoleDatabaseRead, got.Role)
	assert.Equal(t, ir.CategoryInput, got.Category)
	assert.Equal(t, "tDB2Input", got.Target)
	assert.NotEmpty(t, got.Warning)
}

func TestClassify_ProcessorFamilyBeatsPinHeuristic(t *testing.T) {
	// A transformer with only output pins is still a processor, never a
	// storage read.
	got := Classify("CTransformerStage", []asg.Pin{outPin("out")}, DefaultMappings())
	assert.Equal(t, ir.RoleTransform, got.Role)
	assert.Equal(t, ir.CategoryProcessor, got.Category)
}
