package cfgval

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestFromJSON(t *testing.T) {
	v, err := FromJSON(json.RawMessage(`{"table": "CUSTOMERS", "batch_size": 500, "truncate": false}`))
	require.NoError(t, err)
	require.True(t, v.Type().IsObjectType())

	assert.Equal(t, cty.StringVal("CUSTOMERS"), v.GetAttr("table"))
	assert.Equal(t, cty.False, v.GetAttr("truncate"))
}

func TestFromJSON_Empty(t *testing.T) {
	v, err := FromJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, cty.EmptyObjectVal, v)
}

func TestFromJSON_Malformed(t *testing.T) {
	_, err := FromJSON(json.RawMessage(`{"table":`))
	assert.Error(t, err)
}

func TestFlatten(t *testing.T) {
	v, err := FromJSON(json.RawMessage(`{
		"connection": {"instance": "DB2INST1", "database": "SAMPLE"},
		"table": "ORDERS",
		"options": {"retry": {"count": 3}}
	}`))
	require.NoError(t, err)

	flat := Flatten(v)
	assert.Equal(t, cty.StringVal("ORDERS"), flat["table"])
	assert.Equal(t, cty.StringVal("DB2INST1"), flat["connection.instance"])
	assert.Equal(t, cty.StringVal("SAMPLE"), flat["connection.database"])

	count, ok := flat["options.retry.count"]
	require.True(t, ok)
	assert.Equal(t, "3", Text(count))
}

func TestFlatten_NonObject(t *testing.T) {
	assert.Empty(t, Flatten(cty.StringVal("just a string")))
	assert.Empty(t, Flatten(cty.NullVal(cty.String)))
}

func TestToNative(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{"string", `{"v": "hello"}`, "hello"},
		{"integral number", `{"v": 42}`, int64(42)},
		{"fractional number", `{"v": 0.5}`, 0.5},
		{"bool", `{"v": true}`, true},
		{"null", `{"v": null}`, nil},
		{"tuple", `{"v": ["a", "b"]}`, []any{"a", "b"}},
		{"nested object", `{"v": {"x": 1}}`, map[string]any{"x": int64(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromJSON(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ToNative(v.GetAttr("v")))
		})
	}
}

func TestAsString(t *testing.T) {
	s, ok := AsString(cty.StringVal("x"))
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = AsString(cty.NumberIntVal(7))
	assert.False(t, ok, "numbers are not coerced")
	_, ok = AsString(cty.NullVal(cty.String))
	assert.False(t, ok)
}

func TestText(t *testing.T) {
	assert.Equal(t, "hello", Text(cty.StringVal("hello")))
	assert.Equal(t, "7", Text(cty.NumberIntVal(7)))
	assert.Equal(t, "true", Text(cty.True))
	assert.Equal(t, "", Text(cty.EmptyObjectVal))
}
