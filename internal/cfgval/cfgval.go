// Package cfgval handles the schema-less configuration mappings attached to
// ASG nodes and pins. Raw JSON is decoded into cty values — a tagged union
// over string/number/bool/object/tuple/null — so the property resolver's
// merge logic switches over a closed set of cases instead of an open
// interface{} dictionary.
package cfgval

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// FromJSON decodes a raw JSON configuration block into a cty value. An
// empty or absent block decodes to an empty object.
func FromJSON(raw json.RawMessage) (cty.Value, error) {
	if len(raw) == 0 {
		return cty.EmptyObjectVal, nil
	}
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("infer configuration type: %w", err)
	}
	v, err := ctyjson.Unmarshal(raw, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("decode configuration: %w", err)
	}
	return v, nil
}

// Flatten walks an object value and returns its leaves keyed by dotted
// path. Nested objects contribute "parent.child" keys; tuples, primitives
// and nulls are leaves. Non-object input yields an empty map.
func Flatten(v cty.Value) map[string]cty.Value {
	out := make(map[string]cty.Value)
	flattenInto(out, "", v)
	return out
}

func flattenInto(out map[string]cty.Value, prefix string, v cty.Value) {
	if v.IsNull() || !v.IsKnown() {
		return
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		if prefix != "" {
			out[prefix] = v
		}
		return
	}
	it := v.ElementIterator()
	for it.Next() {
		key, elem := it.Element()
		name := key.AsString()
		if prefix != "" {
			name = prefix + "." + name
		}
		if !elem.IsNull() && (elem.Type().IsObjectType() || elem.Type().IsMapType()) {
			flattenInto(out, name, elem)
			continue
		}
		out[name] = elem
	}
}

// ToNative converts a cty value to its natural Go counterpart for JSON
// emission: string, float64/int64, bool, []any, map[string]any, or nil.
func ToNative(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
		f, _ := bf.Float64()
		return f
	case ty == cty.Bool:
		return v.True()
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		var slice []any
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			slice = append(slice, ToNative(elem))
		}
		return slice
	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			m[key.AsString()] = ToNative(elem)
		}
		return m
	default:
		return nil
	}
}

// AsString returns the value as a string when it is one. Numbers and bools
// are not coerced; callers that need the textual form use Text.
func AsString(v cty.Value) (string, bool) {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
		return "", false
	}
	return v.AsString(), true
}

// Text renders a primitive value as text: strings verbatim, numbers and
// bools in their JSON form. Composite values render empty.
func Text(v cty.Value) string {
	if v.IsNull() || !v.IsKnown() {
		return ""
	}
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	}
	return ""
}
