package lower

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"stagelower/internal/asg"
	"stagelower/internal/cfgval"
	"stagelower/internal/ir"
)

// RawXMLKey is the reserved configuration key holding an embedded markup
// block that could not be decoded. The node is still lowered; the block is
// preserved verbatim for downstream triage.
const RawXMLKey = "xml_properties_raw"

// xmlBlockKeys are configuration keys whose values carry embedded markup
// with CDATA-escaped payloads.
var xmlBlockKeys = []string{"XMLProperties", "XMLConnectorDescriptor"}

// placeholderRE matches a fully-formed parameterized value such as
// "#TEST_Param.$DB2_INSTANCE#". paramNameRE captures the parameter name.
var (
	placeholderRE = regexp.MustCompile(`^#[A-Za-z_][A-Za-z0-9_]*\.\$[A-Za-z_][A-Za-z0-9_]*#$`)
	paramNameRE   = regexp.MustCompile(`\.\$([A-Za-z_][A-Za-z0-9_]*)#`)
)

// resolved is the property resolver's output for one node.
type resolved struct {
	config     map[string]any
	targetMeta map[string]any
	// paramRefs maps configuration keys to their parameterized values in
	// placeholder form, for the job-parameter cross-check.
	paramRefs map[string]string
}

// resolveProperties flattens a node's heterogeneous configuration sources
// into one key/value view. Precedence, later sources overriding earlier
// ones: structured configuration fields, values decoded out of embedded
// markup blocks, pin-level configuration. Parameterized values are
// mirrored verbatim into the component's target-specific metadata so the
// downstream generator reproduces the parameter reference rather than a
// resolved literal. Resolution failures degrade the node, never abort it.
func resolveProperties(node *asg.Node, pins []asg.Pin, role ir.Role, diags *Diagnostics) resolved {
	res := resolved{
		config:     make(map[string]any),
		targetMeta: make(map[string]any),
		paramRefs:  make(map[string]string),
	}
	flat := make(map[string]cty.Value)

	// 1. Structured configuration fields.
	base, err := cfgval.FromJSON(node.Config)
	if err != nil {
		diags.Warnf(node.ID, "", "undecodable configuration block: %v", err)
	} else {
		for k, v := range cfgval.Flatten(base) {
			flat[k] = v
		}
	}

	// 2. Embedded markup blocks, decoded and merged over the structured
	// fields. An undecodable block falls back to the reserved raw key.
	for _, key := range xmlBlockKeys {
		raw, fullKey, ok := lookupStr(flat, key)
		if !ok {
			continue
		}
		delete(flat, fullKey)
		parsed, err := decodeXMLBlock(raw)
		if err != nil {
			flat[RawXMLKey] = cty.StringVal(raw)
			diags.Warnf(node.ID, "", "undecodable %s block: %v", key, err)
			continue
		}
		for tag, text := range parsed {
			flat[tag] = cty.StringVal(text)
		}
	}

	// 3. Pin-level configuration.
	for _, pin := range pins {
		if len(pin.Config) == 0 {
			continue
		}
		pv, err := cfgval.FromJSON(pin.Config)
		if err != nil {
			diags.Warnf(node.ID, "", "undecodable configuration on pin %s: %v", pin.ID, err)
			continue
		}
		for k, v := range cfgval.Flatten(pv) {
			flat[k] = v
		}
	}

	// Parameterized values are duplicated into target metadata verbatim.
	contextParams := make(map[string]any)
	for k, v := range flat {
		s, ok := cfgval.AsString(v)
		if !ok {
			continue
		}
		if placeholderRE.MatchString(s) {
			res.paramRefs[k] = s
			contextParams[k] = s
		} else if strings.Contains(s, "#") && strings.Contains(s, "$") {
			// Loose match kept for values that embed a placeholder inside
			// a larger string.
			contextParams[k] = s
		}
	}
	if len(contextParams) > 0 {
		res.targetMeta["context_params"] = contextParams
	}

	for k, v := range flat {
		res.config[k] = cfgval.ToNative(v)
	}

	liftCanonical(flat, role, res.config)
	liftTargetMeta(flat, res.targetMeta)
	return res
}

// liftCanonical adds the well-known keys the downstream generator expects
// under stable names, chosen by the node's semantic role.
func liftCanonical(flat map[string]cty.Value, role ir.Role, config map[string]any) {
	switch role {
	case ir.RoleDatabaseRead, ir.RoleDatabaseWrite:
		liftFirst(flat, config, "table_name", "TableName", "table")
		liftFirst(flat, config, "database_instance", "Instance")
		liftFirst(flat, config, "database_name", "Database")
		liftFirst(flat, config, "username", "Username")
		liftFirst(flat, config, "password", "Password")
		liftFirst(flat, config, "connection_string", "ConnectionString")
	case ir.RoleFileRead, ir.RoleFileWrite:
		liftFirst(flat, config, "file_path", "FilePath", "file", "path")
		liftFirst(flat, config, "delimiter", "FieldDelimiter")
		liftFirst(flat, config, "header", "FirstLineColumnNames")
		liftFirst(flat, config, "encoding", "Encoding")
	}
}

// liftTargetMeta extracts transformation lineage and connector identity
// into target-specific metadata. TrxClassName and TrxGenCode travel with
// the component so the generator can reproduce the original stage logic.
func liftTargetMeta(flat map[string]cty.Value, meta map[string]any) {
	if v, _, ok := lookupStr(flat, "TrxClassName"); ok {
		meta["trx_class_name"] = v
	}
	if v, _, ok := lookupStr(flat, "TrxGenCode"); ok {
		meta["has_transformation_code"] = true
		meta["transformation_code_length"] = len(v)
	}
	if v, ok := lookupVal(flat, "JobParameterNames"); ok {
		meta["job_parameters"] = cfgval.ToNative(v)
	}
	if v, _, ok := lookupStr(flat, "ConnectorName"); ok {
		meta["connector_name"] = v
	}
	if v, _, ok := lookupStr(flat, "Engine"); ok {
		meta["engine"] = v
	}
}

// configPrefixes are the nesting prefixes a key may appear under in the
// flattened view, tried in order.
var configPrefixes = []string{"", "configuration.", "apt_properties."}

func lookupVal(flat map[string]cty.Value, key string) (cty.Value, bool) {
	for _, prefix := range configPrefixes {
		if v, ok := flat[prefix+key]; ok {
			return v, true
		}
	}
	return cty.NilVal, false
}

func lookupStr(flat map[string]cty.Value, key string) (value, fullKey string, ok bool) {
	for _, prefix := range configPrefixes {
		if v, present := flat[prefix+key]; present {
			if s, isStr := cfgval.AsString(v); isStr {
				return s, prefix + key, true
			}
		}
	}
	return "", "", false
}

func liftFirst(flat map[string]cty.Value, config map[string]any, canonical string, keys ...string) {
	for _, key := range keys {
		if s, _, ok := lookupStr(flat, key); ok {
			config[canonical] = s
			return
		}
	}
}

// decodeXMLBlock extracts the CDATA payload (or takes the whole string
// when no CDATA marker is present) and parses it as XML, collecting each
// element's trimmed text by tag. Later elements with the same tag win.
func decodeXMLBlock(raw string) (map[string]string, error) {
	content := raw
	if start := strings.Index(raw, "<![CDATA["); start >= 0 {
		rest := raw[start+len("<![CDATA["):]
		end := strings.Index(rest, "]]>")
		if end < 0 {
			return nil, fmt.Errorf("unterminated CDATA section")
		}
		content = rest[:end]
	}

	dec := xml.NewDecoder(strings.NewReader(content))
	result := make(map[string]string)
	var current string
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			current = t.Name.Local
		case xml.CharData:
			if text := strings.TrimSpace(string(t)); text != "" && current != "" {
				result[current] = text
			}
		case xml.EndElement:
			current = ""
		}
	}
	return result, nil
}
