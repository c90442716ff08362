// Package deriv extracts structured transformation lineage from per-column
// derivation expressions. Parsing is best-effort pattern matching over the
// raw text, not a full expression grammar: a derivation that cannot be
// understood degrades to KindUnknown with the original text retained, it
// never fails the column.
package deriv

import (
	"regexp"
	"strings"
)

// Kind classifies a derivation.
type Kind string

const (
	// KindIdentity is a bare reference to exactly one upstream column.
	KindIdentity Kind = "identity"
	// KindSimpleExpression is any expression with function calls or
	// arithmetic but no aggregate.
	KindSimpleExpression Kind = "simple_expression"
	// KindAggregation is an expression calling a known aggregate function.
	KindAggregation Kind = "aggregation"
	// KindUnknown is anything the extractor could not classify. The raw
	// text is still preserved for lossless round-trip.
	KindUnknown Kind = "unknown"
)

// Transformation is the structured result of extracting one derivation.
type Transformation struct {
	Kind          Kind     `json:"kind"`
	SourceColumns []string `json:"source_columns,omitempty"`
	Functions     []string `json:"functions,omitempty"`
	Raw           string   `json:"raw"`
}

var (
	funcCallRE   = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	qualifiedRE  = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\.[A-Za-z_][A-Za-z0-9_]*\b`)
	identifierRE = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)
	bareRefRE    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
)

// aggregates are function names whose presence classifies the whole
// derivation as an aggregation.
var aggregates = map[string]bool{
	"SUM": true, "COUNT": true, "AVG": true, "MAX": true, "MIN": true,
	"FIRST": true, "LAST": true, "STDDEV": true, "VARIANCE": true,
}

// sqlKeywords are filtered out of candidate column references.
var sqlKeywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "AND": true, "OR": true,
	"NOT": true, "IN": true, "IS": true, "NULL": true, "AS": true,
	"CASE": true, "WHEN": true, "THEN": true, "ELSE": true, "END": true,
	"IF": true, "IIF": true, "TRUE": true, "FALSE": true,
}

var arithmeticOps = []string{" + ", " - ", " * ", " / "}

// Extract parses a derivation into source-column references, applied
// functions, and a kind tag. upstream lists the column names visible on
// the node's input side; references are matched against it
// case-insensitively. When upstream is empty the extractor keeps every
// non-keyword identifier as a candidate source. Extract never fails: Raw
// always carries the input verbatim.
func Extract(derivation string, upstream []string) Transformation {
	raw := derivation
	text := strings.TrimSpace(derivation)
	tr := Transformation{Kind: KindUnknown, Raw: raw}
	if text == "" {
		return tr
	}

	upSet := make(map[string]bool, len(upstream))
	for _, name := range upstream {
		upSet[strings.ToLower(name)] = true
	}

	// Function calls, in order of appearance, repeats kept.
	calls := funcCallRE.FindAllStringSubmatch(text, -1)
	for _, m := range calls {
		tr.Functions = append(tr.Functions, m[1])
	}
	calledSet := make(map[string]bool, len(tr.Functions))
	for _, f := range tr.Functions {
		calledSet[strings.ToLower(f)] = true
	}

	tr.SourceColumns = sourceColumns(text, upSet, calledSet)

	switch {
	case hasAggregate(tr.Functions):
		tr.Kind = KindAggregation
	case len(tr.Functions) > 0 || hasArithmetic(text):
		tr.Kind = KindSimpleExpression
	case isIdentity(text, upSet):
		tr.Kind = KindIdentity
	}
	return tr
}

// sourceColumns collects column references: LINK.COLUMN qualified forms and
// bare identifiers, filtered against keywords, called function names, and
// the upstream set when one is known. Deduplicated, first occurrence wins.
func sourceColumns(text string, upSet, calledSet map[string]bool) []string {
	var out []string
	seen := make(map[string]bool)

	keep := func(ref, matchName string) {
		lower := strings.ToLower(matchName)
		if sqlKeywords[strings.ToUpper(matchName)] || calledSet[lower] {
			return
		}
		if len(upSet) > 0 && !upSet[lower] {
			return
		}
		key := strings.ToLower(ref)
		if !seen[key] {
			seen[key] = true
			out = append(out, ref)
		}
	}

	qualified := qualifiedRE.FindAllString(text, -1)
	for _, q := range qualified {
		col := q[strings.LastIndexByte(q, '.')+1:]
		keep(q, col)
	}

	// Strip qualified references before scanning bare identifiers so the
	// link and column parts are not double-counted.
	stripped := qualifiedRE.ReplaceAllString(text, " ")
	for _, id := range identifierRE.FindAllString(stripped, -1) {
		keep(id, id)
	}
	return out
}

func hasAggregate(functions []string) bool {
	for _, f := range functions {
		if aggregates[strings.ToUpper(f)] {
			return true
		}
	}
	return false
}

func hasArithmetic(text string) bool {
	for _, op := range arithmeticOps {
		if strings.Contains(text, op) {
			return true
		}
	}
	return false
}

// isIdentity reports whether text is a single bare column reference known
// upstream. With no upstream information a lone reference is accepted.
func isIdentity(text string, upSet map[string]bool) bool {
	if !bareRefRE.MatchString(text) {
		return false
	}
	if len(upSet) == 0 {
		return true
	}
	name := text
	if i := strings.LastIndexByte(text, '.'); i >= 0 {
		name = text[i+1:]
	}
	return upSet[strings.ToLower(name)]
}
