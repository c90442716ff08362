package deriv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_Identity(t *testing.T) {
	upstream := []string{"CUSTOMER_ID", "AMOUNT", "ORDER_DATE"}

	tests := []struct {
		name       string
		derivation string
		want       Kind
	}{
		{"bare upstream column", "CUSTOMER_ID", KindIdentity},
		{"qualified upstream column", "LINK1.CUSTOMER_ID", KindIdentity},
		{"case-insensitive match", "customer_id", KindIdentity},
		{"bare column not upstream", "SOMETHING_ELSE", KindUnknown},
		{"not a bare reference", "CUSTOMER_ID || AMOUNT", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Extract(tt.derivation, upstream)
			assert.Equal(t, tt.want, tr.Kind)
			assert.Equal(t, tt.derivation, tr.Raw, "raw text must round-trip")
		})
	}
}

func TestExtract_IdentityWithoutUpstream(t *testing.T) {
	// With no upstream information a lone reference is accepted.
	tr := Extract("SOME_COLUMN", nil)
	assert.Equal(t, KindIdentity, tr.Kind)
	assert.Equal(t, []string{"SOME_COLUMN"}, tr.SourceColumns)
}

func TestExtract_FunctionsAndKinds(t *testing.T) {
	upstream := []string{"AMOUNT", "QTY", "NAME"}

	tests := []struct {
		name      string
		text      string
		wantKind  Kind
		wantFuncs []string
		wantCols  []string
	}{
		{
			name:      "aggregate call",
			text:      "SUM(AMOUNT)",
			wantKind:  KindAggregation,
			wantFuncs: []string{"SUM"},
			wantCols:  []string{"AMOUNT"},
		},
		{
			name:      "lowercase aggregate",
			text:      "avg(QTY)",
			wantKind:  KindAggregation,
			wantFuncs: []string{"avg"},
			wantCols:  []string{"QTY"},
		},
		{
			name:      "plain function call",
			text:      "TRIM(NAME)",
			wantKind:  KindSimpleExpression,
			wantFuncs: []string{"TRIM"},
			wantCols:  []string{"NAME"},
		},
		{
			name:      "nested calls keep order and repeats",
			text:      "TRIM(UPPER(TRIM(NAME)))",
			wantKind:  KindSimpleExpression,
			wantFuncs: []string{"TRIM", "UPPER", "TRIM"},
			wantCols:  []string{"NAME"},
		},
		{
			name:      "arithmetic without calls",
			text:      "AMOUNT * QTY",
			wantKind:  KindSimpleExpression,
			wantFuncs: nil,
			wantCols:  []string{"AMOUNT", "QTY"},
		},
		{
			name:      "aggregate wins over other calls",
			text:      "TRIM(MAX(NAME))",
			wantKind:  KindAggregation,
			wantFuncs: []string{"TRIM", "MAX"},
			wantCols:  []string{"NAME"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Extract(tt.text, upstream)
			assert.Equal(t, tt.wantKind, tr.Kind)
			assert.Equal(t, tt.wantFuncs, tr.Functions)
			assert.Equal(t, tt.wantCols, tr.SourceColumns)
		})
	}
}

func TestExtract_UnrecognizedAggregateLikeCall(t *testing.T) {
	// An unknown aggregate-like function is still a call: never identity,
	// and the raw text survives unchanged.
	raw := "APPROX_PERCENTILE(AMOUNT, 0.5)"
	tr := Extract(raw, []string{"AMOUNT"})
	assert.NotEqual(t, KindIdentity, tr.Kind)
	assert.Equal(t, raw, tr.Raw)
	assert.Equal(t, []string{"APPROX_PERCENTILE"}, tr.Functions)
}

func TestExtract_QualifiedReferences(t *testing.T) {
	tr := Extract("LINK2.AMOUNT + LINK2.TAX", []string{"AMOUNT", "TAX"})
	assert.Equal(t, KindSimpleExpression, tr.Kind)
	assert.Equal(t, []string{"LINK2.AMOUNT", "LINK2.TAX"}, tr.SourceColumns)
}

func TestExtract_KeywordsFiltered(t *testing.T) {
	tr := Extract("CASE WHEN AMOUNT THEN QTY ELSE QTY END", []string{"AMOUNT", "QTY"})
	assert.ElementsMatch(t, []string{"AMOUNT", "QTY"}, tr.SourceColumns)
}

func TestExtract_UnparseableDegradesToUnknown(t *testing.T) {
	tests := []string{
		"@@@ ??? !!!",
		"",
		"   ",
		"42 plus nonsense )( ",
	}
	for _, text := range tests {
		tr := Extract(text, []string{"A"})
		assert.Equal(t, KindUnknown, tr.Kind, "input %q", text)
		assert.Equal(t, text, tr.Raw, "raw text preserved for %q", text)
	}
}

func TestExtract_DuplicateSourcesDeduped(t *testing.T) {
	tr := Extract("AMOUNT + AMOUNT", []string{"AMOUNT"})
	assert.Equal(t, []string{"AMOUNT"}, tr.SourceColumns)
}
