package lower

import "fmt"

// Severity ranks a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic records one degraded-extraction or dropped-edge condition with
// its node/column context. Diagnostics never abort the pass; they are
// collected and returned alongside the document.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Node     string   `json:"node,omitempty"`
	Column   string   `json:"column,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	switch {
	case d.Node != "" && d.Column != "":
		return fmt.Sprintf("%s: node %s column %s: %s", d.Severity, d.Node, d.Column, d.Message)
	case d.Node != "":
		return fmt.Sprintf("%s: node %s: %s", d.Severity, d.Node, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Diagnostics is the accumulator threaded through the lowering phases.
type Diagnostics []Diagnostic

// Warnf appends a warning diagnostic.
func (ds *Diagnostics) Warnf(node, column, format string, args ...interface{}) {
	*ds = append(*ds, Diagnostic{
		Severity: SeverityWarning,
		Node:     node,
		Column:   column,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errorf appends an error diagnostic.
func (ds *Diagnostics) Errorf(node, column, format string, args ...interface{}) {
	*ds = append(*ds, Diagnostic{
		Severity: SeverityError,
		Node:     node,
		Column:   column,
		Message:  fmt.Sprintf(format, args...),
	})
}

// ErrorCount returns the number of error-severity diagnostics.
func (ds Diagnostics) ErrorCount() int {
	n := 0
	for _, d := range ds {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}
