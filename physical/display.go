package physical

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// DisplayFormat selects how much detail a node shows.
type DisplayFormat int

const (
	DisplayDefault DisplayFormat = iota
	DisplayVerbose
)

// DisplayAs is implemented by nodes with a richer one-line description than their name.
type DisplayAs interface {
	DisplayAs(f DisplayFormat) string
}

// Describe returns the one-line description of plan.
func Describe(plan ExecutionPlan, f DisplayFormat) string {
	if d, ok := plan.(DisplayAs); ok {
		return d.DisplayAs(f)
	}
	return plan.Name()
}

// Indent renders plan as an indented tree, one node per line, children
// indented by two spaces. With withMetrics every line carries the node's
// metrics.
func Indent(plan ExecutionPlan, withMetrics bool) string {
	var sb strings.Builder
	indent(&sb, plan, 0, withMetrics)
	return sb.String()
}

func indent(sb *strings.Builder, plan ExecutionPlan, depth int, withMetrics bool) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(Describe(plan, DisplayVerbose))
	if withMetrics {
		sb.WriteString(", metrics=[")
		sb.WriteString(plan.Metrics().String())
		sb.WriteString("]")
	}
	sb.WriteByte('\n')

	for _, child := range plan.Children() {
		indent(sb, child, depth+1, withMetrics)
	}
}

func fieldNames(schema *arrow.Schema) string {
	names := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		names[i] = f.Name
	}
	return strings.Join(names, ",")
}
