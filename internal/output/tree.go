package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/sqlplan/sqlplan/internal/showplan"
)

// RenderTree prints each statement's operator tree with per-node cost
// percentage, row counts and warning markers.
func RenderTree(w io.Writer, p *showplan.ParsedPlan) error {
	tw := &textWriter{w: w}

	for i, st := range p.Statements() {
		if i > 0 {
			tw.printf("\n")
		}
		tw.printf("%s%sStatement %d: %s%s  (cost %.4f)\n", colorBold, colorCyan, i+1, st.Type, colorReset, st.SubTreeCost)
		if st.Text != "" {
			tw.printf("%s%s%s\n", colorDim, truncate(st.Text, 120), colorReset)
		}
		tw.printf("\n")
		for _, child := range st.Root.Children {
			renderNode(tw, child, 0)
		}
		if len(st.Root.Children) == 0 {
			tw.printf("  %s(no operator tree)%s\n", colorDim, colorReset)
		}
	}

	return tw.err
}

func renderNode(tw *textWriter, n *showplan.PlanNode, depth int) {
	indent := strings.Repeat("  ", depth)

	tw.printf("%s%s%3d%%%s  %s", costColor(n.CostPercent), colorBold, n.CostPercent, colorReset, indent)
	tw.printf("%s", n.PhysicalOp)
	if n.LogicalOp != "" && n.LogicalOp != n.PhysicalOp {
		tw.printf(" (%s)", n.LogicalOp)
	}
	if n.ObjectName != "" {
		tw.printf(" %s[%s]%s", colorCyan, objectLabel(n), colorReset)
	}
	if n.Parallel {
		tw.printf(" %s∥%s", colorDim, colorReset)
	}

	tw.printf("  %s%s%s", colorDim, rowsLabel(n), colorReset)

	for _, warn := range n.Warnings {
		label, color := severityFormat(warn.Severity)
		tw.printf("  %s!%s%s", color, label, colorReset)
	}
	tw.printf("\n")

	for _, child := range n.Children {
		renderNode(tw, child, depth+1)
	}
}

func objectLabel(n *showplan.PlanNode) string {
	if n.Index != "" {
		return n.ObjectName + "." + n.Index
	}
	return n.ObjectName
}

func rowsLabel(n *showplan.PlanNode) string {
	if n.Runtime != nil {
		return fmt.Sprintf("%d rows (est %.0f)", n.Runtime.ActualRows, n.EstimateRows)
	}
	return fmt.Sprintf("est %.0f rows", n.EstimateRows)
}

func costColor(pct int) string {
	switch {
	case pct >= 50:
		return colorRed
	case pct >= 20:
		return colorYellow
	default:
		return ""
	}
}
