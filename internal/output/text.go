package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/sqlplan/sqlplan/internal/comparator"
	"github.com/sqlplan/sqlplan/internal/showplan"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func RenderAnalysisText(w io.Writer, rep Report) error {
	tw := &textWriter{w: w}

	for i, st := range rep.Statements {
		tw.printf("%s%sStatement %d: %s%s\n\n", colorBold, colorCyan, i+1, st.Type, colorReset)
		if st.Text != "" {
			tw.printf("  %s%s%s\n", colorDim, truncate(st.Text, 120), colorReset)
		}
		tw.printf("  Estimated Cost: %.4f\n", st.SubTreeCost)
		if st.ElapsedMs > 0 {
			tw.printf("  Elapsed:        %.1f ms\n", st.ElapsedMs)
		}
		if st.CompileTimeMs > 0 {
			tw.printf("  Compile Time:   %.1f ms\n", st.CompileTimeMs)
		}
		if st.DegreeOfParallelism > 1 {
			tw.printf("  DOP:            %d\n", st.DegreeOfParallelism)
		}
		tw.printf("\n")

		for _, mi := range st.MissingIndexes {
			tw.printf("  %sMissing index (impact %.1f)%s\n", colorYellow, mi.Impact, colorReset)
			tw.printf("  %s→ %s%s\n\n", colorDim, mi.CreateStatement, colorReset)
		}
	}

	if len(rep.Findings) == 0 {
		tw.printf("%s%sNo issues found.%s\n", colorBold, colorGreen, colorReset)
		return tw.err
	}

	tw.printf("%s%sFindings (%d)%s\n\n", colorBold, colorCyan, len(rep.Findings), colorReset)

	for i, f := range rep.Findings {
		label, color := severityFormat(f.Severity)
		tw.printf("  %s%-8s%s %s", color, label, colorReset, f.Kind)
		if f.Operator != "" {
			tw.printf(" %s(%s", colorDim, f.Operator)
			if f.Object != "" {
				tw.printf(" on %s", f.Object)
			}
			tw.printf(", node %d)%s", f.NodeID, colorReset)
		}
		tw.printf("\n")
		tw.printf("  %s→ %s%s\n", colorDim, f.Message, colorReset)
		if i < len(rep.Findings)-1 {
			tw.printf("\n")
		}
	}

	return tw.err
}

func severityFormat(s showplan.Severity) (string, string) {
	switch s {
	case showplan.Critical:
		return "CRITICAL", colorRed
	case showplan.Warning:
		return "WARNING", colorYellow
	default:
		return "INFO", colorCyan
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func RenderComparisonText(w io.Writer, result comparator.ComparisonResult) error {
	tw := &textWriter{w: w}
	s := result.Summary

	tw.printf("%s%sSummary%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Cost:    %s\n", formatDelta(s.OldTotalCost, s.NewTotalCost, s.CostPct, s.CostDir, "%.4f"))
	if s.OldElapsedMs > 0 || s.NewElapsedMs > 0 {
		tw.printf("  Elapsed: %s\n", formatDelta(s.OldElapsedMs, s.NewElapsedMs, s.ElapsedPct, s.ElapsedDir, "%.1f ms"))
	}
	if s.OldCompileTimeMs > 0 || s.NewCompileTimeMs > 0 {
		tw.printf("  Compile: %.1f ms → %.1f ms\n", s.OldCompileTimeMs, s.NewCompileTimeMs)
	}
	tw.printf("\n")

	changes := s.NodesAdded + s.NodesRemoved + s.NodesModified + s.NodesTypeChanged
	if changes == 0 {
		tw.printf("%s%sPlans are identical.%s\n", colorBold, colorGreen, colorReset)
		return tw.err
	}

	tw.printf("  Changes: %d modified, %d type changed, %d added, %d removed\n\n",
		s.NodesModified, s.NodesTypeChanged, s.NodesAdded, s.NodesRemoved)

	tw.printf("%s%sOperator Details%s\n\n", colorBold, colorCyan, colorReset)

	for _, delta := range result.Deltas {
		tw.renderDelta(delta, 0)
	}

	tw.renderVerdict(s)

	return tw.err
}

func (tw *textWriter) renderDelta(d comparator.NodeDelta, depth int) {
	indent := strings.Repeat("  ", depth+1)

	switch d.ChangeType {
	case comparator.NoChange:
		for _, child := range d.Children {
			tw.renderDelta(child, depth)
		}
		return
	case comparator.Added:
		tw.printf("%s%s+ %s%s (cost=%.4f", indent, colorGreen, deltaLabel(d), colorReset, d.NewCost)
		if d.NewElapsedMs > 0 {
			tw.printf(" time=%.1fms", d.NewElapsedMs)
		}
		tw.printf(")\n")
	case comparator.Removed:
		tw.printf("%s%s- %s%s (cost=%.4f", indent, colorRed, deltaLabel(d), colorReset, d.OldCost)
		if d.OldElapsedMs > 0 {
			tw.printf(" time=%.1fms", d.OldElapsedMs)
		}
		tw.printf(")\n")
	case comparator.TypeChanged:
		tw.printf("%s%s~ %s → %s%s", indent, colorYellow, d.OldOperator, d.NewOperator, colorReset)
		if d.Object != "" {
			tw.printf(" on %s", d.Object)
		}
		tw.printf("\n")
		tw.renderMetrics(indent, d)
	case comparator.Modified:
		tw.printf("%s%s~ %s%s\n", indent, colorYellow, deltaLabel(d), colorReset)
		tw.renderMetrics(indent, d)
	}

	for _, child := range d.Children {
		tw.renderDelta(child, depth+1)
	}
}

func (tw *textWriter) renderMetrics(indent string, d comparator.NodeDelta) {
	tw.renderMetricLine(indent, "cost", d.OldCost, d.NewCost, d.CostPct, d.CostDir, "%.4f")
	if d.OldElapsedMs > 0 || d.NewElapsedMs > 0 {
		tw.renderMetricLine(indent, "time", d.OldElapsedMs, d.NewElapsedMs, d.ElapsedPct, d.ElapsedDir, "%.1f ms")
	}
	if d.OldRows != d.NewRows {
		tw.printf("%s  rows: %d → %d (%+.1f%%)\n", indent, d.OldRows, d.NewRows, d.RowsPct)
	}
	if d.OldLogicalReads != d.NewLogicalReads {
		color, arrow := deltaIndicator(d.OldLogicalReads, d.NewLogicalReads)
		tw.printf("%s  logical reads: %d → %s%d %s%s\n",
			indent, d.OldLogicalReads, color, d.NewLogicalReads, arrow, colorReset)
	}
	if d.OldSpill != d.NewSpill {
		if d.NewSpill {
			tw.printf("%s  %sspill to tempdb appeared ↑%s\n", indent, colorRed, colorReset)
		} else {
			tw.printf("%s  %sspill to tempdb resolved ↓%s\n", indent, colorGreen, colorReset)
		}
	}
	tw.renderStringChange(indent, "predicate", d.OldPredicate, d.NewPredicate)
	tw.renderStringChange(indent, "index", d.OldIndex, d.NewIndex)
}

func (tw *textWriter) renderMetricLine(indent, label string, oldVal, newVal, pct float64, dir comparator.Direction, fmtStr string) {
	color := dirColor(dir)
	arrow := dirArrow(dir)
	oldStr := fmt.Sprintf(fmtStr, oldVal)
	newStr := fmt.Sprintf(fmtStr, newVal)
	tw.printf("%s  %s: %s → %s%s %s (%+.1f%%)%s\n", indent, label, oldStr, color, newStr, arrow, pct, colorReset)
}

func (tw *textWriter) renderStringChange(indent, label, oldVal, newVal string) {
	if oldVal == newVal {
		return
	}
	switch {
	case oldVal == "":
		tw.printf("%s  %s%s added: %s%s\n", indent, colorYellow, label, newVal, colorReset)
	case newVal == "":
		tw.printf("%s  %s%s removed: %s%s\n", indent, colorGreen, label, oldVal, colorReset)
	default:
		tw.printf("%s  %s%s: %s → %s%s\n", indent, colorYellow, label, oldVal, newVal, colorReset)
	}
}

func (tw *textWriter) renderVerdict(s comparator.Summary) {
	var color string
	switch {
	case s.CostDir == comparator.Improved && s.ElapsedDir != comparator.Regressed:
		color = colorGreen
	case s.CostDir == comparator.Regressed && s.ElapsedDir != comparator.Improved:
		color = colorRed
	case s.CostDir == comparator.Improved || s.ElapsedDir == comparator.Improved:
		color = colorYellow
	}
	if color != "" {
		tw.printf("\n%sVerdict: %s%s\n", color, s.Verdict, colorReset)
	} else {
		tw.printf("\nVerdict: %s\n", s.Verdict)
	}
}

func deltaIndicator(oldVal, newVal int64) (string, string) {
	if newVal > oldVal {
		return colorRed, "↑"
	}
	return colorGreen, "↓"
}

func formatDelta(oldVal, newVal, pct float64, dir comparator.Direction, fmtStr string) string {
	color := dirColor(dir)
	arrow := dirArrow(dir)
	oldStr := fmt.Sprintf(fmtStr, oldVal)
	newStr := fmt.Sprintf(fmtStr, newVal)
	return fmt.Sprintf("%s → %s%s %s (%+.1f%%)%s", oldStr, color, newStr, arrow, pct, colorReset)
}

func dirColor(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return colorGreen
	case comparator.Regressed:
		return colorRed
	default:
		return ""
	}
}

func dirArrow(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return "↓"
	case comparator.Regressed:
		return "↑"
	default:
		return ""
	}
}

func deltaLabel(d comparator.NodeDelta) string {
	if d.Object != "" {
		return fmt.Sprintf("%s on %s", d.Operator, d.Object)
	}
	return d.Operator
}
