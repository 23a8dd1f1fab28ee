// Package comparator diffs the operator trees of two statements
// positionally and summarizes the change.
package comparator

import (
	"github.com/sqlplan/sqlplan/internal/showplan"
)

type Comparator struct {
	// ThresholdPct is the minimum percentage change in cost or elapsed
	// time considered significant.
	ThresholdPct float64
}

func (c *Comparator) Compare(old, new *showplan.Statement) ComparisonResult {
	rootDelta := c.diffNodes(old.Root, new.Root)

	summary := Summary{
		OldTotalCost: old.SubTreeCost,
		NewTotalCost: new.SubTreeCost,
		CostDelta:    new.SubTreeCost - old.SubTreeCost,
		CostPct:      pctChange(old.SubTreeCost, new.SubTreeCost),
		CostDir:      c.direction(old.SubTreeCost, new.SubTreeCost),

		OldElapsedMs: statementElapsedMs(old),
		NewElapsedMs: statementElapsedMs(new),

		OldCompileTimeMs: old.CompileTimeMs,
		NewCompileTimeMs: new.CompileTimeMs,
	}
	summary.ElapsedPct = pctChange(summary.OldElapsedMs, summary.NewElapsedMs)
	summary.ElapsedDir = c.direction(summary.OldElapsedMs, summary.NewElapsedMs)

	countChanges(&rootDelta, &summary)
	summary.Verdict = verdict(summary)

	return ComparisonResult{
		Deltas:  []NodeDelta{rootDelta},
		Summary: summary,
	}
}

// statementElapsedMs reports the elapsed time of the optimizer root, the
// closest thing a plan has to statement wall time.
func statementElapsedMs(st *showplan.Statement) float64 {
	if st.Root == nil || len(st.Root.Children) == 0 {
		return 0
	}
	if r := st.Root.Children[0].Runtime; r != nil {
		return r.ActualElapsedMs
	}
	return 0
}

func countChanges(delta *NodeDelta, summary *Summary) {
	switch delta.ChangeType {
	case Added:
		summary.NodesAdded++
	case Removed:
		summary.NodesRemoved++
	case Modified:
		summary.NodesModified++
	case TypeChanged:
		summary.NodesTypeChanged++
	}

	for i := range delta.Children {
		countChanges(&delta.Children[i], summary)
	}
}

func verdict(s Summary) string {
	switch {
	case s.CostDir == Improved && s.ElapsedDir != Regressed:
		return "new plan looks better"
	case s.CostDir == Regressed && s.ElapsedDir != Improved:
		return "new plan looks worse"
	case s.CostDir == Unchanged && s.ElapsedDir == Unchanged:
		return "plans are equivalent"
	default:
		return "mixed: verify against workload"
	}
}
