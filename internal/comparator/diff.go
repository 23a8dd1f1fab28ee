package comparator

import (
	"math"

	"github.com/sqlplan/sqlplan/internal/showplan"
)

func (c *Comparator) diffNodes(old, new *showplan.PlanNode) NodeDelta {
	delta := NodeDelta{
		Object: coalesce(old.ObjectName, new.ObjectName),
	}

	if old.PhysicalOp != new.PhysicalOp {
		delta.ChangeType = TypeChanged
		delta.OldOperator = old.PhysicalOp
		delta.NewOperator = new.PhysicalOp
		delta.Operator = new.PhysicalOp
	} else {
		delta.ChangeType = Modified
		delta.Operator = old.PhysicalOp
	}

	delta.OldCost = old.EstimatedTotalSubtreeCost
	delta.NewCost = new.EstimatedTotalSubtreeCost
	delta.CostDelta = delta.NewCost - delta.OldCost
	delta.CostPct = pctChange(delta.OldCost, delta.NewCost)
	delta.CostDir = c.direction(delta.OldCost, delta.NewCost)

	delta.OldElapsedMs, delta.OldRows, delta.OldLogicalReads, delta.OldExecutions = runtimeMetrics(old)
	delta.NewElapsedMs, delta.NewRows, delta.NewLogicalReads, delta.NewExecutions = runtimeMetrics(new)
	delta.ElapsedPct = pctChange(delta.OldElapsedMs, delta.NewElapsedMs)
	delta.ElapsedDir = c.direction(delta.OldElapsedMs, delta.NewElapsedMs)
	delta.RowsPct = pctChange(float64(delta.OldRows), float64(delta.NewRows))

	delta.OldSpill = hasSpill(old)
	delta.NewSpill = hasSpill(new)
	delta.OldWarnings = len(old.Warnings)
	delta.NewWarnings = len(new.Warnings)

	delta.OldPredicate = old.Predicate
	delta.NewPredicate = new.Predicate
	delta.OldIndex = old.Index
	delta.NewIndex = new.Index

	if delta.ChangeType == Modified && !c.isSignificant(delta) {
		delta.ChangeType = NoChange
	}

	delta.Children = c.diffChildren(old.Children, new.Children)

	return delta
}

func (c *Comparator) diffChildren(oldKids, newKids []*showplan.PlanNode) []NodeDelta {
	var deltas []NodeDelta

	for i := 0; i < max(len(oldKids), len(newKids)); i++ {
		if i >= len(oldKids) {
			deltas = append(deltas, addedNode(newKids[i]))
			continue
		}
		if i >= len(newKids) {
			deltas = append(deltas, removedNode(oldKids[i]))
			continue
		}
		deltas = append(deltas, c.diffNodes(oldKids[i], newKids[i]))
	}

	return deltas
}

func addedNode(node *showplan.PlanNode) NodeDelta {
	delta := NodeDelta{
		ChangeType: Added,
		Operator:   node.PhysicalOp,
		Object:     node.ObjectName,
		NewCost:    node.EstimatedTotalSubtreeCost,
	}
	delta.NewElapsedMs, delta.NewRows, delta.NewLogicalReads, delta.NewExecutions = runtimeMetrics(node)

	for _, child := range node.Children {
		delta.Children = append(delta.Children, addedNode(child))
	}
	return delta
}

func removedNode(node *showplan.PlanNode) NodeDelta {
	delta := NodeDelta{
		ChangeType: Removed,
		Operator:   node.PhysicalOp,
		Object:     node.ObjectName,
		OldCost:    node.EstimatedTotalSubtreeCost,
	}
	delta.OldElapsedMs, delta.OldRows, delta.OldLogicalReads, delta.OldExecutions = runtimeMetrics(node)

	for _, child := range node.Children {
		delta.Children = append(delta.Children, removedNode(child))
	}
	return delta
}

func runtimeMetrics(node *showplan.PlanNode) (elapsedMs float64, rows, logicalReads, executions int64) {
	if node.Runtime == nil {
		return 0, 0, 0, 0
	}
	r := node.Runtime
	return r.ActualElapsedMs, r.ActualRows, r.ActualLogicalReads, r.ActualExecutions
}

func hasSpill(node *showplan.PlanNode) bool {
	for _, w := range node.Warnings {
		if w.Kind == showplan.KindSpillToTempDb {
			return true
		}
	}
	return false
}

func (c *Comparator) isSignificant(d NodeDelta) bool {
	if math.Abs(d.CostPct) > c.ThresholdPct {
		return true
	}
	if math.Abs(d.ElapsedPct) > c.ThresholdPct {
		return true
	}
	if d.OldSpill != d.NewSpill {
		return true
	}
	if d.OldWarnings != d.NewWarnings {
		return true
	}
	if d.OldLogicalReads != d.NewLogicalReads {
		return true
	}
	if d.OldIndex != d.NewIndex {
		return true
	}
	if d.OldPredicate != d.NewPredicate {
		return true
	}
	return false
}

func (c *Comparator) direction(old, new float64) Direction {
	if math.Abs(pctChange(old, new)) < c.ThresholdPct {
		return Unchanged
	}
	if new < old {
		return Improved
	}
	return Regressed
}

func pctChange(old, new float64) float64 {
	if old == 0 {
		if new == 0 {
			return 0
		}
		return 100
	}
	return ((new - old) / old) * 100
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
