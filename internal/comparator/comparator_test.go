package comparator

import (
	"testing"

	"github.com/sqlplan/sqlplan/internal/showplan"
)

func stmt(cost float64, root *showplan.PlanNode) *showplan.Statement {
	wrapper := &showplan.PlanNode{
		NodeID:                    showplan.StatementNodeID,
		PhysicalOp:                "SELECT",
		LogicalOp:                 "SELECT",
		EstimatedTotalSubtreeCost: cost,
	}
	if root != nil {
		wrapper.Children = []*showplan.PlanNode{root}
	}
	return &showplan.Statement{Type: "SELECT", SubTreeCost: cost, Root: wrapper}
}

func scanNode(cost float64) *showplan.PlanNode {
	return &showplan.PlanNode{
		NodeID:                    0,
		PhysicalOp:                "Clustered Index Scan",
		LogicalOp:                 "Clustered Index Scan",
		EstimatedTotalSubtreeCost: cost,
		Schema:                    "dbo",
		Table:                     "Orders",
		Index:                     "PK_Orders",
		ObjectName:                "dbo.Orders",
	}
}

func defaultComparator() *Comparator {
	return &Comparator{ThresholdPct: SignificanceThresholdPct}
}

func TestCompare_IdenticalPlans(t *testing.T) {
	old := stmt(1.5, scanNode(1.5))
	new := stmt(1.5, scanNode(1.5))

	result := defaultComparator().Compare(old, new)

	s := result.Summary
	if s.NodesAdded+s.NodesRemoved+s.NodesModified+s.NodesTypeChanged != 0 {
		t.Errorf("change counts = %+v, want all zero", s)
	}
	if s.CostDir != Unchanged || s.ElapsedDir != Unchanged {
		t.Errorf("directions = %s/%s, want unchanged", s.CostDir, s.ElapsedDir)
	}
	if s.Verdict != "plans are equivalent" {
		t.Errorf("Verdict = %q", s.Verdict)
	}

	root := result.Deltas[0]
	if root.ChangeType != NoChange {
		t.Errorf("root ChangeType = %s, want no_change", root.ChangeType)
	}
	if len(root.Children) != 1 || root.Children[0].ChangeType != NoChange {
		t.Errorf("child deltas = %+v", root.Children)
	}
}

func TestCompare_CostRegression(t *testing.T) {
	old := stmt(1.0, scanNode(1.0))
	new := stmt(3.0, scanNode(3.0))

	result := defaultComparator().Compare(old, new)

	s := result.Summary
	if s.CostDir != Regressed {
		t.Errorf("CostDir = %s, want regressed", s.CostDir)
	}
	if s.CostPct != 200 {
		t.Errorf("CostPct = %f, want 200", s.CostPct)
	}
	if s.Verdict != "new plan looks worse" {
		t.Errorf("Verdict = %q", s.Verdict)
	}
	if s.NodesModified != 2 {
		t.Errorf("NodesModified = %d, want 2 (wrapper and scan)", s.NodesModified)
	}
}

func TestCompare_ElapsedImprovement(t *testing.T) {
	oldScan := scanNode(1.0)
	oldScan.Runtime = &showplan.RuntimeStats{ActualElapsedMs: 1000, ActualRows: 500, ActualLogicalReads: 100}
	newScan := scanNode(0.4)
	newScan.Runtime = &showplan.RuntimeStats{ActualElapsedMs: 400, ActualRows: 500, ActualLogicalReads: 40}

	result := defaultComparator().Compare(stmt(1.0, oldScan), stmt(0.4, newScan))

	s := result.Summary
	if s.OldElapsedMs != 1000 || s.NewElapsedMs != 400 {
		t.Errorf("elapsed = %f -> %f", s.OldElapsedMs, s.NewElapsedMs)
	}
	if s.ElapsedDir != Improved || s.CostDir != Improved {
		t.Errorf("directions = %s/%s, want improved", s.CostDir, s.ElapsedDir)
	}
	if s.Verdict != "new plan looks better" {
		t.Errorf("Verdict = %q", s.Verdict)
	}
}

func TestCompare_OperatorTypeChange(t *testing.T) {
	seek := scanNode(0.2)
	seek.PhysicalOp = "Index Seek"
	seek.LogicalOp = "Index Seek"
	seek.Index = "IX_Orders_CustomerID"

	result := defaultComparator().Compare(stmt(1.5, scanNode(1.5)), stmt(0.2, seek))

	if result.Summary.NodesTypeChanged != 1 {
		t.Errorf("NodesTypeChanged = %d, want 1", result.Summary.NodesTypeChanged)
	}
	d := result.Deltas[0].Children[0]
	if d.ChangeType != TypeChanged {
		t.Fatalf("ChangeType = %s", d.ChangeType)
	}
	if d.OldOperator != "Clustered Index Scan" || d.NewOperator != "Index Seek" {
		t.Errorf("operators = %q -> %q", d.OldOperator, d.NewOperator)
	}
}

func TestCompare_AddedAndRemovedNodes(t *testing.T) {
	join := &showplan.PlanNode{
		NodeID:                    0,
		PhysicalOp:                "Nested Loops",
		LogicalOp:                 "Inner Join",
		EstimatedTotalSubtreeCost: 2.0,
		Children:                  []*showplan.PlanNode{scanNode(0.9), scanNode(0.8)},
	}

	grown := defaultComparator().Compare(stmt(1.5, scanNode(1.5)), stmt(2.0, join))
	if grown.Summary.NodesAdded != 2 {
		t.Errorf("NodesAdded = %d, want 2 (both join inputs)", grown.Summary.NodesAdded)
	}
	if grown.Summary.NodesTypeChanged != 1 {
		t.Errorf("NodesTypeChanged = %d, want 1 (scan became join)", grown.Summary.NodesTypeChanged)
	}

	shrunk := defaultComparator().Compare(stmt(2.0, join), stmt(1.5, scanNode(1.5)))
	if shrunk.Summary.NodesRemoved != 2 {
		t.Errorf("NodesRemoved = %d, want 2 (both join inputs)", shrunk.Summary.NodesRemoved)
	}
}

func TestCompare_SpillChangeIsSignificant(t *testing.T) {
	spilled := scanNode(1.5)
	spilled.Warnings = []showplan.PlanWarning{{
		Kind:     showplan.KindSpillToTempDb,
		Severity: showplan.Warning,
		Message:  "Operator spilled data to tempdb, spill level 1",
	}}

	result := defaultComparator().Compare(stmt(1.5, scanNode(1.5)), stmt(1.5, spilled))

	d := result.Deltas[0].Children[0]
	if d.ChangeType != Modified {
		t.Errorf("ChangeType = %s, want modified despite identical cost", d.ChangeType)
	}
	if d.OldSpill || !d.NewSpill {
		t.Errorf("spill flags = %v -> %v", d.OldSpill, d.NewSpill)
	}
}

func TestCompare_SubThresholdCostChange(t *testing.T) {
	result := defaultComparator().Compare(stmt(100, scanNode(100)), stmt(100.5, scanNode(100.5)))

	if result.Summary.CostDir != Unchanged {
		t.Errorf("CostDir = %s, want unchanged at 0.5%%", result.Summary.CostDir)
	}
	if d := result.Deltas[0].Children[0]; d.ChangeType != NoChange {
		t.Errorf("ChangeType = %s, want no_change below threshold", d.ChangeType)
	}
}

func TestPctChange(t *testing.T) {
	cases := []struct {
		old, new, want float64
	}{
		{100, 150, 50},
		{100, 50, -50},
		{0, 0, 0},
		{0, 10, 100},
		{10, 10, 0},
	}
	for _, c := range cases {
		if got := pctChange(c.old, c.new); got != c.want {
			t.Errorf("pctChange(%f, %f) = %f, want %f", c.old, c.new, got, c.want)
		}
	}
}
