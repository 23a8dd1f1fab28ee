package showplan

import (
	"strings"

	"github.com/beevik/etree"
)

// Elements that appear under a RelOp for every operator type. The one
// remaining child element is operator-specific: its tag names the
// operator's implementation and carries its unique properties.
var commonRelOpChildren = map[string]bool{
	"OutputList":              true,
	"RunTimeInformation":      true,
	"Warnings":                true,
	"MemoryFractions":         true,
	"RunTimePartitionSummary": true,
	"InternalInfo":            true,
}

func buildNode(el *etree.Element) *PlanNode {
	n := &PlanNode{
		NodeID:                    attrInt(el, "NodeId"),
		PhysicalOp:                attrStr(el, "PhysicalOp"),
		LogicalOp:                 attrStr(el, "LogicalOp"),
		EstimatedTotalSubtreeCost: attrFloat(el, "EstimatedTotalSubtreeCost"),
		EstimateRows:              attrFloat(el, "EstimateRows"),
		EstimateIO:                attrFloat(el, "EstimateIO"),
		EstimateCPU:               attrFloat(el, "EstimateCPU"),
		EstimateRebinds:           attrFloat(el, "EstimateRebinds"),
		EstimateRewinds:           attrFloat(el, "EstimateRewinds"),
		AvgRowSize:                attrFloat(el, "AvgRowSize"),
		Parallel:                  attrBool(el, "Parallel"),
		EstimatedExecutionMode:    attrStr(el, "EstimatedExecutionMode"),
		Partitioned:               attrBool(el, "Partitioned"),
	}
	if n.EstimateRows == 0 {
		// Omitted by some optimizer versions when a row goal rewrote the
		// estimate; the row-goal-free figure is the remaining signal.
		n.EstimateRows = attrFloat(el, "EstimateRowsWithoutRowGoal")
	}

	if out := childElement(el, "OutputList"); out != nil {
		n.OutputColumns = columnNames(out)
	}
	if w := childElement(el, "Warnings"); w != nil {
		n.Warnings = parseWarningList(w)
	}
	if rti := childElement(el, "RunTimeInformation"); rti != nil {
		n.Runtime = aggregateRuntime(rti)
	}

	if op := operatorElement(el); op != nil {
		applyOperatorProperties(n, op)
		for _, child := range childOperators(op) {
			n.Children = append(n.Children, buildNode(child))
		}
	}
	return n
}

// operatorElement returns the operator-specific child of a RelOp: the
// first child whose tag is not common to all operators.
func operatorElement(el *etree.Element) *etree.Element {
	for _, c := range el.ChildElements() {
		if !commonRelOpChildren[c.Tag] {
			return c
		}
	}
	return nil
}

// childOperators finds the true child operators of an operator-specific
// element. Children nest either directly, or one level deeper inside a
// non-operator wrapper (e.g. the build and probe inputs of a hash match).
// The search never descends into a RelOp, so sibling subtrees stay
// untouched.
func childOperators(op *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, c := range op.ChildElements() {
		if c.Tag == "RelOp" {
			out = append(out, c)
			continue
		}
		for _, gc := range c.ChildElements() {
			if gc.Tag == "RelOp" {
				out = append(out, gc)
			}
		}
	}
	return out
}

func applyOperatorProperties(n *PlanNode, op *etree.Element) {
	if op.Tag == "AdaptiveJoin" {
		n.IsAdaptive = true
		n.AdaptiveThresholdRows = attrFloat(op, "AdaptiveThresholdRows")
		n.EstimatedJoinType = attrStr(op, "EstimatedJoinType")
	}

	n.Ordered = attrBool(op, "Ordered")
	n.ScanDirection = attrStr(op, "ScanDirection")
	n.ForcedIndex = attrBool(op, "ForcedIndex")
	n.ForceSeek = attrBool(op, "ForceSeek")
	n.ForceScan = attrBool(op, "ForceScan")
	n.NoExpandHint = attrBool(op, "NoExpandHint")
	n.Storage = attrStr(op, "Storage")

	if obj := scopedElement(op, "Object"); obj != nil {
		n.Database = stripBrackets(attrStr(obj, "Database"))
		n.Schema = stripBrackets(attrStr(obj, "Schema"))
		n.Table = stripBrackets(attrStr(obj, "Table"))
		n.Index = stripBrackets(attrStr(obj, "Index"))
		n.Alias = stripBrackets(attrStr(obj, "Alias"))
		n.IndexKind = attrStr(obj, "IndexKind")
		if n.Storage == "" {
			n.Storage = attrStr(obj, "Storage")
		}
		n.ObjectName = joinNonEmpty(".", n.Schema, n.Table)
		n.QualifiedName = joinNonEmpty(".", n.Database, n.Schema, n.Table, n.Index)
	}

	n.Predicate = scalarString(scopedElement(op, "Predicate"))
	n.SeekPredicate = seekPredicateText(op)
	n.SetPredicate = scalarString(scopedElement(op, "SetPredicate"))
	n.HashKeysBuild = columnNames(scopedElement(op, "HashKeysBuild"))
	n.HashKeysProbe = columnNames(scopedElement(op, "HashKeysProbe"))
	n.BuildResidual = scalarString(scopedElement(op, "BuildResidual"))
	n.ProbeResidual = scalarString(scopedElement(op, "ProbeResidual"))
	n.OuterReferences = columnNames(scopedElement(op, "OuterReferences"))
	n.InnerSideJoinColumns = columnNames(scopedElement(op, "InnerSideJoinColumns"))
	n.OuterSideJoinColumns = columnNames(scopedElement(op, "OuterSideJoinColumns"))
	n.Residual = scalarString(scopedElement(op, "Residual"))
	n.GroupBy = columnNames(scopedElement(op, "GroupBy"))
	n.OrderBy = orderByColumns(scopedElement(op, "OrderBy"))
	n.TopExpression = scalarString(scopedElement(op, "TopExpression"))
}

// seekPredicateText flattens the seek-predicate structure into display
// text: seek key columns paired with the expressions they are compared
// against.
func seekPredicateText(op *etree.Element) string {
	sp := scopedElement(op, "SeekPredicates")
	if sp == nil {
		sp = scopedElement(op, "SeekPredicate")
	}
	if sp == nil {
		return ""
	}

	var cols, exprs []string
	for _, cr := range scopedElements(sp, "ColumnReference") {
		if name := columnName(cr); name != "" {
			cols = append(cols, name)
		}
	}
	seen := map[string]bool{}
	for _, so := range scopedElements(sp, "ScalarOperator") {
		s := attrStr(so, "ScalarString")
		if s != "" && !seen[s] {
			seen[s] = true
			exprs = append(exprs, s)
		}
	}

	// Seek key columns also appear inside the scalar expressions; prefer
	// the expressions when present, they carry the comparison.
	if len(exprs) > 0 {
		if len(cols) > 0 && len(cols) == len(exprs) {
			pairs := make([]string, len(cols))
			for i := range cols {
				pairs[i] = cols[i] + " = " + exprs[i]
			}
			return strings.Join(pairs, "; ")
		}
		return strings.Join(exprs, "; ")
	}
	return strings.Join(cols, ", ")
}

func orderByColumns(el *etree.Element) []string {
	if el == nil {
		return nil
	}
	var out []string
	for _, obc := range el.ChildElements() {
		if obc.Tag != "OrderByColumn" {
			continue
		}
		name := ""
		if cr := scopedElement(obc, "ColumnReference"); cr != nil {
			name = columnName(cr)
		}
		if name == "" {
			continue
		}
		if attrBool(obc, "Ascending") {
			name += " ASC"
		} else {
			name += " DESC"
		}
		out = append(out, name)
	}
	return out
}

// aggregateRuntime folds the per-thread runtime counters into one record.
// Rows, executions, reads and CPU are additive across workers; elapsed
// time is wall clock, so overlapping workers take the maximum instead.
func aggregateRuntime(el *etree.Element) *RuntimeStats {
	var rs RuntimeStats
	for _, t := range el.ChildElements() {
		if t.Tag != "RunTimeCountersPerThread" {
			continue
		}
		rs.Threads++
		rs.ActualRows += attrInt64(t, "ActualRows")
		rs.ActualRowsRead += attrInt64(t, "ActualRowsRead")
		rs.ActualExecutions += attrInt64(t, "ActualExecutions")
		rs.ActualCPUMs += attrFloat(t, "ActualCPUms")
		rs.ActualLogicalReads += attrInt64(t, "ActualLogicalReads")
		rs.ActualPhysicalReads += attrInt64(t, "ActualPhysicalReads")
		rs.ActualRebinds += attrInt64(t, "ActualRebinds")
		rs.ActualRewinds += attrInt64(t, "ActualRewinds")
		rs.UdfCPUMs += attrFloat(t, "UdfCpuTime")
		if e := attrFloat(t, "ActualElapsedms"); e > rs.ActualElapsedMs {
			rs.ActualElapsedMs = e
		}
		if e := attrFloat(t, "UdfElapsedTime"); e > rs.UdfElapsedMs {
			rs.UdfElapsedMs = e
		}
		if rs.ExecutionMode == "" {
			rs.ExecutionMode = attrStr(t, "ActualExecutionMode")
		}
	}
	if rs.Threads == 0 {
		return nil
	}
	if rs.ActualRows == 0 {
		rs.ActualRows = rs.ActualRowsRead
	}
	return &rs
}
