package analyzer

import (
	"fmt"
	"strings"

	"github.com/sqlplan/sqlplan/internal/showplan"
)

const (
	MaxPredicateDisplayLen = 200

	UDFCriticalElapsedMs = 1000.0

	UnderestimateRatio     = 10.0
	OverestimateRatio      = 0.1
	CriticalMismatchFactor = 100.0
)

// serialPlanReasons translates the optimizer's internal non-parallel
// reason codes into sentences. Unrecognized codes pass through verbatim.
var serialPlanReasons = map[string]string{
	"MaxDOPSetToOne":                                     "maximum degree of parallelism is set to 1",
	"EstimatedDOPIsOne":                                  "the estimated degree of parallelism is 1",
	"NoParallelPlansInDesktopOrExpressEdition":           "this edition of SQL Server does not support parallel plans",
	"CouldNotGenerateValidParallelPlan":                  "the optimizer could not generate a valid parallel plan",
	"NonParallelizableIntrinsicFunction":                 "the query references an intrinsic function that cannot run in parallel",
	"TSQLUserDefinedFunctionsNotParallelizable":          "the query references a T-SQL scalar user-defined function, which forces a serial plan",
	"CLRUserDefinedFunctionRequiresDataAccess":           "the query references a CLR user-defined function that requires data access",
	"ParallelismDisabledByTraceFlag":                     "parallelism is disabled by a trace flag",
	"DMLQueryReturnsOutputToClient":                      "the DML statement returns output to the client",
	"NoParallelForDmlOnMemoryOptimizedTable":             "DML on memory-optimized tables cannot run in parallel",
	"NoParallelForNativelyCompiledModule":                "natively compiled modules cannot run in parallel",
	"MixedSerialAndParallelOnlineIndexBuildNotSupported": "mixed serial and parallel online index builds are not supported",
}

func checkSerialPlanReason(st *showplan.Statement) *showplan.PlanWarning {
	if st.NonParallelReason == "" {
		return nil
	}
	reason, ok := serialPlanReasons[st.NonParallelReason]
	if !ok {
		reason = st.NonParallelReason
	}
	return &showplan.PlanWarning{
		Kind:     showplan.KindSerialPlan,
		Severity: showplan.Warning,
		Message:  fmt.Sprintf("Plan could not use parallelism: %s", reason),
	}
}

// A Filter operator with a predicate means rows were carried through the
// whole subtree only to be discarded at the end; the predicate can often
// be pushed down or indexed.
func checkFilterOperator(n *showplan.PlanNode) []showplan.PlanWarning {
	if n.PhysicalOp != "Filter" || n.Predicate == "" {
		return nil
	}
	pred := n.Predicate
	if len(pred) > MaxPredicateDisplayLen {
		pred = pred[:MaxPredicateDisplayLen]
	}
	return []showplan.PlanWarning{{
		Kind:     showplan.KindFilterOperator,
		Severity: showplan.Warning,
		Message:  fmt.Sprintf("Filter operator discards rows late in the plan; predicate: %s", pred),
	}}
}

// The optimizer builds an eager index spool when it wants an index that
// does not exist; a permanent index usually removes the spool.
func checkEagerIndexSpool(n *showplan.PlanNode) []showplan.PlanWarning {
	name := strings.ToLower(n.PhysicalOp + " " + n.LogicalOp)
	if !strings.Contains(name, "eager") || !strings.Contains(name, "spool") {
		return nil
	}
	return []showplan.PlanWarning{{
		Kind:     showplan.KindEagerIndexSpool,
		Severity: showplan.Warning,
		Message:  "Eager index spool materializes a temporary index at runtime; a permanent index on the spooled columns may remove it",
	}}
}

func checkUDFTime(n *showplan.PlanNode) []showplan.PlanWarning {
	r := n.Runtime
	if r == nil || (r.UdfCPUMs == 0 && r.UdfElapsedMs == 0) {
		return nil
	}
	sev := showplan.Warning
	if r.UdfElapsedMs >= UDFCriticalElapsedMs {
		sev = showplan.Critical
	}
	return []showplan.PlanWarning{{
		Kind:     showplan.KindUDFExecution,
		Severity: sev,
		Message: fmt.Sprintf("Scalar UDF execution took %.1f ms elapsed, %.1f ms CPU",
			r.UdfElapsedMs, r.UdfCPUMs),
	}}
}

func checkRowEstimateMismatch(n *showplan.PlanNode) []showplan.PlanWarning {
	r := n.Runtime
	if r == nil || n.EstimateRows <= 0 || r.ActualRows == 0 {
		return nil
	}

	ratio := float64(r.ActualRows) / n.EstimateRows

	var factor float64
	var direction string
	switch {
	case ratio >= UnderestimateRatio:
		factor = ratio
		direction = "underestimated"
	case ratio <= OverestimateRatio:
		factor = 1 / ratio
		direction = "overestimated"
	default:
		return nil
	}

	sev := showplan.Warning
	if factor >= CriticalMismatchFactor {
		sev = showplan.Critical
	}
	return []showplan.PlanWarning{{
		Kind:     showplan.KindRowEstimateMismatch,
		Severity: sev,
		Message: fmt.Sprintf("Optimizer %s rows by %.0fx (estimated %.0f, actual %d)",
			direction, factor, n.EstimateRows, r.ActualRows),
	}}
}
