// Package analyzer runs heuristic rules over a parsed plan and appends
// warnings to its statements and nodes.
package analyzer

import (
	"sort"

	"github.com/sqlplan/sqlplan/internal/showplan"
)

// A Rule inspects one operator and returns zero or more warnings for it.
type Rule func(node *showplan.PlanNode) []showplan.PlanWarning

var defaultRules = []Rule{
	checkFilterOperator,
	checkEagerIndexSpool,
	checkUDFTime,
	checkRowEstimateMismatch,
}

// Analyze appends heuristic warnings to every statement and node of the
// plan. Rules read only fields owned by the tree builder and never touch
// cost or structural fields, so re-running Analyze changes no values; it
// only duplicates the appended warning entries.
func Analyze(p *showplan.ParsedPlan) {
	for _, st := range p.Statements() {
		analyzeStatement(st)
	}
}

func analyzeStatement(st *showplan.Statement) {
	if w := checkSerialPlanReason(st); w != nil {
		st.Warnings = append(st.Warnings, *w)
	}

	st.WalkNodes(func(node, parent *showplan.PlanNode) {
		if node.NodeID == showplan.StatementNodeID {
			return
		}
		for _, rule := range defaultRules {
			node.Warnings = append(node.Warnings, rule(node)...)
		}
	})
}

// A Finding is one warning located in the plan, flattened for rendering
// and for the JSON report.
type Finding struct {
	Severity  showplan.Severity `json:"severity"`
	Kind      string            `json:"kind"`
	Statement int               `json:"statement"`
	NodeID    int               `json:"node_id"`
	Operator  string            `json:"operator,omitempty"`
	Object    string            `json:"object,omitempty"`
	Message   string            `json:"message"`
}

// Collect flattens all statement- and node-level warnings, most severe
// first.
func Collect(p *showplan.ParsedPlan) []Finding {
	var findings []Finding

	for i, st := range p.Statements() {
		for _, w := range st.Warnings {
			findings = append(findings, Finding{
				Severity:  w.Severity,
				Kind:      w.Kind,
				Statement: i,
				NodeID:    showplan.StatementNodeID,
				Message:   w.Message,
			})
		}
		st.WalkNodes(func(node, parent *showplan.PlanNode) {
			for _, w := range node.Warnings {
				findings = append(findings, Finding{
					Severity:  w.Severity,
					Kind:      w.Kind,
					Statement: i,
					NodeID:    node.NodeID,
					Operator:  node.PhysicalOp,
					Object:    node.ObjectName,
					Message:   w.Message,
				})
			}
		})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity > findings[j].Severity
	})
	return findings
}
